package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/pos-ledger/internal/domain"
)

const auditColumns = `id, store_id, user_id, action, entity_type, entity_id, details, created_at`

type AuditLogRepository struct {
	db *sql.DB
}

func NewAuditLogRepository(db *sql.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Record(ctx context.Context, event *domain.AuditEvent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, store_id, user_id, action, entity_type, entity_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		event.ID, event.StoreID, event.UserID, event.Action,
		event.EntityType, event.EntityID, nullableJSON(event.Details), event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Record: %w", err)
	}
	return nil
}

func (r *AuditLogRepository) GetByEntityID(ctx context.Context, entityID uuid.UUID) ([]domain.AuditEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+auditColumns+` FROM audit_logs
		WHERE entity_id = $1 ORDER BY created_at`, entityID,
	)
	if err != nil {
		return nil, fmt.Errorf("GetByEntityID: %w", err)
	}
	defer rows.Close()

	var events []domain.AuditEvent
	for rows.Next() {
		e, err := scanAuditEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("GetByEntityID: scan: %w", err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetByEntityID: rows: %w", err)
	}
	return events, nil
}

func scanAuditEvent(s scanner) (*domain.AuditEvent, error) {
	var e domain.AuditEvent
	var details *[]byte
	err := s.Scan(
		&e.ID, &e.StoreID, &e.UserID, &e.Action,
		&e.EntityType, &e.EntityID, &details, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if details != nil {
		e.Details = *details
	}
	return &e, nil
}
