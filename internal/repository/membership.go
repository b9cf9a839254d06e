package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/pos-ledger/internal/domain"
)

type MembershipRepository struct {
	db *sql.DB
}

func NewMembershipRepository(db *sql.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

func (r *MembershipRepository) GetRole(ctx context.Context, userID, storeID uuid.UUID) (domain.Role, error) {
	var role domain.Role
	err := r.db.QueryRowContext(ctx,
		`SELECT role FROM user_stores WHERE user_id = $1 AND store_id = $2`,
		userID, storeID,
	).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("GetRole: %w", domain.ErrNotFound)
		}
		return "", fmt.Errorf("GetRole: %w", err)
	}
	return role, nil
}

func (r *MembershipRepository) Upsert(ctx context.Context, m domain.StoreMembership) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_stores (user_id, store_id, role) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, store_id) DO UPDATE SET role = EXCLUDED.role`,
		m.UserID, m.StoreID, m.Role,
	)
	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	return nil
}
