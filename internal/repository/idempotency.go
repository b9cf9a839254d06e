package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IdempotencyRecord is a cached response to a mutating request, keyed by the
// client's Idempotency-Key and the acting user. A StatusCode of 0 marks a key
// claimed by a request that is still running.
type IdempotencyRecord struct {
	Key          string
	ActorID      uuid.UUID
	RequestHash  string
	StatusCode   int
	ResponseBody []byte
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

func (r *IdempotencyRecord) Pending() bool {
	return r.StatusCode == 0
}

type IdempotencyRepository struct {
	db *sql.DB
}

func NewIdempotencyRepository(db *sql.DB) *IdempotencyRepository {
	return &IdempotencyRepository{db: db}
}

// Get returns nil, nil when no live record exists.
func (r *IdempotencyRepository) Get(ctx context.Context, key string, actorID uuid.UUID) (*IdempotencyRecord, error) {
	var rec IdempotencyRecord
	err := r.db.QueryRowContext(ctx,
		`SELECT idempotency_key, user_id, request_hash, status_code, response_body, created_at, expires_at
		FROM idempotency_cache
		WHERE idempotency_key = $1 AND user_id = $2 AND expires_at > now()`,
		key, actorID,
	).Scan(&rec.Key, &rec.ActorID, &rec.RequestHash, &rec.StatusCode, &rec.ResponseBody, &rec.CreatedAt, &rec.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &rec, nil
}

// Claim inserts a pending record for the key. It reports false when a live
// record already holds the key; an expired one is taken over.
func (r *IdempotencyRepository) Claim(ctx context.Context, rec *IdempotencyRecord) (bool, error) {
	var key string
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO idempotency_cache (idempotency_key, user_id, request_hash, status_code, response_body, created_at, expires_at)
		VALUES ($1, $2, $3, 0, '', $4, $5)
		ON CONFLICT (idempotency_key, user_id) DO UPDATE SET
			request_hash = EXCLUDED.request_hash,
			status_code = 0,
			response_body = '',
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at
		WHERE idempotency_cache.expires_at <= now()
		RETURNING idempotency_key`,
		rec.Key, rec.ActorID, rec.RequestHash, rec.CreatedAt, rec.ExpiresAt,
	).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("Claim: %w", err)
	}
	return true, nil
}

// Complete stores the response for a key claimed by the caller.
func (r *IdempotencyRepository) Complete(ctx context.Context, key string, actorID uuid.UUID, statusCode int, body []byte) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE idempotency_cache SET status_code = $3, response_body = $4
		WHERE idempotency_key = $1 AND user_id = $2 AND status_code = 0`,
		key, actorID, statusCode, body,
	)
	if err != nil {
		return fmt.Errorf("Complete: %w", err)
	}
	return nil
}

// Release drops a pending claim so the request can be retried.
func (r *IdempotencyRepository) Release(ctx context.Context, key string, actorID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM idempotency_cache WHERE idempotency_key = $1 AND user_id = $2 AND status_code = 0`,
		key, actorID,
	)
	if err != nil {
		return fmt.Errorf("Release: %w", err)
	}
	return nil
}

func (r *IdempotencyRepository) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM idempotency_cache WHERE expires_at < now()`,
	)
	if err != nil {
		return 0, fmt.Errorf("PurgeExpired: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("PurgeExpired: rows affected: %w", err)
	}
	return n, nil
}
