package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	AuditActionRefundCreated AuditAction = "REFUND_CREATED"
)

type AuditEvent struct {
	ID         uuid.UUID
	StoreID    uuid.UUID
	UserID     uuid.UUID
	Action     AuditAction
	EntityType string
	EntityID   uuid.UUID
	Details    json.RawMessage
	CreatedAt  time.Time
}
