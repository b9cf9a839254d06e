package domain

import "github.com/google/uuid"

type Role string

const (
	RoleOwner   Role = "OWNER"
	RoleAdmin   Role = "ADMIN"
	RoleChef    Role = "CHEF"
	RoleCashier Role = "CASHIER"
	RoleServer  Role = "SERVER"
)

type StoreMembership struct {
	UserID  uuid.UUID
	StoreID uuid.UUID
	Role    Role
}
