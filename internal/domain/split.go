package domain

import "github.com/google/uuid"

type SplitType string

const (
	SplitTypeEven   SplitType = "EVEN"
	SplitTypeByItem SplitType = "BY_ITEM"
	SplitTypeCustom SplitType = "CUSTOM"
)

func (t SplitType) IsValid() bool {
	switch t {
	case SplitTypeEven, SplitTypeByItem, SplitTypeCustom:
		return true
	}
	return false
}

type GuestSplit struct {
	GuestNumber int
	Amount      Money
	ItemIDs     []uuid.UUID
}

type SplitResult struct {
	SplitType   SplitType
	Splits      []GuestSplit
	Remaining   Money
	AlreadyPaid Money
	GrandTotal  Money
}
