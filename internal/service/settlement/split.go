package settlement

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/josh-kwaku/pos-ledger/internal/domain"
	"github.com/josh-kwaku/pos-ledger/internal/logging"
)

const guestKeyPrefix = "guest"

type SplitRequest struct {
	ActorID   uuid.UUID
	OrderID   uuid.UUID
	SplitType domain.SplitType
	// GuestCount is read by EVEN.
	GuestCount int
	// ItemAssignments is read by BY_ITEM, keyed "guest1", "guest2", ...
	ItemAssignments map[string][]uuid.UUID
	// CustomAmounts is read by CUSTOM; guest i owes CustomAmounts[i-1].
	CustomAmounts []string
}

// CalculateSplit previews how the unpaid part of an order divides between
// guests. It never writes. alreadyPaid is the sum of active payments; refunds
// are not subtracted from it.
func (s *Service) CalculateSplit(ctx context.Context, req SplitRequest) (_ *domain.SplitResult, err error) {
	ctx, span := startSpan(ctx, "CalculateSplit", req.OrderID)
	defer func() { endSpan(span, err) }()

	if _, err := s.authorize(ctx, req.ActorID, req.OrderID, splitPreviewRoles); err != nil {
		return nil, fmt.Errorf("CalculateSplit: %w", err)
	}

	ledger, err := s.ledger.Snapshot(ctx, req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("CalculateSplit: %w", err)
	}

	var items []domain.OrderItem
	if req.SplitType == domain.SplitTypeByItem {
		items, err = s.orders.ListItems(ctx, req.OrderID)
		if err != nil {
			return nil, fmt.Errorf("CalculateSplit: %w", err)
		}
	}

	result, err := computeSplit(ledger, items, req)
	if err != nil {
		return nil, fmt.Errorf("CalculateSplit: %w", err)
	}

	logging.FromContext(ctx).Debug("split calculated",
		"order_id", req.OrderID,
		"split_type", req.SplitType,
		"guests", len(result.Splits),
		"remaining", result.Remaining.String(),
	)

	return result, nil
}

func computeSplit(ledger *domain.Ledger, items []domain.OrderItem, req SplitRequest) (*domain.SplitResult, error) {
	grandTotal := ledger.Order.GrandTotal
	alreadyPaid := ledger.TotalPaid()
	remaining := grandTotal.Sub(alreadyPaid)

	var splits []domain.GuestSplit
	var err error
	switch req.SplitType {
	case domain.SplitTypeEven:
		splits, err = splitEven(remaining, req.GuestCount)
	case domain.SplitTypeByItem:
		splits, err = splitByItem(items, req.ItemAssignments)
	case domain.SplitTypeCustom:
		splits, err = splitCustom(req.CustomAmounts)
	default:
		err = fmt.Errorf("%q: %w", req.SplitType, domain.ErrInvalidSplitType)
	}
	if err != nil {
		return nil, fmt.Errorf("computeSplit: %w", err)
	}

	total := domain.Zero
	for _, sp := range splits {
		total = total.Add(sp.Amount)
	}
	if total.GreaterThan(remaining) {
		return nil, fmt.Errorf("computeSplit: %w", &domain.SplitExceedsRemainingError{
			SplitTotal: total,
			Remaining:  remaining,
		})
	}

	return &domain.SplitResult{
		SplitType:   req.SplitType,
		Splits:      splits,
		Remaining:   remaining,
		AlreadyPaid: alreadyPaid,
		GrandTotal:  grandTotal,
	}, nil
}

// splitEven gives every guest the exact quotient, unrounded.
func splitEven(remaining domain.Money, guestCount int) ([]domain.GuestSplit, error) {
	if guestCount < 2 {
		return nil, fmt.Errorf("splitEven: %w", domain.ErrInvalidGuestCount)
	}
	share := remaining.DivInt(int64(guestCount))
	splits := make([]domain.GuestSplit, guestCount)
	for i := range splits {
		splits[i] = domain.GuestSplit{GuestNumber: i + 1, Amount: share}
	}
	return splits, nil
}

// splitByItem totals each guest's assigned lines. Items nobody claims, and ids
// that are not on the order, add nothing to any guest.
func splitByItem(items []domain.OrderItem, assignments map[string][]uuid.UUID) ([]domain.GuestSplit, error) {
	if len(assignments) == 0 {
		return nil, fmt.Errorf("splitByItem: %w", domain.ErrItemAssignmentsRequired)
	}

	lines := make(map[uuid.UUID]domain.Money, len(items))
	for _, it := range items {
		lines[it.ID] = it.LineTotal()
	}

	splits := make([]domain.GuestSplit, 0, len(assignments))
	for key, itemIDs := range assignments {
		guest, err := parseGuestKey(key)
		if err != nil {
			return nil, fmt.Errorf("splitByItem: %w", err)
		}
		amount := domain.Zero
		for _, id := range itemIDs {
			if line, ok := lines[id]; ok {
				amount = amount.Add(line)
			}
		}
		splits = append(splits, domain.GuestSplit{GuestNumber: guest, Amount: amount, ItemIDs: itemIDs})
	}

	sort.SliceStable(splits, func(i, j int) bool { return splits[i].GuestNumber < splits[j].GuestNumber })
	return splits, nil
}

func parseGuestKey(key string) (int, error) {
	digits, ok := strings.CutPrefix(key, guestKeyPrefix)
	if !ok {
		return 0, fmt.Errorf("%q: %w", key, domain.ErrInvalidGuestKey)
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%q: %w", key, domain.ErrInvalidGuestKey)
	}
	return n, nil
}

func splitCustom(amounts []string) ([]domain.GuestSplit, error) {
	if len(amounts) == 0 {
		return nil, fmt.Errorf("splitCustom: %w", domain.ErrCustomAmountsRequired)
	}
	splits := make([]domain.GuestSplit, len(amounts))
	for i, raw := range amounts {
		amount, err := domain.ParseMoney(raw)
		if err != nil {
			return nil, fmt.Errorf("splitCustom: guest %d: %q: %w", i+1, raw, domain.ErrInvalidCustomAmount)
		}
		splits[i] = domain.GuestSplit{GuestNumber: i + 1, Amount: amount}
	}
	return splits, nil
}
