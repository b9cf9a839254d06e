package domain

// Ledger is one consistent read of an order together with its active
// payments and its refunds.
type Ledger struct {
	Order    Order
	Payments []Payment
	Refunds  []Refund
}

func (l *Ledger) TotalPaid() Money {
	total := Zero
	for _, p := range l.Payments {
		if p.DeletedAt != nil {
			continue
		}
		total = total.Add(p.Amount)
	}
	return total
}

func (l *Ledger) TotalRefunded() Money {
	total := Zero
	for _, r := range l.Refunds {
		total = total.Add(r.Amount)
	}
	return total
}

func (l *Ledger) NetPaid() Money {
	return l.TotalPaid().Sub(l.TotalRefunded())
}

func (l *Ledger) RemainingBalance() Money {
	return l.Order.GrandTotal.Sub(l.NetPaid())
}

type PaymentSummary struct {
	GrandTotal       Money
	TotalPaid        Money
	TotalRefunded    Money
	NetPaid          Money
	RemainingBalance Money
	IsFullyPaid      bool
}

func (l *Ledger) Summary() PaymentSummary {
	paid := l.TotalPaid()
	refunded := l.TotalRefunded()
	net := paid.Sub(refunded)
	return PaymentSummary{
		GrandTotal:       l.Order.GrandTotal,
		TotalPaid:        paid,
		TotalRefunded:    refunded,
		NetPaid:          net,
		RemainingBalance: l.Order.GrandTotal.Sub(net),
		IsFullyPaid:      net.Equal(l.Order.GrandTotal),
	}
}
