package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// DivisionScale is the number of fractional digits kept by Money.Div. Quotients
// are not rounded to currency precision: 100 / 3 yields 33.33333333333333333333.
const DivisionScale = 20

// Parsed amounts are bounded so a short input such as "1e-50000000" cannot
// force arithmetic on millions of digits.
const (
	MaxIntegerDigits = 12
	maxMoneyInputLen = 64
)

// Money is an exact decimal amount. The zero value is 0.
type Money struct {
	d decimal.Decimal
}

var Zero = Money{}

func NewMoney(d decimal.Decimal) Money {
	return Money{d: d}
}

func MoneyFromInt(v int64) Money {
	return Money{d: decimal.NewFromInt(v)}
}

// ParseMoney rejects more than DivisionScale fractional digits and more than
// MaxIntegerDigits integer digits.
func ParseMoney(s string) (Money, error) {
	if len(s) > maxMoneyInputLen {
		return Money{}, fmt.Errorf("ParseMoney: input too long: %w", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("ParseMoney: %q: %w", s, ErrInvalidAmount)
	}
	if d.Exponent() < -DivisionScale {
		return Money{}, fmt.Errorf("ParseMoney: %q: more than %d fractional digits: %w", s, DivisionScale, ErrInvalidAmount)
	}
	if d.NumDigits()+int(d.Exponent()) > MaxIntegerDigits {
		return Money{}, fmt.Errorf("ParseMoney: %q: out of range: %w", s, ErrInvalidAmount)
	}
	return Money{d: d}, nil
}

// MustParseMoney panics on malformed input. Intended for constants and tests.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func SumMoney(values ...Money) Money {
	total := Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }
func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }
func (m Money) Mul(o Money) Money { return Money{d: m.d.Mul(o.d)} }

func (m Money) MulInt(n int64) Money {
	return Money{d: m.d.Mul(decimal.NewFromInt(n))}
}

// Div panics when o is zero, like decimal.Decimal.Div.
func (m Money) Div(o Money) Money {
	return Money{d: m.d.DivRound(o.d, DivisionScale)}
}

func (m Money) DivInt(n int64) Money {
	return m.Div(MoneyFromInt(n))
}

func (m Money) Cmp(o Money) int                 { return m.d.Cmp(o.d) }
func (m Money) Equal(o Money) bool              { return m.d.Equal(o.d) }
func (m Money) GreaterThan(o Money) bool        { return m.d.GreaterThan(o.d) }
func (m Money) GreaterThanOrEqual(o Money) bool { return m.d.GreaterThanOrEqual(o.d) }
func (m Money) LessThan(o Money) bool           { return m.d.LessThan(o.d) }
func (m Money) LessThanOrEqual(o Money) bool    { return m.d.LessThanOrEqual(o.d) }
func (m Money) IsPositive() bool                { return m.d.IsPositive() }
func (m Money) IsZero() bool                    { return m.d.IsZero() }
func (m Money) IsNegative() bool                { return m.d.IsNegative() }

func (m Money) Decimal() decimal.Decimal { return m.d }

// String renders the shortest exact form: "60.00" renders as "60".
func (m Money) String() string { return m.d.String() }

// StringFixed renders with exactly places fractional digits, rounding half away from zero.
func (m Money) StringFixed(places int32) string { return m.d.StringFixed(places) }

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.d.String())
}

// UnmarshalJSON accepts both "12.50" and 12.50.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := bytes.Trim(data, `"`)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return fmt.Errorf("Money.UnmarshalJSON: empty value: %w", ErrInvalidAmount)
	}
	parsed, err := ParseMoney(string(raw))
	if err != nil {
		return fmt.Errorf("Money.UnmarshalJSON: %w", err)
	}
	*m = parsed
	return nil
}

func (m *Money) Scan(value any) error {
	if err := m.d.Scan(value); err != nil {
		return fmt.Errorf("Money.Scan: %w", err)
	}
	return nil
}

func (m Money) Value() (driver.Value, error) {
	return m.d.Value()
}
