// internal/fees/domain.go
package fees

// Fee is a monetary penalty tied to one closed, overdue loan.
type Fee struct {
	ID       string  `json:"id"`
	BorrowID string  `json:"borrow_id"`
	Amount   float64 `json:"amount"`
	Paid     bool    `json:"paid"`
}

// Policy computes the amount owed for a loan returned late.
type Policy interface {
	Amount(daysLate int) float64
}

// PerDayPolicy charges a base amount plus a per-day rate.
type PerDayPolicy struct {
	Base   float64
	PerDay float64
}

func (p PerDayPolicy) Amount(daysLate int) float64 {
	return p.Base + p.PerDay*float64(daysLate)
}

// DefaultPolicy is used when no policy is configured.
var DefaultPolicy Policy = PerDayPolicy{Base: 5, PerDay: 1}
