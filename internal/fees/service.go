// internal/fees/service.go
package fees

import (
	"context"
	"errors"
)

var (
	ErrFeeNotFound       = errors.New("fee not found")
	ErrFeeAlreadyCharged = errors.New("fee already exists for this borrow")
	ErrInvalidFee        = errors.New("invalid fee")
)

// Service defines the interface for the fee engine.
type Service interface {
	// Charge creates the fee for an overdue loan. At most one fee ever
	// exists per borrow id.
	Charge(ctx context.Context, borrowID string, daysLate int) (*Fee, error)
	GetFeeByBorrowID(ctx context.Context, borrowID string) (*Fee, error)
	// MarkFeeAsPaid settles a fee. Marking an already-paid fee again is a
	// no-op success so retried client requests do not fail.
	MarkFeeAsPaid(ctx context.Context, feeID string) error

	// Administrative overrides, outside the normal lifecycle.
	AddFee(ctx context.Context, fee *Fee) error
	UpdateFeeAmount(ctx context.Context, feeID string, amount float64) error
	DeleteFee(ctx context.Context, feeID string) error
}

// Store persists fee records.
type Store interface {
	CreateFee(ctx context.Context, fee *Fee) error
	FindByBorrowID(ctx context.Context, borrowID string) (*Fee, error)
	SetPaid(ctx context.Context, feeID string) error
	SetAmount(ctx context.Context, feeID string, amount float64) error
	DeleteFee(ctx context.Context, feeID string) error
}
