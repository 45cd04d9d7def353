// internal/fees/implementation.go
package fees

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// service implements the Service interface on top of a Store.
type service struct {
	store  Store
	policy Policy
}

// NewService creates a fee engine. A nil policy falls back to DefaultPolicy.
func NewService(store Store, policy Policy) Service {
	if policy == nil {
		policy = DefaultPolicy
	}
	return &service{store: store, policy: policy}
}

func (s *service) Charge(ctx context.Context, borrowID string, daysLate int) (*Fee, error) {
	if borrowID == "" || daysLate < 1 {
		return nil, ErrInvalidFee
	}

	fee := &Fee{
		ID:       uuid.New().String(),
		BorrowID: borrowID,
		Amount:   s.policy.Amount(daysLate),
		Paid:     false,
	}

	if err := s.store.CreateFee(ctx, fee); err != nil {
		return nil, fmt.Errorf("create fee: %w", err)
	}
	return fee, nil
}

func (s *service) GetFeeByBorrowID(ctx context.Context, borrowID string) (*Fee, error) {
	return s.store.FindByBorrowID(ctx, borrowID)
}

func (s *service) MarkFeeAsPaid(ctx context.Context, feeID string) error {
	return s.store.SetPaid(ctx, feeID)
}

func (s *service) AddFee(ctx context.Context, fee *Fee) error {
	if fee.BorrowID == "" {
		return ErrInvalidFee
	}
	if fee.ID == "" {
		fee.ID = uuid.New().String()
	}
	return s.store.CreateFee(ctx, fee)
}

func (s *service) UpdateFeeAmount(ctx context.Context, feeID string, amount float64) error {
	if amount < 0 {
		return ErrInvalidFee
	}
	return s.store.SetAmount(ctx, feeID, amount)
}

func (s *service) DeleteFee(ctx context.Context, feeID string) error {
	return s.store.DeleteFee(ctx, feeID)
}
