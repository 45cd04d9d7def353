// internal/fees/memory.go
package fees

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory fee Store used by tests.
type MemoryStore struct {
	mu   sync.Mutex
	fees map[string]*Fee
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{fees: make(map[string]*Fee)}
}

func (s *MemoryStore) CreateFee(_ context.Context, fee *Fee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.fees {
		if existing.BorrowID == fee.BorrowID {
			return ErrFeeAlreadyCharged
		}
	}
	copy := *fee
	s.fees[fee.ID] = &copy
	return nil
}

func (s *MemoryStore) FindByBorrowID(_ context.Context, borrowID string) (*Fee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.fees {
		if f.BorrowID == borrowID {
			copy := *f
			return &copy, nil
		}
	}
	return nil, ErrFeeNotFound
}

func (s *MemoryStore) SetPaid(_ context.Context, feeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.fees[feeID]
	if !ok {
		return ErrFeeNotFound
	}
	f.Paid = true
	return nil
}

func (s *MemoryStore) SetAmount(_ context.Context, feeID string, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.fees[feeID]
	if !ok {
		return ErrFeeNotFound
	}
	f.Amount = amount
	return nil
}

func (s *MemoryStore) DeleteFee(_ context.Context, feeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fees, feeID)
	return nil
}
