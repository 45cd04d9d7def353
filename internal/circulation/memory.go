// internal/circulation/memory.go
package circulation

import (
	"context"
	"sync"
	"time"
)

// MemoryLedger is an in-memory Ledger used by tests.
type MemoryLedger struct {
	mu    sync.Mutex
	loans map[string]*Loan
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{loans: make(map[string]*Loan)}
}

func (l *MemoryLedger) CreateLoan(_ context.Context, loan *Loan) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	copy := *loan
	l.loans[loan.ID] = &copy
	return nil
}

func (l *MemoryLedger) FindOpenLoan(_ context.Context, membershipID, bookID string) (*Loan, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, loan := range l.loans {
		if loan.MembershipID == membershipID && loan.BookID == bookID && loan.ReturnDate == nil {
			copy := *loan
			return &copy, nil
		}
	}
	return nil, ErrLoanNotFound
}

func (l *MemoryLedger) CloseLoan(_ context.Context, loanID string, returnedAt time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	loan, ok := l.loans[loanID]
	if !ok || loan.ReturnDate != nil {
		return ErrLoanNotFound
	}
	t := returnedAt
	loan.ReturnDate = &t
	return nil
}

func (l *MemoryLedger) ReopenLoan(_ context.Context, loanID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	loan, ok := l.loans[loanID]
	if !ok {
		return ErrLoanNotFound
	}
	loan.ReturnDate = nil
	return nil
}

// OpenLoans reports how many loans are currently open for a book; the
// concurrency tests use it to assert single-claim behavior.
func (l *MemoryLedger) OpenLoans(bookID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, loan := range l.loans {
		if loan.BookID == bookID && loan.ReturnDate == nil {
			n++
		}
	}
	return n
}
