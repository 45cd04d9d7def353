// internal/circulation/implementation.go
package circulation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"bureaudesk/internal/catalog"
	"bureaudesk/internal/fees"
)

// service implements the Service interface.
type service struct {
	ledger  Ledger
	catalog catalog.Store
	fees    fees.Service
	now     func() time.Time
}

// Option configures the return service.
type Option func(*service)

// WithClock overrides the wall clock; tests use it to move returns past
// the due date.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// NewService creates a return-flow service.
func NewService(ledger Ledger, store catalog.Store, feeEngine fees.Service, opts ...Option) Service {
	s := &service{
		ledger:  ledger,
		catalog: store,
		fees:    feeEngine,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessReturn validates first so a bad request mutates nothing, then
// closes the loan, releases the copy and assesses lateness.
func (s *service) ProcessReturn(ctx context.Context, membershipID, title, author string) (*fees.Fee, error) {
	if membershipID == "" || title == "" || author == "" {
		return nil, ErrInvalidReturn
	}

	// A title may be held as several copies; the open loan identifies which
	// one is coming back.
	books, err := s.catalog.FindBooks(ctx, title, author)
	if err != nil {
		if errors.Is(err, catalog.ErrBookNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, fmt.Errorf("find books: %w", err)
	}

	var loan *Loan
	for _, book := range books {
		found, err := s.ledger.FindOpenLoan(ctx, membershipID, book.ID)
		if err == nil {
			loan = found
			break
		}
		if !errors.Is(err, ErrLoanNotFound) {
			return nil, err
		}
	}
	if loan == nil {
		return nil, ErrLoanNotFound
	}

	returnedAt := s.now()
	if err := s.ledger.CloseLoan(ctx, loan.ID, returnedAt); err != nil {
		return nil, fmt.Errorf("close loan: %w", err)
	}

	if err := s.catalog.SetBookAvailability(ctx, loan.BookID, true); err != nil {
		// Roll the close back so the ledger and the catalog stay in step.
		if reopenErr := s.ledger.ReopenLoan(ctx, loan.ID); reopenErr != nil {
			log.Printf("failed to reopen loan %s after release failure: %v", loan.ID, reopenErr)
		}
		return nil, fmt.Errorf("release book: %w", err)
	}

	daysLate, overdue := loan.Overdue(returnedAt)
	if !overdue {
		return nil, nil
	}

	fee, err := s.fees.Charge(ctx, loan.ID, daysLate)
	if err != nil {
		if errors.Is(err, fees.ErrFeeAlreadyCharged) {
			return s.fees.GetFeeByBorrowID(ctx, loan.ID)
		}
		return nil, fmt.Errorf("charge fee: %w", err)
	}
	return fee, nil
}
