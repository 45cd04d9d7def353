// internal/circulation/service.go
package circulation

import (
	"context"
	"errors"
	"time"

	"bureaudesk/internal/fees"
)

var (
	ErrLoanNotFound  = errors.New("no matching loan")
	ErrInvalidReturn = errors.New("invalid return request")
)

// Service defines the interface for the return flow.
type Service interface {
	// ProcessReturn closes the open loan for (membershipID, title, author),
	// releases the copy and, if the return is late, charges a fee. The fee
	// is nil when the loan was returned on time.
	ProcessReturn(ctx context.Context, membershipID, title, author string) (*fees.Fee, error)
}

// Ledger persists loan records.
type Ledger interface {
	CreateLoan(ctx context.Context, loan *Loan) error
	FindOpenLoan(ctx context.Context, membershipID, bookID string) (*Loan, error)
	CloseLoan(ctx context.Context, loanID string, returnedAt time.Time) error
	// ReopenLoan clears the return date; used to compensate a close when a
	// later step of the return flow fails.
	ReopenLoan(ctx context.Context, loanID string) error
}
