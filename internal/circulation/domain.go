// internal/circulation/domain.go
package circulation

import (
	"time"

	"github.com/google/uuid"
)

// LoanPeriodDays is the fixed loan period granted at the counter.
const LoanPeriodDays = 30

// Loan is an open borrowing record linking a membership to a book copy
// until it is returned.
type Loan struct {
	ID           string     `json:"id"`
	MembershipID string     `json:"membership_id"`
	BookID       string     `json:"book_id"`
	BorrowDate   time.Time  `json:"borrow_date"`
	DueDate      time.Time  `json:"due_date"`
	ReturnDate   *time.Time `json:"return_date,omitempty"`
}

// NewLoan creates an open loan starting at borrowDate.
func NewLoan(membershipID, bookID string, borrowDate time.Time) *Loan {
	return &Loan{
		ID:           uuid.New().String(),
		MembershipID: membershipID,
		BookID:       bookID,
		BorrowDate:   borrowDate,
		DueDate:      borrowDate.AddDate(0, 0, LoanPeriodDays),
	}
}

// Overdue reports whether a return at returnedAt is past the due date,
// and by how many days (rounded up). Returning on the due date itself
// is not overdue.
func (l *Loan) Overdue(returnedAt time.Time) (int, bool) {
	if !returnedAt.After(l.DueDate) {
		return 0, false
	}
	late := returnedAt.Sub(l.DueDate)
	days := int(late / (24 * time.Hour))
	if late%(24*time.Hour) != 0 {
		days++
	}
	return days, true
}
