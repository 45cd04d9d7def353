// internal/circulation/postgres.go
package circulation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// pgLedger implements Ledger on Postgres.
type pgLedger struct {
	db     *sql.DB
	tracer trace.Tracer
}

func NewLedger(db *sql.DB) Ledger {
	return &pgLedger{
		db:     db,
		tracer: otel.Tracer("bureaudesk/circulation"),
	}
}

func (l *pgLedger) CreateLoan(ctx context.Context, loan *Loan) error {
	ctx, span := l.tracer.Start(ctx, "ledger.create_loan",
		trace.WithAttributes(
			attribute.String("loan.id", loan.ID),
			attribute.String("book.id", loan.BookID),
		),
	)
	defer span.End()

	query := `
		INSERT INTO borrows (id, membership_id, book_id, borrow_date, due_date)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := l.db.ExecContext(ctx, query, loan.ID, loan.MembershipID, loan.BookID, loan.BorrowDate, loan.DueDate)
	if err != nil {
		return fmt.Errorf("insert loan: %w", err)
	}
	return nil
}

func (l *pgLedger) FindOpenLoan(ctx context.Context, membershipID, bookID string) (*Loan, error) {
	query := `
		SELECT id, membership_id, book_id, borrow_date, due_date
		FROM borrows
		WHERE membership_id = $1 AND book_id = $2 AND return_date IS NULL
	`
	loan := &Loan{}
	err := l.db.QueryRowContext(ctx, query, membershipID, bookID).Scan(
		&loan.ID,
		&loan.MembershipID,
		&loan.BookID,
		&loan.BorrowDate,
		&loan.DueDate,
	)
	if err == sql.ErrNoRows {
		return nil, ErrLoanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query open loan: %w", err)
	}
	return loan, nil
}

func (l *pgLedger) CloseLoan(ctx context.Context, loanID string, returnedAt time.Time) error {
	ctx, span := l.tracer.Start(ctx, "ledger.close_loan",
		trace.WithAttributes(attribute.String("loan.id", loanID)),
	)
	defer span.End()

	query := `UPDATE borrows SET return_date = $1 WHERE id = $2 AND return_date IS NULL`
	res, err := l.db.ExecContext(ctx, query, returnedAt, loanID)
	if err != nil {
		return fmt.Errorf("close loan: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrLoanNotFound
	}
	return nil
}

func (l *pgLedger) ReopenLoan(ctx context.Context, loanID string) error {
	res, err := l.db.ExecContext(ctx, `UPDATE borrows SET return_date = NULL WHERE id = $1`, loanID)
	if err != nil {
		return fmt.Errorf("reopen loan: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrLoanNotFound
	}
	return nil
}
