// internal/fees/postgres.go
package fees

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const uniqueViolation = "23505"

// pgStore implements Store on Postgres. The unique index on fees.borrow_id
// guarantees at most one fee per closed loan.
type pgStore struct {
	db     *sql.DB
	tracer trace.Tracer
}

func NewStore(db *sql.DB) Store {
	return &pgStore{
		db:     db,
		tracer: otel.Tracer("bureaudesk/fees"),
	}
}

func (s *pgStore) CreateFee(ctx context.Context, fee *Fee) error {
	ctx, span := s.tracer.Start(ctx, "fees.create",
		trace.WithAttributes(
			attribute.String("fee.id", fee.ID),
			attribute.String("borrow.id", fee.BorrowID),
		),
	)
	defer span.End()

	query := `
		INSERT INTO fees (id, borrow_id, amount, paid)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query, fee.ID, fee.BorrowID, fee.Amount, fee.Paid)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return ErrFeeAlreadyCharged
		}
		return fmt.Errorf("insert fee: %w", err)
	}
	return nil
}

func (s *pgStore) FindByBorrowID(ctx context.Context, borrowID string) (*Fee, error) {
	query := `
		SELECT id, borrow_id, amount, paid
		FROM fees
		WHERE borrow_id = $1
	`
	fee := &Fee{}
	err := s.db.QueryRowContext(ctx, query, borrowID).Scan(&fee.ID, &fee.BorrowID, &fee.Amount, &fee.Paid)
	if err == sql.ErrNoRows {
		return nil, ErrFeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query fee: %w", err)
	}
	return fee, nil
}

func (s *pgStore) SetPaid(ctx context.Context, feeID string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE fees SET paid = TRUE WHERE id = $1`, feeID)
	if err != nil {
		return fmt.Errorf("update fee: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrFeeNotFound
	}
	return nil
}

func (s *pgStore) SetAmount(ctx context.Context, feeID string, amount float64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE fees SET amount = $1 WHERE id = $2`, amount, feeID)
	if err != nil {
		return fmt.Errorf("update fee amount: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrFeeNotFound
	}
	return nil
}

func (s *pgStore) DeleteFee(ctx context.Context, feeID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM fees WHERE id = $1`, feeID)
	if err != nil {
		return fmt.Errorf("delete fee: %w", err)
	}
	return nil
}
