// internal/catalog/implementation.go
package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// uniqueViolation is the Postgres error code raised when the unique index
// on memberships.citizen_id rejects a concurrent enrollment.
const uniqueViolation = "23505"

// store implements Store on Postgres.
type store struct {
	db     *sql.DB
	tracer trace.Tracer
}

// NewStore creates a Postgres-backed catalog store.
func NewStore(db *sql.DB) Store {
	return &store{
		db:     db,
		tracer: otel.Tracer("bureaudesk/catalog"),
	}
}

func (s *store) AddBook(ctx context.Context, book *Book) error {
	ctx, span := s.tracer.Start(ctx, "catalog.add_book",
		trace.WithAttributes(attribute.String("book.id", book.ID)),
	)
	defer span.End()

	query := `
		INSERT INTO books (id, title, author, available)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query, book.ID, book.Title, book.Author, book.Available)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

func (s *store) FindBook(ctx context.Context, title, author string) (*Book, error) {
	query := `
		SELECT id, title, author, available
		FROM books
		WHERE title = $1 AND author = $2
		LIMIT 1
	`
	return s.scanBook(ctx, query, title, author)
}

func (s *store) FindBooks(ctx context.Context, title, author string) ([]*Book, error) {
	query := `
		SELECT id, title, author, available
		FROM books
		WHERE title = $1 AND author = $2
	`
	rows, err := s.db.QueryContext(ctx, query, title, author)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	var books []*Book
	for rows.Next() {
		b := &Book{}
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Available); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	if len(books) == 0 {
		return nil, ErrBookNotFound
	}
	return books, nil
}

func (s *store) FindAvailableBook(ctx context.Context, title, author string) (*Book, error) {
	query := `
		SELECT id, title, author, available
		FROM books
		WHERE title = $1 AND author = $2 AND available = TRUE
		LIMIT 1
	`
	return s.scanBook(ctx, query, title, author)
}

func (s *store) scanBook(ctx context.Context, query, title, author string) (*Book, error) {
	book := &Book{}
	err := s.db.QueryRowContext(ctx, query, title, author).Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Available,
	)
	if err == sql.ErrNoRows {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query book: %w", err)
	}
	return book, nil
}

// SetBookAvailability claims or releases a copy. The claim is a single
// conditional update so two counters can never both take the last copy.
func (s *store) SetBookAvailability(ctx context.Context, bookID string, available bool) error {
	ctx, span := s.tracer.Start(ctx, "catalog.set_availability",
		trace.WithAttributes(
			attribute.String("book.id", bookID),
			attribute.Bool("book.available", available),
		),
	)
	defer span.End()

	query := `UPDATE books SET available = $1 WHERE id = $2`
	if !available {
		query += ` AND available = TRUE`
	}

	res, err := s.db.ExecContext(ctx, query, available, bookID)
	if err != nil {
		return fmt.Errorf("update availability: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		if !available {
			span.SetAttributes(attribute.Bool("conflict.detected", true))
			return ErrBookUnavailable
		}
		return ErrBookNotFound
	}
	return nil
}

func (s *store) UpdateBookField(ctx context.Context, bookID, field string, value any) error {
	return s.updateField(ctx, "books", allowedBookFields, bookID, field, value)
}

func (s *store) RemoveBook(ctx context.Context, bookID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, bookID)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return nil
}

func (s *store) AddCitizen(ctx context.Context, citizen *Citizen) error {
	query := `
		INSERT INTO citizens (id, name, document)
		VALUES ($1, $2, $3)
	`
	_, err := s.db.ExecContext(ctx, query, citizen.ID, citizen.Name, citizen.Document)
	if err != nil {
		return fmt.Errorf("insert citizen: %w", err)
	}
	return nil
}

func (s *store) SetCitizenDocument(ctx context.Context, citizenID, document string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE citizens SET document = $1 WHERE id = $2`, document, citizenID)
	if err != nil {
		return fmt.Errorf("update citizen document: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrCitizenNotFound
	}
	return nil
}

func (s *store) RemoveCitizen(ctx context.Context, citizenID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM citizens WHERE id = $1`, citizenID)
	if err != nil {
		return fmt.Errorf("delete citizen: %w", err)
	}
	return nil
}

func (s *store) FindMembership(ctx context.Context, citizenID string) (*Membership, error) {
	query := `
		SELECT number, citizen_id, issue_date
		FROM memberships
		WHERE citizen_id = $1
	`
	m := &Membership{}
	err := s.db.QueryRowContext(ctx, query, citizenID).Scan(&m.Number, &m.CitizenID, &m.IssueDate)
	if err == sql.ErrNoRows {
		return nil, ErrMembershipNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query membership: %w", err)
	}
	return m, nil
}

// CreateMembership relies on the unique index on citizen_id: the insert
// itself is the enrollment check, so concurrent enrollments cannot both
// succeed.
func (s *store) CreateMembership(ctx context.Context, m *Membership) error {
	ctx, span := s.tracer.Start(ctx, "catalog.create_membership",
		trace.WithAttributes(attribute.String("citizen.id", m.CitizenID)),
	)
	defer span.End()

	query := `
		INSERT INTO memberships (number, citizen_id, issue_date)
		VALUES ($1, $2, $3)
	`
	_, err := s.db.ExecContext(ctx, query, m.Number, m.CitizenID, m.IssueDate)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			span.SetAttributes(attribute.Bool("conflict.detected", true))
			return ErrAlreadyEnrolled
		}
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

func (s *store) RemoveMembership(ctx context.Context, number string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM memberships WHERE number = $1`, number)
	if err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}
	return nil
}

var allowedBookFields = map[string]string{
	"title":     "title",
	"author":    "author",
	"available": "available",
}

// updateField updates one whitelisted column. Field names come from admin
// requests, so they are mapped through a whitelist rather than interpolated.
func (s *store) updateField(ctx context.Context, table string, allowed map[string]string, id, field string, value any) error {
	column, ok := allowed[field]
	if !ok {
		return fmt.Errorf("unknown %s field %q", table, field)
	}

	query := fmt.Sprintf(`UPDATE %s SET %s = $1 WHERE id = $2`, table, column)
	res, err := s.db.ExecContext(ctx, query, value, id)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrBookNotFound
	}
	return nil
}
