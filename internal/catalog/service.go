// internal/catalog/service.go
package catalog

import (
	"context"
	"errors"
)

var (
	ErrBookNotFound       = errors.New("book not found")
	ErrBookUnavailable    = errors.New("book is not available")
	ErrCitizenNotFound    = errors.New("citizen not found")
	ErrMembershipNotFound = errors.New("membership not found")
	ErrAlreadyEnrolled    = errors.New("citizen is already enrolled")
)

// Store is the catalog gateway: the single source of truth for books,
// citizens and memberships. Both availability claims and membership
// creation are conditional writes, so concurrent callers cannot grant
// the same copy or enroll the same citizen twice.
type Store interface {
	AddBook(ctx context.Context, book *Book) error
	FindBook(ctx context.Context, title, author string) (*Book, error)
	// FindBooks returns every copy of (title, author); a title may be held
	// as several copies with distinct ids.
	FindBooks(ctx context.Context, title, author string) ([]*Book, error)
	FindAvailableBook(ctx context.Context, title, author string) (*Book, error)
	// SetBookAvailability flips the availability flag. Claiming a copy
	// (available=false) succeeds only if the copy is currently available
	// and returns ErrBookUnavailable otherwise.
	SetBookAvailability(ctx context.Context, bookID string, available bool) error
	UpdateBookField(ctx context.Context, bookID, field string, value any) error
	RemoveBook(ctx context.Context, bookID string) error

	AddCitizen(ctx context.Context, citizen *Citizen) error
	SetCitizenDocument(ctx context.Context, citizenID, document string) error
	RemoveCitizen(ctx context.Context, citizenID string) error

	FindMembership(ctx context.Context, citizenID string) (*Membership, error)
	// CreateMembership inserts a membership and returns ErrAlreadyEnrolled
	// if the citizen already holds one.
	CreateMembership(ctx context.Context, m *Membership) error
	RemoveMembership(ctx context.Context, number string) error
}
