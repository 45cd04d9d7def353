// internal/enrollment/implementation.go
package enrollment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"bureaudesk/internal/catalog"
)

// enrollmentMarker is written to the citizen's document once a membership
// has been issued.
const enrollmentMarker = "Membership ID"

var (
	ErrRateLimited    = errors.New("enrollment rate limit exceeded")
	ErrInvalidCitizen = errors.New("citizen id is required")
)

// service implements the Service interface.
type service struct {
	store   catalog.Store
	limiter *rate.Limiter
	now     func() time.Time
}

// Option configures the enrollment gate.
type Option func(*service)

// WithClock overrides the wall clock used for issue dates.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithLimiter replaces the default limiter; tests pass rate.NewLimiter(rate.Inf, 0).
func WithLimiter(l *rate.Limiter) Option {
	return func(s *service) { s.limiter = l }
}

// NewService creates an enrollment gate.
func NewService(store catalog.Store, opts ...Option) Service {
	s := &service{
		store:   store,
		limiter: rate.NewLimiter(rate.Every(time.Minute), 5), // 5 enrollments per minute
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enroll checks for an existing membership, then relies on the store's
// conditional create so two concurrent enrollments for the same citizen
// cannot both succeed.
func (s *service) Enroll(ctx context.Context, citizen catalog.Citizen) (bool, error) {
	if citizen.ID == "" {
		return false, ErrInvalidCitizen
	}
	if !s.limiter.Allow() {
		return false, ErrRateLimited
	}

	if _, err := s.store.FindMembership(ctx, citizen.ID); err == nil {
		return false, catalog.ErrAlreadyEnrolled
	} else if !errors.Is(err, catalog.ErrMembershipNotFound) {
		return false, fmt.Errorf("check membership: %w", err)
	}

	m := &catalog.Membership{
		Number:    "M-" + uuid.New().String(),
		CitizenID: citizen.ID,
		IssueDate: s.now(),
	}
	if err := s.store.CreateMembership(ctx, m); err != nil {
		if errors.Is(err, catalog.ErrAlreadyEnrolled) {
			return false, err
		}
		return false, fmt.Errorf("create membership: %w", err)
	}

	// The membership insert is the commit point. A failed document marker
	// does not revoke the issued membership.
	if err := s.store.SetCitizenDocument(ctx, citizen.ID, enrollmentMarker); err != nil {
		log.Printf("failed to mark document for citizen %s: %v", citizen.ID, err)
	}

	log.Printf("citizen %s enrolled with membership %s", citizen.ID, m.Number)
	return true, nil
}
