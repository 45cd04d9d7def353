// internal/loaning/pool_test.go
package loaning

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bureaudesk/internal/catalog"
	"bureaudesk/internal/circulation"
)

type fixture struct {
	registry *Registry
	store    *catalog.MemoryStore
	ledger   *circulation.MemoryLedger
	pool     *Pool
	outcomes chan Outcome
}

func newFixture(t *testing.T, counters int, opts ...PoolOption) *fixture {
	t.Helper()
	f := &fixture{
		registry: NewRegistry(),
		store:    catalog.NewMemoryStore(),
		ledger:   circulation.NewMemoryLedger(),
		outcomes: make(chan Outcome, 64),
	}
	opts = append(opts, WithReporter(func(o Outcome) { f.outcomes <- o }))
	f.pool = NewPool(f.registry, f.store, f.ledger, opts...)
	for i := 0; i < counters; i++ {
		f.pool.AddCounter("book-loaning")
	}
	f.pool.Start(context.Background())
	t.Cleanup(f.pool.Stop)
	return f
}

func (f *fixture) addBook(t *testing.T, id, title, author string) {
	t.Helper()
	require.NoError(t, f.store.AddBook(context.Background(), &catalog.Book{
		ID: id, Title: title, Author: author, Available: true,
	}))
}

func (f *fixture) enroll(t *testing.T, citizenID string) string {
	t.Helper()
	number := "M-" + citizenID
	require.NoError(t, f.store.CreateMembership(context.Background(), &catalog.Membership{
		Number: number, CitizenID: citizenID, IssueDate: time.Now(),
	}))
	return number
}

func (f *fixture) waitOutcome(t *testing.T) Outcome {
	t.Helper()
	select {
	case o := <-f.outcomes:
		return o
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an outcome")
		return Outcome{}
	}
}

func TestCounterServesQueueInSubmissionOrder(t *testing.T) {
	f := newFixture(t, 1)
	for i := 1; i <= 3; i++ {
		f.enroll(t, fmt.Sprintf("C%d", i))
		f.addBook(t, fmt.Sprintf("b%d", i), "Dune", "Herbert")
	}

	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		require.NoError(t, f.pool.SubmitLoanRequest(ctx, fmt.Sprintf("C%d", i), "Dune", "Herbert"))
	}

	for i := 1; i <= 3; i++ {
		o := f.waitOutcome(t)
		require.NoError(t, o.Err)
		assert.Equal(t, fmt.Sprintf("C%d", i), o.Request.CitizenID)
	}
}

func TestLoanCreatedWithThirtyDayDueDate(t *testing.T) {
	borrowDate := time.Date(2024, 10, 24, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, 1, WithClock(func() time.Time { return borrowDate }))
	membership := f.enroll(t, "C1")
	f.addBook(t, "b1", "Dune", "Herbert")

	ctx := context.Background()
	require.NoError(t, f.pool.SubmitLoanRequest(ctx, "C1", "Dune", "Herbert"))

	o := f.waitOutcome(t)
	require.NoError(t, o.Err)
	require.NotEmpty(t, o.LoanID)

	loan, err := f.ledger.FindOpenLoan(ctx, membership, "b1")
	require.NoError(t, err)
	assert.Equal(t, borrowDate.AddDate(0, 0, 30), loan.DueDate)

	_, err = f.store.FindAvailableBook(ctx, "Dune", "Herbert")
	assert.ErrorIs(t, err, catalog.ErrBookNotFound)
}

func TestConcurrentCountersNeverDoubleLoanACopy(t *testing.T) {
	f := newFixture(t, 4)
	f.addBook(t, "b1", "The Great Gatsby", "Fitzgerald")

	ctx := context.Background()
	const requests = 10
	for i := 0; i < requests; i++ {
		citizen := fmt.Sprintf("C%d", i)
		f.enroll(t, citizen)
		require.NoError(t, f.pool.SubmitLoanRequest(ctx, citizen, "The Great Gatsby", "Fitzgerald"))
	}

	granted := 0
	for i := 0; i < requests; i++ {
		o := f.waitOutcome(t)
		if o.Err == nil {
			granted++
		} else {
			assert.ErrorIs(t, o.Err, catalog.ErrBookUnavailable)
		}
	}

	assert.Equal(t, 1, granted, "only one claim on the single copy may succeed")
	assert.Equal(t, 1, f.ledger.OpenLoans("b1"))
}

func TestPausedCounterStopsClaiming(t *testing.T) {
	f := newFixture(t, 1)
	f.enroll(t, "C1")
	f.addBook(t, "b1", "Dune", "Herbert")

	require.NoError(t, f.pool.PauseCounter(1))

	ctx := context.Background()
	require.NoError(t, f.pool.SubmitLoanRequest(ctx, "C1", "Dune", "Herbert"))

	select {
	case o := <-f.outcomes:
		t.Fatalf("paused counter served a request: %+v", o)
	case <-time.After(200 * time.Millisecond):
	}
	assert.Equal(t, 1, f.registry.Pending())

	require.NoError(t, f.pool.ResumeCounter(1))
	o := f.waitOutcome(t)
	require.NoError(t, o.Err)
	assert.Zero(t, f.registry.Pending())
}

func TestPauseResumeIdempotent(t *testing.T) {
	f := newFixture(t, 1)

	require.NoError(t, f.pool.PauseCounter(1))
	require.NoError(t, f.pool.PauseCounter(1))
	state, err := f.pool.CounterState(1)
	require.NoError(t, err)
	assert.Equal(t, CounterPaused, state)

	require.NoError(t, f.pool.ResumeCounter(1))
	require.NoError(t, f.pool.ResumeCounter(1))
	state, err = f.pool.CounterState(1)
	require.NoError(t, err)
	assert.Equal(t, CounterActive, state)
}

func TestUnknownCounter(t *testing.T) {
	f := newFixture(t, 1)
	assert.ErrorIs(t, f.pool.PauseCounter(42), ErrCounterNotFound)
	assert.ErrorIs(t, f.pool.ResumeCounter(42), ErrCounterNotFound)
}

func TestClaimInFlightSurvivesPause(t *testing.T) {
	enter := make(chan struct{})
	release := make(chan struct{})
	f := &fixture{
		registry: NewRegistry(),
		store:    catalog.NewMemoryStore(),
		ledger:   circulation.NewMemoryLedger(),
		outcomes: make(chan Outcome, 4),
	}
	gated := &gatedStore{Store: f.store, enter: enter, release: release}
	f.pool = NewPool(f.registry, gated, f.ledger, WithReporter(func(o Outcome) { f.outcomes <- o }))
	f.pool.AddCounter("book-loaning")
	f.pool.Start(context.Background())
	t.Cleanup(f.pool.Stop)

	f.enroll(t, "C1")
	f.addBook(t, "b1", "Dune", "Herbert")

	require.NoError(t, f.pool.SubmitLoanRequest(context.Background(), "C1", "Dune", "Herbert"))

	// The counter has claimed the request and is inside the gateway call.
	<-enter
	require.NoError(t, f.pool.PauseCounter(1))
	close(release)

	o := f.waitOutcome(t)
	require.NoError(t, o.Err, "a claim made before pausing completes normally")

	state, err := f.pool.CounterState(1)
	require.NoError(t, err)
	assert.Equal(t, CounterPaused, state)
}

func TestUnsatisfiableRequestsAreReported(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	// Enrolled citizen, book out on loan.
	f.enroll(t, "C1")
	f.addBook(t, "b1", "Dune", "Herbert")
	require.NoError(t, f.store.SetBookAvailability(ctx, "b1", false))
	require.NoError(t, f.pool.SubmitLoanRequest(ctx, "C1", "Dune", "Herbert"))
	o := f.waitOutcome(t)
	assert.ErrorIs(t, o.Err, catalog.ErrBookUnavailable)

	// Unknown title.
	require.NoError(t, f.pool.SubmitLoanRequest(ctx, "C1", "Emma", "Austen"))
	o = f.waitOutcome(t)
	assert.ErrorIs(t, o.Err, catalog.ErrBookNotFound)

	// Citizen without a membership.
	require.NoError(t, f.pool.SubmitLoanRequest(ctx, "C2", "Dune", "Herbert"))
	o = f.waitOutcome(t)
	assert.ErrorIs(t, o.Err, catalog.ErrMembershipNotFound)

	// Failed requests are terminal, not requeued.
	assert.Zero(t, f.registry.Pending())
}

func TestLedgerFailureReleasesClaimedCopy(t *testing.T) {
	f := &fixture{
		registry: NewRegistry(),
		store:    catalog.NewMemoryStore(),
		outcomes: make(chan Outcome, 4),
	}
	f.pool = NewPool(f.registry, f.store, failingLedger{},
		WithReporter(func(o Outcome) { f.outcomes <- o }))
	f.pool.AddCounter("book-loaning")
	f.pool.Start(context.Background())
	t.Cleanup(f.pool.Stop)

	f.enroll(t, "C1")
	f.addBook(t, "b1", "Dune", "Herbert")

	require.NoError(t, f.pool.SubmitLoanRequest(context.Background(), "C1", "Dune", "Herbert"))

	o := f.waitOutcome(t)
	require.Error(t, o.Err)
	assert.Empty(t, o.LoanID)

	// The claimed copy was released, so the next request can take it.
	book, err := f.store.FindAvailableBook(context.Background(), "Dune", "Herbert")
	require.NoError(t, err)
	assert.True(t, book.Available)
}

func TestSubmitLoanRequestValidation(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	assert.ErrorIs(t, f.pool.SubmitLoanRequest(ctx, "", "Dune", "Herbert"), ErrInvalidRequest)
	assert.ErrorIs(t, f.pool.SubmitLoanRequest(ctx, "C1", "", "Herbert"), ErrInvalidRequest)
	assert.ErrorIs(t, f.pool.SubmitLoanRequest(ctx, "C1", "Dune", ""), ErrInvalidRequest)
	assert.Zero(t, f.registry.Pending())
}

// failingLedger rejects every loan so tests can exercise the claim
// compensation.
type failingLedger struct{}

func (failingLedger) CreateLoan(context.Context, *circulation.Loan) error {
	return errors.New("ledger down")
}

func (failingLedger) FindOpenLoan(context.Context, string, string) (*circulation.Loan, error) {
	return nil, circulation.ErrLoanNotFound
}

func (failingLedger) CloseLoan(context.Context, string, time.Time) error {
	return circulation.ErrLoanNotFound
}

func (failingLedger) ReopenLoan(context.Context, string) error {
	return circulation.ErrLoanNotFound
}

// gatedStore blocks FindMembership until released so tests can pause a
// counter while it is serving a claim.
type gatedStore struct {
	catalog.Store
	enter   chan struct{}
	release chan struct{}
}

func (g *gatedStore) FindMembership(ctx context.Context, citizenID string) (*catalog.Membership, error) {
	g.enter <- struct{}{}
	<-g.release
	return g.Store.FindMembership(ctx, citizenID)
}
