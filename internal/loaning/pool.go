// internal/loaning/pool.go
package loaning

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"bureaudesk/internal/catalog"
	"bureaudesk/internal/circulation"
)

// Counter is one staffed service counter. Its state is flipped only by
// Pause/Resume and read by its own service loop.
type Counter struct {
	ID         int
	Department string

	mu    sync.Mutex
	state CounterState
	wake  chan struct{}
}

func (c *Counter) State() CounterState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Counter) setState(s CounterState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	// Non-blocking poke so an idle or paused loop re-checks promptly.
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Pool owns the counters of one department and drives their service loops
// against a shared Registry.
type Pool struct {
	registry *Registry
	store    catalog.Store
	ledger   circulation.Ledger
	report   func(Outcome)
	now      func() time.Time
	metrics  *poolMetrics

	mu       sync.Mutex
	counters map[int]*Counter
	nextID   int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithReporter sets the outcome hook. The default logs each outcome.
func WithReporter(report func(Outcome)) PoolOption {
	return func(p *Pool) { p.report = report }
}

// WithClock overrides the wall clock used for submission and borrow dates.
func WithClock(now func() time.Time) PoolOption {
	return func(p *Pool) { p.now = now }
}

// NewPool creates a pool with no counters; add them with AddCounter before
// calling Start.
func NewPool(registry *Registry, store catalog.Store, ledger circulation.Ledger, opts ...PoolOption) *Pool {
	p := &Pool{
		registry: registry,
		store:    store,
		ledger:   ledger,
		now:      time.Now,
		metrics:  newPoolMetrics(),
		counters: make(map[int]*Counter),
		nextID:   1,
	}
	p.report = func(o Outcome) {
		if o.Err != nil {
			log.Printf("counter %d could not serve citizen %s for %q by %s: %v",
				o.CounterID, o.Request.CitizenID, o.Request.Key.Title, o.Request.Key.Author, o.Err)
			return
		}
		log.Printf("counter %d created loan %s for citizen %s", o.CounterID, o.LoanID, o.Request.CitizenID)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddCounter registers a new ACTIVE counter and returns its id. Counters
// must be added before Start.
func (p *Pool) AddCounter(department string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.counters[id] = &Counter{
		ID:         id,
		Department: department,
		state:      CounterActive,
		wake:       make(chan struct{}, 1),
	}
	return id
}

// Start launches one service loop per counter.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.counters {
		p.wg.Add(1)
		go p.run(ctx, c)
	}
}

// Stop cancels all service loops and waits for in-flight claims to finish.
func (p *Pool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

// SubmitLoanRequest validates and enqueues a request. The request is served
// asynchronously; terminal failures surface through the outcome hook.
func (p *Pool) SubmitLoanRequest(_ context.Context, citizenID, title, author string) error {
	if citizenID == "" || title == "" || author == "" {
		return ErrInvalidRequest
	}
	p.registry.Enqueue(ServiceRequest{
		CitizenID:   citizenID,
		Key:         QueueKey{Title: title, Author: author},
		SubmittedAt: p.now(),
	})
	return nil
}

// PauseCounter suspends new claims. Pausing an already-paused counter is a
// no-op success. A claim in flight completes normally.
func (p *Pool) PauseCounter(id int) error {
	return p.setCounterState(id, CounterPaused)
}

// ResumeCounter returns a counter to ACTIVE; idempotent like PauseCounter.
func (p *Pool) ResumeCounter(id int) error {
	return p.setCounterState(id, CounterActive)
}

func (p *Pool) setCounterState(id int, state CounterState) error {
	p.mu.Lock()
	c, ok := p.counters[id]
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %d", ErrCounterNotFound, id)
	}
	c.setState(state)
	return nil
}

// CounterState reports the current state of a counter.
func (p *Pool) CounterState(id int) (CounterState, error) {
	p.mu.Lock()
	c, ok := p.counters[id]
	p.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrCounterNotFound, id)
	}
	return c.State(), nil
}

// run is one counter's service loop: claim, serve, idle on empty. The wake
// channel is taken before the dequeue attempt so an enqueue racing the
// empty check cannot be missed.
func (p *Pool) run(ctx context.Context, c *Counter) {
	defer p.wg.Done()
	for {
		if c.State() == CounterPaused {
			select {
			case <-ctx.Done():
				return
			case <-c.wake:
			}
			continue
		}

		wake := p.registry.Wake()
		req, ok := p.registry.DequeueAny()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-wake:
			case <-c.wake:
			}
			continue
		}

		p.serve(ctx, c, req)
	}
}

func (p *Pool) serve(ctx context.Context, c *Counter, req ServiceRequest) {
	outcome := Outcome{Request: req, CounterID: c.ID}
	outcome.LoanID, outcome.Err = p.grantLoan(ctx, req)
	p.metrics.record(ctx, outcome)
	p.report(outcome)
}

// grantLoan satisfies one claimed request: membership lookup, availability
// claim, loan creation. The availability claim is conditional, so two
// counters racing for the last copy cannot both win.
func (p *Pool) grantLoan(ctx context.Context, req ServiceRequest) (string, error) {
	m, err := p.store.FindMembership(ctx, req.CitizenID)
	if err != nil {
		return "", fmt.Errorf("citizen %s: %w", req.CitizenID, err)
	}

	book, err := p.store.FindAvailableBook(ctx, req.Key.Title, req.Key.Author)
	if err != nil {
		if errors.Is(err, catalog.ErrBookNotFound) {
			// Distinguish a missing title from one that is out on loan.
			if _, findErr := p.store.FindBook(ctx, req.Key.Title, req.Key.Author); findErr == nil {
				return "", catalog.ErrBookUnavailable
			}
		}
		return "", err
	}

	if err := p.store.SetBookAvailability(ctx, book.ID, false); err != nil {
		return "", err
	}

	loan := circulation.NewLoan(m.Number, book.ID, p.now())
	if err := p.ledger.CreateLoan(ctx, loan); err != nil {
		// Compensate the claim so the copy is not stranded.
		if relErr := p.store.SetBookAvailability(ctx, book.ID, true); relErr != nil {
			log.Printf("failed to release book %s after loan failure: %v", book.ID, relErr)
		}
		return "", fmt.Errorf("create loan: %w", err)
	}
	return loan.ID, nil
}
