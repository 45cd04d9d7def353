// internal/loaning/registry.go
package loaning

import "sync"

// Registry holds one unbounded FIFO queue per QueueKey. Dequeue operations
// are atomic with respect to concurrent counters: a request is handed to
// exactly one caller.
type Registry struct {
	mu     sync.Mutex
	queues map[QueueKey][]ServiceRequest
	wake   chan struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		queues: make(map[QueueKey][]ServiceRequest),
		wake:   make(chan struct{}),
	}
}

// Enqueue appends the request to its queue and wakes every idle counter.
// It never blocks and never rejects.
func (r *Registry) Enqueue(req ServiceRequest) {
	r.mu.Lock()
	r.queues[req.Key] = append(r.queues[req.Key], req)
	wake := r.wake
	r.wake = make(chan struct{})
	r.mu.Unlock()

	// Closing broadcasts to every counter blocked in Wake.
	close(wake)
}

// Wake returns a channel that is closed on the next enqueue. Callers must
// obtain it before their final empty check to avoid a lost wakeup.
func (r *Registry) Wake() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.wake
}

// DequeueNext removes and returns the oldest pending request for the key.
func (r *Registry) DequeueNext(key QueueKey) (ServiceRequest, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pop(key)
}

// DequeueAny removes the request whose head-of-queue wait is longest across
// all keys. Ordering is only guaranteed within a single key.
func (r *Registry) DequeueAny() (ServiceRequest, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var oldest QueueKey
	found := false
	for key, queue := range r.queues {
		if len(queue) == 0 {
			continue
		}
		if !found || queue[0].SubmittedAt.Before(r.queues[oldest][0].SubmittedAt) {
			oldest = key
			found = true
		}
	}
	if !found {
		return ServiceRequest{}, false
	}
	return r.pop(oldest)
}

func (r *Registry) pop(key QueueKey) (ServiceRequest, bool) {
	queue := r.queues[key]
	if len(queue) == 0 {
		return ServiceRequest{}, false
	}
	req := queue[0]
	if len(queue) == 1 {
		delete(r.queues, key)
	} else {
		r.queues[key] = queue[1:]
	}
	return req, true
}

// Pending reports the number of waiting requests across all keys.
func (r *Registry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, queue := range r.queues {
		n += len(queue)
	}
	return n
}
