// internal/loaning/registry_test.go
package loaning

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func request(citizenID string, key QueueKey, at time.Time) ServiceRequest {
	return ServiceRequest{CitizenID: citizenID, Key: key, SubmittedAt: at}
}

func TestRegistryFIFOWithinKey(t *testing.T) {
	r := NewRegistry()
	key := QueueKey{Title: "Dune", Author: "Herbert"}
	base := time.Now()

	r.Enqueue(request("C1", key, base))
	r.Enqueue(request("C2", key, base.Add(time.Second)))
	r.Enqueue(request("C3", key, base.Add(2*time.Second)))

	for _, want := range []string{"C1", "C2", "C3"} {
		req, ok := r.DequeueNext(key)
		require.True(t, ok)
		assert.Equal(t, want, req.CitizenID)
	}

	_, ok := r.DequeueNext(key)
	assert.False(t, ok)
}

func TestRegistryKeysAreIndependent(t *testing.T) {
	r := NewRegistry()
	dune := QueueKey{Title: "Dune", Author: "Herbert"}
	emma := QueueKey{Title: "Emma", Author: "Austen"}
	base := time.Now()

	r.Enqueue(request("C1", dune, base))
	r.Enqueue(request("C2", emma, base.Add(time.Second)))
	r.Enqueue(request("C3", dune, base.Add(2*time.Second)))

	req, ok := r.DequeueNext(emma)
	require.True(t, ok)
	assert.Equal(t, "C2", req.CitizenID)

	req, ok = r.DequeueNext(dune)
	require.True(t, ok)
	assert.Equal(t, "C1", req.CitizenID)
	req, ok = r.DequeueNext(dune)
	require.True(t, ok)
	assert.Equal(t, "C3", req.CitizenID)
}

// Claim order equals submission order for any sequence of enqueues to the
// same key.
func TestRegistryFIFOProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := NewRegistry()
		key := QueueKey{Title: "Dune", Author: "Herbert"}
		n := rapid.IntRange(0, 100).Draw(t, "n")
		base := time.Now()

		submitted := make([]string, 0, n)
		for i := 0; i < n; i++ {
			id := rapid.StringMatching(`C[0-9]{1,4}`).Draw(t, "citizen")
			submitted = append(submitted, id)
			r.Enqueue(request(id, key, base.Add(time.Duration(i)*time.Millisecond)))
		}

		drained := make([]string, 0, n)
		for {
			req, ok := r.DequeueNext(key)
			if !ok {
				break
			}
			drained = append(drained, req.CitizenID)
		}

		if len(drained) != len(submitted) {
			t.Fatalf("drained %d requests, submitted %d", len(drained), len(submitted))
		}
		for i := range submitted {
			if drained[i] != submitted[i] {
				t.Fatalf("position %d: got %s, want %s", i, drained[i], submitted[i])
			}
		}
	})
}

func TestRegistryConcurrentDequeueDeliversAtMostOnce(t *testing.T) {
	r := NewRegistry()
	key := QueueKey{Title: "Dune", Author: "Herbert"}
	base := time.Now()

	const total = 200
	for i := 0; i < total; i++ {
		r.Enqueue(request(fmt.Sprintf("C%d", i), key, base.Add(time.Duration(i))))
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[string]int)
	claimed := 0

	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				req, ok := r.DequeueNext(key)
				if !ok {
					return
				}
				mu.Lock()
				seen[req.CitizenID]++
				claimed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, total, claimed)
	for id, count := range seen {
		assert.Equalf(t, 1, count, "request %s claimed %d times", id, count)
	}
	assert.Zero(t, r.Pending())
}

func TestRegistryWakeBroadcast(t *testing.T) {
	r := NewRegistry()
	wake := r.Wake()

	select {
	case <-wake:
		t.Fatal("wake channel closed before any enqueue")
	default:
	}

	r.Enqueue(request("C1", QueueKey{Title: "Dune", Author: "Herbert"}, time.Now()))

	select {
	case <-wake:
	case <-time.After(time.Second):
		t.Fatal("enqueue did not wake waiters")
	}
}

func TestRegistryDequeueAnyPicksLongestWaiting(t *testing.T) {
	r := NewRegistry()
	base := time.Now()

	r.Enqueue(request("C2", QueueKey{Title: "Emma", Author: "Austen"}, base.Add(time.Second)))
	r.Enqueue(request("C1", QueueKey{Title: "Dune", Author: "Herbert"}, base))

	req, ok := r.DequeueAny()
	require.True(t, ok)
	assert.Equal(t, "C1", req.CitizenID)
}
