package files

import (
	"fmt"
	"sync"
	"time"
)

// LockWait bounds how long a writer waits for an element's path lock before
// failing closed. A timed-out operation is reported as failed with nothing
// partially applied.
var LockWait = 5 * time.Second

var pathLocks = struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}{locks: make(map[string]chan struct{})}

// lockPath acquires the exclusive lock for one element path, waiting at most
// LockWait. The returned release function must be called exactly once.
func lockPath(path string) (func(), error) {
	pathLocks.mu.Lock()
	ch, ok := pathLocks.locks[path]
	if !ok {
		ch = make(chan struct{}, 1)
		pathLocks.locks[path] = ch
	}
	pathLocks.mu.Unlock()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-time.After(LockWait):
		return nil, fmt.Errorf("timed out waiting for lock on %s", path)
	}
}
