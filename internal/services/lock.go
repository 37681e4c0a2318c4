package services

import "time"

// TableLock is the mutual-exclusion lock scoped to the whole task table.
// It is table-wide rather than row-scoped: a second trigger on a different
// row blocks behind the first, trading throughput for simplicity.
type TableLock struct {
	ch chan struct{}
}

// NewTableLock creates an unlocked table lock
func NewTableLock() *TableLock {
	return &TableLock{ch: make(chan struct{}, 1)}
}

// TryLock waits up to timeout for the lock and reports whether it was
// acquired. A false return means the caller must abandon its operation.
func (l *TableLock) TryLock(timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case l.ch <- struct{}{}:
		return true
	case <-timer.C:
		return false
	}
}

// Unlock releases the lock. Calling Unlock without holding the lock blocks;
// callers pair it with a successful TryLock.
func (l *TableLock) Unlock() {
	<-l.ch
}
