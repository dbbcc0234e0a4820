package transfer

import "sync"

// DefaultStripes is the lock pool size used when no explicit value is
// configured.
const DefaultStripes = 64

// LockTable is a fixed pool of mutexes striped by account ID. It
// serializes application-level logic that spans multiple storage
// operations on the same account; the pool is bounded so the table
// never grows with the account space. Two accounts that hash to the
// same stripe contend with each other, which is harmless for
// correctness.
type LockTable struct {
	stripes []sync.Mutex
}

// NewLockTable creates a lock table with n stripes. n <= 0 falls back
// to DefaultStripes.
func NewLockTable(n int) *LockTable {
	if n <= 0 {
		n = DefaultStripes
	}
	return &LockTable{stripes: make([]sync.Mutex, n)}
}

// stripeFor maps an account ID onto a stripe index. The index doubles
// as the total order used for multi-lock acquisition.
func (t *LockTable) stripeFor(accountID int64) int {
	idx := int(accountID % int64(len(t.stripes)))
	if idx < 0 {
		idx += len(t.stripes)
	}
	return idx
}

// LockPair acquires the stripes guarding both accounts, always in
// ascending stripe order regardless of transfer direction, so two
// concurrent transfers sharing an account can never wait on each other
// in a cycle. When both accounts share a stripe a single lock is taken.
// The returned release func unlocks in reverse order of acquisition and
// must be called on every exit path.
func (t *LockTable) LockPair(a, b int64) (release func()) {
	first, second := t.stripeFor(a), t.stripeFor(b)
	if first > second {
		first, second = second, first
	}
	t.stripes[first].Lock()
	if second == first {
		return t.stripes[first].Unlock
	}
	t.stripes[second].Lock()
	return func() {
		t.stripes[second].Unlock()
		t.stripes[first].Unlock()
	}
}
