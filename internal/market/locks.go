package market

import (
	"slices"
	"sync"
)

// itemLocks serializes status changes per item id. Entries are dropped once
// no goroutine holds or waits for them.
type itemLocks struct {
	mu    sync.Mutex
	locks map[int64]*itemLock
}

type itemLock struct {
	mu   sync.Mutex
	refs int
}

func newItemLocks() *itemLocks {
	return &itemLocks{locks: make(map[int64]*itemLock)}
}

// lock acquires the locks for ids in ascending order and returns a function
// releasing them.
func (l *itemLocks) lock(ids ...int64) (unlock func()) {
	ids = slices.Clone(ids)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	held := make([]*itemLock, 0, len(ids))
	for _, id := range ids {
		l.mu.Lock()
		e := l.locks[id]
		if e == nil {
			e = &itemLock{}
			l.locks[id] = e
		}
		e.refs++
		l.mu.Unlock()

		e.mu.Lock()
		held = append(held, e)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()

			l.mu.Lock()
			held[i].refs--
			if held[i].refs == 0 {
				delete(l.locks, ids[i])
			}
			l.mu.Unlock()
		}
	}
}

func (l *itemLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
