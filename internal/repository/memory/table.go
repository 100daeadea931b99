// Package memory keeps collections in process memory. Each collection has its
// own mutex, so a read-modify-write on one collection never blocks another.
package memory

import "sync"

// table is an insertion-ordered map guarded by its own mutex.
type table[T any] struct {
	mu    sync.Mutex
	order []string
	rows  map[string]T
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]T)}
}

func (t *table[T]) get(id string) (T, bool) {
	row, ok := t.rows[id]
	return row, ok
}

func (t *table[T]) put(id string, row T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = row
}

func (t *table[T]) remove(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

func (t *table[T]) all() []T {
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.rows[id])
	}
	return out
}

// modify applies fn to a copy of the row while holding the lock and stores the
// copy only when fn succeeds. The caller gets its own copy of the result.
func (t *table[T]) modify(id string, notFound error, clone func(T) T, fn func(T) error) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	row, ok := t.get(id)
	if !ok {
		return zero, notFound
	}
	row = clone(row)
	if err := fn(row); err != nil {
		return zero, err
	}
	t.put(id, clone(row))
	return row, nil
}
