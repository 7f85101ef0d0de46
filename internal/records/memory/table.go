package memory

import (
	"fmt"

	"fintrack/internal/core"
)

// table keeps rows ordered by id, which is also insertion order.
type table[T any] struct {
	rows  []T
	next  int64
	id    func(T) int64
	setID func(*T, int64)
}

func newTable[T any](id func(T) int64, setID func(*T, int64)) *table[T] {
	return &table[T]{next: 1, id: id, setID: setID}
}

func (t *table[T]) insert(v T) T {
	t.setID(&v, t.next)
	t.next++
	t.rows = append(t.rows, v)
	return v
}

// load keeps the id carried by v, used when seeding.
func (t *table[T]) load(v T) {
	if t.id(v) <= 0 {
		t.insert(v)
		return
	}
	t.rows = append(t.rows, v)
	if id := t.id(v); id >= t.next {
		t.next = id + 1
	}
}

func (t *table[T]) index(id int64) int {
	for i, r := range t.rows {
		if t.id(r) == id {
			return i
		}
	}
	return -1
}

func (t *table[T]) get(id int64) (T, error) {
	var zero T
	i := t.index(id)
	if i < 0 {
		return zero, fmt.Errorf("id %d: %w", id, core.ErrNotFound)
	}
	return t.rows[i], nil
}

func (t *table[T]) replace(v T) error {
	i := t.index(t.id(v))
	if i < 0 {
		return fmt.Errorf("id %d: %w", t.id(v), core.ErrNotFound)
	}
	t.rows[i] = v
	return nil
}

func (t *table[T]) remove(id int64) error {
	i := t.index(id)
	if i < 0 {
		return fmt.Errorf("id %d: %w", id, core.ErrNotFound)
	}
	t.rows = append(t.rows[:i], t.rows[i+1:]...)
	return nil
}

func (t *table[T]) filter(keep func(T) bool) []T {
	out := make([]T, 0, len(t.rows))
	for _, r := range t.rows {
		if keep == nil || keep(r) {
			out = append(out, r)
		}
	}
	return out
}
