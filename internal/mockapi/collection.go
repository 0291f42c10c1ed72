// ABOUTME: Generic in-memory record collection backing the mock API
// ABOUTME: Thread-safe list, page, get, put, and delete keyed by record id

package mockapi

import (
	"sync"

	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/models"
)

type collection[T any] struct {
	mu    sync.RWMutex
	items []T
	idOf  func(T) string
}

func newCollection[T any](idOf func(T) string, seed ...T) *collection[T] {
	return &collection[T]{items: append([]T(nil), seed...), idOf: idOf}
}

func (c *collection[T]) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// page returns the 1-based page of items that pass keep (nil keeps all)
func (c *collection[T]) page(page, size int, keep func(T) bool) models.Page[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	matched := make([]T, 0, len(c.items))
	for _, item := range c.items {
		if keep == nil || keep(item) {
			matched = append(matched, item)
		}
	}

	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	pages := (len(matched) + size - 1) / size

	start := (page - 1) * size
	if start > len(matched) {
		start = len(matched)
	}
	end := min(start+size, len(matched))

	return models.Page[T]{
		Data: matched[start:end],
		Meta: models.PageMeta{
			TotalNoOfPages: pages,
			TotalNoOfData:  len(matched),
			CurrentPage:    page,
			PageSize:       size,
		},
	}
}

func (c *collection[T]) get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, item := range c.items {
		if c.idOf(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// put replaces the record with the same id or appends it
func (c *collection[T]) put(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.idOf(item)
	for i := range c.items {
		if c.idOf(c.items[i]) == id {
			c.items[i] = item
			return
		}
	}
	c.items = append(c.items, item)
}

// update applies fn to the record with id under the write lock
func (c *collection[T]) update(id string, fn func(*T)) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.idOf(c.items[i]) == id {
			fn(&c.items[i])
			return c.items[i], true
		}
	}
	var zero T
	return zero, false
}

func (c *collection[T]) delete(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.idOf(c.items[i]) == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}
