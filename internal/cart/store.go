// ABOUTME: Client-side cart store holding pending order lines
// ABOUTME: Recomputes totals from the full item list after every mutation and persists write-through

package cart

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/models"
	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/storage"
)

// Item is one cart line. ID is generated locally and never sent to the API.
type Item struct {
	ID       string         `json:"id"`
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

// Subtotal returns price times quantity for the line
func (i Item) Subtotal() float64 {
	return i.Product.Price * float64(i.Quantity)
}

// State is a snapshot of the cart
type State struct {
	Items      []Item  `json:"items"`
	TotalItems int     `json:"totalItems"`
	TotalPrice float64 `json:"totalPrice"`
}

type record struct {
	State   State `json:"state"`
	Version int   `json:"version"`
}

const recordVersion = 0

// Store holds at most one line per product id
type Store struct {
	mu      sync.RWMutex
	state   State
	storage storage.Storage
	newID   func() string
	logger  *slog.Logger
}

// Option configures a Store
type Option func(*Store)

// WithIDGenerator overrides how line ids are generated
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithLogger sets the logger used for persistence warnings
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New creates a cart and rehydrates it once from the cart-storage record.
// A missing or unreadable record leaves the cart empty.
func New(backend storage.Storage, opts ...Option) *Store {
	if backend == nil {
		backend = storage.NewMemoryStore()
	}
	s := &Store{
		storage: backend,
		newID:   newLineID,
		logger:  slog.Default(),
		state:   State{Items: []Item{}},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load()
	return s
}

// AddItem adds quantity of product. An existing line for the same product
// has its quantity increased instead of being duplicated. Quantity is not
// checked against stock.
func (s *Store) AddItem(product models.Product, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]Item, 0, len(s.state.Items)+1)
	found := false
	for _, it := range s.state.Items {
		if it.Product.ID == product.ID {
			it.Quantity += quantity
			found = true
		}
		items = append(items, it)
	}
	if !found {
		items = append(items, Item{ID: s.newID(), Product: product, Quantity: quantity})
	}
	s.commit(items)
}

// RemoveItem drops the line for productID, if any
func (s *Store) RemoveItem(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(productID)
}

// UpdateQuantity sets the quantity of the line for productID. A quantity of
// zero or less removes the line.
func (s *Store) UpdateQuantity(productID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeLocked(productID)
		return
	}

	items := make([]Item, len(s.state.Items))
	copy(items, s.state.Items)
	for i := range items {
		if items[i].Product.ID == productID {
			items[i].Quantity = quantity
		}
	}
	s.commit(items)
}

// ClearCart empties the cart
func (s *Store) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit([]Item{})
}

// State returns a copy of the cart
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	st.Items = append([]Item{}, s.state.Items...)
	return st
}

// Items returns a copy of the cart lines in insertion order
func (s *Store) Items() []Item {
	return s.State().Items
}

func (s *Store) TotalItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.TotalItems
}

func (s *Store) TotalPrice() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.TotalPrice
}

// Quantity returns the quantity in the cart for productID, 0 if absent
func (s *Store) Quantity(productID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.state.Items {
		if it.Product.ID == productID {
			return it.Quantity
		}
	}
	return 0
}

// CheckoutItems projects the cart into the POST /invoices item list
func (s *Store) CheckoutItems() []models.InvoiceItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.InvoiceItem, 0, len(s.state.Items))
	for _, it := range s.state.Items {
		out = append(out, models.InvoiceItem{ProductID: it.Product.ID, Quantity: it.Quantity})
	}
	return out
}

// removeLocked must be called with s.mu held
func (s *Store) removeLocked(productID string) {
	items := make([]Item, 0, len(s.state.Items))
	for _, it := range s.state.Items {
		if it.Product.ID != productID {
			items = append(items, it)
		}
	}
	s.commit(items)
}

// commit installs items, recomputes totals from them, and persists.
// Must be called with s.mu held.
func (s *Store) commit(items []Item) {
	s.state = totals(items)
	s.save()
}

// totals sums the full item list; totals are never adjusted incrementally
func totals(items []Item) State {
	st := State{Items: items}
	for _, it := range items {
		st.TotalItems += it.Quantity
		st.TotalPrice += it.Subtotal()
	}
	return st
}

func newLineID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (s *Store) load() {
	data, err := s.storage.Load(context.Background(), storage.CartKey)
	if errors.Is(err, storage.ErrNotFound) {
		return
	}
	if err != nil {
		s.logger.Warn("Failed to read cart, starting empty", "error", err)
		return
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		s.logger.Warn("Discarding corrupt cart record", "error", err)
		return
	}
	items := rec.State.Items
	if items == nil {
		items = []Item{}
	}
	s.state = totals(items)
}

func (s *Store) save() {
	data, err := json.Marshal(record{State: s.state, Version: recordVersion})
	if err != nil {
		s.logger.Error("Failed to encode cart", "error", err)
		return
	}
	if err := s.storage.Save(context.Background(), storage.CartKey, data); err != nil {
		s.logger.Warn("Failed to persist cart", "error", err)
	}
}
