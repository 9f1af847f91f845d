// Package cart is the shopper's cart: one line per dessert, persisted in full
// after every change.
package cart

import (
	"encoding/json"
	"sync"

	"github.com/meethahouse/dessert-api/logger"
	"github.com/meethahouse/dessert-api/models"
	"go.uber.org/zap"
)

// StorageKey is where the serialized line list lives.
const StorageKey = "cart"

// Store is safe for concurrent use. Totals are derived on every read.
type Store struct {
	mu      sync.RWMutex
	lines   []models.CartLine
	storage Storage
	log     *zap.Logger
}

// NewStore rehydrates the cart from storage. Missing or unreadable data
// yields an empty cart; the problem is logged, never returned.
func NewStore(storage Storage, log *zap.Logger) *Store {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	s := &Store{storage: storage, log: logger.OrNop(log)}
	s.lines = s.rehydrate()
	return s
}

func (s *Store) rehydrate() []models.CartLine {
	data, found, err := s.storage.Load(StorageKey)
	if err != nil {
		s.log.Warn("Failed to load cart, starting empty", zap.Error(err))
		return nil
	}
	if !found {
		return nil
	}

	var lines []models.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		s.log.Warn("Discarding malformed cart", zap.Error(err))
		return nil
	}

	// Drop anything a valid mutation could not have produced.
	clean := lines[:0]
	seen := map[string]bool{}
	for _, l := range lines {
		if l.ID == "" || l.Quantity < 1 || seen[l.ID] {
			s.log.Warn("Dropping invalid cart line", zap.String("id", l.ID), zap.Int("quantity", l.Quantity))
			continue
		}
		seen[l.ID] = true
		clean = append(clean, l)
	}
	return clean
}

// persist must be called with mu held.
func (s *Store) persist() {
	lines := s.lines
	if lines == nil {
		lines = []models.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		s.log.Error("Failed to encode cart", zap.Error(err))
		return
	}
	if err := s.storage.Save(StorageKey, data); err != nil {
		s.log.Error("Failed to save cart", zap.Error(err))
	}
}

func (s *Store) indexOf(id string) int {
	for i := range s.lines {
		if s.lines[i].ID == id {
			return i
		}
	}
	return -1
}

// Add puts qty of dessert in the cart, merging with an existing line. A qty
// below 1 counts as 1.
func (s *Store) Add(dessert models.Dessert, qty int) {
	if qty < 1 {
		qty = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(dessert.ID); i >= 0 {
		s.lines[i].Quantity += qty
	} else {
		s.lines = append(s.lines, models.CartLine{
			ID:       dessert.ID,
			Name:     dessert.Name,
			Price:    dessert.Price,
			ImageURL: dessert.ImageURL,
			Quantity: qty,
		})
	}
	s.persist()
}

func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(id)
}

func (s *Store) remove(id string) {
	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	s.persist()
}

// SetQuantity overwrites a line's quantity; qty <= 0 removes the line.
// Unknown ids are ignored.
func (s *Store) SetQuantity(id string, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if qty <= 0 {
		s.remove(id)
		return
	}
	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.lines[i].Quantity = qty
	s.persist()
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	s.persist()
}

// Lines returns a copy in insertion order.
func (s *Store) Lines() []models.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.CartLine(nil), s.lines...)
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

func (s *Store) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, l := range s.lines {
		total += l.Subtotal()
	}
	return total
}

func (s *Store) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines) == 0
}
