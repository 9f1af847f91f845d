package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/meethahouse/dessert-api/models"
)

// MemoryStore is a process-local Store used for local development
// (DB_DRIVER=memory) and tests. Nothing survives a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	desserts []models.Dessert
	orders   map[string]models.Order
	refs     map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders: map[string]models.Order{},
		refs:   map[string]string{},
	}
}

func (s *MemoryStore) ListDesserts(context.Context) ([]models.Dessert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Dessert{}, s.desserts...), nil
}

func (s *MemoryStore) GetDessert(_ context.Context, id string) (*models.Dessert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.desserts {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateDessert(_ context.Context, dessert *models.Dessert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.desserts = append(s.desserts, *dessert)
	return nil
}

func (s *MemoryStore) UpdateDessertImage(_ context.Context, id, imageURL string) (*models.Dessert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.desserts {
		if s.desserts[i].ID == id {
			s.desserts[i].ImageURL = imageURL
			d := s.desserts[i]
			return &d, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ReplaceDesserts(_ context.Context, desserts []models.Dessert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.desserts = append([]models.Dessert{}, desserts...)
	return nil
}

func (s *MemoryStore) CreateOrder(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.refs[order.OrderID]; taken {
		return ErrDuplicateOrderRef
	}
	s.orders[order.ID] = *order
	s.refs[order.OrderID] = order.ID
	return nil
}

func (s *MemoryStore) ListOrders(context.Context) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	orders := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		orders = append(orders, o)
	}
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].OrderID > orders[j].OrderID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (s *MemoryStore) GetOrder(_ context.Context, id string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (s *MemoryStore) UpdateOrderStatus(_ context.Context, id string, update models.UpdateOrderRequest) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	if update.TransactionStatus != nil {
		o.TransactionStatus = *update.TransactionStatus
	}
	if update.ServingStatus != nil {
		o.ServingStatus = *update.ServingStatus
	}
	o.UpdatedAt = time.Now().UTC()
	s.orders[id] = o
	return &o, nil
}

func (s *MemoryStore) Close(context.Context) error {
	return nil
}
