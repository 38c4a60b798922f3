package catalog

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Repository defines the interface for the service catalog.
type Repository interface {
	// ListActive returns active services for a tenant.
	ListActive(ctx context.Context, tenantID uuid.UUID) ([]Service, error)
	// GetByIDs resolves the given service ids for a tenant, in the order
	// requested. Any id that is missing or inactive fails the whole call
	// with ErrServiceNotFound.
	GetByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Service, error)
}

// InMemoryRepository is a Repository backed by a map, used in tests and
// local development.
type InMemoryRepository struct {
	mu       sync.RWMutex
	services map[uuid.UUID]Service
}

// NewInMemoryRepository creates an empty in-memory catalog.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{services: make(map[uuid.UUID]Service)}
}

// Put stores or replaces a service.
func (r *InMemoryRepository) Put(s Service) Service {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.services[s.ID] = s
	return s
}

// ListActive returns active services for the tenant.
func (r *InMemoryRepository) ListActive(ctx context.Context, tenantID uuid.UUID) ([]Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Service
	for _, s := range r.services {
		if s.TenantID == tenantID && s.Active {
			out = append(out, s)
		}
	}
	return out, nil
}

// GetByIDs resolves services in request order.
func (r *InMemoryRepository) GetByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Service, 0, len(ids))
	for _, id := range ids {
		s, ok := r.services[id]
		if !ok || s.TenantID != tenantID || !s.Active {
			return nil, ErrServiceNotFound
		}
		out = append(out, s)
	}
	return out, nil
}
