package staff

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Repository defines the interface for the staff directory.
type Repository interface {
	// ListEligible returns active, booking-eligible members for a tenant.
	ListEligible(ctx context.Context, tenantID uuid.UUID) ([]*Member, error)
	// GetForTenant returns a member scoped to the tenant.
	GetForTenant(ctx context.Context, tenantID, memberID uuid.UUID) (*Member, error)
}

// InMemoryRepository is a Repository backed by a map, used in tests and
// local development.
type InMemoryRepository struct {
	mu      sync.RWMutex
	members map[uuid.UUID]*Member
}

// NewInMemoryRepository creates an empty in-memory directory.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{members: make(map[uuid.UUID]*Member)}
}

// Put stores or replaces a member.
func (r *InMemoryRepository) Put(m *Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.members[m.ID] = m
}

// ListEligible returns bookable members for the tenant.
func (r *InMemoryRepository) ListEligible(ctx context.Context, tenantID uuid.UUID) ([]*Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Member
	for _, m := range r.members {
		if m.TenantID == tenantID && m.Bookable() {
			out = append(out, m)
		}
	}
	return out, nil
}

// GetForTenant returns a member by id scoped to the tenant.
func (r *InMemoryRepository) GetForTenant(ctx context.Context, tenantID, memberID uuid.UUID) (*Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.members[memberID]
	if !ok || m.TenantID != tenantID {
		return nil, ErrMemberNotFound
	}
	return m, nil
}
