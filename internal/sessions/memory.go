package sessions

import (
	"context"
	"sync"
	"time"

	"organica/internal/models"
)

type memoryEntry struct {
	cart      *models.CartState
	wishlist  *models.WishlistState
	expiresAt time.Time
}

// MemoryStore is an in-process Store. State is lost on restart.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates a MemoryStore whose sessions expire after ttl of inactivity.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

// entry returns the live entry for sessionID, creating it if needed.
// Callers must hold s.mu.
func (s *MemoryStore) entry(sessionID string) *memoryEntry {
	now := s.now()
	e, ok := s.entries[sessionID]
	if !ok || now.After(e.expiresAt) {
		e = &memoryEntry{
			cart:     models.NewCartState(),
			wishlist: models.NewWishlistState(),
		}
		s.entries[sessionID] = e
	}
	e.expiresAt = now.Add(s.ttl)
	return e
}

func (s *MemoryStore) LoadCart(_ context.Context, sessionID string) (*models.CartState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entry(sessionID).cart.Clone(), nil
}

func (s *MemoryStore) SaveCart(_ context.Context, sessionID string, cart *models.CartState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry(sessionID).cart = cart.Clone()
	return nil
}

func (s *MemoryStore) ClearCartIfVersion(_ context.Context, sessionID, token string, version int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entry(sessionID)
	if e.cart.Token != token || e.cart.Version != version {
		return false, nil
	}
	e.cart.Reset()
	return true, nil
}

func (s *MemoryStore) LoadWishlist(_ context.Context, sessionID string) (*models.WishlistState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.entry(sessionID).wishlist.ProductIDs
	clone := make([]string, len(ids))
	copy(clone, ids)
	return &models.WishlistState{ProductIDs: clone}, nil
}

func (s *MemoryStore) SaveWishlist(_ context.Context, sessionID string, wishlist *models.WishlistState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, len(wishlist.ProductIDs))
	copy(ids, wishlist.ProductIDs)
	s.entry(sessionID).wishlist = &models.WishlistState{ProductIDs: ids}
	return nil
}
