// Package session keeps the in-memory ordering sessions. Each session owns
// one cart and one checkout state machine and lives until it is deleted or
// left idle too long.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/biztalbox/avaya-food-ordering/internal/cart"
	"github.com/biztalbox/avaya-food-ordering/internal/checkout"
	"github.com/biztalbox/avaya-food-ordering/internal/menu"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("session not found")

type Session struct {
	ID          uuid.UUID
	TableNumber string
	Location    string
	Cart        *cart.Cart
	Checkout    *checkout.Checkout
	CreatedAt   time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(t time.Time) {
	s.mu.Lock()
	s.lastSeen = t
	s.mu.Unlock()
}

// Registry is safe for concurrent use.
type Registry struct {
	checkout *checkout.Service
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewRegistry(co *checkout.Service, logger *zap.Logger) *Registry {
	return &Registry{
		checkout: co,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Create starts a session with an empty cart priced by the given tables.
func (r *Registry) Create(tableNumber, location string, taxes []menu.TaxRule, discounts []menu.DiscountRule) *Session {
	now := r.now()
	c := cart.New(taxes, discounts)
	s := &Session{
		ID:          uuid.New(),
		TableNumber: tableNumber,
		Location:    location,
		Cart:        c,
		Checkout:    r.checkout.New(c, tableNumber),
		CreatedAt:   now,
		lastSeen:    now,
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	r.logger.Info("session created",
		zap.String("session_id", s.ID.String()),
		zap.String("table_no", tableNumber),
		zap.String("location", location))
	return s
}

// Get returns the session and marks it as seen.
func (r *Registry) Get(id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.touch(r.now())
	return s, nil
}

// Delete ends a session. It reports whether the session existed.
func (r *Registry) Delete(id uuid.UUID) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		s.Checkout.Close()
	}
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Reprice pushes new tax and discount tables into every open cart.
func (r *Registry) Reprice(taxes []menu.TaxRule, discounts []menu.DiscountRule) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		s.Cart.SetPricing(taxes, discounts)
	}
}

// Sweep deletes sessions not seen for longer than idle and returns their IDs.
func (r *Registry) Sweep(idle time.Duration) []uuid.UUID {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	ids := make([]uuid.UUID, 0, len(expired))
	for _, s := range expired {
		s.Checkout.Close()
		ids = append(ids, s.ID)
	}
	if len(ids) > 0 {
		r.logger.Info("sessions expired", zap.Int("count", len(ids)))
	}
	return ids
}

// RunSweeper calls Sweep every interval until ctx is done. onExpire, if set,
// is called for each removed session.
func (r *Registry) RunSweeper(ctx context.Context, interval, idle time.Duration, onExpire func(uuid.UUID)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, id := range r.Sweep(idle) {
				if onExpire != nil {
					onExpire(id)
				}
			}
		}
	}
}
