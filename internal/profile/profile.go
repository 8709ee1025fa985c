// Package profile caches the restaurant identity that the order API expects
// in every submitted order. It is written once per menu load and read back
// at checkout without a round trip to the menu API.
package profile

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrNotFound is returned by a Store with no profile for the restaurant.
var ErrNotFound = errors.New("restaurant profile not found")

// Profile is serialized with the vendor's field names.
type Profile struct {
	RestID             string `json:"restID"`
	Name               string `json:"res_name"`
	Address            string `json:"address"`
	ContactInformation string `json:"contact_information"`
}

// Default is used when no profile has been cached yet.
var Default = Profile{
	RestID:             "xxxxxx",
	Name:               "Dynamite Lounge",
	Address:            "2nd Floor, Reliance Mall, Nr.Akshar Chowk",
	ContactInformation: "9427846660",
}

// Store persists restaurant profiles keyed by restaurant ID.
// An empty restaurantID asks for the most recently written profile.
type Store interface {
	Get(ctx context.Context, restaurantID string) (Profile, error)
	Put(ctx context.Context, p Profile) error
}

// MemoryStore is the in-process Store used when no database is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]Profile
	latest   string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]Profile)}
}

func (s *MemoryStore) Get(_ context.Context, restaurantID string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if restaurantID == "" {
		restaurantID = s.latest
	}
	p, ok := s.profiles[restaurantID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) Put(_ context.Context, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.RestID] = p
	s.latest = p.RestID
	return nil
}

// Resolver reads the cached profile for checkout.
type Resolver struct {
	store        Store
	restaurantID string
	logger       *zap.Logger
}

func NewResolver(store Store, restaurantID string, logger *zap.Logger) *Resolver {
	return &Resolver{store: store, restaurantID: restaurantID, logger: logger}
}

// Resolve never fails: a missing or unreadable profile falls back to Default.
func (r *Resolver) Resolve(ctx context.Context) Profile {
	p, err := r.store.Get(ctx, r.restaurantID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			r.logger.Warn("read restaurant profile", zap.String("restaurant_id", r.restaurantID), zap.Error(err))
		} else {
			r.logger.Warn("restaurant profile not cached, using default", zap.String("restaurant_id", r.restaurantID))
		}
		return Default
	}
	return p
}
