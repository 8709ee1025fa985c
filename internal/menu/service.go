package menu

import (
	"context"
	"sync"
	"time"

	"github.com/biztalbox/avaya-food-ordering/internal/profile"
	"go.uber.org/zap"
)

// Fetcher returns the raw vendor menu. Satisfied by *Client.
type Fetcher interface {
	Fetch(ctx context.Context) (*APIResponse, error)
}

// ProfileWriter receives the restaurant profile after each successful load.
// Satisfied by profile.Store.
type ProfileWriter interface {
	Put(ctx context.Context, p profile.Profile) error
}

// Service serves the normalized menu, refetching once the cached copy is
// older than staleAfter. Concurrent callers share one fetch.
type Service struct {
	fetcher    Fetcher
	profiles   ProfileWriter
	staleAfter time.Duration
	logger     *zap.Logger
	now        func() time.Time

	mu        sync.Mutex
	cached    *Menu
	fetchedAt time.Time
}

// NewService creates a Service. profiles may be nil.
func NewService(fetcher Fetcher, profiles ProfileWriter, staleAfter time.Duration, logger *zap.Logger) *Service {
	return &Service{
		fetcher:    fetcher,
		profiles:   profiles,
		staleAfter: staleAfter,
		logger:     logger,
		now:        time.Now,
	}
}

// Menu returns the current menu. A failed fetch is not cached and is never
// papered over with a stale copy.
func (s *Service) Menu(ctx context.Context) (*Menu, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && s.now().Sub(s.fetchedAt) < s.staleAfter {
		return s.cached, nil
	}

	resp, err := s.fetcher.Fetch(ctx)
	if err != nil {
		s.cached = nil
		return nil, err
	}
	m, err := Normalize(resp)
	if err != nil {
		s.cached = nil
		return nil, err
	}

	s.cached = m
	s.fetchedAt = s.now()
	s.logger.Info("menu loaded", zap.Stringer("menu", m))

	s.saveProfile(ctx, m.Restaurant)
	return m, nil
}

// Invalidate drops the cached menu so the next call refetches.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

func (s *Service) saveProfile(ctx context.Context, r Restaurant) {
	if s.profiles == nil || r.ID == "" {
		return
	}
	err := s.profiles.Put(ctx, profile.Profile{
		RestID:             r.ID,
		Name:               r.Name,
		Address:            r.Address,
		ContactInformation: r.Contact,
	})
	if err != nil {
		s.logger.Warn("cache restaurant profile", zap.String("restaurant_id", r.ID), zap.Error(err))
	}
}
