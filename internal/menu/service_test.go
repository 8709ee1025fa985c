package menu

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/biztalbox/avaya-food-ordering/internal/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockFetcher struct {
	calls   int
	fetchFn func() (*APIResponse, error)
}

func (m *mockFetcher) Fetch(_ context.Context) (*APIResponse, error) {
	m.calls++
	return m.fetchFn()
}

type mockProfiles struct {
	puts  []profile.Profile
	putFn func(p profile.Profile) error
}

func (m *mockProfiles) Put(_ context.Context, p profile.Profile) error {
	m.puts = append(m.puts, p)
	if m.putFn != nil {
		return m.putFn(p)
	}
	return nil
}

func newTestService(t *testing.T, f *mockFetcher, p ProfileWriter) (*Service, *time.Time) {
	t.Helper()
	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	s := NewService(f, p, 5*time.Minute, zap.NewNop())
	s.now = func() time.Time { return now }
	return s, &now
}

func TestServiceMenu_CachesUntilStale(t *testing.T) {
	fixture := loadFixture(t)
	f := &mockFetcher{fetchFn: func() (*APIResponse, error) { return fixture, nil }}
	s, now := newTestService(t, f, nil)

	m1, err := s.Menu(context.Background())
	require.NoError(t, err)
	m2, err := s.Menu(context.Background())
	require.NoError(t, err)
	assert.Same(t, m1, m2)
	assert.Equal(t, 1, f.calls)

	*now = now.Add(5 * time.Minute)
	_, err = s.Menu(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, f.calls, "stale menu is refetched")
}

func TestServiceMenu_FailureIsNotCached(t *testing.T) {
	fixture := loadFixture(t)
	fail := true
	f := &mockFetcher{fetchFn: func() (*APIResponse, error) {
		if fail {
			return nil, ErrMenuUnavailable
		}
		return fixture, nil
	}}
	s, _ := newTestService(t, f, nil)

	_, err := s.Menu(context.Background())
	assert.True(t, errors.Is(err, ErrMenuUnavailable))

	fail = false
	m, err := s.Menu(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ab12cd", m.Restaurant.ID)
	assert.Equal(t, 2, f.calls)
}

func TestServiceMenu_FailureDropsPreviousMenu(t *testing.T) {
	fixture := loadFixture(t)
	fail := false
	f := &mockFetcher{fetchFn: func() (*APIResponse, error) {
		if fail {
			return &APIResponse{Success: false}, nil
		}
		return fixture, nil
	}}
	s, _ := newTestService(t, f, nil)

	_, err := s.Menu(context.Background())
	require.NoError(t, err)

	s.Invalidate()
	fail = true
	_, err = s.Menu(context.Background())
	assert.True(t, errors.Is(err, ErrMenuUnavailable))
}

func TestServiceMenu_SavesProfile(t *testing.T) {
	fixture := loadFixture(t)
	f := &mockFetcher{fetchFn: func() (*APIResponse, error) { return fixture, nil }}
	p := &mockProfiles{}
	s, _ := newTestService(t, f, p)

	_, err := s.Menu(context.Background())
	require.NoError(t, err)

	require.Len(t, p.puts, 1)
	assert.Equal(t, profile.Profile{
		RestID:             "ab12cd",
		Name:               "Avaya Cafe",
		Address:            "Sukhdev Vihar, New Delhi",
		ContactInformation: "9876500000",
	}, p.puts[0])
}

func TestServiceMenu_ProfileErrorIsNotFatal(t *testing.T) {
	fixture := loadFixture(t)
	f := &mockFetcher{fetchFn: func() (*APIResponse, error) { return fixture, nil }}
	p := &mockProfiles{putFn: func(profile.Profile) error { return errors.New("db down") }}
	s, _ := newTestService(t, f, p)

	m, err := s.Menu(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, m)
}
