package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const getProfile = `
SELECT restaurant_id, name, address, contact_information
FROM restaurant_profiles
WHERE restaurant_id = $1`

const getLatestProfile = `
SELECT restaurant_id, name, address, contact_information
FROM restaurant_profiles
ORDER BY updated_at DESC
LIMIT 1`

const upsertProfile = `
INSERT INTO restaurant_profiles (restaurant_id, name, address, contact_information, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (restaurant_id) DO UPDATE
SET name = EXCLUDED.name,
    address = EXCLUDED.address,
    contact_information = EXCLUDED.contact_information,
    updated_at = now()`

// PGStore keeps profiles in PostgreSQL so they survive restarts and are
// shared between replicas.
type PGStore struct {
	db DBTX
}

func NewPGStore(db DBTX) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Get(ctx context.Context, restaurantID string) (Profile, error) {
	var row pgx.Row
	if restaurantID == "" {
		row = s.db.QueryRow(ctx, getLatestProfile)
	} else {
		row = s.db.QueryRow(ctx, getProfile, restaurantID)
	}

	var p Profile
	if err := row.Scan(&p.RestID, &p.Name, &p.Address, &p.ContactInformation); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, fmt.Errorf("get restaurant profile: %w", err)
	}
	return p, nil
}

func (s *PGStore) Put(ctx context.Context, p Profile) error {
	if p.RestID == "" {
		return errors.New("restaurant profile: restID is required")
	}
	if _, err := s.db.Exec(ctx, upsertProfile, p.RestID, p.Name, p.Address, p.ContactInformation); err != nil {
		return fmt.Errorf("upsert restaurant profile: %w", err)
	}
	return nil
}
