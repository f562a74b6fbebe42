package cache

import (
	"context"
	"errors"
	"time"

	"courtmates_server/models"
)

// Item represents a cache item with its value and metadata
type Item[T any] struct {
	Value      T
	Expiration *time.Time
}

func (i Item[T]) expired(now time.Time) bool {
	return i.Expiration != nil && now.After(*i.Expiration)
}

// ProfileCache holds resolved player profiles keyed by user id. It is
// passed explicitly to whoever resolves profiles.
type ProfileCache interface {
	// GetMany returns the cached profiles among ids; missing ids are
	// simply absent from the result.
	GetMany(ctx context.Context, ids []string) (map[string]models.PlayerProfile, error)

	// Merge stores incoming profiles. On key collision incoming wins.
	Merge(ctx context.Context, incoming map[string]models.PlayerProfile) error
}

var (
	ErrInvalidKey = errors.New("invalid key")
)

// Merge returns existing extended by incoming; incoming wins per key.
// Neither argument is modified.
func Merge(existing, incoming map[string]models.PlayerProfile) map[string]models.PlayerProfile {
	out := make(map[string]models.PlayerProfile, len(existing)+len(incoming))
	for k, v := range existing {
		out[k] = v
	}
	for k, v := range incoming {
		out[k] = v
	}
	return out
}
