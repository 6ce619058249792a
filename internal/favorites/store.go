// Package favorites keeps the user's favorite movies as one JSON array under
// a single key of a kvstore.Store.
//
// Favorites are best-effort: a failed read yields an empty list and a failed
// write leaves the previous list in place. Failures are logged and returned
// so callers can surface or ignore them, but the list handed back is always
// safe to use.
//
// Image paths are rewritten to CDN URLs or placeholders on the way in and on
// the way out, so a stored entry never exposes a relative fragment.
package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"movie-discovery-client/internal/kvstore"
	"movie-discovery-client/internal/models"
	"movie-discovery-client/internal/tmdb"
)

// DefaultKey is the slot the list is persisted under.
const DefaultKey = "favorites"

// Store reads and writes the whole favorites list on every call. There is no
// in-process cache.
type Store struct {
	kv  kvstore.Store
	key string

	// mu serializes read-modify-write cycles so concurrent Add/Remove calls
	// in one process cannot overwrite each other.
	mu sync.Mutex
}

// NewStore creates a favorites store on kv. An empty key means DefaultKey.
func NewStore(kv kvstore.Store, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{kv: kv, key: key}
}

// List returns the persisted favorites in insertion order. An absent key is
// an empty list. On read or decode failure the list is empty and the error
// says why.
func (s *Store) List(ctx context.Context) ([]models.Movie, error) {
	list, err := s.read(ctx)
	if err != nil {
		slog.Warn("failed to read favorites", "key", s.key, "error", err)
		return []models.Movie{}, err
	}
	return list, nil
}

// Save replaces the persisted list. Entries repeating an earlier id are
// dropped.
func (s *Store) Save(ctx context.Context, list []models.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list = dedupe(list)
	tmdb.NormalizeMovies(list)
	return s.write(ctx, list)
}

// Add appends movie unless an entry with the same id exists. The existing
// entry is kept as is.
func (s *Store) Add(ctx context.Context, movie models.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.read(ctx)
	if err != nil {
		slog.Warn("failed to read favorites", "key", s.key, "error", err)
		return err
	}
	if indexOf(list, movie.ID) >= 0 {
		return nil
	}
	movie.PosterPath = tmdb.PosterURL(movie.PosterPath)
	movie.BackdropPath = tmdb.BackdropURL(movie.BackdropPath)
	return s.write(ctx, append(list, movie))
}

// Remove drops every entry with the given id. The list is written back even
// when nothing matched.
func (s *Store) Remove(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.read(ctx)
	if err != nil {
		slog.Warn("failed to read favorites", "key", s.key, "error", err)
		return err
	}
	kept := list[:0]
	for _, m := range list {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	return s.write(ctx, kept)
}

// IsFavorite reports whether a movie with id is in the list. It is false
// when the list cannot be read.
func (s *Store) IsFavorite(ctx context.Context, id int) (bool, error) {
	list, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	return indexOf(list, id) >= 0, nil
}

func (s *Store) read(ctx context.Context) ([]models.Movie, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return []models.Movie{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read favorites: %w", err)
	}

	var list []models.Movie
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("decode favorites: %w", err)
	}
	if list == nil {
		list = []models.Movie{}
	}
	tmdb.NormalizeMovies(list)
	return list, nil
}

func (s *Store) write(ctx context.Context, list []models.Movie) error {
	if list == nil {
		list = []models.Movie{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		err = fmt.Errorf("encode favorites: %w", err)
		slog.Error("failed to save favorites", "key", s.key, "error", err)
		return err
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		err = fmt.Errorf("write favorites: %w", err)
		slog.Error("failed to save favorites", "key", s.key, "error", err)
		return err
	}
	return nil
}

func indexOf(list []models.Movie, id int) int {
	for i, m := range list {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func dedupe(list []models.Movie) []models.Movie {
	seen := make(map[int]struct{}, len(list))
	out := make([]models.Movie, 0, len(list))
	for _, m := range list {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out
}
