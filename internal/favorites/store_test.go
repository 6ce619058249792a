package favorites

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-discovery-client/internal/kvstore"
	"movie-discovery-client/internal/models"
)

// recordingKV counts writes and can be told to fail.
type recordingKV struct {
	*kvstore.Memory
	mu      sync.Mutex
	sets    int
	failGet error
	failSet error
}

func newRecordingKV() *recordingKV {
	return &recordingKV{Memory: kvstore.NewMemory()}
}

func (r *recordingKV) Get(ctx context.Context, key string) (string, error) {
	if r.failGet != nil {
		return "", r.failGet
	}
	return r.Memory.Get(ctx, key)
}

func (r *recordingKV) Set(ctx context.Context, key, value string) error {
	r.mu.Lock()
	r.sets++
	r.mu.Unlock()
	if r.failSet != nil {
		return r.failSet
	}
	return r.Memory.Set(ctx, key, value)
}

func movie(id int, title string) models.Movie {
	return models.Movie{
		ID:           id,
		Title:        title,
		PosterPath:   models.TMDBImageBaseW500 + "/p.jpg",
		BackdropPath: models.PlaceholderBackdrop,
		VoteAverage:  6.5,
	}
}

func TestListEmptyStore(t *testing.T) {
	s := NewStore(kvstore.NewMemory(), "")

	list, err := s.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestAddIsIdempotentFirstWriteWins(t *testing.T) {
	ctx := context.Background()
	s := NewStore(kvstore.NewMemory(), "")

	require.NoError(t, s.Add(ctx, movie(1, "Original")))
	require.NoError(t, s.Add(ctx, movie(1, "Updated")))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Original", list[0].Title)
}

func TestAddExistingDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	kv := newRecordingKV()
	s := NewStore(kv, "")

	require.NoError(t, s.Add(ctx, movie(1, "A")))
	require.NoError(t, s.Add(ctx, movie(1, "A")))
	assert.Equal(t, 1, kv.sets)
}

func TestRemoveAbsentStillWrites(t *testing.T) {
	ctx := context.Background()
	kv := newRecordingKV()
	s := NewStore(kv, "")

	require.NoError(t, s.Add(ctx, movie(1, "A")))
	require.NoError(t, s.Remove(ctx, 99))
	assert.Equal(t, 2, kv.sets)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Movie{movie(1, "A")}, list)
}

func TestIsFavoriteFollowsAddAndRemove(t *testing.T) {
	ctx := context.Background()
	s := NewStore(kvstore.NewMemory(), "")
	m := movie(42, "Answer")

	ok, err := s.IsFavorite(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Add(ctx, m))
	ok, err = s.IsFavorite(ctx, 42)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Remove(ctx, m.ID))
	ok, err = s.IsFavorite(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveThenListRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStore(kvstore.NewMemory(), "my-favs")
	want := []models.Movie{movie(3, "C"), movie(1, "A"), movie(2, "B")}
	want[1].GenreIDs = []int{18, 80}

	require.NoError(t, s.Save(ctx, want))

	got, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveDropsRepeatedIDs(t *testing.T) {
	ctx := context.Background()
	s := NewStore(kvstore.NewMemory(), "")

	require.NoError(t, s.Save(ctx, []models.Movie{movie(1, "first"), movie(2, "B"), movie(1, "second")}))

	got, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Title)
	assert.Equal(t, 2, got[1].ID)
}

func TestCorruptBlobReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := newRecordingKV()
	require.NoError(t, kv.Memory.Set(ctx, DefaultKey, "{not json"))
	s := NewStore(kv, "")

	list, err := s.List(ctx)
	require.Error(t, err)
	assert.Empty(t, list)

	ok, err := s.IsFavorite(ctx, 1)
	require.Error(t, err)
	assert.False(t, ok)

	require.Error(t, s.Add(ctx, movie(1, "A")))
	assert.Equal(t, 0, kv.sets, "a failed read must not overwrite the blob")
}

func TestNullBlobReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	require.NoError(t, kv.Set(ctx, DefaultKey, "null"))

	list, err := NewStore(kv, "").List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestReadFailureIsReported(t *testing.T) {
	kv := newRecordingKV()
	kv.failGet = errors.New("disk on fire")
	s := NewStore(kv, "")

	list, err := s.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
	assert.Empty(t, list)
}

func TestWriteFailureIsReported(t *testing.T) {
	ctx := context.Background()
	kv := newRecordingKV()
	s := NewStore(kv, "")
	require.NoError(t, s.Add(ctx, movie(1, "A")))

	kv.failSet = errors.New("quota exceeded")
	err := s.Add(ctx, movie(2, "B"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")

	kv.failSet = nil
	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Movie{movie(1, "A")}, list)
}

func TestConcurrentAddsAreNotLost(t *testing.T) {
	ctx := context.Background()
	s := NewStore(kvstore.NewMemory(), "")

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			assert.NoError(t, s.Add(ctx, movie(id, "M")))
		}(i)
	}
	wg.Wait()

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 50)
}

func TestWritesNormalizeImagePaths(t *testing.T) {
	ctx := context.Background()
	s := NewStore(kvstore.NewMemory(), "")

	require.NoError(t, s.Add(ctx, models.Movie{ID: 9, PosterPath: "/raw.jpg"}))
	require.NoError(t, s.Save(ctx, append(mustList(t, s), models.Movie{ID: 10, BackdropPath: "/wide.jpg"})))

	list := mustList(t, s)
	require.Len(t, list, 2)
	assert.Equal(t, models.TMDBImageBaseW500+"/raw.jpg", list[0].PosterPath)
	assert.Equal(t, models.PlaceholderBackdrop, list[0].BackdropPath)
	assert.Equal(t, models.PlaceholderPoster, list[1].PosterPath)
	assert.Equal(t, models.TMDBImageBaseW780+"/wide.jpg", list[1].BackdropPath)
}

func TestListNormalizesStoredRawPaths(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	require.NoError(t, kv.Set(ctx, DefaultKey, `[{"id":4,"poster_path":"/old.jpg","backdrop_path":""}]`))

	list := mustList(t, NewStore(kv, ""))
	require.Len(t, list, 1)
	assert.Equal(t, models.TMDBImageBaseW500+"/old.jpg", list[0].PosterPath)
	assert.Equal(t, models.PlaceholderBackdrop, list[0].BackdropPath)
}

func mustList(t *testing.T, s *Store) []models.Movie {
	t.Helper()
	list, err := s.List(context.Background())
	require.NoError(t, err)
	return list
}
