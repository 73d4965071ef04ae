package rating

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/bookrec/catalog"
	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/store"
)

func newService(t *testing.T) *Service {
	t.Helper()
	kv := store.NewMemoryStore()
	t.Cleanup(func() { _ = kv.Close() })
	s := NewService(kv, catalog.Builtin())
	s.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return s
}

func TestAddGetDelete(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	r, err := s.Add(ctx, "alice", 3, 5)
	require.NoError(t, err)
	assert.Equal(t, Rating{UserID: "alice", BookID: 3, Rating: 5, CreatedAt: s.now()}, r)

	_, err = s.Add(ctx, "alice", 7, 2)
	require.NoError(t, err)
	_, err = s.Add(ctx, "alice", 3, 4) // 覆盖
	require.NoError(t, err)

	got, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, core.Ratings{"3": 4, "7": 2}, got)

	require.NoError(t, s.Delete(ctx, "alice", 7))
	require.NoError(t, s.Delete(ctx, "alice", 7))
	got, err = s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, core.Ratings{"3": 4}, got)

	empty, err := s.Get(ctx, "bob")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestAllUsers(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	for _, r := range []Rating{{UserID: "alice", BookID: 1, Rating: 5}, {UserID: "bob", BookID: 2, Rating: 3}, {UserID: "bob", BookID: 9, Rating: 4}} {
		_, err := s.Add(ctx, r.UserID, r.BookID, r.Rating)
		require.NoError(t, err)
	}
	require.NoError(t, s.Delete(ctx, "alice", 1))

	all, err = s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]core.Ratings{"bob": {"2": 3, "9": 4}}, all)
}

func TestAddValidation(t *testing.T) {
	s := newService(t)
	tests := []struct {
		name    string
		user    string
		book    int
		rating  int
		wantMsg string
	}{
		{"no user", "", 1, 5, "user_id is required"},
		{"user too long", strings.Repeat("u", 129), 1, 5, "user_id must be at most 128 characters"},
		{"zero rating", "u", 1, 0, "rating must be an integer between 1 and 5"},
		{"too high", "u", 1, 6, "rating must be an integer between 1 and 5"},
		{"bad book id", "u", 0, 3, "book_id must be a positive integer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Add(context.Background(), tt.user, tt.book, tt.rating)
			require.Error(t, err)
			assert.True(t, core.IsInvalidInput(err))
			assert.EqualError(t, err, tt.wantMsg)
		})
	}

	_, err := s.Add(context.Background(), "u", 404, 3)
	assert.True(t, core.IsNotFound(err))
}
