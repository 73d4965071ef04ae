package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/bookrec/core"
)

// runKeyValueSuite 对任意 KeyValueStore 实现执行同一组行为检查。
func runKeyValueSuite(t *testing.T, s core.KeyValueStore) {
	ctx := context.Background()

	t.Run("get set delete", func(t *testing.T) {
		_, err := s.Get(ctx, "missing")
		assert.True(t, core.IsStoreNotFound(err))

		require.NoError(t, s.Set(ctx, "k", []byte("v")))
		v, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), v)

		require.NoError(t, s.Delete(ctx, "k"))
		_, err = s.Get(ctx, "k")
		assert.True(t, core.IsStoreNotFound(err))
	})

	t.Run("hash", func(t *testing.T) {
		require.NoError(t, s.HSet(ctx, "ratings:u1", "1", []byte("5")))
		require.NoError(t, s.HSet(ctx, "ratings:u1", "3", []byte("2")))
		require.NoError(t, s.HSet(ctx, "ratings:u2", "1", []byte("4")))

		v, err := s.HGet(ctx, "ratings:u1", "1")
		require.NoError(t, err)
		assert.Equal(t, []byte("5"), v)

		all, err := s.HGetAll(ctx, "ratings:u1")
		require.NoError(t, err)
		assert.Equal(t, map[string][]byte{"1": []byte("5"), "3": []byte("2")}, all)

		require.NoError(t, s.HDel(ctx, "ratings:u1", "1"))
		require.NoError(t, s.HDel(ctx, "ratings:u1", "nope"))
		_, err = s.HGet(ctx, "ratings:u1", "1")
		assert.True(t, core.IsStoreNotFound(err))

		empty, err := s.HGetAll(ctx, "ratings:nobody")
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("zset", func(t *testing.T) {
		require.NoError(t, s.ZAdd(ctx, "popular", 4.6, "1"))
		require.NoError(t, s.ZAdd(ctx, "popular", 4.8, "2"))
		require.NoError(t, s.ZAdd(ctx, "popular", 4.2, "3"))

		all, err := s.ZRange(ctx, "popular", 0, -1)
		require.NoError(t, err)
		assert.Equal(t, []string{"2", "1", "3"}, all)

		top, err := s.ZRange(ctx, "popular", 0, 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"2", "1"}, top)

		// 重复添加覆盖分数
		require.NoError(t, s.ZAdd(ctx, "popular", 5.0, "3"))
		top, err = s.ZRange(ctx, "popular", 0, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"3"}, top)
	})
}

func TestBadgerStore(t *testing.T) {
	s, err := NewBadgerStore(BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	runKeyValueSuite(t, s)
}

func TestBadgerStoreRequiresPath(t *testing.T) {
	_, err := NewBadgerStore(BadgerConfig{})
	assert.True(t, core.IsInvalidInput(err))
}

func TestBadgerStoreDeleteDropsHash(t *testing.T) {
	ctx := context.Background()
	s, err := NewBadgerStore(BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.HSet(ctx, "ratings:u1", "1", []byte("5")))
	require.NoError(t, s.Delete(ctx, "ratings:u1"))
	all, err := s.HGetAll(ctx, "ratings:u1")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := NewRedisStore(context.Background(), RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	runKeyValueSuite(t, s)
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisStore(context.Background(), RedisConfig{Addr: addr})
	require.Error(t, err)
	assert.True(t, core.IsUnavailable(err))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{})
	require.NoError(t, err)
	assert.Equal(t, "memory", s.Name())
	require.NoError(t, s.Close())

	s, err = Open(ctx, Config{Backend: BackendBadger, Badger: BadgerConfig{InMemory: true}})
	require.NoError(t, err)
	assert.Equal(t, "badger", s.Name())
	require.NoError(t, s.Close())

	_, err = Open(ctx, Config{Backend: BackendRedis})
	assert.True(t, core.IsInvalidInput(err))

	_, err = Open(ctx, Config{Backend: "etcd"})
	assert.True(t, core.IsNotSupported(err))
}
