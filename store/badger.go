package store

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pkg/logging"
)

// BadgerConfig 是 Badger 本地存储配置；InMemory 为 true 时忽略 Path。
type BadgerConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// key 前缀：普通 KV / Hash / ZSet 分开存放，sep 分隔 key 与字段。
const (
	badgerKVPrefix   = "kv:"
	badgerHashPrefix = "h:"
	badgerZSetPrefix = "z:"
	badgerSep        = "\x00"
)

// BadgerStore 是 Badger 实现的 KeyValueStore，单机部署时持久化评分数据。
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore 打开（或创建）Badger 数据库。
func NewBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "store: badger path is required")
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithLogger(badgerLogger{})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errUnavailable("badger "+cfg.Path), err)
	}
	return &BadgerStore{db: db}, nil
}

func (b *BadgerStore) Name() string { return "badger" }

func (b *BadgerStore) Get(_ context.Context, key string) ([]byte, error) {
	return b.get([]byte(badgerKVPrefix + key))
}

func (b *BadgerStore) get(k []byte) ([]byte, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(k)
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, core.ErrStoreNotFound
	}
	return out, err
}

func (b *BadgerStore) Set(_ context.Context, key string, value []byte, ttl ...int) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(newEntry([]byte(badgerKVPrefix+key), value, ttl))
	})
}

// Delete 删除 key 以及同名 Hash / ZSet。
func (b *BadgerStore) Delete(_ context.Context, key string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(badgerKVPrefix + key)); err != nil {
			return err
		}
		for _, prefix := range []string{badgerHashPrefix, badgerZSetPrefix} {
			if err := deletePrefix(txn, []byte(prefix+key+badgerSep)); err != nil {
				return err
			}
		}
		return nil
	})
}

func deletePrefix(txn *badger.Txn, prefix []byte) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	it.Close()
	for _, k := range keys {
		if err := txn.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

func newEntry(k, v []byte, ttl []int) *badger.Entry {
	e := badger.NewEntry(k, v)
	if d := ttlDuration(ttl); d > 0 {
		e = e.WithTTL(d)
	}
	return e
}

func (b *BadgerStore) Close() error {
	return b.db.Close()
}

func zsetKey(key, member string) []byte {
	return []byte(badgerZSetPrefix + key + badgerSep + member)
}

func (b *BadgerStore) ZAdd(_ context.Context, key string, score float64, member string) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(score))
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(zsetKey(key, member), buf[:])
	})
}

// ZRange 按分数降序返回，分数相同按成员字典序升序（与 MemoryStore 一致）。
func (b *BadgerStore) ZRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	scores, err := b.scan(badgerZSetPrefix + key + badgerSep)
	if err != nil {
		return nil, err
	}
	zset := make(map[string]float64, len(scores))
	members := make([]string, 0, len(scores))
	for member, raw := range scores {
		zset[member] = decodeScore(raw)
		members = append(members, member)
	}
	if len(members) == 0 {
		return nil, nil
	}
	sortByScore(members, zset)
	return sliceRange(members, start, stop), nil
}

func decodeScore(raw []byte) float64 {
	if len(raw) != 8 {
		return 0
	}
	return math.Float64frombits(binary.BigEndian.Uint64(raw))
}

func hashKey(key, field string) []byte {
	return []byte(badgerHashPrefix + key + badgerSep + field)
}

func (b *BadgerStore) HGet(_ context.Context, key, field string) ([]byte, error) {
	return b.get(hashKey(key, field))
}

func (b *BadgerStore) HSet(_ context.Context, key, field string, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(hashKey(key, field), value)
	})
}

func (b *BadgerStore) HDel(_ context.Context, key, field string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(hashKey(key, field))
	})
}

func (b *BadgerStore) HGetAll(_ context.Context, key string) (map[string][]byte, error) {
	return b.scan(badgerHashPrefix + key + badgerSep)
}

// scan 读取前缀下全部条目，返回去掉前缀后的子键 -> 值。
func (b *BadgerStore) scan(prefix string) (map[string][]byte, error) {
	p := []byte(prefix)
	out := make(map[string][]byte)
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			v, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			sub := bytes.TrimPrefix(item.KeyCopy(nil), p)
			out[string(sub)] = v
		}
		return nil
	})
	return out, err
}

var _ core.KeyValueStore = (*BadgerStore)(nil)

// badgerLogger 把 badger 的日志转到 zerolog，info 以下降为 debug。
type badgerLogger struct{}

func (badgerLogger) Errorf(f string, v ...any) {
	logging.Error().Str("component", "badger").Msg(strings.TrimSpace(fmt.Sprintf(f, v...)))
}

func (badgerLogger) Warningf(f string, v ...any) {
	logging.Warn().Str("component", "badger").Msg(strings.TrimSpace(fmt.Sprintf(f, v...)))
}

func (badgerLogger) Infof(f string, v ...any) {
	logging.Debug().Str("component", "badger").Msg(strings.TrimSpace(fmt.Sprintf(f, v...)))
}

func (badgerLogger) Debugf(f string, v ...any) {
	logging.Debug().Str("component", "badger").Msg(strings.TrimSpace(fmt.Sprintf(f, v...)))
}
