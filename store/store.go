// Package store 提供 core.KeyValueStore 与 core.VectorDatabaseService 的实现。
// 接口定义在 core 包，这里只包含实现与按配置打开后端的工厂。
package store

import (
	"context"

	"github.com/rushteam/bookrec/core"
)

// 支持的后端。
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendBadger = "badger"
)

// Config 选择评分存储后端。
type Config struct {
	Backend string       `koanf:"backend" validate:"oneof=memory redis badger"`
	Redis   RedisConfig  `koanf:"redis"`
	Badger  BadgerConfig `koanf:"badger"`
}

// Open 按配置打开 KeyValueStore。
func Open(ctx context.Context, cfg Config) (core.KeyValueStore, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendRedis:
		if cfg.Redis.Addr == "" {
			return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "store: redis addr is required")
		}
		return NewRedisStore(ctx, cfg.Redis)
	case BackendBadger:
		return NewBadgerStore(cfg.Badger)
	default:
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeNotSupported, "store: unknown backend "+cfg.Backend)
	}
}
