// Package conf 加载 bookrec 的服务配置。
//
// 优先级：环境变量 BOOKREC_* > YAML 配置文件 > 内置默认值。
//
//	BOOKREC_SERVER_ADDR=:8080        -> server.addr
//	BOOKREC_STORE_REDIS_ADDR=...     -> store.redis.addr
//	BOOKREC_SERVER_CORS_ORIGINS=a,b  -> server.cors_origins（逗号分隔）
package conf

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/rushteam/bookrec/pkg/logging"
	"github.com/rushteam/bookrec/store"
)

// EnvPrefix 是环境变量前缀。
const EnvPrefix = "BOOKREC_"

// ConfigPathEnvVar 指定配置文件路径。
const ConfigPathEnvVar = EnvPrefix + "CONFIG"

// DefaultConfigPaths 未显式指定时依次查找的配置文件。
var DefaultConfigPaths = []string{"bookrec.yaml", "bookrec.yml", "/etc/bookrec/bookrec.yaml"}

// Config 是完整配置。
type Config struct {
	Log       logging.Config `koanf:"log"`
	Server    Server         `koanf:"server"`
	Store     store.Config   `koanf:"store"`
	Catalog   Catalog        `koanf:"catalog"`
	Recommend Recommend      `koanf:"recommend"`
	Client    Client         `koanf:"client"`
}

// Server 是 HTTP 服务配置。
type Server struct {
	Addr            string        `koanf:"addr" validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`
	CORSOrigins     []string      `koanf:"cors_origins"`

	// RateLimitRequests 为 0 时不限流
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gte=0"`
}

// Catalog 为空 Path 时使用内置目录。
type Catalog struct {
	Path string `koanf:"path"`
}

type Recommend struct {
	PipelineDir   string `koanf:"pipeline_dir"`
	DefaultMethod string `koanf:"default_method" validate:"omitempty,oneof=heuristic collaborative content hybrid knn popular weighted svd"`
}

// Client 是远程 API 客户端配置。
type Client struct {
	BaseURL string        `koanf:"base_url" validate:"required,url"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
	Token   string        `koanf:"token"`
	Retries uint          `koanf:"retries" validate:"lte=10"`
}

// Default 返回内置默认配置。
func Default() *Config {
	return &Config{
		Log: logging.Config{Level: "info", Format: "console"},
		Server: Server{
			Addr:              ":5000",
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Store: store.Config{Backend: store.BackendMemory},
		Recommend: Recommend{
			DefaultMethod: "hybrid",
		},
		Client: Client{
			BaseURL: "http://localhost:5000/api",
			Timeout: 10 * time.Second,
			Retries: 2,
		},
	}
}

// Load 按默认值、配置文件、环境变量的顺序加载并校验配置。
// path 为空时查找 BOOKREC_CONFIG 和 DefaultConfigPaths，找不到文件不报错。
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = findConfigFile()
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if explicit {
				return nil, fmt.Errorf("config file %s: %w", path, err)
			}
		} else if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	if err := splitSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		return p
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sections 是二级配置的前缀，较长的排在前面。
var sections = []string{
	"store_redis_",
	"store_badger_",
	"log_",
	"server_",
	"store_",
	"catalog_",
	"recommend_",
	"client_",
}

// envKey 把 BOOKREC_STORE_REDIS_ADDR 转成 store.redis.addr；无法识别的变量忽略。
func envKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if key == "config" {
		return ""
	}
	for _, s := range sections {
		if rest, ok := strings.CutPrefix(key, s); ok && rest != "" {
			return strings.ReplaceAll(strings.TrimSuffix(s, "_"), "_", ".") + "." + rest
		}
	}
	return ""
}

var sliceFields = []string{"server.cors_origins"}

// splitSliceFields 把环境变量中逗号分隔的字符串转为切片。
func splitSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceFields {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate 校验字段约束，错误信息使用 koanf 路径。
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
