// Package config 维护 Node 类型注册表：YAML 中的 type 名称到 NodeBuilder 的映射。
package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/bookrec/pipeline"
)

// 使用配置驱动时，需在入口处 import _ "github.com/rushteam/bookrec/config/builders"
// 以触发内置 Node（rank.model、rerank.topn、filter 等）的 init 注册。
// 依赖目录/向量库/存储的 Node 由 builders.Factory(env) 追加注册。

// NodeBuilder 与 pipeline.NodeBuilder 一致：根据 config 构建 Node。
type NodeBuilder = pipeline.NodeBuilder

var (
	defaultBuilders   = make(map[string]NodeBuilder)
	defaultBuildersMu sync.RWMutex
)

// Register 注册一种 Node 的构建逻辑，同名覆盖。
// 建议在 init 中调用，例如：func init() { config.Register("rerank.topn", BuildTopNNode) }
func Register(typeName string, builder NodeBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	defaultBuildersMu.Lock()
	defer defaultBuildersMu.Unlock()
	defaultBuilders[typeName] = builder
}

// SupportedTypes 返回当前已注册的 Node 类型列表（排序）。
func SupportedTypes() []string {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	types := make([]string, 0, len(defaultBuilders))
	for t := range defaultBuilders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// DefaultFactory 返回包含全部已注册类型的 NodeFactory 副本，调用方可继续追加。
func DefaultFactory() *pipeline.NodeFactory {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	f := pipeline.NewNodeFactory()
	for typeName, builder := range defaultBuilders {
		f.Register(typeName, builder)
	}
	return f
}

// ValidatePipelineConfig 校验配置中的 node 类型都在 factory 中注册过。
func ValidatePipelineConfig(cfg *pipeline.Config, factory *pipeline.NodeFactory) error {
	if cfg == nil {
		return nil
	}
	known := make(map[string]struct{})
	for _, t := range factory.Types() {
		known[t] = struct{}{}
	}
	for i, nc := range cfg.Pipeline.Nodes {
		if _, ok := known[nc.Type]; !ok {
			return fmt.Errorf("pipeline %s node #%d: unsupported node type %q (supported: %v)",
				cfg.Pipeline.Name, i, nc.Type, factory.Types())
		}
	}
	return nil
}
