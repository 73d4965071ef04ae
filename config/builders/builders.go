// Package builders 注册内置 Node 的配置构建器。
//
// 无外部依赖的 Node 在 init 中注册到 config 全局表；需要目录、向量库或存储的
// Node 通过 Factory(env) 绑定依赖后注册。
package builders

import (
	"fmt"
	"time"

	"github.com/rushteam/bookrec/catalog"
	"github.com/rushteam/bookrec/config"
	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/feature"
	"github.com/rushteam/bookrec/filter"
	"github.com/rushteam/bookrec/model"
	"github.com/rushteam/bookrec/pipeline"
	"github.com/rushteam/bookrec/pkg/conv"
	"github.com/rushteam/bookrec/rank"
	"github.com/rushteam/bookrec/recall"
	"github.com/rushteam/bookrec/rerank"
)

func init() {
	config.Register("rank.model", BuildModelNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("rerank.diversity", BuildDiversityNode)
	config.Register("filter", BuildFilterNode)
}

// Env 是依赖型 Node 需要的运行时依赖。
type Env struct {
	Catalog *catalog.Catalog
	Vectors core.VectorDatabaseService
	Store   core.KeyValueStore
	Ratings recall.RatingSource

	// Pipeline 按名称取已构建的 Pipeline，供 fanout 的 pipeline 召回源引用
	Pipeline func(name string) (*pipeline.Pipeline, error)
}

// Factory 返回全局注册表加上绑定 env 的依赖型 Node 的工厂。
func Factory(env Env) *pipeline.NodeFactory {
	f := config.DefaultFactory()
	f.Register("recall.catalog", env.buildCatalogNode)
	f.Register("recall.content", env.buildContentNode)
	f.Register("recall.knn", env.buildKNNNode)
	f.Register("recall.popular", env.buildPopularNode)
	f.Register("recall.svd", env.buildSVDNode)
	f.Register("recall.fanout", env.buildFanoutNode)
	f.Register("feature.book", env.buildBookEnrichNode)
	f.Register("feature.preference", env.buildPreferenceNode)
	return f
}

func (env Env) buildCatalogNode(cfg map[string]any) (pipeline.Node, error) {
	return &recall.CatalogRecall{Catalog: env.Catalog, Query: catalog.Query{
		Category: conv.ConfigGet(cfg, "category", ""),
		Search:   conv.ConfigGet(cfg, "search", ""),
		Where:    conv.ConfigGet(cfg, "where", ""),
	}}, nil
}

func (env Env) buildContentNode(cfg map[string]any) (pipeline.Node, error) {
	return env.contentSource(cfg), nil
}

func (env Env) contentSource(cfg map[string]any) *recall.ContentRecall {
	return &recall.ContentRecall{
		Vectors:    env.Vectors,
		Collection: conv.ConfigGet(cfg, "collection", feature.CollectionTFIDF),
		TopK:       conv.ConfigGetInt(cfg, "top_k", 0),
	}
}

func (env Env) buildKNNNode(cfg map[string]any) (pipeline.Node, error) {
	return env.knnSource(cfg), nil
}

func (env Env) knnSource(cfg map[string]any) *recall.KNNRecall {
	return &recall.KNNRecall{
		Vectors:    env.Vectors,
		Collection: conv.ConfigGet(cfg, "collection", feature.CollectionKNN),
		K:          conv.ConfigGetInt(cfg, "k", 0),
		MaxSeeds:   conv.ConfigGetInt(cfg, "max_seeds", 3),

		KeepDuplicates: conv.ConfigGet(cfg, "keep_duplicates", false),
	}
}

func (env Env) buildSVDNode(cfg map[string]any) (pipeline.Node, error) {
	return env.svdSource(cfg), nil
}

func (env Env) svdSource(cfg map[string]any) *recall.SVDRecall {
	return &recall.SVDRecall{
		Catalog:    env.Catalog,
		Ratings:    env.Ratings,
		Components: conv.ConfigGetInt(cfg, "components", 10),
	}
}

func (env Env) buildPopularNode(cfg map[string]any) (pipeline.Node, error) {
	return env.popularSource(cfg), nil
}

func (env Env) popularSource(cfg map[string]any) *recall.PopularRecall {
	return &recall.PopularRecall{
		Catalog: env.Catalog,
		Store:   env.Store,
		Key:     conv.ConfigGet(cfg, "key", feature.PopularKey),
		Size:    conv.ConfigGetInt(cfg, "size", 100),
	}
}

// buildFanoutNode 构建 recall.fanout：
//
//	sources:
//	  - {type: pipeline, name: content, scale: 2, weight: 0.5}
//	  - {type: popular}
//	merge_strategy: first       # union / priority / weighted
//	timeout: 500ms
func (env Env) buildFanoutNode(cfg map[string]any) (pipeline.Node, error) {
	sourcesConfig, ok := cfg["sources"].([]any)
	if !ok || len(sourcesConfig) == 0 {
		return nil, fmt.Errorf("sources not found or invalid")
	}
	sources := make([]recall.Source, 0, len(sourcesConfig))
	weights := make([]float64, 0, len(sourcesConfig))
	for i, sc := range sourcesConfig {
		sourceMap, ok := sc.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("source #%d: expected a map", i)
		}
		weights = append(weights, conv.ConfigGetFloat(sourceMap, "weight", 1))
		switch sourceType := conv.ConfigGet(sourceMap, "type", ""); sourceType {
		case "pipeline":
			name := conv.ConfigGet(sourceMap, "name", "")
			if name == "" || env.Pipeline == nil {
				return nil, fmt.Errorf("source #%d: pipeline name is required", i)
			}
			p, err := env.Pipeline(name)
			if err != nil {
				return nil, fmt.Errorf("source #%d: %w", i, err)
			}
			sources = append(sources, &recall.PipelineSource{Pipeline: p, Scale: conv.ConfigGetInt(sourceMap, "scale", 1)})
		case "catalog":
			node, _ := env.buildCatalogNode(sourceMap)
			sources = append(sources, node.(recall.Source))
		case "content":
			sources = append(sources, env.contentSource(sourceMap))
		case "knn":
			sources = append(sources, env.knnSource(sourceMap))
		case "popular":
			sources = append(sources, env.popularSource(sourceMap))
		case "svd":
			sources = append(sources, env.svdSource(sourceMap))
		default:
			return nil, fmt.Errorf("source #%d: unknown source type %q", i, sourceType)
		}
	}

	fanout := &recall.Fanout{
		Sources:       sources,
		Dedup:         conv.ConfigGet(cfg, "dedup", true),
		MaxConcurrent: conv.ConfigGetInt(cfg, "max_concurrent", 0),
		MergeStrategy: conv.ConfigGet(cfg, "merge_strategy", recall.MergeFirst),
		Weights:       weights,
	}
	switch fanout.MergeStrategy {
	case recall.MergeFirst, recall.MergeUnion, recall.MergePriority, recall.MergeWeighted:
	default:
		return nil, fmt.Errorf("unknown merge_strategy %q", fanout.MergeStrategy)
	}
	if s := conv.ConfigGet(cfg, "timeout", ""); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("timeout: %w", err)
		}
		fanout.Timeout = d
	}
	return fanout, nil
}

func (env Env) buildBookEnrichNode(cfg map[string]any) (pipeline.Node, error) {
	return &feature.BookEnrichNode{
		Catalog:    env.Catalog,
		RecentYear: conv.ConfigGetInt(cfg, "recent_year", feature.RecentYear),
	}, nil
}

func (env Env) buildPreferenceNode(cfg map[string]any) (pipeline.Node, error) {
	match := conv.ConfigGet(cfg, "match", feature.MatchFlat)
	if match != feature.MatchFlat && match != feature.MatchRank {
		return nil, fmt.Errorf("unknown match %q", match)
	}
	return &feature.PreferenceNode{
		Catalog: env.Catalog,
		Match:   match,
		Require: conv.ConfigGet(cfg, "require", false),
	}, nil
}

// BuildModelNode 构建 rank.model：
//
//	preset: heuristic            # 或
//	weights: {rating: 1}         # 可选 bias / link
//	path: models/linear.json     # 从文件加载
func BuildModelNode(cfg map[string]any) (pipeline.Node, error) {
	if path := conv.ConfigGet(cfg, "path", ""); path != "" {
		m, err := model.LoadLinearModel(path)
		if err != nil {
			return nil, err
		}
		return &rank.ModelNode{Model: m}, nil
	}

	var weights map[string]float64
	switch preset := conv.ConfigGet(cfg, "preset", ""); preset {
	case "heuristic":
		weights = model.HeuristicWeights()
	case "":
		raw := conv.ConfigGetMap(cfg, "weights")
		if len(raw) == 0 {
			return nil, fmt.Errorf("weights not found")
		}
		weights = make(map[string]float64, len(raw))
		for k := range raw {
			weights[k] = conv.ConfigGetFloat(raw, k, 0)
		}
	default:
		return nil, fmt.Errorf("unknown preset %q", preset)
	}

	m, err := model.NewLinearModel(conv.ConfigGetFloat(cfg, "bias", 0), weights, conv.ConfigGet(cfg, "link", ""))
	if err != nil {
		return nil, err
	}
	return &rank.ModelNode{Model: m}, nil
}

func BuildTopNNode(cfg map[string]any) (pipeline.Node, error) {
	return &rerank.TopNNode{N: conv.ConfigGetInt(cfg, "n", 0)}, nil
}

func BuildDiversityNode(cfg map[string]any) (pipeline.Node, error) {
	return &rerank.Diversity{
		LabelKey:  conv.ConfigGet(cfg, "label_key", "category"),
		MaxPerKey: conv.ConfigGetInt(cfg, "max_per_key", 1),
	}, nil
}

// BuildFilterNode 构建 filter：
//
//	filters:
//	  - {type: rated}
//	  - {type: exclude, ids: [1, 2]}
//	  - {type: expr, expr: "item.features.year < 2010"}
func BuildFilterNode(cfg map[string]any) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]any)
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}
	filters := make([]filter.Filter, 0, len(filtersConfig))
	for i, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("filter #%d: expected a map", i)
		}
		switch filterType := conv.ConfigGet(filterMap, "type", ""); filterType {
		case "rated":
			filters = append(filters, filter.RatedFilter{})
		case "exclude":
			filters = append(filters, filter.NewExcludeFilter(conv.SliceAnyToString(filterMap["ids"])))
		case "expr":
			f, err := filter.NewExprFilter(conv.ConfigGet(filterMap, "expr", ""), conv.ConfigGet(filterMap, "invert", false))
			if err != nil {
				return nil, fmt.Errorf("filter #%d: %w", i, err)
			}
			filters = append(filters, f)
		default:
			return nil, fmt.Errorf("filter #%d: unknown filter type %q", i, filterType)
		}
	}
	return &filter.FilterNode{Filters: filters}, nil
}
