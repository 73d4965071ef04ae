// Package recommend 组装推荐引擎：目录、向量索引、评分存储和按推荐方法划分的 Pipeline。
//
// 每种推荐方法对应一条 YAML 定义的 Pipeline（内置于 pipelines/，可用目录覆盖）：
//
//	heuristic     偏好打分（类别 50 / 难度 20 / 评分 ×10 / 近年 5），本地客户端默认
//	collaborative 同上，类别得分按偏好排名衰减，服务端 hybrid 的组成部分
//	content       TF-IDF 内容相似
//	hybrid        content 与 collaborative 合并后按评分排序，服务端默认
//	knn           书籍数值特征近邻
//	popular       热门（按评分）
//	weighted      content 与 knn 按名次加权，再加评分
//	svd           全部用户评分矩阵的截断 SVD
package recommend

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rushteam/bookrec/catalog"
	"github.com/rushteam/bookrec/config"
	"github.com/rushteam/bookrec/config/builders"
	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/feature"
	"github.com/rushteam/bookrec/pipeline"
	"github.com/rushteam/bookrec/pkg/logging"
	"github.com/rushteam/bookrec/pkg/metrics"
	"github.com/rushteam/bookrec/rating"
	"github.com/rushteam/bookrec/recall"
	"github.com/rushteam/bookrec/store"
)

// 推荐方法。
const (
	MethodHeuristic     = "heuristic"
	MethodCollaborative = "collaborative"
	MethodContent       = "content"
	MethodHybrid        = "hybrid"
	MethodKNN           = "knn"
	MethodPopular       = "popular"
	MethodWeighted      = "weighted"
	MethodSVD           = "svd"
)

// pipelineSimilar 不是推荐方法，只供 Similar 使用。
const pipelineSimilar = "similar"

// 条数限制。
const (
	DefaultLimit        = 6
	DefaultSimilarLimit = 5
	MaxLimit            = 50
)

type fallback struct {
	method string
	// liked 为 true 时有评分但没有喜欢的书（评分 >= 4）也回退
	liked bool
}

// fallbacks：请求没有任何评分时改用的方法。
var fallbacks = map[string]fallback{
	MethodHybrid:   {method: MethodPopular},
	MethodWeighted: {method: MethodPopular, liked: true},
}

//go:embed pipelines/*.yaml
var builtinPipelines embed.FS

// Options 是 Engine 的构建参数，零值可用（内置目录 + 内存存储 + 内置 Pipeline）。
type Options struct {
	Catalog *catalog.Catalog
	Store   core.KeyValueStore
	Vectors core.VectorDatabaseService

	// PipelineDir 中的同名 Pipeline 覆盖内置定义
	PipelineDir string

	// DefaultMethod 为空时使用 hybrid
	DefaultMethod string

	Hooks []pipeline.Hook
}

// Engine 是推荐引擎，可并发使用。
type Engine struct {
	catalog       *catalog.Catalog
	store         core.KeyValueStore
	vectors       core.VectorDatabaseService
	ratings       *rating.Service
	pipelines     map[string]*pipeline.Pipeline
	defaultMethod string
	ownsStore     bool
	ownsVectors   bool
}

// New 索引目录并构建全部 Pipeline。
func New(ctx context.Context, opts Options) (*Engine, error) {
	e := &Engine{
		catalog:       opts.Catalog,
		store:         opts.Store,
		vectors:       opts.Vectors,
		defaultMethod: opts.DefaultMethod,
	}
	if e.catalog == nil {
		e.catalog = catalog.Builtin()
	}
	if e.store == nil {
		e.store = store.NewMemoryStore()
		e.ownsStore = true
	}
	if e.vectors == nil {
		e.vectors = store.NewMemoryVectorService()
		e.ownsVectors = true
	}
	if e.defaultMethod == "" {
		e.defaultMethod = MethodHybrid
	}
	e.ratings = rating.NewService(e.store, e.catalog)

	indexer := &feature.Indexer{Catalog: e.catalog, Vectors: e.vectors, Store: e.store}
	if _, err := indexer.Index(ctx); err != nil {
		e.closeOwned()
		return nil, fmt.Errorf("index catalog: %w", err)
	}

	cfgs, err := loadPipelineConfigs(opts.PipelineDir)
	if err != nil {
		e.closeOwned()
		return nil, err
	}
	if e.pipelines, err = buildPipelines(cfgs, builders.Env{
		Catalog: e.catalog,
		Vectors: e.vectors,
		Store:   e.store,
		Ratings: e.ratings,
	}, opts.Hooks); err != nil {
		e.closeOwned()
		return nil, err
	}
	if _, ok := e.pipelines[e.defaultMethod]; !ok || e.defaultMethod == pipelineSimilar {
		e.closeOwned()
		return nil, fmt.Errorf("default method %q has no pipeline", e.defaultMethod)
	}

	logging.Info().
		Int("books", e.catalog.Len()).
		Strs("methods", e.Methods()).
		Str("default_method", e.defaultMethod).
		Str("store", e.store.Name()).
		Msg("recommend engine ready")
	return e, nil
}

func loadPipelineConfigs(dir string) (map[string]*pipeline.Config, error) {
	cfgs := make(map[string]*pipeline.Config)
	entries, err := builtinPipelines.ReadDir("pipelines")
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		data, err := builtinPipelines.ReadFile("pipelines/" + entry.Name())
		if err != nil {
			return nil, err
		}
		cfg, err := pipeline.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("builtin %s: %w", entry.Name(), err)
		}
		cfgs[cfg.Pipeline.Name] = cfg
	}
	if dir == "" {
		return cfgs, nil
	}
	custom, err := pipeline.LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("load pipelines: %w", err)
	}
	for name, cfg := range custom {
		cfgs[name] = cfg
	}
	return cfgs, nil
}

// buildPipelines 按需递归构建，fanout 的 pipeline 召回源引用其他 Pipeline。
func buildPipelines(cfgs map[string]*pipeline.Config, env builders.Env, hooks []pipeline.Hook) (map[string]*pipeline.Pipeline, error) {
	built := make(map[string]*pipeline.Pipeline, len(cfgs))
	building := make(map[string]bool)

	var factory *pipeline.NodeFactory
	var build func(name string) (*pipeline.Pipeline, error)
	build = func(name string) (*pipeline.Pipeline, error) {
		if p, ok := built[name]; ok {
			return p, nil
		}
		cfg, ok := cfgs[name]
		if !ok {
			return nil, fmt.Errorf("pipeline %q not found", name)
		}
		if building[name] {
			return nil, fmt.Errorf("pipeline %q references itself", name)
		}
		building[name] = true
		defer delete(building, name)

		if err := config.ValidatePipelineConfig(cfg, factory); err != nil {
			return nil, err
		}
		p, err := cfg.BuildPipeline(factory)
		if err != nil {
			return nil, err
		}
		p.Use(pipeline.LogHook{Pipeline: name}, pipeline.MetricsHook{Pipeline: name})
		p.Use(hooks...)
		built[name] = p
		return p, nil
	}
	env.Pipeline = build
	factory = builders.Factory(env)

	names := make([]string, 0, len(cfgs))
	for name := range cfgs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := build(name); err != nil {
			return nil, err
		}
	}
	return built, nil
}

// Catalog 返回引擎使用的目录。
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// Ratings 返回评分服务。
func (e *Engine) Ratings() *rating.Service { return e.ratings }

// DefaultMethod 返回未指定方法时使用的方法。
func (e *Engine) DefaultMethod() string { return e.defaultMethod }

// Methods 返回可用的推荐方法（排序）。
func (e *Engine) Methods() []string {
	out := make([]string, 0, len(e.pipelines))
	for name := range e.pipelines {
		if name != pipelineSimilar {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Recommend 运行 req.Method 对应的 Pipeline。
//
// Ratings 为空且带 UserID 时使用该用户已保存的评分。
func (e *Engine) Recommend(ctx context.Context, req Request) ([]Recommendation, error) {
	method := strings.ToLower(strings.TrimSpace(req.Method))
	if method == "" {
		method = e.defaultMethod
	}
	limit, err := checkLimit(req.N, DefaultLimit)
	if err != nil {
		return nil, err
	}

	if err := req.Ratings.Validate(); err != nil {
		return nil, err
	}
	ratings := req.Ratings
	if len(ratings) == 0 && req.UserID != "" {
		if ratings, err = e.ratings.Get(ctx, req.UserID); err != nil {
			return nil, err
		}
	}
	if fb, ok := fallbacks[method]; ok && (len(ratings) == 0 || fb.liked && len(ratings.Liked()) == 0) {
		method = fb.method
	}

	p, ok := e.pipelines[method]
	if !ok || method == pipelineSimilar {
		return nil, core.NewDomainError(core.ModuleRecommend, core.ErrorCodeInvalidInput,
			fmt.Sprintf("unknown method %q (supported: %s)", req.Method, strings.Join(e.Methods(), ", ")))
	}

	rctx := &core.RecommendContext{
		UserID:  req.UserID,
		Scene:   method,
		Ratings: ratings,
		Limit:   limit,
	}
	items, err := p.Run(ctx, rctx, nil)
	metrics.RecordRecommend(method, len(items), err)
	if err != nil {
		return nil, err
	}
	return e.toRecommendations(items), nil
}

// Similar 返回与 bookID 内容最相似的 n 本书（不含自身）；书籍不存在时返回空列表。
func (e *Engine) Similar(ctx context.Context, bookID, n int) ([]Recommendation, error) {
	limit, err := checkLimit(n, DefaultSimilarLimit)
	if err != nil {
		return nil, err
	}
	rctx := &core.RecommendContext{
		Scene:  pipelineSimilar,
		Limit:  limit,
		Params: map[string]any{recall.ParamSeedID: strconv.Itoa(bookID)},
	}
	items, err := e.pipelines[pipelineSimilar].Run(ctx, rctx, nil)
	metrics.RecordRecommend(pipelineSimilar, len(items), err)
	if err != nil {
		return nil, err
	}
	return e.toRecommendations(items), nil
}

func checkLimit(n, def int) (int, error) {
	if n == 0 {
		return def, nil
	}
	if n < 1 || n > MaxLimit {
		return 0, core.NewDomainError(core.ModuleRecommend, core.ErrorCodeInvalidInput,
			fmt.Sprintf("n must be between 1 and %d", MaxLimit))
	}
	return n, nil
}

func (e *Engine) toRecommendations(items []*core.Item) []Recommendation {
	out := make([]Recommendation, 0, len(items))
	for _, it := range items {
		b, ok := e.catalog.Lookup(it.ID)
		if !ok {
			continue
		}
		out = append(out, Recommendation{Book: b, Score: it.Score, Labels: labelValues(it)})
	}
	return out
}

// Close 释放引擎自己创建的存储和向量索引，调用方传入的不关闭。
func (e *Engine) Close() error {
	var err error
	if e.ownsStore {
		err = e.store.Close()
	}
	if e.ownsVectors {
		if verr := e.vectors.Close(); err == nil {
			err = verr
		}
	}
	return err
}

func (e *Engine) closeOwned() {
	_ = e.Close()
}
