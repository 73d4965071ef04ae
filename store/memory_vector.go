package store

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/rushteam/bookrec/core"
)

// MemoryVectorService 是内存实现的向量服务，支持 cosine / euclidean / inner_product。
// 检索结果按分数降序，分数相同按插入顺序，因此同一份数据的检索结果是确定的。
type MemoryVectorService struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

type collection struct {
	dimension int
	metric    string
	order     []string // 插入顺序
	vectors   map[string][]float64
}

func NewMemoryVectorService() *MemoryVectorService {
	return &MemoryVectorService{collections: make(map[string]*collection)}
}

func (m *MemoryVectorService) Name() string { return "memory_vector" }

func vectorErr(code, msg string) error {
	return core.NewDomainError(core.ModuleVector, code, msg)
}

func (m *MemoryVectorService) Search(_ context.Context, req *core.VectorSearchRequest) (*core.VectorSearchResult, error) {
	if req == nil {
		return nil, vectorErr(core.ErrorCodeInvalidInput, "vector search request is nil")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	col, ok := m.collections[req.Collection]
	if !ok {
		return nil, vectorErr(core.ErrorCodeNotFound, "collection not found: "+req.Collection)
	}
	if len(req.Vector) != col.dimension {
		return nil, vectorErr(core.ErrorCodeInvalidInput, "vector dimension mismatch")
	}

	metric := req.Metric
	if metric == "" {
		metric = col.metric
	}
	if !core.ValidateVectorMetric(metric) {
		return nil, vectorErr(core.ErrorCodeInvalidInput, "unsupported metric: "+metric)
	}

	exclude := make(map[string]struct{}, len(req.ExcludeIDs))
	for _, id := range req.ExcludeIDs {
		exclude[id] = struct{}{}
	}

	items := make([]core.VectorSearchItem, 0, len(col.order))
	for _, id := range col.order {
		if _, skip := exclude[id]; skip {
			continue
		}
		items = append(items, score(core.MetricType(metric), req.Vector, col.vectors[id], id))
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
	if req.TopK > 0 && len(items) > req.TopK {
		items = items[:req.TopK]
	}
	return &core.VectorSearchResult{Items: items}, nil
}

func score(metric core.MetricType, q, v []float64, id string) core.VectorSearchItem {
	switch metric {
	case core.MetricEuclidean:
		d := euclideanDistance(q, v)
		return core.VectorSearchItem{ID: id, Score: 1.0 / (1.0 + d), Distance: d}
	case core.MetricInnerProduct:
		s := innerProduct(q, v)
		return core.VectorSearchItem{ID: id, Score: s, Distance: -s}
	default:
		s := cosineSimilarity(q, v)
		return core.VectorSearchItem{ID: id, Score: s, Distance: 1.0 - s}
	}
}

func (m *MemoryVectorService) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections = make(map[string]*collection)
	return nil
}

// Insert 写入向量；已存在的 ID 覆盖向量但保留原插入位置。
func (m *MemoryVectorService) Insert(_ context.Context, req *core.VectorInsertRequest) error {
	if req == nil {
		return vectorErr(core.ErrorCodeInvalidInput, "insert request is nil")
	}
	if len(req.Vectors) != len(req.IDs) {
		return vectorErr(core.ErrorCodeInvalidInput, "vectors and ids length mismatch")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	col, ok := m.collections[req.Collection]
	if !ok {
		return vectorErr(core.ErrorCodeNotFound, "collection not found: "+req.Collection)
	}
	for _, v := range req.Vectors {
		if len(v) != col.dimension {
			return vectorErr(core.ErrorCodeInvalidInput, "vector dimension mismatch")
		}
	}
	for i, id := range req.IDs {
		if _, exists := col.vectors[id]; !exists {
			col.order = append(col.order, id)
		}
		col.vectors[id] = append([]float64(nil), req.Vectors[i]...)
	}
	return nil
}

func (m *MemoryVectorService) Get(_ context.Context, collectionName, id string) ([]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	col, ok := m.collections[collectionName]
	if !ok {
		return nil, vectorErr(core.ErrorCodeNotFound, "collection not found: "+collectionName)
	}
	v, ok := col.vectors[id]
	if !ok {
		return nil, vectorErr(core.ErrorCodeNotFound, "vector not found: "+id)
	}
	return append([]float64(nil), v...), nil
}

func (m *MemoryVectorService) Delete(_ context.Context, req *core.VectorDeleteRequest) error {
	if req == nil {
		return vectorErr(core.ErrorCodeInvalidInput, "delete request is nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	col, ok := m.collections[req.Collection]
	if !ok {
		return vectorErr(core.ErrorCodeNotFound, "collection not found: "+req.Collection)
	}
	drop := make(map[string]struct{}, len(req.IDs))
	for _, id := range req.IDs {
		drop[id] = struct{}{}
		delete(col.vectors, id)
	}
	kept := col.order[:0]
	for _, id := range col.order {
		if _, gone := drop[id]; !gone {
			kept = append(kept, id)
		}
	}
	col.order = kept
	return nil
}

func (m *MemoryVectorService) CreateCollection(_ context.Context, req *core.VectorCreateCollectionRequest) error {
	if req == nil {
		return vectorErr(core.ErrorCodeInvalidInput, "create collection request is nil")
	}
	if req.Name == "" {
		return vectorErr(core.ErrorCodeInvalidInput, "collection name is required")
	}
	if req.Dimension <= 0 {
		return vectorErr(core.ErrorCodeInvalidInput, "dimension must be greater than 0")
	}
	metric := req.Metric
	if metric == "" {
		metric = string(core.MetricCosine)
	}
	if !core.ValidateVectorMetric(metric) {
		return vectorErr(core.ErrorCodeInvalidInput, "unsupported metric: "+metric)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.collections[req.Name]; exists {
		return vectorErr(core.ErrorCodeInvalidInput, "collection already exists: "+req.Name)
	}
	m.collections[req.Name] = &collection{
		dimension: req.Dimension,
		metric:    metric,
		vectors:   make(map[string][]float64),
	}
	return nil
}

func (m *MemoryVectorService) DropCollection(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections, name)
	return nil
}

func (m *MemoryVectorService) HasCollection(_ context.Context, name string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.collections[name]
	return exists, nil
}

func cosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func euclideanDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

func innerProduct(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

var _ core.VectorDatabaseService = (*MemoryVectorService)(nil)
