package core

import "context"

// VectorService 是向量检索服务的领域接口。
//
// 使用场景（召回场景专用）：
//   - 内容召回：TF-IDF 向量的相似度检索
//   - KNN 召回：书籍数值特征的近邻检索
//
// 如果需要写入/管理集合，请使用 VectorDatabaseService。
type VectorService interface {
	// Search 向量搜索
	Search(ctx context.Context, req *VectorSearchRequest) (*VectorSearchResult, error)

	// Close 关闭连接
	Close() error
}

// VectorDatabaseService 是完整的向量数据库服务接口，嵌入 VectorService。
//
//	var db VectorDatabaseService = store.NewMemoryVectorService()
//	_ = db.CreateCollection(ctx, &VectorCreateCollectionRequest{Name: "books_tfidf", Dimension: 64, Metric: "cosine"})
//	_ = db.Insert(ctx, &VectorInsertRequest{Collection: "books_tfidf", Vectors: vecs, IDs: ids})
type VectorDatabaseService interface {
	VectorService

	// Insert 插入向量
	Insert(ctx context.Context, req *VectorInsertRequest) error

	// Get 读取单个向量，不存在时返回 NOT_FOUND
	Get(ctx context.Context, collection, id string) ([]float64, error)

	// Delete 删除向量
	Delete(ctx context.Context, req *VectorDeleteRequest) error

	// CreateCollection 创建集合
	CreateCollection(ctx context.Context, req *VectorCreateCollectionRequest) error

	// DropCollection 删除集合
	DropCollection(ctx context.Context, collection string) error

	// HasCollection 检查集合是否存在
	HasCollection(ctx context.Context, collection string) (bool, error)
}

// VectorSearchRequest 向量搜索请求
type VectorSearchRequest struct {
	Collection string
	Vector     []float64

	// TopK 返回 TopK 个最相似的结果
	TopK int

	// Metric 距离度量方式：cosine / euclidean / inner_product，为空时使用集合默认值
	Metric string

	// ExcludeIDs 不参与检索的 ID（例如种子书籍本身）
	ExcludeIDs []string
}

// VectorSearchItem 单个向量搜索结果项
type VectorSearchItem struct {
	ID       string
	Score    float64
	Distance float64
}

// VectorSearchResult 向量搜索结果，按相似度降序；分数相同时保持插入顺序。
type VectorSearchResult struct {
	Items []VectorSearchItem
}

// VectorInsertRequest 向量插入请求
type VectorInsertRequest struct {
	Collection string
	Vectors    [][]float64
	IDs        []string
}

// VectorDeleteRequest 向量删除请求
type VectorDeleteRequest struct {
	Collection string
	IDs        []string
}

// VectorCreateCollectionRequest 创建集合请求
type VectorCreateCollectionRequest struct {
	Name      string
	Dimension int
	Metric    string
}

// ValidateVectorMetric 验证距离度量类型
func ValidateVectorMetric(metric string) bool {
	switch MetricType(metric) {
	case MetricCosine, MetricEuclidean, MetricInnerProduct:
		return true
	default:
		return false
	}
}

// MetricType 距离度量类型
type MetricType string

const (
	MetricCosine       MetricType = "cosine"
	MetricEuclidean    MetricType = "euclidean"
	MetricInnerProduct MetricType = "inner_product"
)
