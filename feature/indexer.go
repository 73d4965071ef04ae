package feature

import (
	"context"
	"fmt"

	"github.com/rushteam/bookrec/catalog"
	"github.com/rushteam/bookrec/core"
)

// 向量集合名称。
const (
	CollectionTFIDF = "books_tfidf"
	CollectionKNN   = "books_knn"
)

// PopularKey 是热门候选池的有序集合 key，分数为评论数。
const PopularKey = "popular:books"

// Indexer 把目录写入向量库与热门榜：
//   - books_tfidf：标题+分类+难度的 TF-IDF 向量（cosine）
//   - books_knn：[category_enc, level_enc, rating, year_norm]（cosine）
//
// 写入顺序即目录顺序，检索同分时按目录顺序返回。
type Indexer struct {
	Catalog *catalog.Catalog
	Vectors core.VectorDatabaseService
	Store   core.KeyValueStore
}

// Index 重建两个向量集合；Store 不为空时同时写入热门榜。
func (x *Indexer) Index(ctx context.Context) (*TFIDF, error) {
	books := x.Catalog.Books()
	ids := make([]string, len(books))
	docs := make([]string, len(books))
	for i, b := range books {
		ids[i] = b.ItemID()
		docs[i] = b.Content()
	}

	tfidf := FitTFIDF(docs)
	textVecs := make([][]float64, len(books))
	for i, d := range docs {
		textVecs[i] = tfidf.Transform(d)
	}
	if err := x.load(ctx, CollectionTFIDF, tfidf.Dimension(), ids, textVecs); err != nil {
		return nil, err
	}

	enc := catalog.NewEncoder(x.Catalog)
	numVecs := make([][]float64, len(books))
	for i, b := range books {
		numVecs[i] = enc.Encode(b)
	}
	if err := x.load(ctx, CollectionKNN, catalog.Dimension, ids, numVecs); err != nil {
		return nil, err
	}

	if x.Store != nil {
		for _, b := range books {
			if err := x.Store.ZAdd(ctx, PopularKey, float64(b.NumReviews), b.ItemID()); err != nil {
				return nil, fmt.Errorf("seed %s: %w", PopularKey, err)
			}
		}
	}
	return tfidf, nil
}

func (x *Indexer) load(ctx context.Context, name string, dim int, ids []string, vecs [][]float64) error {
	has, err := x.Vectors.HasCollection(ctx, name)
	if err != nil {
		return fmt.Errorf("index %s: %w", name, err)
	}
	if has {
		if err := x.Vectors.DropCollection(ctx, name); err != nil {
			return fmt.Errorf("index %s: %w", name, err)
		}
	}
	if dim == 0 {
		// 空目录或全是停用词：维度至少为 1
		dim = 1
		for i := range vecs {
			vecs[i] = []float64{0}
		}
	}
	if err := x.Vectors.CreateCollection(ctx, &core.VectorCreateCollectionRequest{
		Name:      name,
		Dimension: dim,
		Metric:    string(core.MetricCosine),
	}); err != nil {
		return fmt.Errorf("index %s: %w", name, err)
	}
	if len(ids) == 0 {
		return nil
	}
	if err := x.Vectors.Insert(ctx, &core.VectorInsertRequest{Collection: name, Vectors: vecs, IDs: ids}); err != nil {
		return fmt.Errorf("index %s: %w", name, err)
	}
	return nil
}
