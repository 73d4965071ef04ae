package recall

import (
	"context"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pipeline"
)

// KNNRecall 在书籍数值特征上做近邻召回：对前 MaxSeeds 本喜欢的书各取 K 个
// 余弦最近邻（不含自身），按种子顺序拼接；KeepDuplicates 为 false 时去重。
type KNNRecall struct {
	Vectors    core.VectorDatabaseService
	Collection string

	// K 每个种子的近邻数，<= 0 时取请求 Limit，再不行取 5
	K int
	// MaxSeeds 最多使用的种子数，<= 0 时为 3
	MaxSeeds int
	// KeepDuplicates 保留多个种子共同的近邻，weighted 合并按每次出现的名次累加
	KeepDuplicates bool
}

func (r *KNNRecall) Name() string        { return "recall.knn" }
func (r *KNNRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *KNNRecall) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *KNNRecall) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	db := r.Vectors
	k := r.K
	if k <= 0 && rctx != nil {
		k = rctx.Limit
	}
	if k <= 0 {
		k = 5
	}
	maxSeeds := r.MaxSeeds
	if maxSeeds <= 0 {
		maxSeeds = 3
	}

	ids := seeds(rctx)
	if len(ids) > maxSeeds {
		ids = ids[:maxSeeds]
	}

	seen := make(map[string]struct{})
	var out []*core.Item
	for _, seed := range ids {
		v, err := db.Get(ctx, r.Collection, seed)
		if core.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		res, err := db.Search(ctx, &core.VectorSearchRequest{
			Collection: r.Collection,
			Vector:     v,
			TopK:       k,
			Metric:     string(core.MetricCosine),
			ExcludeIDs: []string{seed},
		})
		if err != nil {
			return nil, err
		}
		for _, hit := range res.Items {
			if _, dup := seen[hit.ID]; dup && !r.KeepDuplicates {
				continue
			}
			seen[hit.ID] = struct{}{}
			it := core.NewItem(hit.ID)
			it.Score = hit.Score
			it.SetMeta("knn_seed", seed)
			out = append(out, it)
		}
	}
	return out, nil
}
