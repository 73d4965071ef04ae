package recall

import (
	"context"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pipeline"
	"github.com/rushteam/bookrec/pkg/utils"
)

// ContentRecall 是基于 TF-IDF 的内容召回。
//
// 种子为 seed_id 参数或用户喜欢的书；候选分数是与各种子余弦相似度的平均值。
// 向量已做 L2 归一化，因此用种子向量均值做一次内积检索即可得到平均相似度，
// 同分时保持集合的插入（目录）顺序。种子本身不会被召回。
type ContentRecall struct {
	Vectors    core.VectorDatabaseService
	Collection string

	// TopK 返回条数，<= 0 表示返回全部
	TopK int
}

func (r *ContentRecall) Name() string        { return "recall.content" }
func (r *ContentRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *ContentRecall) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *ContentRecall) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	var (
		mean  []float64
		found []string
	)
	for _, id := range seeds(rctx) {
		v, err := r.Vectors.Get(ctx, r.Collection, id)
		if core.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if mean == nil {
			mean = make([]float64, len(v))
		}
		for i := range v {
			mean[i] += v[i]
		}
		found = append(found, id)
	}
	if len(found) == 0 {
		return nil, nil
	}
	for i := range mean {
		mean[i] /= float64(len(found))
	}

	res, err := r.Vectors.Search(ctx, &core.VectorSearchRequest{
		Collection: r.Collection,
		Vector:     mean,
		TopK:       r.TopK,
		Metric:     string(core.MetricInnerProduct),
		ExcludeIDs: found,
	})
	if err != nil {
		return nil, err
	}

	out := make([]*core.Item, 0, len(res.Items))
	for _, hit := range res.Items {
		it := core.NewItem(hit.ID)
		it.Score = hit.Score
		it.SetFeature("content_sim", hit.Score)
		it.PutLabel("recall_metric", utils.Label{Value: "tfidf", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
