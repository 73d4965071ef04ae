package recall

import (
	"context"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/rushteam/bookrec/catalog"
	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/model"
	"github.com/rushteam/bookrec/pipeline"
	"github.com/rushteam/bookrec/pkg/logging"
	"github.com/rushteam/bookrec/pkg/utils"
)

// RatingSource 提供全部已保存用户的评分，由 rating.Service 实现。
type RatingSource interface {
	All(ctx context.Context) (map[string]core.Ratings, error)
}

// SVDRecall 是矩阵分解协同过滤。
//
// 每次召回用全部已保存用户加上本次请求的评分构造用户 × 书籍矩阵（未评分为 0，
// 请求带 UserID 时以请求评分替换该用户已保存的行），截断 SVD 后按预测值降序
// 返回请求用户未评分的书籍，同分保持目录顺序。请求没有评分时不召回。
type SVDRecall struct {
	Catalog *catalog.Catalog
	Ratings RatingSource

	// Components 保留的奇异分量数，<= 0 时为 10
	Components int
}

func (r *SVDRecall) Name() string        { return "recall.svd" }
func (r *SVDRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *SVDRecall) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *SVDRecall) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if rctx == nil || len(rctx.Ratings) == 0 {
		return nil, nil
	}
	components := r.Components
	if components <= 0 {
		components = 10
	}

	stored := map[string]core.Ratings{}
	if r.Ratings != nil {
		var err error
		if stored, err = r.Ratings.All(ctx); err != nil {
			return nil, err
		}
	}
	users := make([]string, 0, len(stored))
	for u := range stored {
		if u != rctx.UserID {
			users = append(users, u)
		}
	}
	sort.Strings(users)

	books := r.Catalog.Books()
	col := make(map[string]int, len(books))
	for j, b := range books {
		col[b.ItemID()] = j
	}
	rows := make([]core.Ratings, 0, len(users)+1)
	for _, u := range users {
		rows = append(rows, stored[u])
	}
	rows = append(rows, rctx.Ratings)
	self := len(rows) - 1

	m := mat.NewDense(len(rows), len(books), nil)
	for i, row := range rows {
		for id, v := range row {
			if j, ok := col[id]; ok {
				m.Set(i, j, float64(v))
			}
		}
	}

	svd, err := model.FitSVD(m, components)
	if err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Debug().Int("users", len(rows)).Int("components", components).Msg("svd fitted")

	scores := svd.Scores(self)
	out := make([]*core.Item, 0, len(books))
	for j, b := range books {
		id := b.ItemID()
		if rctx.Ratings.IsRated(id) {
			continue
		}
		it := core.NewItem(id)
		it.Score = scores[j]
		it.SetFeature(model.FeaturePredictedRating, model.ClipRating(scores[j]))
		it.PutLabel("recall_metric", utils.Label{Value: "svd", Source: "recall"})
		out = append(out, it)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out, nil
}
