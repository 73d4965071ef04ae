package recall

import (
	"context"

	"github.com/rushteam/bookrec/catalog"
	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pipeline"
)

// CatalogRecall 按目录顺序召回满足 Query 的全部书籍，是偏好打分的候选池。
type CatalogRecall struct {
	Catalog *catalog.Catalog
	Query   catalog.Query
}

func (r *CatalogRecall) Name() string        { return "recall.catalog" }
func (r *CatalogRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *CatalogRecall) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *CatalogRecall) Recall(_ context.Context, _ *core.RecommendContext) ([]*core.Item, error) {
	books, err := r.Catalog.List(r.Query)
	if err != nil {
		return nil, err
	}
	out := make([]*core.Item, 0, len(books))
	for _, b := range books {
		out = append(out, core.NewItem(b.ItemID()))
	}
	return out, nil
}
