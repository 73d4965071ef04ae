package recall

import (
	"context"
	"sort"

	"github.com/rushteam/bookrec/catalog"
	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pipeline"
	"github.com/rushteam/bookrec/pkg/logging"
)

// PopularRecall 是热门召回源：
//   - Store 中 Key 有序集合的前 Size 个成员构成候选池
//   - 有序集合为空或读取失败时，退回整个目录
//
// 候选按目录顺序输出，由后续排序节点决定最终顺序。
type PopularRecall struct {
	Catalog *catalog.Catalog
	Store   core.KeyValueStore
	Key     string
	Size    int
}

func (r *PopularRecall) Name() string        { return "recall.popular" }
func (r *PopularRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *PopularRecall) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *PopularRecall) Recall(ctx context.Context, _ *core.RecommendContext) ([]*core.Item, error) {
	var ids []string
	if r.Store != nil && r.Key != "" {
		size := r.Size
		if size <= 0 {
			size = 100
		}
		members, err := r.Store.ZRange(ctx, r.Key, 0, int64(size-1))
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("key", r.Key).Msg("popular pool unavailable, using catalog")
		}
		for _, m := range members {
			if r.Catalog.Position(m) >= 0 {
				ids = append(ids, m)
			}
		}
	}

	if len(ids) == 0 {
		for _, b := range r.Catalog.Books() {
			ids = append(ids, b.ItemID())
		}
	} else {
		sort.SliceStable(ids, func(i, j int) bool {
			return r.Catalog.Position(ids[i]) < r.Catalog.Position(ids[j])
		})
	}

	out := make([]*core.Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, core.NewItem(id))
	}
	return out, nil
}
