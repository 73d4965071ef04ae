package filter

import (
	"context"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pipeline"
	"github.com/rushteam/bookrec/pkg/logging"
)

// FilterNode 组合多个过滤器，任一过滤器返回 true 即移除该物品。
// 过滤器出错时记录日志并视为不过滤。
type FilterNode struct {
	Filters []Filter
}

func (n *FilterNode) Name() string        { return "filter" }
func (n *FilterNode) Kind() pipeline.Kind { return pipeline.KindFilter }

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	out := make([]*core.Item, 0, len(items))
	for _, item := range items {
		drop := false
		for _, f := range n.Filters {
			ok, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				logging.Ctx(ctx).Warn().Err(err).Str("filter", f.Name()).Str("item", item.ID).Msg("filter failed")
				continue
			}
			if ok {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, item)
		}
	}
	return out, nil
}
