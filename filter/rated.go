package filter

import (
	"context"

	"github.com/rushteam/bookrec/core"
)

// RatedFilter 移除用户已评分的书籍。
type RatedFilter struct{}

func (RatedFilter) Name() string { return "filter.rated" }

func (RatedFilter) ShouldFilter(_ context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	if rctx == nil {
		return false, nil
	}
	return rctx.Ratings.IsRated(item.ID), nil
}
