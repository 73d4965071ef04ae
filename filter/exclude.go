package filter

import (
	"context"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pkg/conv"
)

// ParamExclude 是请求参数中的排除列表（[]string 或 []any）。
const ParamExclude = "exclude"

// ExcludeFilter 移除固定 ID 列表以及请求参数 exclude 中的书籍。
type ExcludeFilter struct {
	ids map[string]struct{}
}

func NewExcludeFilter(ids []string) *ExcludeFilter {
	f := &ExcludeFilter{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		f.ids[id] = struct{}{}
	}
	return f
}

func (f *ExcludeFilter) Name() string { return "filter.exclude" }

func (f *ExcludeFilter) ShouldFilter(_ context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	if _, ok := f.ids[item.ID]; ok {
		return true, nil
	}
	v, ok := rctx.Param(ParamExclude)
	if !ok {
		return false, nil
	}
	ids, ok := v.([]string)
	if !ok {
		ids = conv.SliceAnyToString(v)
	}
	for _, id := range ids {
		if id == item.ID {
			return true, nil
		}
	}
	return false, nil
}
