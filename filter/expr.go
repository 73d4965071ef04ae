package filter

import (
	"context"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pkg/dsl"
)

// ExprFilter 用 CEL 表达式过滤：表达式为 true 时移除；Invert 为 true 时反过来，只保留为 true 的。
//
//	item.features.year < 2010
//	label.recall_source == "popular"
type ExprFilter struct {
	prg    *dsl.Program
	invert bool
}

// NewExprFilter 编译表达式，语法错误时返回 error。
func NewExprFilter(expr string, invert bool) (*ExprFilter, error) {
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{prg: prg, invert: invert}, nil
}

func (f *ExprFilter) Name() string { return "filter.expr" }

func (f *ExprFilter) ShouldFilter(_ context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	ok, err := f.prg.Bool(dsl.ItemInput(item, rctx))
	if err != nil {
		return false, err
	}
	return ok != f.invert, nil
}
