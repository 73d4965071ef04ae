// Package dsl 是基于 CEL (Common Expression Language) 的表达式层，
// 用于 filter.ExprFilter 以及 catalog 的 where 查询。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/bookrec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once

	programs sync.Map // expr -> *Program
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
			cel.Variable("book", cel.DynType),
			cel.CrossTypeNumericComparisons(true),
		)
	})
	return celEnv, celEnvErr
}

// Program 是编译后的布尔表达式，可并发复用。
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式并按原文缓存。
// 可用变量：item、label、rctx、book。
func Compile(expr string) (*Program, error) {
	if p, ok := programs.Load(expr); ok {
		return p.(*Program), nil
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	p := &Program{expr: expr, prg: prg}
	actual, _ := programs.LoadOrStore(expr, p)
	return actual.(*Program), nil
}

func (p *Program) String() string { return p.expr }

// Bool 执行表达式，结果必须是布尔值。
func (p *Program) Bool(vars map[string]any) (bool, error) {
	out, _, err := p.prg.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", p.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression %q must return boolean, got %T", p.expr, out.Value())
	}
	return result, nil
}

// ItemInput 构建 item/label/rctx 三个变量。
//
// 表达式示例（CEL 标准语法）：
//   - label.recall_source == "content"
//   - item.score > 0.7
//   - item.features.rating >= 4.5 && rctx.rated > 2
//
// 访问不存在的 label 会报错，先用 has(label.key) 判断。
func ItemInput(item *core.Item, rctx *core.RecommendContext) map[string]any {
	labels := make(map[string]any, len(item.Labels))
	for k, v := range item.Labels {
		labels[k] = v.Value
	}
	features := make(map[string]any, len(item.Features))
	for k, v := range item.Features {
		features[k] = v
	}
	meta := make(map[string]any, len(item.Meta))
	for k, v := range item.Meta {
		meta[k] = v
	}

	ctxVars := map[string]any{}
	if rctx != nil {
		params := make(map[string]any, len(rctx.Params))
		for k, v := range rctx.Params {
			params[k] = v
		}
		ctxVars = map[string]any{
			"user_id": rctx.UserID,
			"scene":   rctx.Scene,
			"limit":   rctx.Limit,
			"params":  params,
			"rated":   len(rctx.Ratings),
		}
	}

	return map[string]any{
		"item": map[string]any{
			"id":       item.ID,
			"score":    item.Score,
			"features": features,
			"meta":     meta,
		},
		"label": labels,
		"rctx":  ctxVars,
	}
}
