package recall

import (
	"context"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pipeline"
)

// PipelineSource 把一条子 Pipeline 当作召回源，常用于混合推荐。
// 子 Pipeline 在请求上下文的副本上运行，Limit 乘以 Scale（<= 0 视为 1）。
type PipelineSource struct {
	Pipeline *pipeline.Pipeline
	Scale    int
}

func (s *PipelineSource) Name() string { return s.Pipeline.Name }

func (s *PipelineSource) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	sub := rctx.Clone()
	if sub == nil {
		sub = &core.RecommendContext{}
	}
	if s.Scale > 1 {
		sub.Limit *= s.Scale
	}
	return s.Pipeline.Run(ctx, sub, nil)
}
