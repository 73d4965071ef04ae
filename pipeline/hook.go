package pipeline

import (
	"context"
	"time"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pkg/logging"
	"github.com/rushteam/bookrec/pkg/metrics"
)

// LogHook 以 debug 级别记录每个 Node 的输入输出条数与耗时。
type LogHook struct {
	Pipeline string
}

func (h LogHook) BeforeNode(context.Context, *core.RecommendContext, Node, []*core.Item) {}

func (h LogHook) AfterNode(ctx context.Context, rctx *core.RecommendContext, node Node, items []*core.Item, elapsed time.Duration, err error) {
	ev := logging.Ctx(ctx).Debug()
	if err != nil {
		ev = logging.Ctx(ctx).Warn().Err(err)
	}
	ev.Str("pipeline", h.Pipeline).
		Str("node", node.Name()).
		Str("kind", string(node.Kind())).
		Str("user_id", rctx.UserID).
		Int("items", len(items)).
		Dur("elapsed", elapsed).
		Msg("node done")
}

// MetricsHook 把每个 Node 的耗时与失败写入 Prometheus。
type MetricsHook struct {
	Pipeline string
}

func (h MetricsHook) BeforeNode(context.Context, *core.RecommendContext, Node, []*core.Item) {}

func (h MetricsHook) AfterNode(_ context.Context, _ *core.RecommendContext, node Node, _ []*core.Item, elapsed time.Duration, err error) {
	metrics.PipelineNodeDuration.WithLabelValues(h.Pipeline, node.Name(), string(node.Kind())).Observe(elapsed.Seconds())
	if err != nil {
		metrics.PipelineNodeErrors.WithLabelValues(h.Pipeline, node.Name()).Inc()
	}
}
