package recall

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/model"
	"github.com/rushteam/bookrec/pipeline"
	"github.com/rushteam/bookrec/pkg/logging"
	"github.com/rushteam/bookrec/pkg/utils"
)

// 合并策略。
const (
	MergeFirst    = "first"
	MergeUnion    = "union"
	MergePriority = "priority"
	MergeWeighted = "weighted"
)

// Fanout 是一个 Recall Node：并发执行多个召回源，并按 Sources 顺序合并结果。
// 合并结果与各召回源的完成顺序无关。
type Fanout struct {
	Sources       []Source
	Dedup         bool
	Timeout       time.Duration // 每个召回源的超时时间
	MaxConcurrent int           // 最大并发数（0 表示无限制）
	MergeStrategy string        // first / union / priority / weighted

	// Weights 是 weighted 合并时各召回源的权重，与 Sources 一一对应，缺省为 1
	Weights []float64
}

func (n *Fanout) Name() string        { return "recall.fanout" }
func (n *Fanout) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Fanout) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return n.Recall(ctx, rctx)
}

// Recall 实现 Source 接口，Fanout 可以嵌套。
func (n *Fanout) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if len(n.Sources) == 0 {
		return nil, nil
	}

	results := make([][]*core.Item, len(n.Sources))
	eg, egCtx := errgroup.WithContext(ctx)
	if n.MaxConcurrent > 0 {
		eg.SetLimit(n.MaxConcurrent)
	}

	for i, src := range n.Sources {
		eg.Go(func() error {
			recallCtx := egCtx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				recallCtx, cancel = context.WithTimeout(egCtx, n.Timeout)
				defer cancel()
			}

			items, err := src.Recall(recallCtx, rctx)
			if err != nil {
				// 单个召回源失败不影响其他召回源
				logging.Ctx(ctx).Warn().Err(err).Str("source", src.Name()).Msg("recall source failed")
				return nil
			}
			for _, it := range items {
				it.PutLabel("recall_source", utils.Label{Value: src.Name(), Source: "recall"})
				it.PutLabel("recall_priority", utils.Label{Value: strconv.Itoa(i), Source: "recall"})
			}
			results[i] = items
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if n.MergeStrategy == MergeWeighted {
		return n.mergeWeighted(results), nil
	}

	var all []*core.Item
	for _, items := range results {
		all = append(all, items...)
	}

	switch n.MergeStrategy {
	case MergeUnion:
		return all, nil
	case MergePriority:
		return n.mergeByPriority(all), nil
	default:
		return n.mergeFirst(all), nil
	}
}

// mergeFirst 按 ID 去重，保留第一次出现的物品并合并后来者的 labels。
func (n *Fanout) mergeFirst(all []*core.Item) []*core.Item {
	if !n.Dedup {
		return all
	}
	seen := make(map[string]*core.Item, len(all))
	out := make([]*core.Item, 0, len(all))
	for _, it := range all {
		if it == nil {
			continue
		}
		if old, ok := seen[it.ID]; ok {
			for k, v := range it.Labels {
				if k == "recall_priority" {
					continue
				}
				old.PutLabel(k, v)
			}
			continue
		}
		seen[it.ID] = it
		out = append(out, it)
	}
	return out
}

// mergeByPriority 按 ID 去重，保留优先级最高（Sources 下标最小）召回源的分数，
// 输出按优先级、再按各召回源内部顺序排列。
func (n *Fanout) mergeByPriority(all []*core.Item) []*core.Item {
	// all 已按 Sources 顺序拼接，第一次出现即优先级最高
	return n.mergeFirst(all)
}

// mergeWeighted 按名次加权：第 i 个召回源共 m 个结果，排第 j 位（从 0 开始）的物品得
// (m-j)·Weights[i] 分，同一物品的得分累加（同一召回源内重复出现也累加）。
// 输出按第一次出现的顺序，分数写入 Score 与 recall_score 特征。
func (n *Fanout) mergeWeighted(results [][]*core.Item) []*core.Item {
	seen := make(map[string]*core.Item)
	var out []*core.Item
	for i, items := range results {
		w := 1.0
		if i < len(n.Weights) {
			w = n.Weights[i]
		}
		for j, it := range items {
			if it == nil {
				continue
			}
			s := float64(len(items)-j) * w
			if old, ok := seen[it.ID]; ok {
				old.Score += s
				continue
			}
			it.Score = s
			seen[it.ID] = it
			out = append(out, it)
		}
	}
	for _, it := range out {
		it.SetFeature(model.FeatureRecallScore, it.Score)
	}
	return out
}
