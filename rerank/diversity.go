package rerank

import (
	"context"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pipeline"
)

// Diversity 按类别打散：同一类别最多保留 MaxPerKey 个（默认 1），保持原有顺序。
// 类别来源优先级：label[LabelKey].Value，其次 meta[LabelKey]（string）；取不到类别的物品直接保留。
type Diversity struct {
	LabelKey  string // 默认 "category"
	MaxPerKey int
}

func (n *Diversity) Name() string        { return "rerank.diversity" }
func (n *Diversity) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	key := n.LabelKey
	if key == "" {
		key = "category"
	}
	maxPer := n.MaxPerKey
	if maxPer <= 0 {
		maxPer = 1
	}

	seen := make(map[string]int)
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		cate := ""
		if lbl, ok := it.Labels[key]; ok {
			cate = lbl.Value
		}
		if cate == "" {
			cate, _ = it.Meta[key].(string)
		}
		if cate == "" {
			out = append(out, it)
			continue
		}
		if seen[cate] >= maxPer {
			continue
		}
		seen[cate]++
		out = append(out, it)
	}
	return out, nil
}
