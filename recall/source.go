// Package recall 生成候选集：目录全集、内容相似、KNN 近邻、热门，以及并发 fan-out 合并。
package recall

import (
	"context"

	"github.com/rushteam/bookrec/core"
)

// Source 表示一个可复用的召回源（目录/内容/KNN/热门/子 Pipeline）。
// 可以理解为"可并发 fan-out 的策略单元"。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// ParamSeedID 是请求参数中的种子书籍 ID，存在时内容召回只以它为种子。
const ParamSeedID = "seed_id"

// seeds 返回内容类召回的种子：优先 seed_id 参数，其次用户喜欢的书。
func seeds(rctx *core.RecommendContext) []string {
	if rctx == nil {
		return nil
	}
	if v, ok := rctx.Param(ParamSeedID); ok {
		if id, ok := v.(string); ok && id != "" {
			return []string{id}
		}
	}
	return rctx.Ratings.Liked()
}
