package core

import "github.com/rushteam/bookrec/pkg/utils"

// RecommendContext 承载用户/场景/请求信息，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	UserID string
	Scene  string

	// Ratings 是本次请求携带的用户评分，key 为书籍 ID。
	Ratings Ratings

	// Limit 是期望返回的条数，TopN 等节点在未显式配置 N 时读取它。
	Limit int

	// User 是由 Ratings 推导出的偏好画像，由 feature.PreferenceNode 按需构建。
	User *UserProfile

	// Labels 是用户级标签，可驱动整个 Pipeline 行为
	Labels map[string]utils.Label

	// Params 请求级上下文参数，例如 seed_id（相似书籍）
	Params map[string]any
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}

// Param 读取请求参数。
func (rctx *RecommendContext) Param(key string) (any, bool) {
	if rctx == nil || rctx.Params == nil {
		return nil, false
	}
	v, ok := rctx.Params[key]
	return v, ok
}

// Clone 返回浅拷贝，Ratings / Params / Labels 会复制一份，子 Pipeline 修改 Limit 等字段时不影响上游。
func (rctx *RecommendContext) Clone() *RecommendContext {
	if rctx == nil {
		return nil
	}
	out := *rctx
	if rctx.Ratings != nil {
		out.Ratings = make(Ratings, len(rctx.Ratings))
		for k, v := range rctx.Ratings {
			out.Ratings[k] = v
		}
	}
	if rctx.Params != nil {
		out.Params = make(map[string]any, len(rctx.Params))
		for k, v := range rctx.Params {
			out.Params[k] = v
		}
	}
	if rctx.Labels != nil {
		out.Labels = make(map[string]utils.Label, len(rctx.Labels))
		for k, v := range rctx.Labels {
			out.Labels[k] = v
		}
	}
	return &out
}
