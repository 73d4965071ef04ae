package feature

import (
	"context"

	"github.com/rushteam/bookrec/catalog"
	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/model"
	"github.com/rushteam/bookrec/pipeline"
	"github.com/rushteam/bookrec/pkg/utils"
)

// 类别匹配方式。
const (
	// MatchFlat 命中任一偏好类别即为 1
	MatchFlat = "flat"
	// MatchRank 按类别在偏好列表中的位置衰减：1/(rank+1)
	MatchRank = "rank"
)

// BuildProfile 按目录顺序扫描被喜欢的书，得到偏好画像。
// 目录中不存在的书籍 ID 被忽略。
func BuildProfile(cat *catalog.Catalog, userID string, ratings core.Ratings) *core.UserProfile {
	p := core.NewUserProfile(userID, ratings)
	for _, b := range cat.Books() {
		if r, ok := ratings[b.ItemID()]; ok && r >= core.LikedThreshold {
			p.ObserveLiked(b.Category, b.Level)
		}
	}
	return p
}

// PreferenceNode 写入 category_match / level_match 两个偏好特征。
//
// rctx.User 为空时由 rctx.Ratings 构建并回写；Require 为 true 且用户没有
// 喜欢的书时返回空列表。
type PreferenceNode struct {
	Catalog *catalog.Catalog
	Match   string
	Require bool
}

func (n *PreferenceNode) Name() string        { return "feature.preference" }
func (n *PreferenceNode) Kind() pipeline.Kind { return pipeline.KindFeature }

func (n *PreferenceNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if rctx == nil {
		return items, nil
	}
	if rctx.User == nil {
		rctx.User = BuildProfile(n.Catalog, rctx.UserID, rctx.Ratings)
	}
	profile := rctx.User
	if !profile.HasPreferences() {
		if n.Require {
			return []*core.Item{}, nil
		}
		return items, nil
	}

	for _, it := range items {
		b, ok := n.Catalog.Lookup(it.ID)
		if !ok {
			continue
		}
		it.SetFeature(model.FeatureCategoryMatch, n.categoryMatch(profile, b.Category))
		level := 0.0
		if profile.PrefersLevel(b.Level) {
			level = 1
		}
		it.SetFeature(model.FeatureLevelMatch, level)
		if level > 0 || it.Features[model.FeatureCategoryMatch] > 0 {
			it.PutLabel("preference", utils.Label{Value: "match", Source: "feature"})
		}
	}
	return items, nil
}

func (n *PreferenceNode) categoryMatch(p *core.UserProfile, category string) float64 {
	if n.Match == MatchRank {
		if rank, ok := p.CategoryRank(category); ok {
			return 1 / float64(rank+1)
		}
		return 0
	}
	if p.PrefersCategory(category) {
		return 1
	}
	return 0
}
