package feature

import (
	"context"

	"github.com/rushteam/bookrec/catalog"
	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/model"
	"github.com/rushteam/bookrec/pipeline"
	"github.com/rushteam/bookrec/pkg/logging"
	"github.com/rushteam/bookrec/pkg/utils"
)

// RecentYear 之后（含）出版的书获得 recent 特征。
const RecentYear = 2020

// BookEnrichNode 从目录补充书籍特征（rating / year / recent / num_reviews）
// 与元信息（title / category / level），并写入 category label 供多样性重排使用。
// 目录中不存在的物品被丢弃。
type BookEnrichNode struct {
	Catalog    *catalog.Catalog
	RecentYear int
}

func (n *BookEnrichNode) Name() string        { return "feature.book" }
func (n *BookEnrichNode) Kind() pipeline.Kind { return pipeline.KindFeature }

func (n *BookEnrichNode) Process(
	ctx context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	recent := n.RecentYear
	if recent <= 0 {
		recent = RecentYear
	}

	out := items[:0]
	for _, it := range items {
		b, ok := n.Catalog.Lookup(it.ID)
		if !ok {
			logging.Ctx(ctx).Debug().Str("item", it.ID).Msg("drop item missing from catalog")
			continue
		}
		it.SetFeature(model.FeatureRating, b.Rating)
		it.SetFeature(model.FeatureYear, float64(b.Year))
		it.SetFeature(model.FeatureNumReviews, float64(b.NumReviews))
		isRecent := 0.0
		if b.Year >= recent {
			isRecent = 1
		}
		it.SetFeature(model.FeatureRecent, isRecent)

		it.SetMeta("title", b.Title)
		it.SetMeta("category", b.Category)
		it.SetMeta("level", b.Level)
		it.Labels["category"] = utils.Label{Value: b.Category, Source: "feature"}
		out = append(out, it)
	}
	return out, nil
}
