package recall

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/bookrec/catalog"
	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/feature"
	"github.com/rushteam/bookrec/pipeline"
	"github.com/rushteam/bookrec/store"
)

type staticSource struct {
	name  string
	ids   []string
	delay time.Duration
	err   error
}

func (s *staticSource) Name() string { return s.name }

func (s *staticSource) Recall(ctx context.Context, _ *core.RecommendContext) ([]*core.Item, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	out := make([]*core.Item, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, core.NewItem(id))
	}
	return out, nil
}

func ids(items []*core.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestFanoutMergeFollowsSourceOrder(t *testing.T) {
	f := &Fanout{
		Dedup: true,
		Sources: []Source{
			// 第一个召回源更慢，合并结果仍然以它在前
			&staticSource{name: "slow", ids: []string{"1", "2"}, delay: 20 * time.Millisecond},
			&staticSource{name: "fast", ids: []string{"2", "3"}},
		},
	}
	items, err := f.Process(context.Background(), &core.RecommendContext{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids(items))
	assert.Equal(t, "slow|fast", items[1].Labels["recall_source"].Value)
	assert.Equal(t, "0", items[1].Labels["recall_priority"].Value)
}

func TestFanoutUnionAndFailures(t *testing.T) {
	f := &Fanout{
		MergeStrategy: MergeUnion,
		Timeout:       10 * time.Millisecond,
		MaxConcurrent: 1,
		Sources: []Source{
			&staticSource{name: "a", ids: []string{"1"}},
			&staticSource{name: "broken", err: errors.New("boom")},
			&staticSource{name: "timeout", ids: []string{"9"}, delay: time.Second},
			&staticSource{name: "b", ids: []string{"1"}},
		},
	}
	items, err := f.Recall(context.Background(), &core.RecommendContext{})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "1"}, ids(items))
}

func TestFanoutWeightedMerge(t *testing.T) {
	f := &Fanout{
		MergeStrategy: MergeWeighted,
		Weights:       []float64{0.5, 0.3},
		Sources: []Source{
			&staticSource{name: "content", ids: []string{"1", "2", "3", "4"}},
			&staticSource{name: "knn", ids: []string{"3", "5", "3"}},
		},
	}
	items, err := f.Recall(context.Background(), &core.RecommendContext{})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(items))

	// content: 4·0.5, 3·0.5, 2·0.5, 1·0.5；knn: 3·0.3, 2·0.3, 1·0.3
	want := map[string]float64{"1": 2, "2": 1.5, "3": 1 + 0.9 + 0.3, "4": 0.5, "5": 0.6}
	for _, it := range items {
		assert.InDelta(t, want[it.ID], it.Score, 1e-9, it.ID)
		assert.InDelta(t, want[it.ID], it.Features["recall_score"], 1e-9, it.ID)
	}
}

func indexedCatalog(t *testing.T) (*catalog.Catalog, *store.MemoryVectorService) {
	t.Helper()
	cat := catalog.Builtin()
	vecs := store.NewMemoryVectorService()
	_, err := (&feature.Indexer{Catalog: cat, Vectors: vecs}).Index(context.Background())
	require.NoError(t, err)
	return cat, vecs
}

func TestContentRecallExcludesSeeds(t *testing.T) {
	_, vecs := indexedCatalog(t)
	r := &ContentRecall{Vectors: vecs, Collection: feature.CollectionTFIDF, TopK: 5}

	items, err := r.Recall(context.Background(), &core.RecommendContext{
		Params: map[string]any{ParamSeedID: "2"},
	})
	require.NoError(t, err)
	require.Len(t, items, 5)
	for i, it := range items {
		assert.NotEqual(t, "2", it.ID)
		if i > 0 {
			assert.GreaterOrEqual(t, items[i-1].Score, it.Score)
		}
	}

	none, err := r.Recall(context.Background(), &core.RecommendContext{
		Params: map[string]any{ParamSeedID: "404"},
	})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestContentRecallUsesLikedBooks(t *testing.T) {
	_, vecs := indexedCatalog(t)
	r := &ContentRecall{Vectors: vecs, Collection: feature.CollectionTFIDF}

	items, err := r.Recall(context.Background(), &core.RecommendContext{
		Ratings: core.Ratings{"2": 5, "6": 4, "7": 2},
	})
	require.NoError(t, err)
	// 25 本书去掉两本喜欢的；评分低的 7 不是种子，仍在候选中
	assert.Len(t, items, 23)
	assert.Contains(t, ids(items), "7")
	assert.NotContains(t, ids(items), "6")
}

func TestKNNRecall(t *testing.T) {
	_, vecs := indexedCatalog(t)
	r := &KNNRecall{Vectors: vecs, Collection: feature.CollectionKNN, K: 3}

	items, err := r.Recall(context.Background(), &core.RecommendContext{
		Ratings: core.Ratings{"1": 5, "2": 5, "3": 5, "4": 5},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, items)
	assert.LessOrEqual(t, len(items), 9)

	seen := map[string]bool{}
	for _, it := range items {
		assert.False(t, seen[it.ID], "duplicate %s", it.ID)
		seen[it.ID] = true
		assert.NotEqual(t, "4", it.Meta["knn_seed"])
	}
}

func TestKNNRecallKeepDuplicates(t *testing.T) {
	_, vecs := indexedCatalog(t)
	rctx := &core.RecommendContext{Ratings: core.Ratings{"1": 5, "3": 5, "9": 5}}

	dedup := &KNNRecall{Vectors: vecs, Collection: feature.CollectionKNN, K: 5}
	unique, err := dedup.Recall(context.Background(), rctx)
	require.NoError(t, err)

	keep := &KNNRecall{Vectors: vecs, Collection: feature.CollectionKNN, K: 5, KeepDuplicates: true}
	all, err := keep.Recall(context.Background(), rctx)
	require.NoError(t, err)
	assert.Len(t, all, 15)
	assert.GreaterOrEqual(t, len(all), len(unique))
}

type staticRatings map[string]core.Ratings

func (s staticRatings) All(context.Context) (map[string]core.Ratings, error) { return s, nil }

func TestSVDRecall(t *testing.T) {
	cat := catalog.Builtin()
	r := &SVDRecall{
		Catalog: cat,
		Ratings: staticRatings{
			"alice": {"1": 5, "3": 5},
			"bob":   {"1": 5, "3": 5, "9": 5},
			// 请求用户已保存的评分被请求评分替换
			"carol": {"20": 5},
		},
		Components: 1,
	}
	items, err := r.Recall(context.Background(), &core.RecommendContext{
		UserID:  "carol",
		Ratings: core.Ratings{"1": 5, "3": 5},
	})
	require.NoError(t, err)
	require.Len(t, items, cat.Len()-2)

	// 只有 bob 评过 9，秩 1 近似下它是唯一有正预测值的未评分书
	assert.Equal(t, "9", items[0].ID)
	assert.Greater(t, items[0].Score, 0.0)
	assert.LessOrEqual(t, items[0].Features["predicted_rating"], 5.0)
	for _, it := range items[1:] {
		assert.InDelta(t, 0, it.Score, 1e-9, it.ID)
		assert.NotContains(t, []string{"1", "3"}, it.ID)
	}

	none, err := r.Recall(context.Background(), &core.RecommendContext{UserID: "dave"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPopularRecall(t *testing.T) {
	ctx := context.Background()
	cat := catalog.Builtin()
	kv := store.NewMemoryStore()
	defer kv.Close()

	r := &PopularRecall{Catalog: cat, Store: kv, Key: "popular:test"}
	items, err := r.Recall(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, items, cat.Len())

	require.NoError(t, kv.ZAdd(ctx, "popular:test", 10, "12"))
	require.NoError(t, kv.ZAdd(ctx, "popular:test", 30, "3"))
	require.NoError(t, kv.ZAdd(ctx, "popular:test", 20, "999"))
	items, err = r.Recall(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "12"}, ids(items))
}

func TestPipelineSourceScalesLimit(t *testing.T) {
	var seen int
	p := &pipeline.Pipeline{Name: "sub", Nodes: []pipeline.Node{limitRecorder{&seen}}}
	src := &PipelineSource{Pipeline: p, Scale: 2}

	rctx := &core.RecommendContext{Limit: 6}
	_, err := src.Recall(context.Background(), rctx)
	require.NoError(t, err)
	assert.Equal(t, 12, seen)
	assert.Equal(t, 6, rctx.Limit)
	assert.Equal(t, "sub", src.Name())
}

type limitRecorder struct{ seen *int }

func (limitRecorder) Name() string        { return "recorder" }
func (limitRecorder) Kind() pipeline.Kind { return pipeline.KindRecall }
func (p limitRecorder) Process(_ context.Context, rctx *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	*p.seen = rctx.Limit
	return items, nil
}
