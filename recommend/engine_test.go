package recommend

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/feature"
	"github.com/rushteam/bookrec/store"
)

func newEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	e, err := New(context.Background(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func bookIDs(recs []Recommendation) []int {
	out := make([]int, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}

func TestHeuristicScores(t *testing.T) {
	e := newEngine(t, Options{})
	tests := []struct {
		name    string
		ratings core.Ratings
		n       int
		want    []int
		scores  []float64
	}{
		{
			name:    "single liked book",
			ratings: core.Ratings{"1": 5},
			want:    []int{9, 3, 20, 5, 7, 12},
			scores:  []float64{121, 114, 101, 96, 93, 72},
		},
		{
			// 12 与 17 同为 72 分，按目录顺序
			name:    "ties keep catalog order",
			ratings: core.Ratings{"1": 5},
			n:       8,
			want:    []int{9, 3, 20, 5, 7, 12, 17, 19},
			scores:  []float64{121, 114, 101, 96, 93, 72, 72, 70},
		},
		{
			// 16、19 出版于 2020，含近年加分
			name:    "year 2020 counts as recent",
			ratings: core.Ratings{"12": 5},
			want:    []int{19, 17, 1, 9, 16, 15},
			scores:  []float64{120, 72, 71, 71, 69, 65},
		},
		{
			name:    "recent book in liked category",
			ratings: core.Ratings{"4": 5},
			want:    []int{16, 18, 20, 11, 5, 2},
			scores:  []float64{99, 71, 71, 70, 66, 65},
		},
		{
			name:    "several liked categories and levels",
			ratings: core.Ratings{"4": 5, "6": 4, "17": 4},
			n:       8,
			want:    []int{16, 25, 2, 24, 13, 12, 1, 9},
			scores:  []float64{119, 117, 115, 115, 114, 72, 71, 71},
		},
		{
			name:    "disliked rated book is excluded but adds no preference",
			ratings: core.Ratings{"1": 5, "2": 2},
			want:    []int{9, 3, 20, 5, 7, 12},
			scores:  []float64{121, 114, 101, 96, 93, 72},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := e.Recommend(context.Background(), Request{
				Method:  MethodHeuristic,
				Ratings: tt.ratings,
				N:       tt.n,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, bookIDs(recs))

			scores := make([]float64, 0, len(recs))
			for _, r := range recs {
				scores = append(scores, r.Score)
			}
			assert.InDeltaSlice(t, tt.scores, scores, 1e-9)
		})
	}
}

func TestHeuristicWithoutLikedBooks(t *testing.T) {
	e := newEngine(t, Options{})
	for _, ratings := range []core.Ratings{nil, {"1": 2, "4": 3}} {
		recs, err := e.Recommend(context.Background(), Request{Method: MethodHeuristic, Ratings: ratings})
		require.NoError(t, err)
		assert.Empty(t, recs)
	}
}

func TestCollaborativeDecaysCategoryWeight(t *testing.T) {
	e := newEngine(t, Options{})
	recs, err := e.Recommend(context.Background(), Request{
		Method:  MethodCollaborative,
		Ratings: core.Ratings{"1": 5, "3": 4, "2": 5},
		N:       25,
	})
	require.NoError(t, err)

	byID := map[int]float64{}
	for _, r := range recs {
		byID[r.ID] = r.Score
		assert.NotContains(t, []int{1, 2, 3}, r.ID)
	}
	assert.InDelta(t, 121, byID[9], 1e-9)
	assert.InDelta(t, 75, byID[6], 1e-9)
}

func TestContentExcludesOnlyLikedSeeds(t *testing.T) {
	e := newEngine(t, Options{})
	ctx := context.Background()

	liked, err := e.Recommend(ctx, Request{Method: MethodContent, Ratings: core.Ratings{"1": 5}})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 20, 5, 7, 9, 19}, bookIDs(liked))

	// 评分低的 3 不是种子，仍按相似度排在第一
	recs, err := e.Recommend(ctx, Request{Method: MethodContent, Ratings: core.Ratings{"1": 5, "3": 2}})
	require.NoError(t, err)
	assert.Equal(t, bookIDs(liked), bookIDs(recs))
	for i, r := range recs {
		assert.NotEqual(t, 1, r.ID)
		if i > 0 {
			assert.GreaterOrEqual(t, recs[i-1].Score, r.Score)
		}
	}
}

func TestHybridFallsBackToPopular(t *testing.T) {
	e := newEngine(t, Options{})
	ctx := context.Background()

	hybrid, err := e.Recommend(ctx, Request{})
	require.NoError(t, err)
	popular, err := e.Recommend(ctx, Request{Method: MethodPopular})
	require.NoError(t, err)
	assert.Equal(t, bookIDs(popular), bookIDs(hybrid))

	for i := 1; i < len(popular); i++ {
		assert.GreaterOrEqual(t, popular[i-1].Rating, popular[i].Rating)
	}
}

func TestHybridMergesAndSortsByRating(t *testing.T) {
	e := newEngine(t, Options{})
	recs, err := e.Recommend(context.Background(), Request{
		Method:  "Hybrid",
		Ratings: core.Ratings{"1": 5, "6": 4},
		N:       4,
	})
	require.NoError(t, err)
	require.Len(t, recs, 4)
	for i, r := range recs {
		assert.NotContains(t, []int{1, 6}, r.ID)
		if i > 0 {
			assert.GreaterOrEqual(t, recs[i-1].Rating, r.Rating)
		}
	}
}

func TestKNN(t *testing.T) {
	e := newEngine(t, Options{})
	recs, err := e.Recommend(context.Background(), Request{
		Method:  MethodKNN,
		Ratings: core.Ratings{"1": 5, "9": 4},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, recs)
	assert.LessOrEqual(t, len(recs), DefaultLimit)
	for _, r := range recs {
		assert.NotContains(t, []int{1, 9}, r.ID)
	}
}

func TestSimilar(t *testing.T) {
	e := newEngine(t, Options{})
	ctx := context.Background()

	recs, err := e.Similar(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, recs, DefaultSimilarLimit)
	for _, r := range recs {
		assert.NotEqual(t, 2, r.ID)
	}

	none, err := e.Similar(ctx, 404, 3)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestInvalidRequests(t *testing.T) {
	e := newEngine(t, Options{})
	ctx := context.Background()

	tests := []struct {
		name string
		req  Request
	}{
		{"unknown method", Request{Method: "magic", Ratings: core.Ratings{"1": 5}}},
		{"similar is not a method", Request{Method: pipelineSimilar}},
		{"n too large", Request{N: MaxLimit + 1}},
		{"negative n", Request{N: -1}},
		{"rating out of range", Request{Ratings: core.Ratings{"1": 9}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Recommend(ctx, tt.req)
			require.Error(t, err)
			assert.True(t, core.IsInvalidInput(err), err)
		})
	}

	_, err := e.Similar(ctx, 1, 100)
	assert.True(t, core.IsInvalidInput(err))
}

func TestStoredRatingsByUser(t *testing.T) {
	e := newEngine(t, Options{})
	ctx := context.Background()

	_, err := e.Ratings().Add(ctx, "alice", 1, 5)
	require.NoError(t, err)

	recs, err := e.Recommend(ctx, Request{Method: MethodHeuristic, UserID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, []int{9, 3, 20, 5, 7, 12}, bookIDs(recs))
}

func TestMethods(t *testing.T) {
	e := newEngine(t, Options{DefaultMethod: MethodHeuristic})
	assert.Equal(t, []string{"collaborative", "content", "heuristic", "hybrid", "knn", "popular", "svd", "weighted"}, e.Methods())
	assert.Equal(t, MethodHeuristic, e.DefaultMethod())

	_, err := New(context.Background(), Options{DefaultMethod: "nope"})
	assert.Error(t, err)
}

func TestPipelineDirOverride(t *testing.T) {
	dir := t.TempDir()
	yml := `pipeline:
  name: popular
  nodes:
    - type: recall.catalog
      config:
        category: Python
    - type: feature.book
    - type: rerank.topn
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "popular.yaml"), []byte(yml), 0o600))

	e := newEngine(t, Options{PipelineDir: dir})
	recs, err := e.Recommend(context.Background(), Request{Method: MethodPopular, N: 50})
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	for _, r := range recs {
		assert.Equal(t, "Python", r.Category, strconv.Itoa(r.ID))
	}
}

func TestHybridWithoutLikedBooksIsEmpty(t *testing.T) {
	e := newEngine(t, Options{})

	// 有评分但没有喜欢的书时不回退到热门
	recs, err := e.Recommend(context.Background(), Request{Ratings: core.Ratings{"1": 2}})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestWeighted(t *testing.T) {
	e := newEngine(t, Options{})
	ctx := context.Background()

	popular, err := e.Recommend(ctx, Request{Method: MethodPopular})
	require.NoError(t, err)
	for _, ratings := range []core.Ratings{nil, {"1": 2, "4": 3}} {
		recs, err := e.Recommend(ctx, Request{Method: MethodWeighted, Ratings: ratings})
		require.NoError(t, err)
		assert.Equal(t, bookIDs(popular), bookIDs(recs))
	}

	recs, err := e.Recommend(ctx, Request{Method: MethodWeighted, Ratings: core.Ratings{"1": 5, "2": 1}, N: 4})
	require.NoError(t, err)
	require.Len(t, recs, 4)
	for i, r := range recs {
		assert.NotEqual(t, 1, r.ID)
		// 名次得分为正，总分高于评分项
		assert.Greater(t, r.Score, 0.2*r.Rating)
		if i > 0 {
			assert.GreaterOrEqual(t, recs[i-1].Score, r.Score)
		}
	}
}

func TestSVD(t *testing.T) {
	dir := t.TempDir()
	yml := `pipeline:
  name: svd
  nodes:
    - type: recall.svd
      config:
        components: 1
    - type: feature.book
    - type: rerank.topn
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "svd.yaml"), []byte(yml), 0o600))
	e := newEngine(t, Options{PipelineDir: dir})
	ctx := context.Background()

	for _, r := range []struct {
		user string
		book int
	}{{"alice", 1}, {"alice", 3}, {"bob", 1}, {"bob", 3}, {"bob", 9}} {
		_, err := e.Ratings().Add(ctx, r.user, r.book, 5)
		require.NoError(t, err)
	}

	recs, err := e.Recommend(ctx, Request{Method: MethodSVD, Ratings: core.Ratings{"1": 5, "3": 5}})
	require.NoError(t, err)
	require.Len(t, recs, DefaultLimit)
	assert.Equal(t, 9, recs[0].ID)
	assert.Greater(t, recs[0].Score, 0.0)
	for _, r := range recs {
		assert.NotContains(t, []int{1, 3}, r.ID)
	}

	none, err := e.Recommend(ctx, Request{Method: MethodSVD, UserID: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCloseKeepsCallerVectors(t *testing.T) {
	ctx := context.Background()
	vecs := store.NewMemoryVectorService()

	e, err := New(ctx, Options{Vectors: vecs})
	require.NoError(t, err)
	require.NoError(t, e.Close())

	ok, err := vecs.HasCollection(ctx, feature.CollectionTFIDF)
	require.NoError(t, err)
	assert.True(t, ok)
	v, err := vecs.Get(ctx, feature.CollectionTFIDF, "1")
	require.NoError(t, err)
	assert.NotEmpty(t, v)
}
