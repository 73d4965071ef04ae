package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/bookrec/core"
)

func newVectorFixture(t *testing.T) *MemoryVectorService {
	t.Helper()
	ctx := context.Background()
	svc := NewMemoryVectorService()
	require.NoError(t, svc.CreateCollection(ctx, &core.VectorCreateCollectionRequest{Name: "books", Dimension: 2}))
	require.NoError(t, svc.Insert(ctx, &core.VectorInsertRequest{
		Collection: "books",
		IDs:        []string{"1", "2", "3", "4"},
		Vectors:    [][]float64{{1, 0}, {0, 1}, {2, 0}, {1, 1}},
	}))
	return svc
}

func TestMemoryVectorSearchTiesKeepInsertionOrder(t *testing.T) {
	svc := newVectorFixture(t)

	res, err := svc.Search(context.Background(), &core.VectorSearchRequest{
		Collection: "books",
		Vector:     []float64{1, 0},
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 4)

	ids := make([]string, 0, len(res.Items))
	for _, it := range res.Items {
		ids = append(ids, it.ID)
	}
	// 1 与 3 同向（cosine 都为 1），保持插入顺序
	assert.Equal(t, []string{"1", "3", "4", "2"}, ids)
	assert.InDelta(t, 1.0, res.Items[0].Score, 1e-9)
	assert.InDelta(t, 0.0, res.Items[3].Score, 1e-9)
}

func TestMemoryVectorSearchExcludeAndTopK(t *testing.T) {
	svc := newVectorFixture(t)

	res, err := svc.Search(context.Background(), &core.VectorSearchRequest{
		Collection: "books",
		Vector:     []float64{1, 0},
		TopK:       2,
		ExcludeIDs: []string{"1"},
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "3", res.Items[0].ID)
	assert.Equal(t, "4", res.Items[1].ID)
}

func TestMemoryVectorMetrics(t *testing.T) {
	svc := newVectorFixture(t)
	ctx := context.Background()

	res, err := svc.Search(ctx, &core.VectorSearchRequest{Collection: "books", Vector: []float64{1, 0}, Metric: "inner_product", TopK: 1})
	require.NoError(t, err)
	assert.Equal(t, "3", res.Items[0].ID)
	assert.InDelta(t, 2.0, res.Items[0].Score, 1e-9)

	res, err = svc.Search(ctx, &core.VectorSearchRequest{Collection: "books", Vector: []float64{2, 0}, Metric: "euclidean", TopK: 1})
	require.NoError(t, err)
	assert.Equal(t, "3", res.Items[0].ID)
	assert.InDelta(t, 0.0, res.Items[0].Distance, 1e-9)

	_, err = svc.Search(ctx, &core.VectorSearchRequest{Collection: "books", Vector: []float64{1, 0}, Metric: "manhattan"})
	assert.True(t, core.IsInvalidInput(err))
}

func TestMemoryVectorErrors(t *testing.T) {
	svc := newVectorFixture(t)
	ctx := context.Background()

	_, err := svc.Search(ctx, &core.VectorSearchRequest{Collection: "nope", Vector: []float64{1, 0}})
	assert.True(t, core.IsNotFound(err))

	_, err = svc.Search(ctx, &core.VectorSearchRequest{Collection: "books", Vector: []float64{1}})
	assert.True(t, core.IsInvalidInput(err))

	err = svc.CreateCollection(ctx, &core.VectorCreateCollectionRequest{Name: "books", Dimension: 2})
	assert.True(t, core.IsInvalidInput(err))

	err = svc.Insert(ctx, &core.VectorInsertRequest{Collection: "books", IDs: []string{"9"}, Vectors: [][]float64{{1, 2, 3}}})
	assert.True(t, core.IsInvalidInput(err))
}

func TestMemoryVectorGetDeleteDrop(t *testing.T) {
	svc := newVectorFixture(t)
	ctx := context.Background()

	v, err := svc.Get(ctx, "books", "4")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, v)

	require.NoError(t, svc.Delete(ctx, &core.VectorDeleteRequest{Collection: "books", IDs: []string{"4"}}))
	_, err = svc.Get(ctx, "books", "4")
	assert.True(t, core.IsNotFound(err))

	res, err := svc.Search(ctx, &core.VectorSearchRequest{Collection: "books", Vector: []float64{1, 1}})
	require.NoError(t, err)
	assert.Len(t, res.Items, 3)

	ok, err := svc.HasCollection(ctx, "books")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, svc.DropCollection(ctx, "books"))
	ok, err = svc.HasCollection(ctx, "books")
	require.NoError(t, err)
	assert.False(t, ok)
}
