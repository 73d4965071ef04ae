package rerank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pkg/utils"
)

func items(ids ...string) []*core.Item {
	out := make([]*core.Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, core.NewItem(id))
	}
	return out
}

func idsOf(items []*core.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestTopN(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name  string
		n     int
		limit int
		want  []string
	}{
		{"explicit n", 2, 5, []string{"a", "b"}},
		{"falls back to limit", 0, 3, []string{"a", "b", "c"}},
		{"no limit", 0, 0, []string{"a", "b", "c", "d"}},
		{"n larger than input", 10, 0, []string{"a", "b", "c", "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := (&TopNNode{N: tt.n}).Process(ctx, &core.RecommendContext{Limit: tt.limit}, items("a", "b", "c", "d"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, idsOf(out))
		})
	}
}

func TestDiversity(t *testing.T) {
	in := items("1", "2", "3", "4", "5")
	in[0].SetMeta("category", "ML")
	in[1].SetMeta("category", "ML")
	in[2].PutLabel("category", utils.Label{Value: "DL", Source: "feature"})
	in[3].SetMeta("category", "DL")
	// in[4] 无类别，保留

	out, err := (&Diversity{}).Process(context.Background(), &core.RecommendContext{}, in)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3", "5"}, idsOf(out))

	in = items("1", "2", "3")
	for _, it := range in {
		it.SetMeta("level", "Beginner")
	}
	out, err = (&Diversity{LabelKey: "level", MaxPerKey: 2}).Process(context.Background(), &core.RecommendContext{}, in)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, idsOf(out))
}
