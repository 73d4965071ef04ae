package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/bookrec/catalog"
	"github.com/rushteam/bookrec/conf"
	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/recommend"
	"github.com/rushteam/bookrec/server"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestBooksJSON(t *testing.T) {
	out, err := run(t, "--json", "books", "--category", "Python")
	require.NoError(t, err)

	var books []catalog.Book
	require.NoError(t, json.Unmarshal([]byte(out), &books))
	require.NotEmpty(t, books)
	for _, b := range books {
		assert.Equal(t, "Python", b.Category)
	}
}

func TestBookTable(t *testing.T) {
	out, err := run(t, "book", "17")
	require.NoError(t, err)
	assert.Contains(t, out, "Fluent Python")
	assert.Contains(t, out, "Luciano Ramalho")

	_, err = run(t, "book", "404")
	assert.True(t, core.IsNotFound(err), err)

	_, err = run(t, "book", "x")
	assert.True(t, core.IsInvalidInput(err), err)
}

func TestRecommendLocalDefaultsToHeuristic(t *testing.T) {
	out, err := run(t, "--json", "recommend", "--rate", "1=5")
	require.NoError(t, err)

	var recs []recommend.Recommendation
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	ids := make([]int, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int{9, 3, 20, 5, 7, 12}, ids)

	out, err = run(t, "recommend")
	require.NoError(t, err)
	assert.Contains(t, out, "No recommendations")

	_, err = run(t, "recommend", "--method", "magic", "--rate", "1=5")
	assert.True(t, core.IsInvalidInput(err), err)
}

func TestSimilarAndStats(t *testing.T) {
	out, err := run(t, "similar", "2", "-n", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Score")

	out, err = run(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "25 books")
	assert.Contains(t, out, "Top rated")

	out, err = run(t, "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "All")
}

func TestRemoteMode(t *testing.T) {
	engine, err := recommend.New(context.Background(), recommend.Options{})
	require.NoError(t, err)
	defer engine.Close()
	ts := httptest.NewServer(server.New(engine, conf.Default().Server).Handler())
	defer ts.Close()

	remote := ts.URL + "/api"
	out, err := run(t, "--remote", remote, "rate", "alice", "1", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "alice rated book 1")

	out, err = run(t, "--remote", remote, "--json", "ratings", "alice")
	require.NoError(t, err)
	assert.JSONEq(t, `{"1":5}`, out)

	// 远程默认方法是 hybrid，有评分时不会回退到 popular
	out, err = run(t, "--remote", remote, "--json", "recommend", "--user", "alice", "-n", "3")
	require.NoError(t, err)
	var recs []recommend.Recommendation
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	assert.Len(t, recs, 3)

	_, err = run(t, "--remote", remote, "unrate", "alice", "1")
	require.NoError(t, err)
	out, err = run(t, "--remote", remote, "--json", "ratings", "alice")
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, out)
}
