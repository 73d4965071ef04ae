package client

import (
	"context"

	"github.com/rushteam/bookrec/catalog"
	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/rating"
	"github.com/rushteam/bookrec/recommend"
)

// Local 在进程内运行推荐引擎，不需要服务端。
type Local struct {
	engine *recommend.Engine
}

// NewLocal 构建进程内引擎；未指定默认方法时使用 heuristic。
func NewLocal(ctx context.Context, opts recommend.Options) (*Local, error) {
	if opts.DefaultMethod == "" {
		opts.DefaultMethod = recommend.MethodHeuristic
	}
	e, err := recommend.New(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Local{engine: e}, nil
}

// Engine 返回底层引擎。
func (l *Local) Engine() *recommend.Engine { return l.engine }

func (l *Local) Books(_ context.Context, q catalog.Query) ([]catalog.Book, error) {
	return l.engine.Catalog().List(q)
}

func (l *Local) Book(_ context.Context, id int) (catalog.Book, error) {
	return l.engine.Catalog().Get(id)
}

func (l *Local) Recommend(ctx context.Context, req recommend.Request) ([]recommend.Recommendation, error) {
	return l.engine.Recommend(ctx, req)
}

func (l *Local) Similar(ctx context.Context, id, n int) ([]recommend.Recommendation, error) {
	return l.engine.Similar(ctx, id, n)
}

func (l *Local) Categories(context.Context) ([]string, error) {
	return l.engine.Catalog().Categories(), nil
}

func (l *Local) Stats(context.Context) (catalog.Stats, error) {
	return l.engine.Catalog().Stats(), nil
}

func (l *Local) AddRating(ctx context.Context, userID string, bookID, value int) (rating.Rating, error) {
	return l.engine.Ratings().Add(ctx, userID, bookID, value)
}

func (l *Local) UserRatings(ctx context.Context, userID string) (core.Ratings, error) {
	return l.engine.Ratings().Get(ctx, userID)
}

func (l *Local) DeleteRating(ctx context.Context, userID string, bookID int) error {
	return l.engine.Ratings().Delete(ctx, userID, bookID)
}

func (l *Local) Close() error { return l.engine.Close() }
