// Package client 是 bookrec API 的调用封装。
//
// Recommender 有两个实现：Client 通过 HTTP 调用远程服务，Local 在进程内
// 直接使用 recommend.Engine（内置目录，默认 heuristic 方法）。
package client

import (
	"context"

	"github.com/rushteam/bookrec/catalog"
	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/rating"
	"github.com/rushteam/bookrec/recommend"
)

// Recommender 是 CLI 等调用方看到的统一接口。
type Recommender interface {
	Books(ctx context.Context, q catalog.Query) ([]catalog.Book, error)
	Book(ctx context.Context, id int) (catalog.Book, error)
	Recommend(ctx context.Context, req recommend.Request) ([]recommend.Recommendation, error)
	Similar(ctx context.Context, id, n int) ([]recommend.Recommendation, error)
	Categories(ctx context.Context) ([]string, error)
	Stats(ctx context.Context) (catalog.Stats, error)

	AddRating(ctx context.Context, userID string, bookID, value int) (rating.Rating, error)
	UserRatings(ctx context.Context, userID string) (core.Ratings, error)
	DeleteRating(ctx context.Context, userID string, bookID int) error

	Close() error
}

var (
	_ Recommender = (*Client)(nil)
	_ Recommender = (*Local)(nil)
)
