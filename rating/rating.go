// Package rating 保存用户对书籍的星级评分。
//
// 每个用户一个 Hash：ratings:{userID}，字段为书籍 ID，值为 JSON 编码的 Rating；
// 评过分的用户记录在有序集合 rating_users 中，供矩阵分解读取全部用户。
package rating

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/rushteam/bookrec/catalog"
	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pkg/logging"
	"github.com/rushteam/bookrec/pkg/metrics"
)

// Rating 是一条评分记录。
type Rating struct {
	UserID    string    `json:"user_id" validate:"required,max=128"`
	BookID    int       `json:"book_id" validate:"gt=0"`
	Rating    int       `json:"rating" validate:"gte=1,lte=5"`
	CreatedAt time.Time `json:"created_at"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Service 读写评分，书籍必须在目录中。
type Service struct {
	store   core.KeyValueStore
	catalog *catalog.Catalog
	now     func() time.Time
}

func NewService(kv core.KeyValueStore, cat *catalog.Catalog) *Service {
	return &Service{store: kv, catalog: cat, now: time.Now}
}

// usersKey 是评过分的用户集合。
const usersKey = "rating_users"

func key(userID string) string {
	return "ratings:" + userID
}

func invalid(msg string) error {
	return core.NewDomainError(core.ModuleRating, core.ErrorCodeInvalidInput, msg)
}

// Add 写入（或覆盖）一条评分。
func (s *Service) Add(ctx context.Context, userID string, bookID, value int) (Rating, error) {
	r := Rating{UserID: userID, BookID: bookID, Rating: value, CreatedAt: s.now().UTC()}
	if err := validate.Struct(r); err != nil {
		return Rating{}, invalid(describe(err))
	}
	if _, err := s.catalog.Get(bookID); err != nil {
		return Rating{}, err
	}

	data, err := json.Marshal(r)
	if err != nil {
		return Rating{}, fmt.Errorf("encode rating: %w", err)
	}
	if err := s.store.HSet(ctx, key(userID), strconv.Itoa(bookID), data); err != nil {
		return Rating{}, fmt.Errorf("save rating: %w", err)
	}
	if err := s.store.ZAdd(ctx, usersKey, 0, userID); err != nil {
		return Rating{}, fmt.Errorf("save rating user: %w", err)
	}
	metrics.RatingsWritten.Inc()
	logging.Ctx(ctx).Debug().Str("user_id", userID).Int("book_id", bookID).Int("rating", value).Msg("rating saved")
	return r, nil
}

// Get 返回用户全部评分（书籍 ID -> 星级），没有评分时返回空 map。
func (s *Service) Get(ctx context.Context, userID string) (core.Ratings, error) {
	if userID == "" {
		return nil, invalid("user_id is required")
	}
	raw, err := s.store.HGetAll(ctx, key(userID))
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}
	out := make(core.Ratings, len(raw))
	for field, data := range raw {
		var r Rating
		if err := json.Unmarshal(data, &r); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("user_id", userID).Str("book_id", field).Msg("skip corrupt rating")
			continue
		}
		out[field] = r.Rating
	}
	return out, nil
}

// All 返回全部用户的评分，跳过已没有评分的用户。
func (s *Service) All(ctx context.Context) (map[string]core.Ratings, error) {
	users, err := s.store.ZRange(ctx, usersKey, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("load rating users: %w", err)
	}
	out := make(map[string]core.Ratings, len(users))
	for _, u := range users {
		r, err := s.Get(ctx, u)
		if err != nil {
			return nil, err
		}
		if len(r) > 0 {
			out[u] = r
		}
	}
	return out, nil
}

// Delete 删除一条评分，不存在时不报错。
func (s *Service) Delete(ctx context.Context, userID string, bookID int) error {
	if userID == "" {
		return invalid("user_id is required")
	}
	if err := s.store.HDel(ctx, key(userID), strconv.Itoa(bookID)); err != nil {
		return fmt.Errorf("delete rating: %w", err)
	}
	return nil
}

func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.StructField() {
	case "UserID":
		if fe.Tag() == "max" {
			return "user_id must be at most " + fe.Param() + " characters"
		}
		return "user_id is required"
	case "BookID":
		return "book_id must be a positive integer"
	case "Rating":
		return "rating must be an integer between 1 and 5"
	default:
		return fe.Error()
	}
}
