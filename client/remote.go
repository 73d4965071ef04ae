package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/rushteam/bookrec/catalog"
	"github.com/rushteam/bookrec/conf"
	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pkg/logging"
	"github.com/rushteam/bookrec/rating"
	"github.com/rushteam/bookrec/recommend"
)

const (
	DefaultBaseURL = "http://localhost:5000/api"
	DefaultTimeout = 10 * time.Second
)

// APIError 是服务端返回的错误响应。
//
// 404 和 400 可以用 core.IsNotFound / core.IsInvalidInput 判断。
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return core.NewDomainError(core.ModuleRecommend, core.ErrorCodeNotFound, e.Message)
	case http.StatusBadRequest:
		return core.NewDomainError(core.ModuleRecommend, core.ErrorCodeInvalidInput, e.Message)
	case http.StatusServiceUnavailable:
		return core.NewDomainError(core.ModuleRecommend, core.ErrorCodeUnavailable, e.Message)
	}
	return nil
}

// Client 通过 HTTP 调用远程 bookrec 服务。
// 5xx 和网络错误会重试；连续失败后熔断，熔断期间直接返回错误。
type Client struct {
	baseURL    string
	token      string
	retries    uint
	retryDelay time.Duration
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[struct{}]
}

type Option func(*Client)

// WithHTTPClient 替换底层 http.Client（超时以它为准）。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryDelay 设置首次重试前的等待时间，之后指数退避。
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.retryDelay = d }
}

func New(cfg conf.Client, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		retries:    cfg.Retries,
		retryDelay: 200 * time.Millisecond,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "bookrec-api",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// 4xx 是调用方的问题，不计入熔断
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			return err == nil || (errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
	return c
}

// BaseURL 返回规范化后的服务地址。
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) Books(ctx context.Context, q catalog.Query) ([]catalog.Book, error) {
	params := url.Values{}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Where != "" {
		params.Set("where", q.Where)
	}
	var out []catalog.Book
	err := c.do(ctx, http.MethodGet, "/books", params, nil, &out)
	return out, err
}

func (c *Client) Book(ctx context.Context, id int) (catalog.Book, error) {
	var out catalog.Book
	err := c.do(ctx, http.MethodGet, "/book/"+strconv.Itoa(id), nil, nil, &out)
	return out, err
}

func (c *Client) Recommend(ctx context.Context, req recommend.Request) ([]recommend.Recommendation, error) {
	if req.Ratings == nil {
		req.Ratings = core.Ratings{}
	}
	var out []recommend.Recommendation
	err := c.do(ctx, http.MethodPost, "/recommend", nil, req, &out)
	return out, err
}

func (c *Client) Similar(ctx context.Context, id, n int) ([]recommend.Recommendation, error) {
	params := url.Values{}
	if n > 0 {
		params.Set("n", strconv.Itoa(n))
	}
	var out []recommend.Recommendation
	err := c.do(ctx, http.MethodGet, "/similar/"+strconv.Itoa(id), params, nil, &out)
	return out, err
}

func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var out []string
	err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &out)
	return out, err
}

func (c *Client) Stats(ctx context.Context) (catalog.Stats, error) {
	var out catalog.Stats
	err := c.do(ctx, http.MethodGet, "/stats", nil, nil, &out)
	return out, err
}

func (c *Client) AddRating(ctx context.Context, userID string, bookID, value int) (rating.Rating, error) {
	var out rating.Rating
	err := c.do(ctx, http.MethodPost, "/ratings", nil,
		rating.Rating{UserID: userID, BookID: bookID, Rating: value}, &out)
	return out, err
}

func (c *Client) UserRatings(ctx context.Context, userID string) (core.Ratings, error) {
	out := core.Ratings{}
	err := c.do(ctx, http.MethodGet, "/ratings/"+url.PathEscape(userID), nil, nil, &out)
	return out, err
}

func (c *Client) DeleteRating(ctx context.Context, userID string, bookID int) error {
	return c.do(ctx, http.MethodDelete, "/ratings/"+url.PathEscape(userID)+"/"+strconv.Itoa(bookID), nil, nil, nil)
}

// do 发送一次逻辑请求；同一请求的所有重试共用一个 X-Request-ID。
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	requestID := logging.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	return retry.Do(
		func() error {
			_, err := c.breaker.Execute(func() (struct{}, error) {
				return struct{}{}, c.send(ctx, method, target, requestID, payload, out)
			})
			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.retries+1),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			logging.Ctx(ctx).Debug().Err(err).Uint("attempt", n+1).Str("url", target).Str("request_id", requestID).Msg("retrying request")
		}),
	)
}

func retryable(err error) bool {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Status >= http.StatusInternalServerError
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return false
	case errors.Is(err, context.Canceled):
		return false
	}
	return true
}

func (c *Client) send(ctx context.Context, method, target, requestID string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return retry.Unrecoverable(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var eb struct {
			Error string `json:"error"`
		}
		if data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); json.Unmarshal(data, &eb) == nil && eb.Error != "" {
			apiErr.Message = eb.Error
		}
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
