package supabase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"umarket/internal/platform/metrics"
)

// Row is a single JSON object returned by PostgREST.
type Row = map[string]any

const breakerName = "supabase"

// Client はSupabaseのREST API（PostgREST / GoTrue admin / Storage）を呼び出すクライアントです。
// すべての呼び出しはサーキットブレーカーを通過し、Prometheusに計測されます。
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

// NewClient は設定とHTTPクライアントから Client を生成します。
// httpClient のタイムアウトとレート制限は呼び出し元（platform/http）で設定します。
func NewClient(cfg Config, httpClient *http.Client) *Client {
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		// 10リクエスト以上かつ失敗率60%以上でオープン
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
		IsSuccessful: isSuccessful,
	})

	return &Client{cfg: cfg, http: httpClient, breaker: cb}
}

// Tables returns the configured table layout.
func (c *Client) Tables() Tables { return c.cfg.Tables }

// Select は table の行を取得します。
func (c *Client) Select(ctx context.Context, table string, q *Query) ([]Row, error) {
	body, err := c.do(ctx, "select", table, http.MethodGet, restPath(table), q.Values(), nil, "")
	if err != nil {
		return nil, err
	}
	return decodeRows(body)
}

// Insert は行を作成し、作成された表現を返します。q で embed を含む select を指定できます。
func (c *Client) Insert(ctx context.Context, table string, row any, q *Query) ([]Row, error) {
	body, err := c.do(ctx, "insert", table, http.MethodPost, restPath(table), q.Values(), row, "return=representation")
	if err != nil {
		return nil, err
	}
	return decodeRows(body)
}

// Upsert は onConflict 列で重複をマージしながら行を書き込みます。
func (c *Client) Upsert(ctx context.Context, table, onConflict string, row any) ([]Row, error) {
	q := NewQuery().OnConflict(onConflict)
	body, err := c.do(ctx, "upsert", table, http.MethodPost, restPath(table), q.Values(), row,
		"resolution=merge-duplicates,return=representation")
	if err != nil {
		return nil, err
	}
	return decodeRows(body)
}

// Update は q のフィルタに一致する行を patch で更新し、更新後の行を返します。
func (c *Client) Update(ctx context.Context, table string, q *Query, patch any) ([]Row, error) {
	body, err := c.do(ctx, "update", table, http.MethodPatch, restPath(table), q.Values(), patch, "return=representation")
	if err != nil {
		return nil, err
	}
	return decodeRows(body)
}

// Delete は q のフィルタに一致する行を削除します。一致する行がなくてもエラーにはなりません。
func (c *Client) Delete(ctx context.Context, table string, q *Query) error {
	_, err := c.do(ctx, "delete", table, http.MethodDelete, restPath(table), q.Values(), nil, "")
	return err
}

// AdminUser はGoTrue admin APIからユーザーを取得します。存在しない場合は ErrNotFound を返します。
func (c *Client) AdminUser(ctx context.Context, id string) (Row, error) {
	body, err := c.do(ctx, "get", "auth.users", http.MethodGet, "/auth/v1/admin/users/"+url.PathEscape(id), nil, nil, "")
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var row Row
	if err := json.Unmarshal(body, &row); err != nil {
		return nil, fmt.Errorf("supabase: decode user: %w", err)
	}
	return row, nil
}

// PublicObjectURL returns the public Storage URL of path in the avatar bucket.
func (c *Client) PublicObjectURL(path string) *string {
	return PublicObjectURL(c.cfg.URL, c.cfg.AvatarBucket, path)
}

// PublicObjectURL builds <baseURL>/storage/v1/object/public/<bucket>/<path>.
// Absolute http(s) URLs pass through unchanged; an empty path or base URL yields nil.
func PublicObjectURL(baseURL, bucket, path string) *string {
	if path == "" {
		return nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return &path
	}
	if baseURL == "" {
		return nil
	}
	u := fmt.Sprintf("%s/storage/v1/object/public/%s/%s", strings.TrimRight(baseURL, "/"), bucket, strings.TrimLeft(path, "/"))
	return &u
}

func (c *Client) do(ctx context.Context, op, resource, method, path string, params url.Values, payload any, prefer string) ([]byte, error) {
	start := time.Now()
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.send(ctx, method, path, params, payload, prefer)
	})
	metrics.UpstreamDuration.WithLabelValues(op, resource).Observe(time.Since(start).Seconds())
	metrics.UpstreamRequests.WithLabelValues(op, resource, outcome(err)).Inc()
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			slog.Warn("supabase request rejected by circuit breaker", "operation", op, "resource", resource)
		}
		return nil, err
	}
	return body, nil
}

func (c *Client) send(ctx context.Context, method, path string, params url.Values, payload any, prefer string) ([]byte, error) {
	u := c.cfg.URL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("supabase: encode body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.cfg.APIKey)
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("supabase: read body: %w", err)
	}
	if res.StatusCode >= 400 {
		slog.Warn("supabase error response",
			"method", method, "path", path, "status", res.StatusCode, "body", string(body))
		return nil, newAPIError(res.StatusCode, body)
	}
	return body, nil
}

// decodeRows は配列レスポンスを行に変換します。単一オブジェクトは1行として扱います。
func decodeRows(body []byte) ([]Row, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	if body[0] == '{' {
		var row Row
		if err := json.Unmarshal(body, &row); err != nil {
			return nil, fmt.Errorf("supabase: decode row: %w", err)
		}
		return []Row{row}, nil
	}
	var rows []Row
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("supabase: decode rows: %w", err)
	}
	return rows, nil
}

func restPath(table string) string {
	return "/rest/v1/" + url.PathEscape(table)
}

// isSuccessful はブレーカーの失敗カウント対象を判定します。
// 4xx はリクエスト側の問題なので、上流の障害としては数えません。
func isSuccessful(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return !apiErr.Temporary()
	}
	return false
}

func outcome(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "rejected"
	case errors.As(err, &apiErr) && apiErr.Temporary():
		return "server_error"
	case errors.As(err, &apiErr):
		return "client_error"
	default:
		return "transport_error"
	}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
