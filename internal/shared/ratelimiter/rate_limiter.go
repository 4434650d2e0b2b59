// Package ratelimiter は外部APIへのリクエスト頻度を制限します。
package ratelimiter

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"
)

// Waiter は、リクエスト送信前に必要な時間だけ待機するインターフェースです。
type Waiter interface {
	Wait(ctx context.Context) error
}

// RateLimiter はトークンバケット方式で呼び出し頻度を制限します。
type RateLimiter struct {
	limiter *rate.Limiter
}

var _ Waiter = (*RateLimiter)(nil)

// NewRateLimiter は1秒あたり perSecond 回、最大 burst 回まで連続で許可する RateLimiter を生成します。
// perSecond が0以下の場合は制限しません。
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{limiter: rate.NewLimiter(limit, burst)}
}

// Wait はトークンが得られるまで待機します。
// ctx がキャンセルされた場合、または期限内にトークンが得られない場合はエラーを返します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if err := rl.limiter.Wait(ctx); err != nil {
		slog.Debug("rate limiter wait aborted", "error", err)
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}
