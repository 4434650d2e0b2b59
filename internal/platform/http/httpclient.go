package http

import (
	"net"
	"net/http"
	"time"

	"umarket/internal/shared/ratelimiter"
)

// NewHTTPClient は外部API（Supabase）呼び出し用に設定されたHTTPクライアントを作成します。
//
// 設定:
//   - Proxy: 環境変数（HTTP_PROXYなど）が設定されている場合に使用
//   - Dialer.Timeout: TCP接続タイムアウト（デフォルトより短い）
//   - MaxIdleConnsPerHost: 接続先は単一ホストなのでホスト単位のアイドル接続を増やす
//   - Client.Timeout: リクエスト全体のタイムアウト（呼び出し元から渡される）
//   - limiter: nil でなければ各リクエストの送信前に待機する
//
// 注意:
//   - http.DefaultClientにはタイムアウトがないため、常にカスタムクライアントを使用すること
func NewHTTPClient(timeout time.Duration, limiter ratelimiter.Waiter) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 32,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}

	var rt http.RoundTripper = t
	if limiter != nil {
		rt = &limitedTransport{base: t, limiter: limiter}
	}
	return &http.Client{Timeout: timeout, Transport: rt}
}

// limitedTransport はリクエストごとにレートリミッターで待機してから base に委譲します。
type limitedTransport struct {
	base    http.RoundTripper
	limiter ratelimiter.Waiter
}

func (t *limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}
