// Package router はHTTPルーティングを定義します。
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"umarket/internal/app/di"
	"umarket/internal/platform/http/handler"
	jwtmw "umarket/internal/platform/jwt"
	"umarket/internal/platform/metrics"
)

// Options は認証とCORSの設定です。
type Options struct {
	JWTSecret      string
	AllowedOrigins []string
}

// NewRouter はミドルウェアと全ルートを登録した gin.Engine を返します。
func NewRouter(h di.Handlers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), metrics.Middleware(), cors.New(corsConfig(opts.AllowedOrigins)))

	// 認証不要
	// 導通確認用
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	r.GET("/metrics", metrics.Handler())

	r.GET("/listings", h.Listings.List)
	r.GET("/listings/:id", h.Listings.Get)
	r.GET("/users/:id", h.Users.GetProfile)

	// 認証必須のルート
	// → リクエストヘッダーに Supabase の JWT が必要になる
	auth := r.Group("/")
	auth.Use(jwtmw.AuthRequired(opts.JWTSecret))
	{
		auth.POST("/listings", h.Listings.Create)
		auth.PATCH("/listings/:id", h.Listings.Update)
		auth.DELETE("/listings/:id", h.Listings.Delete)

		auth.GET("/orders", h.Orders.List)
		auth.POST("/orders", h.Orders.Create)
		auth.PATCH("/orders/:id", h.Orders.Update)
		auth.POST("/orders/:id/confirm-item", h.Orders.ConfirmItem)
		auth.POST("/orders/:id/confirm-payment", h.Orders.ConfirmPayment)

		auth.GET("/reports", h.Reports.List)
		auth.POST("/reports", h.Reports.Create)
		auth.PATCH("/reports/:id", h.Reports.Update)
	}

	return r
}

// corsConfig は許可リストのオリジンだけを資格情報付きで許可します。
// 許可リストが空の場合は全オリジンを資格情報なしで許可します。
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
