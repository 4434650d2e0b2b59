// Package jwtmw はSupabaseが発行したアクセストークンを検証するginミドルウェアを提供します。
package jwtmw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"umarket/internal/api"
)

// ContextUserID は認証済みユーザーIDを gin.Context に格納するキーです。
const ContextUserID = "userID"

// AuthRequired はBearerトークンをHS256で検証し、ユーザーIDをコンテキストに設定するミドルウェアを返します。
// audience は検証しません。ユーザーIDは sub、なければ id クレームから取得します。
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Authorizationヘッダーからトークンを取り出す（スキームは大文字小文字を区別しない）
		tokenStr, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abort(c, http.StatusUnauthorized, "Missing bearer token")
			return
		}

		// 2. シークレット未設定はサーバー設定ミス
		if secret == "" {
			abort(c, http.StatusInternalServerError, "server misconfigured")
			return
		}

		// 3. 署名を検証（HS256のみ許可）
		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			abort(c, http.StatusUnauthorized, "Invalid authentication token")
			return
		}

		// 4. ユーザーIDを取り出す
		userID := claimString(claims, "sub")
		if userID == "" {
			userID = claimString(claims, "id")
		}
		if userID == "" {
			abort(c, http.StatusUnauthorized, "Token missing subject")
			return
		}
		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// UserID は AuthRequired が設定したユーザーIDを返します。
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func claimString(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, api.ErrorResponse{Detail: msg})
}
