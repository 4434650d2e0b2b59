package jwtmw

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Generator はSupabase互換のアクセストークンを発行します。
// ローカル開発（cmd の token サブコマンド）とテストで使います。
type Generator interface {
	GenerateToken(userID, email string) (string, error)
}

type generator struct {
	secret     []byte
	expiration time.Duration
}

// NewGenerator は secret で署名し expiration で失効するトークンの Generator を生成します。
func NewGenerator(secret string, expiration time.Duration) Generator {
	return &generator{secret: []byte(secret), expiration: expiration}
}

// GenerateToken は GoTrue と同じ形のクレーム（sub / email / role / aud）で署名します。
func (g *generator) GenerateToken(userID, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  "authenticated",
		"aud":   "authenticated",
		"iat":   now.Unix(),
		"exp":   now.Add(g.expiration).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
