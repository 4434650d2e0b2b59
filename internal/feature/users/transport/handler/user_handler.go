// Package handler はusersフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"umarket/internal/api"
	"umarket/internal/feature/users/domain"
	"umarket/internal/feature/users/domain/entity"
	"umarket/internal/feature/users/transport/http/dto"
)

// UserUsecase はプロフィール取得のユースケースを定義します。
type UserUsecase interface {
	GetProfile(ctx context.Context, id string) (*entity.Profile, error)
}

// UserHandler は公開プロフィールのHTTPリクエストを処理します。
type UserHandler struct {
	uc UserUsecase
}

// NewUserHandler はUserHandlerの新しいインスタンスを生成します。
func NewUserHandler(uc UserUsecase) *UserHandler {
	return &UserHandler{uc: uc}
}

// GetProfile は GET /users/:id を処理します。
// アカウントIDはUUIDなので、UUIDとして解釈できないIDは存在しないユーザーとして404を返します。
func (h *UserHandler) GetProfile(c *gin.Context) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", c.Param("id"), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		slog.Warn("malformed user id", "id", c.Param("id"), "remote_addr", c.ClientIP())
		c.JSON(http.StatusNotFound, api.ErrorResponse{Detail: domain.ErrUserNotFound.Error()})
		return
	}

	p, err := h.uc.GetProfile(c.Request.Context(), id.String())
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Detail: err.Error()})
			return
		}
		slog.Error("get profile failed", "user_id", id.String(), "error", err)
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Detail: "Upstream data store error"})
		return
	}
	c.JSON(http.StatusOK, dto.FromEntity(*p))
}
