// Package handler はlistingsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"umarket/internal/api"
	"umarket/internal/feature/listings/domain"
	"umarket/internal/feature/listings/domain/entity"
	"umarket/internal/feature/listings/transport/http/dto"
	"umarket/internal/feature/listings/usecase"
	jwtmw "umarket/internal/platform/jwt"
	"umarket/internal/shared/coerce"
)

// ListingUsecase はリスティング操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type ListingUsecase interface {
	List(ctx context.Context, filter entity.ListingFilter) ([]entity.Listing, error)
	Get(ctx context.Context, id string) (*entity.Listing, error)
	Create(ctx context.Context, sellerID string, in usecase.CreateListingInput) (*entity.Listing, error)
	Update(ctx context.Context, userID, id string, in usecase.UpdateListingInput) (*entity.Listing, error)
	Delete(ctx context.Context, userID, id string) error
}

// ListingHandler はリスティングのHTTPリクエストを処理します。
type ListingHandler struct {
	uc ListingUsecase
}

// NewListingHandler はListingHandlerの新しいインスタンスを生成します。
func NewListingHandler(uc ListingUsecase) *ListingHandler {
	return &ListingHandler{uc: uc}
}

// List は GET /listings を処理します。seller_id / sold / search で絞り込みます。
func (h *ListingHandler) List(c *gin.Context) {
	var filter entity.ListingFilter
	if seller := c.Query("seller_id"); seller != "" {
		filter.SellerID = &seller
	}
	if raw, ok := c.GetQuery("sold"); ok {
		sold, ok := coerce.Flag(raw)
		if !ok {
			c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Detail: "sold: value could not be parsed to a boolean"})
			return
		}
		filter.Sold = &sold
	}
	filter.Search = c.Query("search")

	listings, err := h.uc.List(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, "list listings", err)
		return
	}
	c.JSON(http.StatusOK, dto.FromEntities(listings))
}

// Get は GET /listings/:id を処理します。
func (h *ListingHandler) Get(c *gin.Context) {
	l, err := h.uc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "get listing", err)
		return
	}
	c.JSON(http.StatusOK, dto.FromEntity(*l))
}

// Create は POST /listings を処理します。
// - ボディのバリデーションエラーは422
// - カテゴリと詳細の不整合は400
// - 成功時は201
func (h *ListingHandler) Create(c *gin.Context) {
	var req dto.CreateListingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("create listing validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Detail: api.BindingMessage(err)})
		return
	}
	details, err := req.Details.ToEntity()
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Detail: err.Error()})
		return
	}

	userID := jwtmw.UserID(c)
	l, err := h.uc.Create(c.Request.Context(), userID, usecase.CreateListingInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Category:    entity.Category(req.Category),
		Details:     details,
	})
	if err != nil {
		h.fail(c, "create listing", err)
		return
	}
	slog.Info("listing created", "listing_id", l.ID, "seller_id", userID)
	c.JSON(http.StatusCreated, dto.FromEntity(*l))
}

// Update は PATCH /listings/:id を処理します。
func (h *ListingHandler) Update(c *gin.Context) {
	var req dto.UpdateListingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("update listing validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Detail: api.BindingMessage(err)})
		return
	}
	details, err := req.Details.ToEntity()
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Detail: err.Error()})
		return
	}

	in := usecase.UpdateListingInput{
		Name:        req.Name,
		Description: entity.DescriptionChange{Set: req.Description.Set, Value: req.Description.Value},
		Price:       req.Price,
		Quantity:    req.Quantity,
		Sold:        req.Sold,
		Details:     details,
	}
	if req.Category != nil {
		cat := entity.Category(*req.Category)
		in.Category = &cat
	}

	id := c.Param("id")
	l, err := h.uc.Update(c.Request.Context(), jwtmw.UserID(c), id, in)
	if err != nil {
		h.fail(c, "update listing", err)
		return
	}
	slog.Info("listing updated", "listing_id", id)
	c.JSON(http.StatusOK, dto.FromEntity(*l))
}

// Delete は DELETE /listings/:id を処理します。成功時は204を返します。
func (h *ListingHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.uc.Delete(c.Request.Context(), jwtmw.UserID(c), id); err != nil {
		h.fail(c, "delete listing", err)
		return
	}
	slog.Info("listing deleted", "listing_id", id)
	c.Status(http.StatusNoContent)
}

// fail はドメインエラーをステータスコードに変換します。それ以外は上流の障害として502を返します。
func (h *ListingHandler) fail(c *gin.Context, op string, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrListingNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Detail: err.Error()})
	case errors.Is(err, domain.ErrEditForbidden), errors.Is(err, domain.ErrDeleteForbidden):
		slog.Warn(op+" forbidden", "user_id", jwtmw.UserID(c), "remote_addr", c.ClientIP())
		c.JSON(http.StatusForbidden, api.ErrorResponse{Detail: err.Error()})
	case errors.As(err, &ve):
		slog.Warn(op+" rejected", "error", ve.Msg, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Detail: ve.Msg})
	default:
		slog.Error(op+" failed", "error", err)
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Detail: "Upstream data store error"})
	}
}
