// Package handler はordersフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"umarket/internal/api"
	listingdomain "umarket/internal/feature/listings/domain"
	"umarket/internal/feature/orders/domain"
	"umarket/internal/feature/orders/domain/entity"
	"umarket/internal/feature/orders/transport/http/dto"
	"umarket/internal/feature/orders/usecase"
	jwtmw "umarket/internal/platform/jwt"
)

// OrderUsecase は注文操作のユースケースを定義します。
type OrderUsecase interface {
	List(ctx context.Context, userID string, role usecase.Role) ([]entity.Order, error)
	Create(ctx context.Context, buyerID, listingID string, method *entity.PaymentMethod) (*entity.Order, error)
	Update(ctx context.Context, userID, id string, method entity.PaymentMethodChange) (*entity.Order, error)
	ConfirmItem(ctx context.Context, userID, id string, notes *string) (*entity.Order, error)
	ConfirmPayment(ctx context.Context, userID, id string, notes *string) (*entity.Order, error)
}

// OrderHandler は注文のHTTPリクエストを処理します。すべて認証必須です。
type OrderHandler struct {
	uc OrderUsecase
}

// NewOrderHandler はOrderHandlerの新しいインスタンスを生成します。
func NewOrderHandler(uc OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// List は GET /orders?role=buyer|seller を処理します。
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.uc.List(c.Request.Context(), jwtmw.UserID(c), usecase.Role(c.Query("role")))
	if err != nil {
		h.fail(c, "list orders", err)
		return
	}
	c.JSON(http.StatusOK, dto.FromEntities(orders))
}

// Create は POST /orders を処理します。成功時は201を返します。
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("create order validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Detail: api.BindingMessage(err)})
		return
	}

	buyerID := jwtmw.UserID(c)
	o, err := h.uc.Create(c.Request.Context(), buyerID, req.ListingID, dto.PaymentMethod(req.PaymentMethod))
	if err != nil {
		h.fail(c, "create order", err)
		return
	}
	slog.Info("order created", "order_id", o.ID, "listing_id", req.ListingID, "buyer_id", buyerID)
	c.JSON(http.StatusCreated, dto.FromEntity(*o))
}

// Update は PATCH /orders/:id を処理します。
func (h *OrderHandler) Update(c *gin.Context) {
	var req dto.UpdateOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("update order validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Detail: api.BindingMessage(err)})
		return
	}
	method, err := req.Change()
	if err != nil {
		slog.Warn("update order validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Detail: err.Error()})
		return
	}

	id := c.Param("id")
	o, err := h.uc.Update(c.Request.Context(), jwtmw.UserID(c), id, method)
	if err != nil {
		h.fail(c, "update order", err)
		return
	}
	slog.Info("order updated", "order_id", id)
	c.JSON(http.StatusOK, dto.FromEntity(*o))
}

// ConfirmItem は POST /orders/:id/confirm-item を処理します（買い手のみ）。
func (h *OrderHandler) ConfirmItem(c *gin.Context) {
	h.confirm(c, "confirm item", h.uc.ConfirmItem)
}

// ConfirmPayment は POST /orders/:id/confirm-payment を処理します（売り手のみ）。
func (h *OrderHandler) ConfirmPayment(c *gin.Context) {
	h.confirm(c, "confirm payment", h.uc.ConfirmPayment)
}

type confirmFunc func(ctx context.Context, userID, id string, notes *string) (*entity.Order, error)

// confirm はボディ省略を許可します。
func (h *OrderHandler) confirm(c *gin.Context, op string, fn confirmFunc) {
	var req dto.ConfirmReq
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Warn(op+" validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Detail: api.BindingMessage(err)})
		return
	}

	id := c.Param("id")
	o, err := fn(c.Request.Context(), jwtmw.UserID(c), id, req.Notes)
	if err != nil {
		h.fail(c, op, err)
		return
	}
	slog.Info(op+" recorded", "order_id", id, "status", o.Status)
	c.JSON(http.StatusOK, dto.FromEntity(*o))
}

// fail はドメインエラーをステータスコードに変換します。それ以外は上流の障害として502を返します。
func (h *OrderHandler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrAssociatedListingNotFound),
		errors.Is(err, listingdomain.ErrListingNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Detail: err.Error()})
	case errors.Is(err, domain.ErrUpdateForbidden),
		errors.Is(err, domain.ErrBuyerConfirmOnly),
		errors.Is(err, domain.ErrSellerConfirmOnly):
		slog.Warn(op+" forbidden", "user_id", jwtmw.UserID(c), "remote_addr", c.ClientIP())
		c.JSON(http.StatusForbidden, api.ErrorResponse{Detail: err.Error()})
	case errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrSelfPurchase),
		errors.Is(err, domain.ErrListingSold),
		errors.Is(err, domain.ErrOutOfStock):
		slog.Warn(op+" rejected", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Detail: err.Error()})
	default:
		slog.Error(op+" failed", "error", err)
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Detail: "Upstream data store error"})
	}
}
