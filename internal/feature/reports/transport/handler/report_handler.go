// Package handler はreportsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"umarket/internal/api"
	orderdomain "umarket/internal/feature/orders/domain"
	"umarket/internal/feature/reports/domain"
	"umarket/internal/feature/reports/domain/entity"
	"umarket/internal/feature/reports/transport/http/dto"
	"umarket/internal/feature/reports/usecase"
	jwtmw "umarket/internal/platform/jwt"
)

// ReportUsecase は通報操作のユースケースを定義します。
type ReportUsecase interface {
	ListMine(ctx context.Context, userID string) (*usecase.MyReports, error)
	Create(ctx context.Context, reporterID string, in usecase.CreateReportInput) (*entity.Report, error)
	Update(ctx context.Context, userID, id string, in usecase.UpdateReportInput) (*entity.Report, error)
}

// ReportHandler は通報のHTTPリクエストを処理します。すべて認証必須です。
type ReportHandler struct {
	uc ReportUsecase
}

// NewReportHandler はReportHandlerの新しいインスタンスを生成します。
func NewReportHandler(uc ReportUsecase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// List は GET /reports を処理します。
func (h *ReportHandler) List(c *gin.Context) {
	mine, err := h.uc.ListMine(c.Request.Context(), jwtmw.UserID(c))
	if err != nil {
		h.fail(c, "list reports", err)
		return
	}
	c.JSON(http.StatusOK, dto.MyReportsRes{
		Filed:   dto.FromEntities(mine.Filed),
		Against: dto.FromEntities(mine.Against),
	})
}

// Create は POST /reports を処理します。成功時は201を返します。
func (h *ReportHandler) Create(c *gin.Context) {
	var req dto.CreateReportReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("create report validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Detail: api.BindingMessage(err)})
		return
	}

	reporterID := jwtmw.UserID(c)
	r, err := h.uc.Create(c.Request.Context(), reporterID, usecase.CreateReportInput{
		ReportedUserID: req.ReportedUserID,
		TransactionID:  req.TransactionID,
		Reason:         entity.Reason(req.Reason),
		Description:    req.Description,
		EvidenceURLs:   req.EvidenceURLs,
	})
	if err != nil {
		h.fail(c, "create report", err)
		return
	}
	slog.Info("report filed", "report_id", r.ID, "reporter_id", reporterID, "reason", r.Reason)
	c.JSON(http.StatusCreated, dto.FromEntity(*r))
}

// Update は PATCH /reports/:id を処理します。
func (h *ReportHandler) Update(c *gin.Context) {
	var req dto.UpdateReportReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("update report validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Detail: api.BindingMessage(err)})
		return
	}

	in := usecase.UpdateReportInput{
		Description:     req.Description,
		EvidenceURLs:    req.EvidenceURLs,
		ResolutionNotes: req.ResolutionNotes,
	}
	if req.Status != nil {
		s := entity.Status(*req.Status)
		in.Status = &s
	}

	id := c.Param("id")
	r, err := h.uc.Update(c.Request.Context(), jwtmw.UserID(c), id, in)
	if err != nil {
		h.fail(c, "update report", err)
		return
	}
	slog.Info("report updated", "report_id", id)
	c.JSON(http.StatusOK, dto.FromEntity(*r))
}

// fail はドメインエラーをステータスコードに変換します。それ以外は上流の障害として502を返します。
func (h *ReportHandler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrReportNotFound),
		errors.Is(err, domain.ErrReportedUserNotFound),
		errors.Is(err, orderdomain.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Detail: err.Error()})
	case errors.Is(err, domain.ErrNotParticipant),
		errors.Is(err, domain.ErrUpdateForbidden),
		errors.Is(err, domain.ErrModeratorOnly):
		slog.Warn(op+" forbidden", "user_id", jwtmw.UserID(c), "remote_addr", c.ClientIP())
		c.JSON(http.StatusForbidden, api.ErrorResponse{Detail: err.Error()})
	case errors.Is(err, domain.ErrSelfReport),
		errors.Is(err, domain.ErrCounterpartMismatch),
		errors.Is(err, domain.ErrReportClosed),
		errors.Is(err, domain.ErrEmptyDescription):
		slog.Warn(op+" rejected", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Detail: err.Error()})
	default:
		slog.Error(op+" failed", "error", err)
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Detail: "Upstream data store error"})
	}
}
