// Package dto はreportsフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import (
	"errors"
	"time"

	"umarket/internal/feature/reports/domain/entity"
	"umarket/internal/platform/validation"
)

// RegisterValidators は "report_reason" と "report_status" ルールを登録します。
func RegisterValidators() error {
	return errors.Join(
		validation.RegisterEnum("report_reason", validation.Strings(entity.Reasons), false),
		validation.RegisterEnum("report_status", validation.Strings(entity.Statuses), false),
	)
}

// CreateReportReq は POST /reports のリクエストボディです。
type CreateReportReq struct {
	ReportedUserID string   `json:"reported_user_id" binding:"required"`
	TransactionID  *string  `json:"transaction_id"`
	Reason         string   `json:"reason" binding:"required,report_reason"`
	Description    string   `json:"description" binding:"required,max=2000"`
	EvidenceURLs   []string `json:"evidence_urls"`
}

// UpdateReportReq は PATCH /reports/:id のリクエストボディです。
// status と resolution_notes はモデレーター専用で、指定すると403になります。
type UpdateReportReq struct {
	Description     *string   `json:"description" binding:"omitempty,max=2000"`
	EvidenceURLs    *[]string `json:"evidence_urls"`
	Status          *string   `json:"status" binding:"omitempty,report_status"`
	ResolutionNotes *string   `json:"resolution_notes"`
}

// ReportRes は通報のレスポンスです。
type ReportRes struct {
	ID              string     `json:"id"`
	ReporterID      string     `json:"reporter_id"`
	ReportedUserID  string     `json:"reported_user_id"`
	TransactionID   *string    `json:"transaction_id"`
	Reason          string     `json:"reason"`
	Description     string     `json:"description"`
	EvidenceURLs    []string   `json:"evidence_urls"`
	Status          string     `json:"status"`
	ResolutionNotes *string    `json:"resolution_notes"`
	CreatedAt       *time.Time `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at"`
}

// MyReportsRes は GET /reports のレスポンスです。
type MyReportsRes struct {
	Filed   []ReportRes `json:"filed"`
	Against []ReportRes `json:"against"`
}

// FromEntity は Report をレスポンスに変換します。
func FromEntity(r entity.Report) ReportRes {
	evidence := r.EvidenceURLs
	if evidence == nil {
		evidence = []string{}
	}
	return ReportRes{
		ID:              r.ID,
		ReporterID:      r.ReporterID,
		ReportedUserID:  r.ReportedUserID,
		TransactionID:   r.TransactionID,
		Reason:          string(r.Reason),
		Description:     r.Description,
		EvidenceURLs:    evidence,
		Status:          string(r.Status),
		ResolutionNotes: r.ResolutionNotes,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// FromEntities は Report のスライスを変換します。
func FromEntities(rs []entity.Report) []ReportRes {
	out := make([]ReportRes, 0, len(rs))
	for _, r := range rs {
		out = append(out, FromEntity(r))
	}
	return out
}
