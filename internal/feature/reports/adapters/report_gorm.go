package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"umarket/internal/feature/reports/domain"
	"umarket/internal/feature/reports/domain/entity"
	"umarket/internal/feature/reports/usecase"
)

// ReportModel は user_reports テーブルの行です。evidence_urls はJSON配列で保存します。
type ReportModel struct {
	ID              string    `gorm:"primaryKey;size:36"`
	ReporterID      string    `gorm:"size:36;not null;index"`
	ReportedUserID  string    `gorm:"size:36;not null;index"`
	TransactionID   *string   `gorm:"size:36"`
	Reason          string    `gorm:"size:32;not null"`
	Description     string    `gorm:"not null"`
	EvidenceURLs    []string  `gorm:"column:evidence_urls;type:jsonb;serializer:json"`
	Status          string    `gorm:"size:16;not null;default:OPEN"`
	ResolutionNotes *string
	CreatedAt       time.Time `gorm:"not null;index"`
	UpdatedAt       time.Time
}

func (ReportModel) TableName() string { return "user_reports" }

// Models はAutoMigrate対象のモデルです。
func Models() []any {
	return []any{&ReportModel{}}
}

// ToEntity は ReportModel を Report に変換します。
func (m *ReportModel) ToEntity() entity.Report {
	rep := entity.Report{
		ID:              m.ID,
		ReporterID:      m.ReporterID,
		ReportedUserID:  m.ReportedUserID,
		TransactionID:   m.TransactionID,
		Reason:          entity.Reason(m.Reason),
		Description:     m.Description,
		EvidenceURLs:    m.EvidenceURLs,
		Status:          entity.Status(m.Status),
		ResolutionNotes: m.ResolutionNotes,
	}
	if rep.EvidenceURLs == nil {
		rep.EvidenceURLs = []string{}
	}
	if !m.CreatedAt.IsZero() {
		created := m.CreatedAt
		rep.CreatedAt = &created
	}
	if !m.UpdatedAt.IsZero() {
		updated := m.UpdatedAt
		rep.UpdatedAt = &updated
	}
	return rep
}

type reportGorm struct {
	db *gorm.DB
}

var _ usecase.ReportRepository = (*reportGorm)(nil)

// NewReportGormRepository は Postgres に直接接続する ReportRepository を生成します。
func NewReportGormRepository(db *gorm.DB) *reportGorm {
	return &reportGorm{db: db}
}

func (r *reportGorm) List(ctx context.Context, filter entity.ReportFilter) ([]entity.Report, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if filter.ReporterID != nil {
		q = q.Where("reporter_id = ?", *filter.ReporterID)
	}
	if filter.ReportedUserID != nil {
		q = q.Where("reported_user_id = ?", *filter.ReportedUserID)
	}
	var rows []ReportModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	out := make([]entity.Report, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToEntity())
	}
	return out, nil
}

func (r *reportGorm) FindByID(ctx context.Context, id string) (*entity.Report, error) {
	var m ReportModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReportNotFound
		}
		return nil, fmt.Errorf("get report %s: %w", id, err)
	}
	rep := m.ToEntity()
	return &rep, nil
}

func (r *reportGorm) Create(ctx context.Context, in entity.NewReport) (*entity.Report, error) {
	m := ReportModel{
		ID:             uuid.NewString(),
		ReporterID:     in.ReporterID,
		ReportedUserID: in.ReportedUserID,
		TransactionID:  in.TransactionID,
		Reason:         string(in.Reason),
		Description:    in.Description,
		EvidenceURLs:   in.EvidenceURLs,
		Status:         string(in.Status),
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      in.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	rep := m.ToEntity()
	return &rep, nil
}

func (r *reportGorm) Update(ctx context.Context, id string, changes entity.ReportChanges) (*entity.Report, error) {
	updates := ReportModel{UpdatedAt: changes.UpdatedAt}
	cols := []string{"UpdatedAt"}
	if changes.Description != nil {
		updates.Description = *changes.Description
		cols = append(cols, "Description")
	}
	if changes.EvidenceURLs != nil {
		updates.EvidenceURLs = *changes.EvidenceURLs
		cols = append(cols, "EvidenceURLs")
	}
	// Select で列を限定し、空文字や空配列でも更新されるようにする
	res := r.db.WithContext(ctx).Model(&ReportModel{}).Where("id = ?", id).Select(cols).Updates(&updates)
	if res.Error != nil {
		return nil, fmt.Errorf("update report %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrReportNotFound
	}
	return r.FindByID(ctx, id)
}
