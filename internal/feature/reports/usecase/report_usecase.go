// Package usecase implements filing and editing abuse reports.
package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	orders "umarket/internal/feature/orders/domain/entity"
	"umarket/internal/feature/reports/domain"
	"umarket/internal/feature/reports/domain/entity"
	userdomain "umarket/internal/feature/users/domain"
	users "umarket/internal/feature/users/domain/entity"
)

// ReportRepository abstracts the reports table.
type ReportRepository interface {
	// List returns matching reports, newest first.
	List(ctx context.Context, filter entity.ReportFilter) ([]entity.Report, error)
	// FindByID returns domain.ErrReportNotFound when no report exists.
	FindByID(ctx context.Context, id string) (*entity.Report, error)
	Create(ctx context.Context, in entity.NewReport) (*entity.Report, error)
	Update(ctx context.Context, id string, changes entity.ReportChanges) (*entity.Report, error)
}

// ProfileLookup resolves the reported account. Satisfied by the users profile stores.
type ProfileLookup interface {
	FindByID(ctx context.Context, id string) (*users.Profile, error)
}

// OrderLookup resolves the transaction a report refers to. Satisfied by the order stores.
type OrderLookup interface {
	FindByID(ctx context.Context, id string) (*orders.Order, error)
}

// MyReports groups the reports a user filed and the ones filed against them.
type MyReports struct {
	Filed   []entity.Report
	Against []entity.Report
}

// CreateReportInput is the payload for a new report.
type CreateReportInput struct {
	ReportedUserID string
	TransactionID  *string
	Reason         entity.Reason
	Description    string
	EvidenceURLs   []string
}

// UpdateReportInput is a reporter edit. Status and ResolutionNotes are moderator-only
// and are rejected when present.
type UpdateReportInput struct {
	Description     *string
	EvidenceURLs    *[]string
	Status          *entity.Status
	ResolutionNotes *string
}

// ReportUsecase provides business logic for report operations.
type ReportUsecase struct {
	reports  ReportRepository
	profiles ProfileLookup
	orders   OrderLookup
	now      func() time.Time
}

// NewReportUsecase creates a new ReportUsecase.
func NewReportUsecase(reports ReportRepository, profiles ProfileLookup, orders OrderLookup) *ReportUsecase {
	return &ReportUsecase{reports: reports, profiles: profiles, orders: orders, now: time.Now}
}

// ListMine returns the reports userID filed and the ones filed against them.
func (u *ReportUsecase) ListMine(ctx context.Context, userID string) (*MyReports, error) {
	filed, err := u.reports.List(ctx, entity.ReportFilter{ReporterID: &userID})
	if err != nil {
		return nil, err
	}
	against, err := u.reports.List(ctx, entity.ReportFilter{ReportedUserID: &userID})
	if err != nil {
		return nil, err
	}
	return &MyReports{Filed: filed, Against: against}, nil
}

// Create files a report by reporterID. When a transaction is given, the reporter must be one
// of its participants and the reported user must be the other one.
func (u *ReportUsecase) Create(ctx context.Context, reporterID string, in CreateReportInput) (*entity.Report, error) {
	if in.ReportedUserID == reporterID {
		return nil, domain.ErrSelfReport
	}
	if _, err := u.profiles.FindByID(ctx, in.ReportedUserID); err != nil {
		if errors.Is(err, userdomain.ErrUserNotFound) {
			return nil, domain.ErrReportedUserNotFound
		}
		return nil, err
	}

	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, domain.ErrEmptyDescription
	}

	// 空の transaction_id は未指定として扱う
	var transactionID *string
	if in.TransactionID != nil {
		if id := strings.TrimSpace(*in.TransactionID); id != "" {
			transactionID = &id
		}
	}
	if transactionID != nil {
		order, err := u.orders.FindByID(ctx, *transactionID)
		if err != nil {
			return nil, err
		}
		if !order.IsParticipant(reporterID) {
			return nil, domain.ErrNotParticipant
		}
		if counterpart := order.Counterpart(reporterID); counterpart != "" && counterpart != in.ReportedUserID {
			return nil, domain.ErrCounterpartMismatch
		}
	}

	return u.reports.Create(ctx, entity.NewReport{
		ReporterID:     reporterID,
		ReportedUserID: in.ReportedUserID,
		TransactionID:  transactionID,
		Reason:         in.Reason,
		Description:    description,
		EvidenceURLs:   entity.SanitizeEvidence(in.EvidenceURLs),
		Status:         entity.StatusOpen,
		UpdatedAt:      u.now().UTC(),
	})
}

// Update lets the reporter edit the description and evidence of a report that is still open.
func (u *ReportUsecase) Update(ctx context.Context, userID, id string, in UpdateReportInput) (*entity.Report, error) {
	existing, err := u.reports.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.ReporterID != userID {
		return nil, domain.ErrUpdateForbidden
	}
	if !existing.Status.Editable() {
		return nil, domain.ErrReportClosed
	}

	var changes entity.ReportChanges
	if in.Description != nil {
		text := strings.TrimSpace(*in.Description)
		if text == "" {
			return nil, domain.ErrEmptyDescription
		}
		changes.Description = &text
	}
	if in.EvidenceURLs != nil {
		urls := entity.SanitizeEvidence(*in.EvidenceURLs)
		changes.EvidenceURLs = &urls
	}
	if in.Status != nil || in.ResolutionNotes != nil {
		return nil, domain.ErrModeratorOnly
	}
	if changes.Description == nil && changes.EvidenceURLs == nil {
		return existing, nil
	}
	changes.UpdatedAt = u.now().UTC()
	return u.reports.Update(ctx, id, changes)
}
