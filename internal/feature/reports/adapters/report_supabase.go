// Package adapters は通報の永続化（PostgREST / Postgres）を実装します。
package adapters

import (
	"context"
	"fmt"
	"time"

	"umarket/internal/feature/reports/domain"
	"umarket/internal/feature/reports/domain/entity"
	"umarket/internal/feature/reports/usecase"
	"umarket/internal/platform/supabase"
	"umarket/internal/shared/coerce"
)

// SupabaseClient is the subset of the Supabase client the report store needs.
type SupabaseClient interface {
	Tables() supabase.Tables
	Select(ctx context.Context, table string, q *supabase.Query) ([]supabase.Row, error)
	Insert(ctx context.Context, table string, row any, q *supabase.Query) ([]supabase.Row, error)
	Update(ctx context.Context, table string, q *supabase.Query, patch any) ([]supabase.Row, error)
}

type reportSupabase struct {
	client SupabaseClient
	tables supabase.Tables
}

var _ usecase.ReportRepository = (*reportSupabase)(nil)

// NewReportSupabaseRepository は通報テーブルを PostgREST 経由で扱う ReportRepository を生成します。
func NewReportSupabaseRepository(c SupabaseClient) *reportSupabase {
	return &reportSupabase{client: c, tables: c.Tables()}
}

func (r *reportSupabase) List(ctx context.Context, filter entity.ReportFilter) ([]entity.Report, error) {
	q := supabase.NewQuery().
		Select("*").
		Order("created_at.desc").
		Eq("reporter_id", filter.ReporterID).
		Eq("reported_user_id", filter.ReportedUserID)
	rows, err := r.client.Select(ctx, r.tables.Reports, q)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	out := make([]entity.Report, 0, len(rows))
	for _, row := range rows {
		out = append(out, ReportFromRow(r.tables, row))
	}
	return out, nil
}

func (r *reportSupabase) FindByID(ctx context.Context, id string) (*entity.Report, error) {
	q := supabase.NewQuery().Select("*").Eq(r.tables.ReportIDField, id)
	rows, err := r.client.Select(ctx, r.tables.Reports, q)
	if err != nil {
		return nil, fmt.Errorf("get report %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrReportNotFound
	}
	rep := ReportFromRow(r.tables, rows[0])
	return &rep, nil
}

func (r *reportSupabase) Create(ctx context.Context, in entity.NewReport) (*entity.Report, error) {
	row := supabase.Row{
		"reporter_id":      in.ReporterID,
		"reported_user_id": in.ReportedUserID,
		"transaction_id":   in.TransactionID,
		"reason":           string(in.Reason),
		"description":      in.Description,
		"evidence_urls":    in.EvidenceURLs,
		"status":           string(in.Status),
		"updated_at":       in.UpdatedAt.Format(time.RFC3339Nano),
	}
	rows, err := r.client.Insert(ctx, r.tables.Reports, row, supabase.NewQuery().Select("*"))
	if err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("create report: empty response")
	}
	rep := ReportFromRow(r.tables, rows[0])
	return &rep, nil
}

func (r *reportSupabase) Update(ctx context.Context, id string, changes entity.ReportChanges) (*entity.Report, error) {
	patch := supabase.Row{"updated_at": changes.UpdatedAt.Format(time.RFC3339Nano)}
	if changes.Description != nil {
		patch["description"] = *changes.Description
	}
	if changes.EvidenceURLs != nil {
		patch["evidence_urls"] = *changes.EvidenceURLs
	}
	q := supabase.NewQuery().Select("*").Eq(r.tables.ReportIDField, id)
	rows, err := r.client.Update(ctx, r.tables.Reports, q, patch)
	if err != nil {
		return nil, fmt.Errorf("update report %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrReportNotFound
	}
	rep := ReportFromRow(r.tables, rows[0])
	return &rep, nil
}

// ReportFromRow は通報行を Report に変換します。evidence_urls は null なら空、文字列なら1要素にします。
func ReportFromRow(t supabase.Tables, row supabase.Row) entity.Report {
	var rep entity.Report
	for _, key := range []string{t.ReportIDField, "id"} {
		if id, ok := coerce.String(row[key]); ok && id != "" {
			rep.ID = id
			break
		}
	}
	rep.ReporterID, _ = coerce.String(row["reporter_id"])
	rep.ReportedUserID, _ = coerce.String(row["reported_user_id"])
	rep.TransactionID = coerce.StringPtr(row["transaction_id"])
	reason, _ := coerce.String(row["reason"])
	rep.Reason = entity.Reason(reason)
	rep.Description, _ = coerce.String(row["description"])
	rep.EvidenceURLs = evidence(row["evidence_urls"])
	status, _ := coerce.String(row["status"])
	rep.Status = entity.Status(status)
	rep.ResolutionNotes = coerce.StringPtr(row["resolution_notes"])
	rep.CreatedAt = coerce.TimePtr(row["created_at"])
	rep.UpdatedAt = coerce.TimePtr(row["updated_at"])
	return rep
}

func evidence(v any) []string {
	switch x := v.(type) {
	case string:
		return []string{x}
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			if s, ok := coerce.String(e); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return x
	default:
		return []string{}
	}
}
