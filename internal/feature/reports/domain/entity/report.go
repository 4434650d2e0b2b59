// Package entity defines the domain models for abuse reports.
package entity

import (
	"strings"
	"time"
)

// Reason is why a user is being reported.
type Reason string

const (
	ReasonScam               Reason = "SCAM"
	ReasonHarassment         Reason = "HARASSMENT"
	ReasonNoShow             Reason = "NO_SHOW"
	ReasonItemNotAsDescribed Reason = "ITEM_NOT_AS_DESCRIBED"
	ReasonProhibitedItem     Reason = "PROHIBITED_ITEM"
	ReasonSpam               Reason = "SPAM"
	ReasonOther              Reason = "OTHER"
)

// Reasons lists every accepted report reason.
var Reasons = []Reason{
	ReasonScam, ReasonHarassment, ReasonNoShow, ReasonItemNotAsDescribed,
	ReasonProhibitedItem, ReasonSpam, ReasonOther,
}

// Status is the moderation state of a report.
type Status string

const (
	StatusOpen        Status = "OPEN"
	StatusUnderReview Status = "UNDER_REVIEW"
	StatusResolved    Status = "RESOLVED"
	StatusDismissed   Status = "DISMISSED"
)

// Statuses lists every report status.
var Statuses = []Status{StatusOpen, StatusUnderReview, StatusResolved, StatusDismissed}

// Editable reports whether the reporter may still change a report in this status.
func (s Status) Editable() bool {
	return s == StatusOpen || s == StatusUnderReview
}

// Report is a complaint filed by one user against another, optionally tied to an order.
type Report struct {
	ID              string
	ReporterID      string
	ReportedUserID  string
	TransactionID   *string
	Reason          Reason
	Description     string
	EvidenceURLs    []string
	Status          Status
	ResolutionNotes *string
	CreatedAt       *time.Time
	UpdatedAt       *time.Time
}

// ReportFilter selects reports filed by or against a user.
type ReportFilter struct {
	ReporterID     *string
	ReportedUserID *string
}

// NewReport is the insert payload for a report.
type NewReport struct {
	ReporterID     string
	ReportedUserID string
	TransactionID  *string
	Reason         Reason
	Description    string
	EvidenceURLs   []string
	Status         Status
	UpdatedAt      time.Time
}

// ReportChanges is a reporter edit. Nil fields are left untouched.
type ReportChanges struct {
	Description  *string
	EvidenceURLs *[]string
	UpdatedAt    time.Time
}

// SanitizeEvidence trims every URL and drops blanks. The result is never nil.
func SanitizeEvidence(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if s := strings.TrimSpace(u); s != "" {
			out = append(out, s)
		}
	}
	return out
}
