package models

import (
	"strings"
	"time"
)

// CommitKind classifies a commit by the intent of its message.
type CommitKind string

const (
	KindFix      CommitKind = "fix"
	KindFeat     CommitKind = "feat"
	KindRefactor CommitKind = "refactor"
	KindOther    CommitKind = "other"
)

// CIStatus is the continuous-integration outcome recorded on a pull request.
type CIStatus string

const (
	CIPass    CIStatus = "pass"
	CIFail    CIStatus = "fail"
	CIUnknown CIStatus = "unknown"
)

// WorkdayWindow defines the local hours considered regular working time.
// A commit whose local hour falls outside [StartHour, EndHour) counts as
// after-hours activity.
type WorkdayWindow struct {
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

// DefaultWorkday is the standard 9-18 working window.
var DefaultWorkday = WorkdayWindow{StartHour: 9, EndHour: 18}

// Contains reports whether t falls inside the working window.
func (w WorkdayWindow) Contains(t time.Time) bool {
	h := t.Hour()
	return h >= w.StartHour && h < w.EndHour
}

// CommitEvent is a normalized commit observation. It is immutable once
// harvested; derived fields (Kind, AfterHours) are stamped at ingestion.
type CommitEvent struct {
	Hash         string     `json:"hash"`
	Author       string     `json:"author"`
	Timestamp    time.Time  `json:"timestamp"`
	Additions    int        `json:"additions"`
	Deletions    int        `json:"deletions"`
	FilesChanged int        `json:"files_changed"`
	Files        []string   `json:"files,omitempty"`
	Message      string     `json:"message"`
	Kind         CommitKind `json:"kind"`
	AfterHours   bool       `json:"after_hours"`
}

// Churn returns the total lines touched by the commit. Deletions are never
// treated as negative.
func (c CommitEvent) Churn() int {
	return c.Additions + c.Deletions
}

// PullRequestEvent is a normalized pull request observation. A nil MergedAt
// means the request is still open and excluded from lead-time calculation.
type PullRequestEvent struct {
	Number       int         `json:"number"`
	Author       string      `json:"author"`
	CreatedAt    time.Time   `json:"created_at"`
	MergedAt     *time.Time  `json:"merged_at,omitempty"`
	Additions    int         `json:"additions"`
	Deletions    int         `json:"deletions"`
	FilesChanged int         `json:"files_changed"`
	CI           CIStatus    `json:"ci_status"`
	ReviewedAt   []time.Time `json:"reviewed_at,omitempty"`
}

// Merged reports whether the pull request has been merged.
func (p PullRequestEvent) Merged() bool {
	return p.MergedAt != nil
}

// LeadTimeHours returns hours from creation to merge. The second return is
// false for unmerged pull requests.
func (p PullRequestEvent) LeadTimeHours() (float64, bool) {
	if p.MergedAt == nil {
		return 0, false
	}
	return p.MergedAt.Sub(p.CreatedAt).Hours(), true
}

// ReviewLatencyHours returns hours from creation to the first recorded
// review, or false when the pull request has no reviews.
func (p PullRequestEvent) ReviewLatencyHours() (float64, bool) {
	if len(p.ReviewedAt) == 0 {
		return 0, false
	}
	return p.ReviewedAt[0].Sub(p.CreatedAt).Hours(), true
}

// kindKeywords maps message keywords to commit kinds. First match wins, in
// classification order fix > feat > refactor.
var kindKeywords = []struct {
	kind  CommitKind
	words []string
}{
	{KindFix, []string{"fix", "bug", "hotfix", "patch", "revert"}},
	{KindFeat, []string{"feat", "add", "implement", "introduce"}},
	{KindRefactor, []string{"refactor", "cleanup", "clean up", "restructure", "simplify"}},
}

// ClassifyMessage buckets a commit message into a CommitKind by keyword
// match. Matching is case-insensitive over the whole message.
func ClassifyMessage(message string) CommitKind {
	lower := strings.ToLower(message)
	for _, kw := range kindKeywords {
		for _, w := range kw.words {
			if strings.Contains(lower, w) {
				return kw.kind
			}
		}
	}
	return KindOther
}

// ParseCIStatus normalizes an external CI outcome string.
func ParseCIStatus(s string) CIStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pass", "passed", "success", "succeeded":
		return CIPass
	case "fail", "failed", "failure", "error":
		return CIFail
	default:
		return CIUnknown
	}
}
