package models

import (
	"testing"
	"time"
)

func TestClassifyMessage(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    CommitKind
	}{
		{"conventional fix", "fix: null pointer in parser", KindFix},
		{"bug keyword", "Resolve bug in session handling", KindFix},
		{"hotfix", "HOTFIX deploy rollback", KindFix},
		{"feature", "feat: add export endpoint", KindFeat},
		{"implement", "Implement rate limiting", KindFeat},
		{"refactor", "refactor storage layer", KindRefactor},
		{"cleanup", "Cleanup unused flags", KindRefactor},
		{"fix wins over feat", "fix regression in add endpoint", KindFix},
		{"plain message", "Update dependencies", KindOther},
		{"empty", "", KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyMessage(tt.message); got != tt.want {
				t.Errorf("ClassifyMessage(%q) = %v, want %v", tt.message, got, tt.want)
			}
		})
	}
}

func TestWorkdayWindowContains(t *testing.T) {
	w := DefaultWorkday

	tests := []struct {
		name string
		hour int
		want bool
	}{
		{"before start", 8, false},
		{"at start", 9, true},
		{"midday", 13, true},
		{"last working hour", 17, true},
		{"at end boundary", 18, false},
		{"night", 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := time.Date(2024, 3, 13, tt.hour, 0, 0, 0, time.UTC)
			if got := w.Contains(ts); got != tt.want {
				t.Errorf("Contains(hour=%d) = %v, want %v", tt.hour, got, tt.want)
			}
		})
	}
}

func TestCommitEventChurn(t *testing.T) {
	c := CommitEvent{Additions: 30, Deletions: 12}
	if got := c.Churn(); got != 42 {
		t.Errorf("Churn() = %d, want 42", got)
	}
}

func TestPullRequestEventLeadTime(t *testing.T) {
	created := time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC)
	merged := created.Add(14*time.Hour + 24*time.Minute)

	open := PullRequestEvent{CreatedAt: created}
	if _, ok := open.LeadTimeHours(); ok {
		t.Error("open pull request should have no lead time")
	}

	pr := PullRequestEvent{CreatedAt: created, MergedAt: &merged}
	h, ok := pr.LeadTimeHours()
	if !ok {
		t.Fatal("merged pull request should have a lead time")
	}
	if h != 14.4 {
		t.Errorf("LeadTimeHours() = %v, want 14.4", h)
	}
}

func TestPullRequestEventReviewLatency(t *testing.T) {
	created := time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC)
	pr := PullRequestEvent{
		CreatedAt:  created,
		ReviewedAt: []time.Time{created.Add(2 * time.Hour), created.Add(5 * time.Hour)},
	}

	h, ok := pr.ReviewLatencyHours()
	if !ok || h != 2 {
		t.Errorf("ReviewLatencyHours() = %v, %v, want 2, true", h, ok)
	}

	if _, ok := (PullRequestEvent{CreatedAt: created}).ReviewLatencyHours(); ok {
		t.Error("pull request without reviews should have no review latency")
	}
}

func TestParseCIStatus(t *testing.T) {
	tests := []struct {
		input string
		want  CIStatus
	}{
		{"pass", CIPass},
		{"SUCCESS", CIPass},
		{"failure", CIFail},
		{"error", CIFail},
		{"pending", CIUnknown},
		{"", CIUnknown},
	}

	for _, tt := range tests {
		if got := ParseCIStatus(tt.input); got != tt.want {
			t.Errorf("ParseCIStatus(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
