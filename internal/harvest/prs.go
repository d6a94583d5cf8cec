package harvest

import (
	"encoding/json"
	"os"
	"time"

	"github.com/avelira/devpulse/pkg/models"
)

// prRecord mirrors one entry of a pull request JSON export.
type prRecord struct {
	Number       int      `json:"number"`
	Author       string   `json:"author"`
	CreatedAt    string   `json:"created_at"`
	MergedAt     *string  `json:"merged_at"`
	Additions    int      `json:"additions"`
	Deletions    int      `json:"deletions"`
	ChangedFiles int      `json:"changed_files"`
	CIStatus     string   `json:"ci_status"`
	ReviewedAt   []string `json:"reviewed_at"`
}

// LoadPullRequests reads a pull request export file. Records missing an
// author or a parsable creation timestamp are skipped and counted; a merge
// or review timestamp that fails to parse drops only that field.
func LoadPullRequests(path string) ([]models.PullRequestEvent, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}

	var records []prRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, 0, err
	}

	var prs []models.PullRequestEvent
	var skipped int
	for _, rec := range records {
		created, err := time.Parse(time.RFC3339, rec.CreatedAt)
		if rec.Author == "" || err != nil {
			skipped++
			continue
		}

		pr := models.PullRequestEvent{
			Number:       rec.Number,
			Author:       rec.Author,
			CreatedAt:    created,
			Additions:    rec.Additions,
			Deletions:    rec.Deletions,
			FilesChanged: rec.ChangedFiles,
			CI:           models.ParseCIStatus(rec.CIStatus),
		}

		if rec.MergedAt != nil {
			if merged, err := time.Parse(time.RFC3339, *rec.MergedAt); err == nil {
				pr.MergedAt = &merged
			}
		}
		for _, rv := range rec.ReviewedAt {
			if t, err := time.Parse(time.RFC3339, rv); err == nil {
				pr.ReviewedAt = append(pr.ReviewedAt, t)
			}
		}

		prs = append(prs, pr)
	}
	return prs, skipped, nil
}
