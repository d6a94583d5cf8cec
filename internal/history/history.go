// Package history persists period metrics between runs so the forecaster
// can consume prior periods. The store is the caller's collaborator: the
// pipeline only ever reads from it.
package history

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/avelira/devpulse/internal/pipeline"
	"github.com/avelira/devpulse/pkg/models"
	"github.com/zeebo/blake3"
)

// Store keeps one JSON file of PeriodMetrics per repository identity.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. The directory is created lazily
// on first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// key derives a stable filename from a repository identity.
func (s *Store) key(repo string) string {
	hash := blake3.Sum256([]byte(repo))
	return hex.EncodeToString(hash[:])[:16]
}

func (s *Store) path(repo string) string {
	return filepath.Join(s.dir, s.key(repo)+".json")
}

// load reads a repository's stored metrics, oldest first. A missing file
// is an empty history, not an error.
func (s *Store) load(repo string) ([]models.PeriodMetrics, error) {
	data, err := os.ReadFile(s.path(repo))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var metrics []models.PeriodMetrics
	if err := json.Unmarshal(data, &metrics); err != nil {
		return nil, err
	}
	return metrics, nil
}

// Save upserts one period's metrics for a repository, keeping the file
// ordered oldest first. A rerun of the same period replaces its entry.
func (s *Store) Save(repo string, m models.PeriodMetrics) error {
	metrics, err := s.load(repo)
	if err != nil {
		return err
	}

	replaced := false
	for i, existing := range metrics {
		if existing.Period.Start.Equal(m.Period.Start) && existing.Period.Granularity == m.Period.Granularity {
			metrics[i] = m
			replaced = true
			break
		}
	}
	if !replaced {
		metrics = append(metrics, m)
	}

	sort.Slice(metrics, func(i, j int) bool {
		return metrics[i].Period.Start.Before(metrics[j].Period.Start)
	})

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(repo), data, 0o644)
}

// Recent returns up to n stored metrics for periods strictly before the
// given one, oldest first, matching its granularity.
func (s *Store) Recent(repo string, before models.Period, n int) ([]models.PeriodMetrics, error) {
	metrics, err := s.load(repo)
	if err != nil {
		return nil, err
	}

	var prior []models.PeriodMetrics
	for _, m := range metrics {
		if m.Period.Granularity != before.Granularity {
			continue
		}
		if m.Period.Start.Before(before.Start) {
			prior = append(prior, m)
		}
	}
	if n > 0 && len(prior) > n {
		prior = prior[len(prior)-n:]
	}
	return prior, nil
}

// RepoHistory binds a store to one repository so it satisfies the
// pipeline's read-only history contract.
type RepoHistory struct {
	store *Store
	repo  string
}

// Compile-time check that RepoHistory implements HistorySource.
var _ pipeline.HistorySource = (*RepoHistory)(nil)

// ForRepo returns a read-only history view for one repository.
func (s *Store) ForRepo(repo string) *RepoHistory {
	return &RepoHistory{store: s, repo: repo}
}

// Metrics implements pipeline.HistorySource.
func (h *RepoHistory) Metrics(ctx context.Context, before models.Period, n int) ([]models.PeriodMetrics, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return h.store.Recent(h.repo, before, n)
}
