// Package harvest materializes commit and pull request events for a
// period from a local repository and an optional pull request export.
package harvest

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/avelira/devpulse/internal/pipeline"
	"github.com/avelira/devpulse/internal/progress"
	"github.com/avelira/devpulse/internal/vcs"
	"github.com/avelira/devpulse/pkg/models"
)

// DefaultGitTimeout is the default timeout for git operations.
const DefaultGitTimeout = 5 * time.Minute

// Harvester reads commit history and pull request exports into the event
// model. It implements pipeline.EventSource.
type Harvester struct {
	repoPath  string
	prFile    string
	spinner   *progress.Tracker
	opener    vcs.Opener
	useNative bool // use native git commands for better performance
}

// Compile-time check that Harvester implements EventSource.
var _ pipeline.EventSource = (*Harvester)(nil)

// Option is a functional option for configuring Harvester.
type Option func(*Harvester)

// WithPRFile points the harvester at a pull request JSON export.
func WithPRFile(path string) Option {
	return func(h *Harvester) {
		h.prFile = path
	}
}

// WithSpinner sets a progress spinner for the harvester.
func WithSpinner(spinner *progress.Tracker) Option {
	return func(h *Harvester) {
		h.spinner = spinner
	}
}

// WithOpener sets the VCS opener (useful for testing).
// Using this option disables native git and falls back to go-git.
func WithOpener(opener vcs.Opener) Option {
	return func(h *Harvester) {
		h.opener = opener
		h.useNative = false
	}
}

// WithNativeGit forces use of native git commands (default: true).
func WithNativeGit(use bool) Option {
	return func(h *Harvester) {
		h.useNative = use
	}
}

// New creates a harvester for a repository path.
func New(repoPath string, opts ...Option) *Harvester {
	h := &Harvester{
		repoPath:  repoPath,
		opener:    vcs.DefaultOpener(),
		useNative: true, // default to fast native git
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Events returns the period's commit and pull request events. Malformed
// records are dropped and counted in the batch, never raised; partial data
// should not abort a whole period's report.
func (h *Harvester) Events(ctx context.Context, period models.Period) (*pipeline.Batch, error) {
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), DefaultGitTimeout)
		defer cancel()
	}

	batch := &pipeline.Batch{}

	var err error
	if h.useNative {
		err = h.harvestNative(ctx, period, batch)
	} else {
		err = h.harvestGoGit(ctx, period, batch)
	}
	if err != nil {
		return nil, err
	}

	if h.prFile != "" {
		prs, skipped, err := LoadPullRequests(h.prFile)
		if err != nil {
			return nil, err
		}
		batch.PRs = prs
		batch.Skipped += skipped
	}

	return batch, nil
}

// harvestNative shells out to git log. The numstat walk is far faster than
// go-git tree diffs on large repositories.
func (h *Harvester) harvestNative(ctx context.Context, period models.Period, batch *pipeline.Batch) error {
	// Format: commit_hash|author_name|author_date|subject
	// Followed by numstat lines: added\tdeleted\tfilepath
	args := []string{
		"log",
		"--numstat",
		"--since=" + period.Start.Format(time.RFC3339),
		"--until=" + period.End.Format(time.RFC3339),
		"--format=%H|%aN|%aI|%s",
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = h.repoPath

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return err
	}

	commits, skipped := h.parseGitLogNumstat(&stdout)
	batch.Commits = append(batch.Commits, commits...)
	batch.Skipped += skipped
	return nil
}

// parseGitLogNumstat parses output from git log --numstat
// --format="%H|%aN|%aI|%s". Commit header lines missing a parsable
// timestamp drop the whole commit, counted as skipped.
func (h *Harvester) parseGitLogNumstat(r *bytes.Buffer) ([]models.CommitEvent, int) {
	scanner := bufio.NewScanner(r)

	var commits []models.CommitEvent
	var current *models.CommitEvent
	var skipped int

	flush := func() {
		if current != nil {
			commits = append(commits, *current)
			current = nil
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		if isCommitHeader(line) {
			flush()
			parts := strings.SplitN(line, "|", 4)
			ts, err := time.Parse(time.RFC3339, parts[2])
			if err != nil {
				skipped++
				continue
			}
			current = &models.CommitEvent{
				Hash:      parts[0],
				Author:    parts[1],
				Timestamp: ts,
				Message:   parts[3],
			}
			if h.spinner != nil {
				h.spinner.Tick()
			}
			continue
		}

		// numstat line: added\tdeleted\tfilepath
		parts := strings.Split(line, "\t")
		if len(parts) != 3 || current == nil {
			continue
		}

		addedStr, deletedStr, path := parts[0], parts[1], parts[2]

		// Binary files show "-" and contribute no line churn.
		if addedStr == "-" || deletedStr == "-" {
			current.FilesChanged++
			current.Files = append(current.Files, path)
			continue
		}

		added, _ := strconv.Atoi(addedStr)
		deleted, _ := strconv.Atoi(deletedStr)
		current.Additions += added
		current.Deletions += deleted
		current.FilesChanged++
		current.Files = append(current.Files, path)
	}
	flush()

	return commits, skipped
}

// isCommitHeader reports whether a git log line is a commit header in our
// hash|author|date|subject format.
func isCommitHeader(line string) bool {
	parts := strings.SplitN(line, "|", 4)
	if len(parts) != 4 {
		return false
	}
	hash := parts[0]
	if len(hash) != 40 {
		return false
	}
	for _, c := range hash {
		if !strings.ContainsRune("0123456789abcdef", c) {
			return false
		}
	}
	return true
}

// harvestGoGit walks history with go-git (slower but works with mocked
// repositories).
func (h *Harvester) harvestGoGit(ctx context.Context, period models.Period, batch *pipeline.Batch) error {
	repo, err := h.opener.PlainOpen(h.repoPath)
	if err != nil {
		return err
	}

	since := period.Start
	until := period.End
	logIter, err := repo.Log(&vcs.LogOptions{Since: &since, Until: &until})
	if err != nil {
		return err
	}
	defer logIter.Close()

	return logIter.ForEach(func(commit vcs.Commit) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if h.spinner != nil {
			h.spinner.Tick()
		}

		event := models.CommitEvent{
			Hash:      commit.Hash().String(),
			Author:    commit.Author().Name,
			Timestamp: commit.Author().When,
			Message:   commit.Message(),
		}

		stats, err := commit.Stats()
		if err == nil {
			for _, fs := range stats {
				event.Additions += fs.Addition
				event.Deletions += fs.Deletion
				event.FilesChanged++
				event.Files = append(event.Files, fs.Name)
			}
		}

		batch.Commits = append(batch.Commits, event)
		return nil
	})
}
