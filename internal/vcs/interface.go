// Package vcs provides version control system abstractions for the
// harvester.
package vcs

import (
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Opener opens repositories by path.
type Opener interface {
	PlainOpen(path string) (Repository, error)
}

// Repository provides access to git repository operations.
type Repository interface {
	// Log returns a commit iterator starting from HEAD.
	Log(opts *LogOptions) (CommitIterator, error)
	// RepoPath returns the root path of the repository.
	RepoPath() string
}

// LogOptions configures the commit log query.
type LogOptions struct {
	Since *time.Time
	Until *time.Time
}

// CommitIterator iterates over commits.
type CommitIterator interface {
	ForEach(fn func(Commit) error) error
	Close()
}

// Commit represents a git commit.
type Commit interface {
	// Hash returns the commit hash.
	Hash() plumbing.Hash
	// NumParents returns the number of parent commits.
	NumParents() int
	// Stats returns per-file stats for this commit.
	Stats() (object.FileStats, error)
	// Author returns commit author information.
	Author() object.Signature
	// Message returns the commit message.
	Message() string
}
