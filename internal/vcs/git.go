package vcs

import (
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GitOpener opens git repositories using go-git.
type GitOpener struct{}

// NewGitOpener creates a new GitOpener.
func NewGitOpener() *GitOpener {
	return &GitOpener{}
}

// PlainOpen opens an existing git repository, detecting .git in parent
// directories.
func (o *GitOpener) PlainOpen(path string) (Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, err
	}
	return &gitRepository{repo: repo, path: path}, nil
}

// gitRepository wraps go-git Repository.
type gitRepository struct {
	repo *git.Repository
	path string
}

func (r *gitRepository) Log(opts *LogOptions) (CommitIterator, error) {
	gitOpts := &git.LogOptions{}
	if opts != nil {
		gitOpts.Since = opts.Since
		gitOpts.Until = opts.Until
	}
	iter, err := r.repo.Log(gitOpts)
	if err != nil {
		return nil, err
	}
	return &gitCommitIterator{iter: iter}, nil
}

func (r *gitRepository) RepoPath() string {
	return r.path
}

// gitCommitIterator wraps go-git CommitIter.
type gitCommitIterator struct {
	iter object.CommitIter
}

func (i *gitCommitIterator) ForEach(fn func(Commit) error) error {
	return i.iter.ForEach(func(c *object.Commit) error {
		return fn(&gitCommit{commit: c})
	})
}

func (i *gitCommitIterator) Close() {
	i.iter.Close()
}

// gitCommit wraps go-git Commit.
type gitCommit struct {
	commit *object.Commit
}

func (c *gitCommit) Hash() plumbing.Hash {
	return c.commit.Hash
}

func (c *gitCommit) NumParents() int {
	return c.commit.NumParents()
}

func (c *gitCommit) Stats() (object.FileStats, error) {
	return c.commit.Stats()
}

func (c *gitCommit) Author() object.Signature {
	return c.commit.Author
}

func (c *gitCommit) Message() string {
	return c.commit.Message
}

// Default opener singleton
var defaultOpener Opener = NewGitOpener()

// DefaultOpener returns the default git opener.
func DefaultOpener() Opener {
	return defaultOpener
}

// SetDefaultOpener sets the default git opener (useful for testing).
func SetDefaultOpener(opener Opener) {
	defaultOpener = opener
}
