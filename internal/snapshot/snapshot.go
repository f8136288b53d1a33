// Package snapshot records the corkboard data directory in a local git
// repository. Each snapshot commits the current JSONL files; the SQLite
// cache is ignored because it is rebuilt from them on every attach.
package snapshot

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// ErrNothingToSnapshot is returned by Commit when no JSONL file changed
// since the last snapshot.
var ErrNothingToSnapshot = errors.New("no data changes to snapshot")

// DefaultMessage is used when Commit is called with an empty message.
const DefaultMessage = "corkboard snapshot"

const gitignore = "corkboard.db\n.jsonl-*.tmp\n"

// Author identifies who made a snapshot. Zero fields fall back to
// "corkboard" and "corkboard@localhost".
type Author struct {
	Name  string
	Email string
}

func (a Author) signature() *object.Signature {
	if a.Name == "" {
		a.Name = "corkboard"
	}
	if a.Email == "" {
		a.Email = "corkboard@localhost"
	}
	return &object.Signature{Name: a.Name, Email: a.Email, When: time.Now()}
}

// Entry describes one snapshot in the history.
type Entry struct {
	Hash    string    `json:"hash" yaml:"hash"`
	Message string    `json:"message" yaml:"message"`
	Author  string    `json:"author" yaml:"author"`
	When    time.Time `json:"when" yaml:"when"`
}

// Commit stages every JSONL file in dataDir and commits them, initializing
// the repository on first use. Returns the new commit hash.
func Commit(dataDir, message string, author Author) (string, error) {
	repo, err := openOrInit(dataDir)
	if err != nil {
		return "", err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}

	if err := wt.AddGlob("*.jsonl"); err != nil {
		if errors.Is(err, git.ErrGlobNoMatches) {
			return "", ErrNothingToSnapshot
		}
		return "", fmt.Errorf("failed to add data files: %w", err)
	}
	if _, err := wt.Add(".gitignore"); err != nil {
		return "", fmt.Errorf("failed to add .gitignore: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return "", fmt.Errorf("failed to read status: %w", err)
	}
	staged := 0
	for _, s := range status {
		if s.Staging != git.Unmodified && s.Staging != git.Untracked {
			staged++
		}
	}
	if staged == 0 {
		return "", ErrNothingToSnapshot
	}

	if strings.TrimSpace(message) == "" {
		message = DefaultMessage
	}
	hash, err := wt.Commit(message, &git.CommitOptions{Author: author.signature()})
	if err != nil {
		return "", fmt.Errorf("failed to commit snapshot: %w", err)
	}
	slog.Debug("snapshot committed", "hash", hash.String(), "files", staged)
	return hash.String(), nil
}

// Log returns up to limit snapshots, newest first. A limit of zero returns
// all of them. A data directory that was never snapshotted has no history.
func Log(dataDir string, limit int) ([]Entry, error) {
	repo, err := git.PlainOpen(dataDir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	iter, err := repo.Log(&git.LogOptions{})
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	entries := []Entry{}
	err = iter.ForEach(func(c *object.Commit) error {
		entries = append(entries, Entry{
			Hash:    c.Hash.String(),
			Message: strings.TrimSpace(c.Message),
			Author:  c.Author.Name,
			When:    c.Author.When,
		})
		if limit > 0 && len(entries) == limit {
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk log: %w", err)
	}
	return entries, nil
}

func openOrInit(dataDir string) (*git.Repository, error) {
	repo, err := git.PlainOpen(dataDir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(dataDir, false)
		if err != nil {
			return nil, fmt.Errorf("failed to init repository: %w", err)
		}
		slog.Debug("initialized snapshot repository", "data_dir", dataDir)
	} else if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	path := filepath.Join(dataDir, ".gitignore")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte(gitignore), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write .gitignore: %w", err)
		}
	}
	return repo, nil
}
