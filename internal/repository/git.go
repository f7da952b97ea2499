package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	logger "github.com/sirupsen/logrus"

	"stdinspector/internal/inspecterr"
)

// GitSource reads the tree of one commit in a local git repository.
// Uncommitted changes in the working tree are invisible to it.
type GitSource struct {
	commit *object.Commit

	mu   sync.Mutex
	tree *object.Tree
}

// OpenGit opens the repository containing dir and pins ref (default HEAD).
func OpenGit(dir, ref string) (*Repository, error) {
	src, err := NewGitSource(dir, ref)
	if err != nil {
		return nil, err
	}
	return New(fmt.Sprintf("git:%s@%s", dir, shortSHA(src.Commit())), src), nil
}

func NewGitSource(dir, ref string) (*GitSource, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, inspecterr.Configuration("not a git repository: %s", dir)
		}
		return nil, inspecterr.Access("open git repository %s: %v", dir, err)
	}

	ref = strings.TrimSpace(ref)
	if ref == "" {
		ref = "HEAD"
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, inspecterr.Access("resolve ref %q: %v", ref, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, inspecterr.Access("load commit %s: %v", hash, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, inspecterr.Access("load tree of %s: %v", hash, err)
	}

	logger.WithFields(logger.Fields{
		"directory": dir,
		"ref":       ref,
		"commit":    shortSHA(hash.String()),
	}).Info("opened git repository")

	return &GitSource{commit: commit, tree: tree}, nil
}

func (s *GitSource) Commit() string {
	return s.commit.Hash.String()
}

func (s *GitSource) ListFiles(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var files []string
	err := s.tree.Files().ForEach(func(f *object.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		files = append(files, f.Name)
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, inspecterr.Access("list tree of %s: %v", shortSHA(s.Commit()), err)
	}
	return files, nil
}

func (s *GitSource) ReadFile(_ context.Context, path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.tree.File(path)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) || errors.Is(err, object.ErrDirectoryNotFound) {
			return nil, inspecterr.NotFound("file not found: %s", path)
		}
		return nil, err
	}
	content, err := f.Contents()
	if err != nil {
		return nil, err
	}
	return []byte(content), nil
}
