package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/google/go-github/v81/github"
	logger "github.com/sirupsen/logrus"

	"stdinspector/internal/inspecterr"
)

// GitHubSource lists and reads one commit of a GitHub repository. Blobs are
// fetched by the SHA recorded in the tree listing.
type GitHubSource struct {
	client *github.Client
	owner  string
	repo   string
	sha    string

	mu    sync.Mutex
	blobs map[string]string
}

// OpenGitHub resolves "owner/repo" (or a repository URL) and ref (default:
// the default branch) to a commit SHA that every later call uses.
func OpenGitHub(ctx context.Context, client *github.Client, fullName, ref string) (*Repository, error) {
	src, err := NewGitHubSource(ctx, client, fullName, ref)
	if err != nil {
		return nil, err
	}
	return New(fmt.Sprintf("github:%s/%s@%s", src.owner, src.repo, shortSHA(src.sha)), src), nil
}

func NewGitHubSource(ctx context.Context, client *github.Client, fullName, ref string) (*GitHubSource, error) {
	if client == nil {
		return nil, fmt.Errorf("github source: nil client")
	}
	owner, name, err := SplitGitHubRepository(fullName)
	if err != nil {
		return nil, err
	}

	meta, resp, err := client.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, classifyGitHubError(resp, err, fmt.Sprintf("access repository %s/%s", owner, name))
	}

	ref = strings.TrimSpace(ref)
	if ref == "" {
		ref = meta.GetDefaultBranch()
	}
	if ref == "" {
		return nil, inspecterr.Access("repository %s has no default branch", meta.GetFullName())
	}

	sha, resp, err := client.Repositories.GetCommitSHA1(ctx, owner, name, ref, "")
	if err != nil {
		return nil, classifyGitHubError(resp, err, fmt.Sprintf("resolve ref %q", ref))
	}

	logger.WithFields(logger.Fields{
		"repository": meta.GetFullName(),
		"ref":        ref,
		"commit":     shortSHA(sha),
	}).Info("connected to GitHub repository")

	return &GitHubSource{client: client, owner: owner, repo: name, sha: sha}, nil
}

func (s *GitHubSource) Commit() string {
	return s.sha
}

func (s *GitHubSource) ListFiles(ctx context.Context) ([]string, error) {
	tree, resp, err := s.client.Git.GetTree(ctx, s.owner, s.repo, s.sha, true)
	if err != nil {
		return nil, classifyGitHubError(resp, err, "list repository tree")
	}
	if tree.GetTruncated() {
		logger.Warnf("github: tree of %s/%s is truncated; some files will not be inspected", s.owner, s.repo)
	}

	blobs := make(map[string]string, len(tree.Entries))
	files := make([]string, 0, len(tree.Entries))
	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" {
			continue
		}
		blobs[entry.GetPath()] = entry.GetSHA()
		files = append(files, entry.GetPath())
	}

	s.mu.Lock()
	s.blobs = blobs
	s.mu.Unlock()
	return files, nil
}

func (s *GitHubSource) ReadFile(ctx context.Context, path string) ([]byte, error) {
	s.mu.Lock()
	listed := s.blobs != nil
	s.mu.Unlock()
	if !listed {
		if _, err := s.ListFiles(ctx); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	blobSHA, ok := s.blobs[path]
	s.mu.Unlock()
	if !ok {
		return nil, inspecterr.NotFound("file not found: %s", path)
	}

	raw, resp, err := s.client.Git.GetBlobRaw(ctx, s.owner, s.repo, blobSHA)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, inspecterr.NotFound("file not found: %s", path)
		}
		return nil, classifyGitHubError(resp, err, fmt.Sprintf("read %q", path))
	}
	return raw, nil
}

func classifyGitHubError(resp *github.Response, err error, op string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if resp != nil {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return inspecterr.Authentication("github: %s: credentials rejected", op)
		case http.StatusForbidden, http.StatusNotFound, http.StatusUnprocessableEntity:
			return inspecterr.Access("github: %s: %d %s", op, resp.StatusCode, http.StatusText(resp.StatusCode))
		}
	}
	return inspecterr.Access("github: %s: %v", op, err)
}

// SplitGitHubRepository accepts "owner/repo" or a repository URL.
func SplitGitHubRepository(raw string) (owner, repo string, err error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		u, perr := url.Parse(s)
		if perr != nil || u.Host == "" {
			return "", "", inspecterr.Configuration("invalid GitHub repository URL %q", raw)
		}
		s = u.Path
	}
	s = strings.TrimSuffix(strings.Trim(s, "/"), ".git")
	parts := strings.Split(s, "/")
	if len(parts) > 2 {
		parts = parts[:2]
	}
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", inspecterr.Configuration("GitHub repository must be owner/repo, got %q", raw)
	}
	return parts[0], parts[1], nil
}
