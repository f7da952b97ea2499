package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	logger "github.com/sirupsen/logrus"
	gl "gitlab.com/gitlab-org/api/client-go"

	"stdinspector/internal/inspecterr"
)

const gitlabPerPage = 100

// GitLabSource lists and reads one commit of a GitLab project.
type GitLabSource struct {
	client  *gl.Client
	project string
	name    string
	sha     string
}

// OpenGitLab authenticates, resolves project and resolves ref (default: the
// project's default branch) to a commit SHA that every later call uses.
func OpenGitLab(ctx context.Context, client *gl.Client, project, ref string) (*Repository, error) {
	src, err := NewGitLabSource(ctx, client, project, ref)
	if err != nil {
		return nil, err
	}
	return New(fmt.Sprintf("gitlab:%s@%s", src.name, shortSHA(src.sha)), src), nil
}

func NewGitLabSource(ctx context.Context, client *gl.Client, project, ref string) (*GitLabSource, error) {
	if client == nil {
		return nil, fmt.Errorf("gitlab source: nil client")
	}
	pid, err := NormalizeGitLabProject(project)
	if err != nil {
		return nil, err
	}

	user, resp, err := client.Users.CurrentUser(gl.WithContext(ctx))
	if err != nil {
		return nil, classifyGitLabError(resp, err, "authenticate")
	}

	proj, resp, err := client.Projects.GetProject(pid, nil, gl.WithContext(ctx))
	if err != nil {
		return nil, classifyGitLabError(resp, err, fmt.Sprintf("access project %q", pid))
	}

	ref = strings.TrimSpace(ref)
	if ref == "" {
		ref = proj.DefaultBranch
	}
	if ref == "" {
		return nil, inspecterr.Access("project %q has no default branch", proj.PathWithNamespace)
	}

	commit, resp, err := client.Commits.GetCommit(pid, ref, nil, gl.WithContext(ctx))
	if err != nil {
		return nil, classifyGitLabError(resp, err, fmt.Sprintf("resolve ref %q", ref))
	}

	logger.WithFields(logger.Fields{
		"project": proj.PathWithNamespace,
		"ref":     ref,
		"commit":  shortSHA(commit.ID),
		"user":    user.Username,
	}).Info("connected to GitLab project")

	return &GitLabSource{
		client:  client,
		project: pid,
		name:    proj.PathWithNamespace,
		sha:     commit.ID,
	}, nil
}

func (s *GitLabSource) Commit() string {
	return s.sha
}

func (s *GitLabSource) ListFiles(ctx context.Context) ([]string, error) {
	opts := &gl.ListTreeOptions{
		ListOptions: gl.ListOptions{PerPage: gitlabPerPage},
		Ref:         gl.Ptr(s.sha),
		Recursive:   gl.Ptr(true),
	}

	var files []string
	for {
		nodes, resp, err := s.client.Repositories.ListTree(s.project, opts, gl.WithContext(ctx))
		if err != nil {
			return nil, classifyGitLabError(resp, err, "list repository tree")
		}
		for _, node := range nodes {
			if node.Type != "blob" {
				continue
			}
			files = append(files, node.Path)
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return files, nil
}

func (s *GitLabSource) ReadFile(ctx context.Context, path string) ([]byte, error) {
	raw, resp, err := s.client.RepositoryFiles.GetRawFile(
		s.project, path,
		&gl.GetRawFileOptions{Ref: gl.Ptr(s.sha)},
		gl.WithContext(ctx),
	)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, inspecterr.NotFound("file not found: %s", path)
		}
		return nil, classifyGitLabError(resp, err, fmt.Sprintf("read %q", path))
	}
	return raw, nil
}

func classifyGitLabError(resp *gl.Response, err error, op string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if resp != nil {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return inspecterr.Authentication("gitlab: %s: credentials rejected", op)
		case http.StatusForbidden, http.StatusNotFound:
			return inspecterr.Access("gitlab: %s: %d %s", op, resp.StatusCode, http.StatusText(resp.StatusCode))
		}
	}
	return inspecterr.Access("gitlab: %s: %v", op, err)
}

// NormalizeGitLabProject accepts a numeric project ID, a namespaced path
// ("group/sub/project") or a project URL and returns the API identifier.
func NormalizeGitLabProject(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", inspecterr.Configuration("GitLab project ID is required")
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			return "", inspecterr.Configuration("invalid GitLab project URL %q", raw)
		}
		raw = u.Path
	}
	if before, _, ok := strings.Cut(raw, "/-/"); ok {
		raw = before
	}
	raw = strings.TrimSuffix(strings.Trim(raw, "/"), ".git")
	if raw == "" {
		return "", inspecterr.Configuration("invalid GitLab project %q", raw)
	}
	return raw, nil
}

func shortSHA(sha string) string {
	if len(sha) > 12 {
		return sha[:12]
	}
	return sha
}
