package github

import (
	"context"
	"fmt"
	"strings"

	"stdinspector/internal/credential"
)

const defaultHost = "github.com"

// SourceGitHubCLI marks a token printed by "gh auth token".
var SourceGitHubCLI = credential.CommandSource("gh")

// ResolveAuthToken resolves a GitHub token for host (empty means github.com)
// from provided, GITHUB_TOKEN, GH_TOKEN and finally the GitHub CLI. An empty
// token with a nil error means none is configured.
func ResolveAuthToken(ctx context.Context, provided, host string) (string, credential.Source, error) {
	if tok, src := credential.Lookup(provided, "GITHUB_TOKEN", "GH_TOKEN"); tok != "" {
		return tok, src, nil
	}

	if strings.TrimSpace(host) == "" {
		host = defaultHost
	}
	gh := credential.Helper{
		Name: "gh",
		Args: []string{"auth", "token", "-h", host},
		Env:  []string{"GH_PAGER=cat"},
	}
	tok, ok, err := gh.Token(ctx)
	if err != nil {
		return "", "", fmt.Errorf("gh auth token: %w", err)
	}
	if !ok {
		return "", "", nil
	}
	return tok, SourceGitHubCLI, nil
}
