// Package gitlab builds authenticated GitLab API clients.
package gitlab

import (
	"fmt"
	"net/http"
	"strings"

	logger "github.com/sirupsen/logrus"
	gl "gitlab.com/gitlab-org/api/client-go"

	"stdinspector/internal/credential"
	"stdinspector/internal/httpx"
	"stdinspector/internal/inspecterr"
)

const DefaultBaseURL = "https://gitlab.com"

type Client struct {
	Client  *gl.Client
	BaseURL string
}

type options struct {
	log    logger.FieldLogger
	budget *httpx.RequestBudget
}

type Option func(*options)

func WithLogger(log logger.FieldLogger) Option {
	return func(o *options) {
		o.log = log
	}
}

func WithBudget(b *httpx.RequestBudget) Option {
	return func(o *options) {
		o.budget = b
	}
}

// ResolveAuthToken returns provided, falling back to GITLAB_TOKEN.
func ResolveAuthToken(provided string) string {
	tok, _ := credential.Lookup(provided, "GITLAB_TOKEN")
	return tok
}

// ResolveBaseURL returns provided, falling back to GITLAB_URL and then to
// DefaultBaseURL.
func ResolveBaseURL(provided string) string {
	if u, _ := credential.Lookup(provided, "GITLAB_URL"); u != "" {
		return u
	}
	return DefaultBaseURL
}

// NewClient validates baseURL and returns a client authenticating with a
// private token. A missing token is a configuration error.
func NewClient(baseURL, token string, opts ...Option) (*Client, error) {
	u, err := httpx.ParseEndpoint(baseURL)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(token) == "" {
		return nil, inspecterr.Configuration("GitLab token is required (use --token or set GITLAB_TOKEN)")
	}

	o := &options{}
	for _, apply := range opts {
		if apply != nil {
			apply(o)
		}
	}
	if o.budget == nil {
		o.budget = httpx.NewRequestBudget(httpx.GitLabRateLimitHeaders)
	}

	var transport http.RoundTripper = &httpx.LoggingRoundTripper{
		Base:   http.DefaultTransport,
		Log:    o.log,
		Prefix: "gitlab api",
	}
	transport = &httpx.BudgetRoundTripper{Base: transport, Budget: o.budget}

	client, err := gl.NewClient(token,
		gl.WithBaseURL(u.String()),
		gl.WithHTTPClient(&http.Client{Transport: transport}),
	)
	if err != nil {
		return nil, fmt.Errorf("gitlab client: %w", err)
	}
	return &Client{Client: client, BaseURL: u.String()}, nil
}
