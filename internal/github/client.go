package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v81/github"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"stdinspector/internal/httpx"
)

type Client struct {
	Client *github.Client
	HTTP   *http.Client
}

type options struct {
	baseURL string
	log     logger.FieldLogger
	budget  *httpx.RequestBudget
}

type Option func(*options)

// WithBaseURL points the client at a GitHub Enterprise Server API endpoint.
func WithBaseURL(raw string) Option {
	return func(o *options) {
		o.baseURL = raw
	}
}

// WithLogger routes per-request debug lines to log.
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

func NewClient(ctx context.Context, token string, opts ...Option) (*Client, error) {
	if ctx == nil {
		return nil, fmt.Errorf("github client: ctx is nil")
	}

	o := &options{}
	for _, apply := range opts {
		if apply != nil {
			apply(o)
		}
	}
	if o.budget == nil {
		o.budget = httpx.NewRequestBudget(httpx.GitHubRateLimitHeaders)
	}

	var transport http.RoundTripper = &httpx.LoggingRoundTripper{
		Base:   http.DefaultTransport,
		Log:    o.log,
		Prefix: "github api",
	}
	transport = &httpx.BudgetRoundTripper{Base: transport, Budget: o.budget}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		transport = &oauth2.Transport{Source: ts, Base: transport}
	}
	tc := &http.Client{Transport: transport}

	client := github.NewClient(tc)
	if strings.TrimSpace(o.baseURL) != "" {
		u, err := httpx.ParseEndpoint(o.baseURL)
		if err != nil {
			return nil, err
		}
		client, err = client.WithEnterpriseURLs(u.String(), u.String())
		if err != nil {
			return nil, fmt.Errorf("github client: %w", err)
		}
	}

	return &Client{
		Client: client,
		HTTP:   tc,
	}, nil
}
