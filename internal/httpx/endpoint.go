package httpx

import (
	"net/url"
	"strings"

	"stdinspector/internal/inspecterr"
)

// ParseEndpoint validates that raw is a well-formed absolute http(s) URL.
func ParseEndpoint(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, inspecterr.Configuration("endpoint URL is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, inspecterr.Configuration("malformed endpoint URL %q: %v", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, inspecterr.Configuration("endpoint URL %q must use http or https", raw)
	}
	if u.Host == "" {
		return nil, inspecterr.Configuration("endpoint URL %q has no host", raw)
	}
	return u, nil
}
