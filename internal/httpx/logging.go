package httpx

import (
	"net/http"
	"time"

	logger "github.com/sirupsen/logrus"
)

// LoggingRoundTripper wraps an underlying transport and emits one debug line
// per request and response, including latency.
type LoggingRoundTripper struct {
	Base   http.RoundTripper
	Log    logger.FieldLogger
	Prefix string
}

func (t *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	log := t.Log
	if log == nil {
		log = logger.StandardLogger()
	}

	start := time.Now()
	log.Debugf("%s: %s %s", t.Prefix, req.Method, req.URL.Redacted())
	resp, err := base.RoundTrip(req)
	dur := time.Since(start).Truncate(time.Millisecond)
	if err != nil {
		log.Debugf("%s: error after %s: %v", t.Prefix, dur, err)
		return resp, err
	}
	log.Debugf("%s: %d %s (%s)", t.Prefix, resp.StatusCode, http.StatusText(resp.StatusCode), dur)
	return resp, err
}
