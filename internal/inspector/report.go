package inspector

import (
	"bytes"
	"encoding/json"

	"stdinspector/internal/inspecterr"
	"stdinspector/internal/standards"
)

// Entry is one standard's descriptor merged with its outcome. Err is set
// when the check itself failed to run.
type Entry struct {
	standards.Descriptor
	standards.Result
	Err error
}

func (e Entry) Errored() bool {
	return e.Err != nil
}

type entryJSON struct {
	Code           string             `json:"code"`
	Category       string             `json:"category"`
	Standard       any                `json:"standard"`
	Severity       standards.Severity `json:"severity"`
	Description    string             `json:"description"`
	Recommendation string             `json:"recommendation"`
	StandardType   string             `json:"standard_type"`
	MeetsStandard  bool               `json:"meets_standard"`
	Value          *string            `json:"value"`
	AdditionalInfo map[string]any     `json:"additional_info,omitempty"`
	Error          string             `json:"error,omitempty"`
}

func (e Entry) MarshalJSON() ([]byte, error) {
	out := entryJSON{
		Code:           e.Code,
		Category:       e.Category,
		Standard:       e.Standard,
		Severity:       e.Severity,
		Description:    e.Description,
		Recommendation: e.Recommendation,
		StandardType:   e.Type,
		MeetsStandard:  e.MeetsStandard,
		Value:          e.Value,
		AdditionalInfo: e.AdditionalInfo,
	}
	if e.Err != nil {
		out.Error = e.Err.Error()
	}
	return json.Marshal(out)
}

// Report holds entries in evaluation order.
type Report struct {
	Entries []Entry
}

func (r *Report) Get(code string) (Entry, bool) {
	for _, e := range r.Entries {
		if e.Code == code {
			return e, true
		}
	}
	return Entry{}, false
}

func (r *Report) Codes() []string {
	codes := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		codes = append(codes, e.Code)
	}
	return codes
}

// MarshalJSON encodes the report as an object keyed by code whose key order
// is the evaluation order.
func (r *Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r.Entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Code)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type Summary struct {
	Total                  int
	Passed                 int
	CriticalFailures       int
	RecommendationFailures int
	Errored                int
}

func (r *Report) Summary() Summary {
	s := Summary{Total: len(r.Entries)}
	for _, e := range r.Entries {
		switch {
		case e.Errored():
			s.Errored++
		case e.MeetsStandard:
			s.Passed++
		case e.Critical():
			s.CriticalFailures++
		default:
			s.RecommendationFailures++
		}
	}
	return s
}

// ExitCode maps the report to the process exit status. An errored standard
// outranks a critical failure because the report is then incomplete.
func (r *Report) ExitCode() int {
	s := r.Summary()
	switch {
	case s.Errored > 0:
		return inspecterr.ExitPartialFailure
	case s.CriticalFailures > 0:
		return inspecterr.ExitCriticalFailure
	default:
		return inspecterr.ExitOK
	}
}
