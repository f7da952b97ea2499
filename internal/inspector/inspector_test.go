package inspector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stdinspector/internal/inspecterr"
	"stdinspector/internal/repository"
	"stdinspector/internal/standards"
	"stdinspector/internal/standards/checks"
)

type memSource struct {
	files   map[string]string
	listErr error
}

func (m *memSource) ListFiles(context.Context) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	return out, nil
}

func (m *memSource) ReadFile(_ context.Context, p string) ([]byte, error) {
	return []byte(m.files[p]), nil
}

type stubStandard struct {
	code     string
	severity standards.Severity
	meets    bool
	err      error
	calls    int
}

func (s *stubStandard) Descriptor() standards.Descriptor {
	return standards.Descriptor{Code: s.code, Severity: s.severity, Description: s.code + " description"}
}

func (s *stubStandard) Check(context.Context, standards.Repository) (standards.Result, error) {
	s.calls++
	if s.err != nil {
		return standards.Result{}, s.err
	}
	return standards.Presence(s.meets), nil
}

func TestInspector_RunsEveryStandardInOrder(t *testing.T) {
	critical := &stubStandard{code: "A1", severity: standards.SeverityCritical}
	advisory := &stubStandard{code: "B2", severity: standards.SeverityRecommendation}
	passing := &stubStandard{code: "C3", severity: standards.SeverityCritical, meets: true}

	repo := repository.New("mem", &memSource{files: map[string]string{"x": ""}})
	report, err := New([]standards.Standard{critical, advisory, passing}).Check(context.Background(), repo)
	require.NoError(t, err)

	assert.Equal(t, []string{"A1", "B2", "C3"}, report.Codes())
	assert.Equal(t, 1, passing.calls, "a failing critical standard does not stop the run")
	assert.Equal(t, Summary{Total: 3, Passed: 1, CriticalFailures: 1, RecommendationFailures: 1}, report.Summary())
	assert.Equal(t, inspecterr.ExitCriticalFailure, report.ExitCode())

	e, ok := report.Get("B2")
	require.True(t, ok)
	assert.Equal(t, "B2 description", e.Description)
	assert.False(t, e.MeetsStandard)
}

func TestInspector_ErroredStandardBecomesFailingEntry(t *testing.T) {
	broken := &stubStandard{code: "A1", severity: standards.SeverityRecommendation, err: errors.New("boom")}
	after := &stubStandard{code: "B2", severity: standards.SeverityCritical, meets: true}

	repo := repository.New("mem", &memSource{})
	report, err := New([]standards.Standard{broken, after}).Check(context.Background(), repo)
	require.NoError(t, err)

	e, _ := report.Get("A1")
	assert.True(t, e.Errored())
	assert.False(t, e.MeetsStandard)
	assert.Equal(t, 1, after.calls)
	assert.Equal(t, 1, report.Summary().Errored)
	assert.Equal(t, inspecterr.ExitPartialFailure, report.ExitCode())
}

func TestInspector_UnreachableRepositoryRunsNothing(t *testing.T) {
	s := &stubStandard{code: "A1"}
	repo := repository.New("mem", &memSource{listErr: inspecterr.Access("project not found")})

	report, err := New([]standards.Standard{s}).Check(context.Background(), repo)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, inspecterr.ErrAccess)
	assert.Zero(t, s.calls)
}

func TestInspector_IncludeSingleStandard(t *testing.T) {
	selected, err := checks.Default().Select([]string{"PY001"}, nil)
	require.NoError(t, err)

	repo := repository.New("mem", &memSource{files: map[string]string{"pyproject.toml": "[project]\nrequires-python = \">=3.9\"\n"}})
	report, err := New(selected).Check(context.Background(), repo)
	require.NoError(t, err)

	assert.Equal(t, []string{"PY001"}, report.Codes())
	assert.Equal(t, inspecterr.ExitOK, report.ExitCode())
}

func TestReport_JSONKeepsEvaluationOrder(t *testing.T) {
	repo := repository.New("mem", &memSource{files: map[string]string{"pyproject.toml": "", "Makefile": ""}})
	stds := checks.Default().List()
	// Reverse registration order to prove the encoder does not sort keys.
	for i, j := 0, len(stds)-1; i < j; i, j = i+1, j-1 {
		stds[i], stds[j] = stds[j], stds[i]
	}

	report, err := New(stds).Check(context.Background(), repo)
	require.NoError(t, err)

	raw, err := json.Marshal(report)
	require.NoError(t, err)

	dec := json.NewDecoder(bytes.NewReader(raw))
	var keys []string
	tok, err := dec.Token()
	require.NoError(t, err)
	require.Equal(t, json.Delim('{'), tok)
	for dec.More() {
		tok, err := dec.Token()
		require.NoError(t, err)
		keys = append(keys, tok.(string))
		var skip json.RawMessage
		require.NoError(t, dec.Decode(&skip))
	}
	assert.Equal(t, []string{"PY005", "PY004", "PY003", "PY002", "PY001"}, keys)

	var decoded map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	py002 := decoded["PY002"]
	assert.Equal(t, "PY002", py002["code"])
	assert.Equal(t, "Project Structure", py002["category"])
	assert.Equal(t, true, py002["standard"])
	assert.Equal(t, "CRITICAL", py002["severity"])
	assert.Equal(t, "file", py002["standard_type"])
	assert.Equal(t, true, py002["meets_standard"])
	assert.Equal(t, "present", py002["value"])
	assert.NotContains(t, py002, "error")

	py001 := decoded["PY001"]
	assert.Nil(t, py001["value"])
	assert.Contains(t, py001, "value")
	assert.Equal(t, map[string]any{"min_spec_version": nil, "min_runtime_version": nil}, py001["additional_info"])
}
