package checks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"stdinspector/internal/inspecterr"
	"stdinspector/internal/repository"
	"stdinspector/internal/standards"
)

type memSource map[string]string

func (m memSource) ListFiles(context.Context) ([]string, error) {
	out := make([]string, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	return out, nil
}

func (m memSource) ReadFile(_ context.Context, p string) ([]byte, error) {
	content, ok := m[p]
	if !ok {
		return nil, inspecterr.NotFound("file not found: %s", p)
	}
	return []byte(content), nil
}

func memRepo(files map[string]string) *repository.Repository {
	return repository.New("mem", memSource(files))
}

func runCheck(t *testing.T, s standards.Standard, files map[string]string) standards.Result {
	t.Helper()
	res, err := s.Check(context.Background(), memRepo(files))
	require.NoError(t, err)
	return res
}
