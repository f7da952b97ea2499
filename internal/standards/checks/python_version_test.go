package checks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stdinspector/internal/inspecterr"
	"stdinspector/internal/repository"
)

func TestPythonVersion_Check(t *testing.T) {
	tests := []struct {
		name        string
		files       map[string]string
		wantMeets   bool
		wantValue   any
		wantSpec    any
		wantRuntime any
	}{
		{
			name:      "pyproject requires-python",
			files:     map[string]string{"pyproject.toml": "[project]\nname = \"x\"\nrequires-python = \">=3.10\"\n"},
			wantMeets: true, wantValue: "3.10", wantSpec: "3.10", wantRuntime: nil,
		},
		{
			name:      "poetry python dependency",
			files:     map[string]string{"pyproject.toml": "[tool.poetry.dependencies]\npython = \"^3.8\"\n"},
			wantMeets: false, wantValue: "3.8", wantSpec: "3.8", wantRuntime: nil,
		},
		{
			name:      "setup.cfg",
			files:     map[string]string{"setup.cfg": "[options]\npython_requires = >=3.11\n"},
			wantMeets: true, wantValue: "3.11", wantSpec: "3.11", wantRuntime: nil,
		},
		{
			name:      "setup.py",
			files:     map[string]string{"setup.py": "setup(name='x', python_requires='~=3.9')\n"},
			wantMeets: true, wantValue: "3.9", wantSpec: "3.9", wantRuntime: nil,
		},
		{
			name: "runtime image lower than declared",
			files: map[string]string{
				"pyproject.toml": "[project]\nrequires-python = \">=3.11\"\n",
				"Dockerfile":     "FROM python:3.8-slim AS build\nFROM python:3.12\n",
			},
			wantMeets: false, wantValue: "3.8", wantSpec: "3.11", wantRuntime: "3.8",
		},
		{
			name: "shell scripts and .python-version",
			files: map[string]string{
				".python-version":       "3.12.1\n",
				"scripts/test.sh":       "#!/bin/sh\n# python3.6 is gone\npython3.10 -m pytest\n",
				"docker/Dockerfile.dev": "FROM docker.io/library/python:3.11\n",
			},
			wantMeets: true, wantValue: "3.10", wantSpec: nil, wantRuntime: "3.10",
		},
		{
			name: "major-only image tag is not a floor",
			files: map[string]string{
				"pyproject.toml": "[project]\nrequires-python = \">=3.11\"\n",
				"Dockerfile":     "FROM python:3-slim\nFROM python:3\n",
			},
			wantMeets: true, wantValue: "3.11", wantSpec: "3.11", wantRuntime: nil,
		},
		{
			name:      "upper bound only declares no floor",
			files:     map[string]string{"pyproject.toml": "[project]\nrequires-python = \"<4\"\n", "setup.py": "python_requires='>=3.12'"},
			wantMeets: false, wantValue: nil, wantSpec: nil, wantRuntime: nil,
		},
		{
			name:      "nothing declared",
			files:     map[string]string{"README.md": "python3.12"},
			wantMeets: false, wantValue: nil, wantSpec: nil, wantRuntime: nil,
		},
		{
			name:      "broken pyproject falls through",
			files:     map[string]string{"pyproject.toml": "[project\n", "setup.cfg": "python_requires = \">=3.9\"\n"},
			wantMeets: true, wantValue: "3.9", wantSpec: "3.9", wantRuntime: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCheck(t, NewPythonVersion(), tt.files)
			assert.Equal(t, tt.wantMeets, res.MeetsStandard)
			if tt.wantValue == nil {
				assert.Nil(t, res.Value)
			} else {
				require.NotNil(t, res.Value)
				assert.Equal(t, tt.wantValue, *res.Value)
			}
			assert.Equal(t, tt.wantSpec, res.AdditionalInfo["min_spec_version"])
			assert.Equal(t, tt.wantRuntime, res.AdditionalInfo["min_runtime_version"])
		})
	}
}

func TestPythonVersion_Configure(t *testing.T) {
	s := NewPythonVersion()
	assert.Equal(t, "3.9", s.Descriptor().Standard)

	require.NoError(t, s.Configure(map[string]string{"min-version": "3.11"}))
	d := s.Descriptor()
	assert.Equal(t, "3.11", d.Standard)
	assert.Equal(t, "Python version MUST be at least 3.11", d.Description)
	assert.Contains(t, d.Recommendation, "3.11")

	res := runCheck(t, s, map[string]string{"pyproject.toml": "[project]\nrequires-python = \">=3.10\"\n"})
	assert.False(t, res.MeetsStandard)

	assert.Error(t, s.Configure(map[string]string{"min-version": "three"}))
	assert.NoError(t, s.Configure(map[string]string{}))
	assert.Equal(t, "3.11", s.Descriptor().Standard)
}

type failingSource struct{ memSource }

func (failingSource) ReadFile(context.Context, string) ([]byte, error) {
	return nil, inspecterr.Access("connection reset")
}

func TestPythonVersion_ReadFailureIsReturned(t *testing.T) {
	repo := repository.New("broken", failingSource{memSource{"pyproject.toml": ""}})
	_, err := NewPythonVersion().Check(context.Background(), repo)
	assert.ErrorIs(t, err, inspecterr.ErrAccess)
}
