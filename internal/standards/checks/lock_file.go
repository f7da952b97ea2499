package checks

import (
	"context"

	"stdinspector/internal/standards"
)

const LockFileCode = "PY005"

var lockFileNames = []string{
	"requirements.txt",
	"requirements.in",
	"poetry.lock",
	"uv.lock",
	"Pipfile.lock",
	"pdm.lock",
	"pylock.toml",
}

// LockFile recommends at least one dependency lock at the repository root.
type LockFile struct{}

func (s *LockFile) Descriptor() standards.Descriptor {
	return standards.Descriptor{
		Code:           LockFileCode,
		Category:       "Dependency Management",
		Standard:       true,
		Severity:       standards.SeverityRecommendation,
		Description:    "Project SHOULD have a lock file (uv.lock, poetry.lock, pip-tools requirements.in, requirements.txt)",
		Recommendation: "Create a lock file to ensure consistent dependency versions across environments",
		Type:           "file",
	}
}

func (s *LockFile) Check(ctx context.Context, repo standards.Repository) (standards.Result, error) {
	files, err := repo.Files(ctx)
	if err != nil {
		return standards.Result{}, err
	}
	found := []string{}
	for _, name := range lockFileNames {
		if files.Has(name) {
			found = append(found, name)
		}
	}
	return standards.Presence(len(found) > 0).WithInfo("lock_files", found), nil
}
