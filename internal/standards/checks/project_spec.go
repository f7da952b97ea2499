package checks

import (
	"context"

	"stdinspector/internal/standards"
)

const ProjectSpecCode = "PY002"

// ProjectSpec requires a pyproject.toml at the repository root.
type ProjectSpec struct{}

func (s *ProjectSpec) Descriptor() standards.Descriptor {
	return standards.Descriptor{
		Code:           ProjectSpecCode,
		Category:       "Project Structure",
		Standard:       true,
		Severity:       standards.SeverityCritical,
		Description:    "Project MUST have a project specification (pyproject.toml)",
		Recommendation: "Create a pyproject.toml file to specify project metadata and dependencies",
		Type:           "file",
	}
}

func (s *ProjectSpec) Check(ctx context.Context, repo standards.Repository) (standards.Result, error) {
	files, err := repo.Files(ctx)
	if err != nil {
		return standards.Result{}, err
	}
	return standards.Presence(files.Has("pyproject.toml")), nil
}
