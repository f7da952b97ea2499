package checks

import (
	"context"

	"stdinspector/internal/standards"
)

const MakefileCode = "PY003"

// makefileNames are the names GNU make looks for, in its lookup order.
var makefileNames = []string{"GNUmakefile", "makefile", "Makefile"}

type Makefile struct{}

func (s *Makefile) Descriptor() standards.Descriptor {
	return standards.Descriptor{
		Code:           MakefileCode,
		Category:       "Project Structure",
		Standard:       true,
		Severity:       standards.SeverityRecommendation,
		Description:    "Project SHOULD have Makefile at root level",
		Recommendation: "Create a Makefile at the root of your project to define build and automation targets",
		Type:           "file",
	}
}

func (s *Makefile) Check(ctx context.Context, repo standards.Repository) (standards.Result, error) {
	files, err := repo.Files(ctx)
	if err != nil {
		return standards.Result{}, err
	}
	for _, name := range makefileNames {
		if files.Has(name) {
			return standards.Presence(true).WithInfo("path", name), nil
		}
	}
	return standards.Presence(false), nil
}
