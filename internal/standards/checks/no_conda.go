package checks

import (
	"context"
	"fmt"
	"path"
	"strings"

	logger "github.com/sirupsen/logrus"

	"stdinspector/internal/standards"
)

const NoCondaCode = "PY004"

var condaFileNames = map[string]bool{
	"environment.yml":  true,
	"environment.yaml": true,
	".condarc":         true,
}

// NoConda forbids conda environments anywhere in the repository, including
// CI definitions and shell scripts that call conda.
type NoConda struct{}

func (s *NoConda) Descriptor() standards.Descriptor {
	return standards.Descriptor{
		Code:           NoCondaCode,
		Category:       "Dependency Management",
		Standard:       false,
		Severity:       standards.SeverityCritical,
		Description:    "Project MUST NOT use conda",
		Recommendation: "Remove conda dependencies and use uv, poetry, or pip instead",
		Type:           "dependency",
	}
}

func (s *NoConda) Check(ctx context.Context, repo standards.Repository) (standards.Result, error) {
	files, err := repo.Files(ctx)
	if err != nil {
		return standards.Result{}, err
	}

	evidence := []string{}
	for _, p := range files.Sorted() {
		if vendoredDir(p) {
			continue
		}
		reason, err := s.inspect(ctx, repo, p)
		if err != nil {
			return standards.Result{}, err
		}
		if reason != "" {
			evidence = append(evidence, fmt.Sprintf("%s (%s)", p, reason))
		}
	}

	if len(evidence) > 0 {
		return standards.Fail(standards.ValueFound).WithInfo("evidence", evidence), nil
	}
	return standards.Pass(standards.ValueNotFound).WithInfo("evidence", evidence), nil
}

// inspect returns why p indicates conda usage, or "" when it does not.
func (s *NoConda) inspect(ctx context.Context, repo standards.Repository, p string) (string, error) {
	base := strings.ToLower(path.Base(p))
	switch {
	case condaFileNames[base]:
		return "conda environment file", nil
	case strings.HasSuffix(base, ".conda"):
		return "conda package", nil
	case condaWord.MatchString(base):
		return "conda file name", nil
	}

	if !isYAML(p) && !isShellScript(p) {
		return "", nil
	}
	content, present, err := readIfPresent(ctx, repo, p)
	if err != nil || !present {
		return "", err
	}

	if isShellScript(p) {
		for _, line := range codeLines(content) {
			if condaWord.MatchString(line) {
				return "shell script invokes conda", nil
			}
		}
		return "", nil
	}

	if env, err := isCondaEnvironment(content); err != nil {
		logger.Debugf("%s: %s: unparseable YAML, ignoring: %v", NoCondaCode, p, err)
		return "", nil
	} else if env {
		return "conda environment definition", nil
	}
	if isCIConfig(p) {
		mentions, err := yamlMentionsConda(content)
		if err != nil {
			logger.Debugf("%s: %s: unparseable YAML, ignoring: %v", NoCondaCode, p, err)
			return "", nil
		}
		if mentions {
			return "CI configuration uses conda", nil
		}
	}
	return "", nil
}
