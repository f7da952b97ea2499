// Package checks holds the built-in Python repository standards.
package checks

import (
	"context"
	"errors"
	"path"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"stdinspector/internal/inspecterr"
	"stdinspector/internal/standards"
	"stdinspector/internal/versionrange"
)

// readIfPresent returns the content of p, or ok=false when p is not in the
// repository.
func readIfPresent(ctx context.Context, repo standards.Repository, p string) (content []byte, ok bool, err error) {
	files, err := repo.Files(ctx)
	if err != nil {
		return nil, false, err
	}
	if !files.Has(p) {
		return nil, false, nil
	}
	content, err = repo.ReadFile(ctx, p)
	if err != nil {
		if errors.Is(err, inspecterr.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return content, true, nil
}

type pyprojectManifest struct {
	Project struct {
		RequiresPython string `toml:"requires-python"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Dependencies map[string]any `toml:"dependencies"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// pyprojectRequirement returns the Python requirement declared in a
// pyproject.toml, preferring PEP 621 over Poetry.
func pyprojectRequirement(content []byte) (spec, field string, ok bool) {
	var m pyprojectManifest
	if err := toml.Unmarshal(content, &m); err != nil {
		logger.Debugf("pyproject.toml: unparseable, ignoring: %v", err)
		return "", "", false
	}
	if s := strings.TrimSpace(m.Project.RequiresPython); s != "" {
		return s, "project.requires-python", true
	}
	if s, isString := m.Tool.Poetry.Dependencies["python"].(string); isString && strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s), "tool.poetry.dependencies.python", true
	}
	return "", "", false
}

var (
	setupCfgRequires = regexp.MustCompile(`(?m)^\s*python_requires\s*=\s*(.+?)\s*$`)
	setupPyRequires  = regexp.MustCompile(`python_requires\s*=\s*["']([^"']+)["']`)
	dockerFromPython = regexp.MustCompile(`(?mi)^\s*FROM\s+(?:--platform=\S+\s+)?(?:\S+/)?python:(\d+\.\d+)`)
	shellPythonCall  = regexp.MustCompile(`\bpython(\d+\.\d+)\b`)
	condaWord        = regexp.MustCompile(`(?i)(?:^|[^a-z])(?:ana|mini|micro)?conda`)
)

func setupCfgRequirement(content []byte) (string, bool) {
	m := setupCfgRequires.FindSubmatch(content)
	if m == nil {
		return "", false
	}
	return strings.Trim(string(m[1]), `"'`), true
}

func setupPyRequirement(content []byte) (string, bool) {
	m := setupPyRequires.FindSubmatch(content)
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}

// dockerPythonVersions returns the versions of every python base image in a
// Dockerfile. Tags without a major.minor version (python:latest, python:3) are
// skipped.
func dockerPythonVersions(content []byte) []versionrange.Version {
	var out []versionrange.Version
	for _, m := range dockerFromPython.FindAllSubmatch(content, -1) {
		if v, ok := versionrange.Parse(string(m[1])); ok {
			out = append(out, v)
		}
	}
	return out
}

func pythonVersionFile(content []byte) (versionrange.Version, bool) {
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return versionrange.Parse(line)
	}
	return versionrange.Version{}, false
}

func shellPythonVersions(content []byte) []versionrange.Version {
	var out []versionrange.Version
	for _, line := range codeLines(content) {
		for _, m := range shellPythonCall.FindAllStringSubmatch(line, -1) {
			if v, ok := versionrange.Parse(m[1]); ok {
				out = append(out, v)
			}
		}
	}
	return out
}

// codeLines returns the lines of a shell script that are not comments.
func codeLines(content []byte) []string {
	var out []string
	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

func isDockerfile(p string) bool {
	base := path.Base(p)
	return strings.HasPrefix(base, "Dockerfile") ||
		strings.HasSuffix(strings.ToLower(base), ".dockerfile") ||
		base == "Containerfile"
}

func isShellScript(p string) bool {
	return strings.HasSuffix(p, ".sh")
}

func isYAML(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	return ext == ".yml" || ext == ".yaml"
}

// ciConfigPaths are CI definitions recognised at fixed locations.
var ciConfigPaths = map[string]bool{
	".gitlab-ci.yml":          true,
	".gitlab-ci.yaml":         true,
	".travis.yml":             true,
	"azure-pipelines.yml":     true,
	"azure-pipelines.yaml":    true,
	"bitbucket-pipelines.yml": true,
	".circleci/config.yml":    true,
	".circleci/config.yaml":   true,
}

func isCIConfig(p string) bool {
	if ciConfigPaths[p] {
		return true
	}
	dir := path.Dir(p)
	return isYAML(p) && (dir == ".github/workflows" || dir == ".gitlab/ci" || strings.HasPrefix(dir, ".gitlab/ci/"))
}

// yamlMentionsConda reports whether any scalar in a YAML document mentions
// conda. Comments are not part of the node tree and so never match.
func yamlMentionsConda(content []byte) (bool, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return false, err
	}
	return nodeMentionsConda(&doc), nil
}

func nodeMentionsConda(n *yaml.Node) bool {
	if n == nil {
		return false
	}
	if n.Kind == yaml.ScalarNode {
		return condaWord.MatchString(n.Value)
	}
	for _, child := range n.Content {
		if nodeMentionsConda(child) {
			return true
		}
	}
	return false
}

// isCondaEnvironment reports whether a YAML document has the shape of a
// conda environment file: top-level channels and dependencies keys.
func isCondaEnvironment(content []byte) (bool, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return false, err
	}
	_, hasChannels := doc["channels"]
	_, hasDeps := doc["dependencies"]
	return hasChannels && hasDeps, nil
}

// vendoredDir reports whether p lives under a directory that holds
// third-party or generated content.
func vendoredDir(p string) bool {
	for _, part := range strings.Split(path.Dir(p), "/") {
		switch part {
		case "node_modules", ".venv", "venv", ".tox", "site-packages", ".nox":
			return true
		}
	}
	return false
}
