package checks

import (
	"context"
	"fmt"
	"sort"
	"strings"

	logger "github.com/sirupsen/logrus"

	"stdinspector/internal/standards"
	"stdinspector/internal/versionrange"
)

const (
	PythonVersionCode = "PY001"

	optMinVersion     = "min-version"
	defaultMinVersion = "3.9"
)

// PythonVersion requires the lowest Python version a project declares or
// runs on to be at or above a floor.
//
// The declared floor comes from the first manifest that states one:
// pyproject.toml (PEP 621, then Poetry), setup.cfg, setup.py. The runtime
// floor is the lowest of Docker base images, .python-version and pythonX.Y
// calls in shell scripts. The detected version is the lower of the two.
type PythonVersion struct {
	floor versionrange.Version
}

func NewPythonVersion() *PythonVersion {
	floor, _ := versionrange.Parse(defaultMinVersion)
	return &PythonVersion{floor: floor}
}

func (s *PythonVersion) Descriptor() standards.Descriptor {
	return standards.Descriptor{
		Code:           PythonVersionCode,
		Category:       "Version",
		Standard:       s.floor.String(),
		Severity:       standards.SeverityCritical,
		Description:    fmt.Sprintf("Python version MUST be at least %s", s.floor),
		Recommendation: fmt.Sprintf("Update your project's Python version requirement to at least %s", s.floor),
		Type:           "version",
	}
}

func (s *PythonVersion) Options() []standards.Option {
	return []standards.Option{
		{
			Name:        optMinVersion,
			Description: "Lowest acceptable Python major.minor version.",
			Default:     defaultMinVersion,
		},
	}
}

func (s *PythonVersion) Configure(opts map[string]string) error {
	raw, ok := opts[optMinVersion]
	if !ok {
		return nil
	}
	floor, ok := versionrange.Parse(raw)
	if !ok {
		return fmt.Errorf("invalid %s %q: want MAJOR.MINOR", optMinVersion, raw)
	}
	s.floor = floor
	return nil
}

func (s *PythonVersion) Check(ctx context.Context, repo standards.Repository) (standards.Result, error) {
	specFloor, specSource, specOK, err := s.specFloor(ctx, repo)
	if err != nil {
		return standards.Result{}, err
	}
	runtimeFloor, runtimeOK, err := s.runtimeFloor(ctx, repo)
	if err != nil {
		return standards.Result{}, err
	}

	var found []versionrange.Version
	info := map[string]any{"min_spec_version": nil, "min_runtime_version": nil}
	if specOK {
		found = append(found, specFloor)
		info["min_spec_version"] = specFloor.String()
	}
	if runtimeOK {
		found = append(found, runtimeFloor)
		info["min_runtime_version"] = runtimeFloor.String()
	}
	if specSource != "" {
		info["spec_source"] = specSource
	}

	detected, ok := versionrange.Lowest(found...)
	if !ok {
		return standards.Result{MeetsStandard: false, AdditionalInfo: info}, nil
	}
	value := detected.String()
	return standards.Result{
		MeetsStandard:  versionrange.IsSupported(detected, s.floor),
		Value:          &value,
		AdditionalInfo: info,
	}, nil
}

// specFloor returns the floor of the first declared requirement. A manifest
// that declares a requirement without a floor (for example "<4") still ends
// the search; source names where it was found.
func (s *PythonVersion) specFloor(ctx context.Context, repo standards.Repository) (v versionrange.Version, source string, ok bool, err error) {
	declared := func(spec, where string) (versionrange.Version, string, bool, error) {
		v, ok := versionrange.ExtractMinimum(spec)
		if !ok {
			logger.Debugf("%s: %s %q has no determinable floor", PythonVersionCode, where, spec)
		}
		return v, where, ok, nil
	}

	content, present, err := readIfPresent(ctx, repo, "pyproject.toml")
	if err != nil {
		return v, "", false, err
	}
	if present {
		if spec, field, ok := pyprojectRequirement(content); ok {
			return declared(spec, "pyproject.toml:"+field)
		}
	}

	content, present, err = readIfPresent(ctx, repo, "setup.cfg")
	if err != nil {
		return v, "", false, err
	}
	if present {
		if spec, ok := setupCfgRequirement(content); ok {
			return declared(spec, "setup.cfg")
		}
	}

	content, present, err = readIfPresent(ctx, repo, "setup.py")
	if err != nil {
		return v, "", false, err
	}
	if present {
		if spec, ok := setupPyRequirement(content); ok {
			return declared(spec, "setup.py")
		}
	}
	return v, "", false, nil
}

func (s *PythonVersion) runtimeFloor(ctx context.Context, repo standards.Repository) (versionrange.Version, bool, error) {
	files, err := repo.Files(ctx)
	if err != nil {
		return versionrange.Version{}, false, err
	}

	var candidates []versionrange.Version
	for _, p := range files.Sorted() {
		if vendoredDir(p) {
			continue
		}
		var extract func([]byte) []versionrange.Version
		switch {
		case isDockerfile(p):
			extract = dockerPythonVersions
		case p == ".python-version":
			extract = func(b []byte) []versionrange.Version {
				if v, ok := pythonVersionFile(b); ok {
					return []versionrange.Version{v}
				}
				return nil
			}
		case isShellScript(p):
			extract = shellPythonVersions
		default:
			continue
		}

		content, present, err := readIfPresent(ctx, repo, p)
		if err != nil {
			return versionrange.Version{}, false, err
		}
		if !present {
			continue
		}
		if vs := extract(content); len(vs) > 0 {
			logger.Debugf("%s: %s declares %s", PythonVersionCode, p, joinVersions(vs))
			candidates = append(candidates, vs...)
		}
	}
	lowest, ok := versionrange.Lowest(candidates...)
	return lowest, ok, nil
}

func joinVersions(vs []versionrange.Version) string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.String())
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}
