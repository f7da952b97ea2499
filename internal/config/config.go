// Package config holds the validated settings of one inspection run.
package config

import (
	"fmt"
	"strings"
	"time"

	"stdinspector/internal/httpx"
	"stdinspector/internal/inspecterr"
)

const (
	SourceGitLab = "gitlab"
	SourceGitHub = "github"
	SourceGit    = "git"
	SourceLocal  = "local"

	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"

	FormatChecklist = "checklist"
	FormatJSON      = "json"
)

type Config struct {
	// MAINTAINER NOTE: keep the CLI flags in internal/cli/check.go in sync
	// with the fields below.
	Source    Source
	Standards Standards
	Output    Output
	Runtime   Runtime
}

type Source struct {
	// Type selects the backend (see --source).
	// Allowed values: gitlab, github, git, local.
	Type string

	// ProjectID identifies the hosted project (see --project-id).
	// GitLab: numeric ID, group/project path or project URL. GitHub: owner/repo or URL.
	ProjectID string

	// Token authenticates against the hosted API (see --token).
	// Falls back to GITLAB_TOKEN, or GITHUB_TOKEN / GH_TOKEN / gh auth token.
	Token string

	// URL is the API endpoint (see --url). GitLab falls back to GITLAB_URL and
	// then https://gitlab.com; for GitHub it selects an Enterprise Server.
	URL string

	// Ref is the branch, tag or commit to inspect (see --ref).
	// Empty means the default branch (hosted) or HEAD (git).
	Ref string

	// Directory is the path inspected by the local and git sources (see --directory).
	Directory string
}

type Standards struct {
	// Include restricts the run to these codes (see --include).
	Include []string

	// Exclude removes these codes from the run (see --exclude).
	// Mutually exclusive with Include.
	Exclude []string

	// Set provides per-standard option overrides of the form CODE.option=value (see --set).
	Set []string
}

type Output struct {
	// Format selects the renderer (see --format).
	// Allowed values: checklist, json.
	Format string

	// Color controls ANSI colors in checklist output (see --color).
	// Allowed values: auto, always, never.
	Color string
}

type Runtime struct {
	// Timeout bounds the whole run (see --timeout). Must be > 0.
	Timeout time.Duration

	// Verbose enables debug logging, including every API request.
	Verbose bool
}

func New() *Config {
	return &Config{
		Output: Output{
			Format: FormatChecklist,
			Color:  ColorAuto,
		},
		Runtime: Runtime{
			Timeout: 5 * time.Minute,
		},
	}
}

// Validate normalizes list and enum inputs and rejects inconsistent
// combinations. Every error wraps inspecterr.ErrConfiguration.
func (c *Config) Validate() error {
	c.Standards.Include = splitCommaList(c.Standards.Include)
	c.Standards.Exclude = splitCommaList(c.Standards.Exclude)
	c.Standards.Set = splitCommaList(c.Standards.Set)

	c.Source.Type = normalizeEnumValue(c.Source.Type)
	c.Source.ProjectID = strings.TrimSpace(c.Source.ProjectID)
	c.Source.URL = strings.TrimSpace(c.Source.URL)
	c.Source.Directory = strings.TrimSpace(c.Source.Directory)

	switch c.Source.Type {
	case "":
		return inspecterr.Configuration("--source is required (one of: gitlab, github, git, local)")
	case SourceGitLab, SourceGitHub:
		if c.Source.ProjectID == "" {
			return inspecterr.Configuration("--project-id is required for --source %s", c.Source.Type)
		}
		if c.Source.Directory != "" {
			return inspecterr.Configuration("--directory cannot be used with --source %s", c.Source.Type)
		}
		if c.Source.URL != "" {
			if _, err := httpx.ParseEndpoint(c.Source.URL); err != nil {
				return err
			}
		}
	case SourceGit, SourceLocal:
		if c.Source.Directory == "" {
			return inspecterr.Configuration("--directory is required for --source %s", c.Source.Type)
		}
		if c.Source.ProjectID != "" || c.Source.URL != "" || c.Source.Token != "" {
			return inspecterr.Configuration("--project-id, --url and --token cannot be used with --source %s", c.Source.Type)
		}
		if c.Source.Type == SourceLocal && c.Source.Ref != "" {
			return inspecterr.Configuration("--ref cannot be used with --source local (use --source git)")
		}
	default:
		return inspecterr.Configuration("unsupported --source: %s (must be one of: gitlab, github, git, local)", c.Source.Type)
	}

	if len(c.Standards.Include) > 0 && len(c.Standards.Exclude) > 0 {
		return inspecterr.Configuration("--include and --exclude are mutually exclusive")
	}
	if len(c.Standards.Set) > 0 {
		if _, err := ParseStandardOptionAssignments(c.Standards.Set); err != nil {
			return err
		}
	}

	c.Output.Format = normalizeEnumValue(c.Output.Format)
	if c.Output.Format == "" {
		c.Output.Format = FormatChecklist
	}
	if c.Output.Format != FormatChecklist && c.Output.Format != FormatJSON {
		return inspecterr.Configuration("unsupported --format: %s (must be one of: checklist, json)", c.Output.Format)
	}

	c.Output.Color = normalizeEnumValue(c.Output.Color)
	if c.Output.Color == "" {
		c.Output.Color = ColorAuto
	}
	if c.Output.Color != ColorAuto && c.Output.Color != ColorAlways && c.Output.Color != ColorNever {
		return inspecterr.Configuration("unsupported --color: %s (must be one of: auto, always, never)", c.Output.Color)
	}

	if c.Runtime.Timeout <= 0 {
		return inspecterr.Configuration("--timeout must be > 0")
	}
	return nil
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// ParseStandardOptionAssignments parses values of the form "CODE.option=value".
//
// Entries may be provided via repeated flags and/or comma-delimited lists.
// Only syntax is validated here; codes and option names are checked by the
// standards registry. Empty values are allowed ("PY001.min-version=").
func ParseStandardOptionAssignments(values []string) (map[string]map[string]string, error) {
	out := make(map[string]map[string]string)
	for _, raw := range splitCommaList(values) {
		left, value, ok := strings.Cut(raw, "=")
		if !ok {
			return nil, inspecterr.Configuration("invalid --set entry %q: expected CODE.option=value", raw)
		}
		code, opt, ok := strings.Cut(strings.TrimSpace(left), ".")
		if !ok {
			return nil, inspecterr.Configuration("invalid --set entry %q: expected CODE.option=value", raw)
		}
		code = strings.ToUpper(strings.TrimSpace(code))
		opt = strings.TrimSpace(opt)
		if code == "" || opt == "" {
			return nil, inspecterr.Configuration("invalid --set entry %q: expected non-empty code and option", raw)
		}
		if _, ok := out[code]; !ok {
			out[code] = make(map[string]string)
		}
		out[code][opt] = strings.TrimSpace(value)
	}
	return out, nil
}

func splitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			p := strings.TrimSpace(part)
			if p == "" {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}

// String renders the source selection for log lines.
func (s Source) String() string {
	switch s.Type {
	case SourceLocal, SourceGit:
		if s.Ref != "" {
			return fmt.Sprintf("%s:%s@%s", s.Type, s.Directory, s.Ref)
		}
		return fmt.Sprintf("%s:%s", s.Type, s.Directory)
	default:
		if s.Ref != "" {
			return fmt.Sprintf("%s:%s@%s", s.Type, s.ProjectID, s.Ref)
		}
		return fmt.Sprintf("%s:%s", s.Type, s.ProjectID)
	}
}
