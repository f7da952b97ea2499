// Package standards defines the self-describing checks run against a
// repository and the ordered registry that selects and configures them.
package standards

import (
	"context"

	"stdinspector/internal/repository"
)

type Severity string

const (
	SeverityCritical       Severity = "CRITICAL"
	SeverityRecommendation Severity = "RECOMMENDATION"
)

// Descriptor is the static metadata of a standard. Standard holds the
// required condition: a version floor for version checks, true for a
// required file, false for a forbidden dependency.
type Descriptor struct {
	Code           string   `json:"code"`
	Category       string   `json:"category"`
	Standard       any      `json:"standard"`
	Severity       Severity `json:"severity"`
	Description    string   `json:"description"`
	Recommendation string   `json:"recommendation"`
	Type           string   `json:"standard_type"`
}

func (d Descriptor) Critical() bool {
	return d.Severity == SeverityCritical
}

// Repository is the read-only view of a source tree a standard may use.
type Repository interface {
	Files(ctx context.Context) (repository.FileSet, error)
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

type Standard interface {
	Descriptor() Descriptor

	// Check inspects repo. Missing files are a result, not an error; an
	// error means the check itself could not be carried out.
	Check(ctx context.Context, repo Repository) (Result, error)
}

type Option struct {
	Name        string
	Description string
	Default     string
}

type ConfigurableStandard interface {
	Standard
	Options() []Option
	Configure(opts map[string]string) error
}
