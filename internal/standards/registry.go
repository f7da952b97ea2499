package standards

import (
	"fmt"
	"sort"
	"strings"

	"stdinspector/internal/inspecterr"
)

// Registry is an ordered, code-indexed collection of standards. Order is
// registration order and is the order in which standards are evaluated.
type Registry struct {
	ordered []Standard
	byCode  map[string]Standard
}

// NewRegistry panics if two standards share a code.
func NewRegistry(stds ...Standard) *Registry {
	r := &Registry{byCode: make(map[string]Standard, len(stds))}
	for _, s := range stds {
		code := s.Descriptor().Code
		if _, exists := r.byCode[code]; exists {
			panic(fmt.Sprintf("standard %s already registered", code))
		}
		r.byCode[code] = s
		r.ordered = append(r.ordered, s)
	}
	return r
}

func (r *Registry) List() []Standard {
	return append([]Standard(nil), r.ordered...)
}

func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.ordered))
	for _, s := range r.ordered {
		codes = append(codes, s.Descriptor().Code)
	}
	return codes
}

func (r *Registry) Lookup(code string) (Standard, bool) {
	s, ok := r.byCode[normalizeCode(code)]
	return s, ok
}

// Select filters the registry by an include or an exclude list. Supplying
// both, or naming an unknown code in either, is a configuration error.
// The result keeps registry order regardless of list order.
func (r *Registry) Select(include, exclude []string) ([]Standard, error) {
	include = normalizeCodes(include)
	exclude = normalizeCodes(exclude)

	if len(include) > 0 && len(exclude) > 0 {
		return nil, inspecterr.Configuration("--include and --exclude are mutually exclusive")
	}
	if unknown := r.unknown(append(append([]string{}, include...), exclude...)); len(unknown) > 0 {
		return nil, inspecterr.Configuration("invalid standard codes: %s (valid: %s)",
			strings.Join(unknown, ", "), strings.Join(r.Codes(), ", "))
	}

	switch {
	case len(include) > 0:
		want := toSet(include)
		return r.filter(func(code string) bool { return want[code] }), nil
	case len(exclude) > 0:
		drop := toSet(exclude)
		return r.filter(func(code string) bool { return !drop[code] }), nil
	default:
		return r.List(), nil
	}
}

// Configure routes per-standard options, keyed by code, to configurable
// standards.
func (r *Registry) Configure(assignments map[string]map[string]string) error {
	codes := make([]string, 0, len(assignments))
	for code := range assignments {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		s, ok := r.Lookup(code)
		if !ok {
			return inspecterr.Configuration("cannot configure unknown standard %s", code)
		}
		cs, ok := s.(ConfigurableStandard)
		if !ok {
			return inspecterr.Configuration("standard %s has no options", s.Descriptor().Code)
		}
		known := make(map[string]bool)
		for _, opt := range cs.Options() {
			known[opt.Name] = true
		}
		for name := range assignments[code] {
			if !known[name] {
				return inspecterr.Configuration("standard %s has no option %q", s.Descriptor().Code, name)
			}
		}
		if err := cs.Configure(assignments[code]); err != nil {
			return fmt.Errorf("%w: %s: %v", inspecterr.ErrConfiguration, s.Descriptor().Code, err)
		}
	}
	return nil
}

func (r *Registry) filter(keep func(code string) bool) []Standard {
	var out []Standard
	for _, s := range r.ordered {
		if keep(s.Descriptor().Code) {
			out = append(out, s)
		}
	}
	return out
}

func (r *Registry) unknown(codes []string) []string {
	var out []string
	for _, c := range codes {
		if _, ok := r.byCode[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func normalizeCodes(codes []string) []string {
	var out []string
	for _, c := range codes {
		if c = normalizeCode(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func toSet(codes []string) map[string]bool {
	set := make(map[string]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}
	return set
}
