package checks

import "stdinspector/internal/standards"

// Default returns a fresh registry of the built-in standards in evaluation
// order. Each call returns new, unconfigured instances.
func Default() *standards.Registry {
	return standards.NewRegistry(
		NewPythonVersion(),
		&ProjectSpec{},
		&Makefile{},
		&NoConda{},
		&LockFile{},
	)
}
