// Package credential resolves tokens and endpoints from flags, environment
// variables and credential helper commands.
package credential

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Source names where a value was found. It never contains the value.
type Source string

const SourceExplicit Source = "explicit"

func EnvSource(name string) Source {
	return Source("env:" + name)
}

func CommandSource(name string) Source {
	return Source("cmd:" + name)
}

// helperTimeout bounds a helper invocation when ctx has no deadline.
const helperTimeout = 5 * time.Second

// Lookup returns the first non-blank value among provided and the named
// environment variables, in that order. It returns "" when none is set.
func Lookup(provided string, envVars ...string) (string, Source) {
	if v := strings.TrimSpace(provided); v != "" {
		return v, SourceExplicit
	}
	for _, name := range envVars {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v, EnvSource(name)
		}
	}
	return "", ""
}

// Helper runs an external command that prints a single token on stdout.
type Helper struct {
	Name string
	Args []string
	// Env entries are appended to the process environment and override it.
	Env []string
}

// Token runs the helper. ok is false when the binary is not installed, exits
// non-zero or prints nothing. Cancellation and malformed output are errors.
func (h Helper) Token(ctx context.Context) (token string, ok bool, err error) {
	if _, err := exec.LookPath(h.Name); err != nil {
		return "", false, nil
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, helperTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, h.Name, h.Args...)
	cmd.Env = append(os.Environ(), h.Env...)
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		return "", false, nil
	}

	token = strings.TrimSpace(string(out))
	if token == "" {
		return "", false, nil
	}
	if strings.ContainsAny(token, " \t\n\r") {
		return "", false, fmt.Errorf("%s printed an invalid token: contains whitespace", h.Name)
	}
	return token, true, nil
}
