// Package output renders inspection reports for humans and machines.
package output

import (
	"io"
	"strings"

	"stdinspector/internal/inspecterr"
	"stdinspector/internal/inspector"
)

const (
	FormatChecklist = "checklist"
	FormatJSON      = "json"
)

// Formats lists the accepted --format values.
var Formats = []string{FormatChecklist, FormatJSON}

type Renderer interface {
	Render(w io.Writer, report *inspector.Report) error
}

// NewRenderer returns the renderer for format. color only affects the
// checklist.
func NewRenderer(format string, color bool) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatChecklist, "":
		return &ChecklistRenderer{Color: color}, nil
	case FormatJSON:
		return &JSONRenderer{Indent: "  "}, nil
	default:
		return nil, inspecterr.Configuration("unsupported output format %q (valid: %s)", format, strings.Join(Formats, ", "))
	}
}

type flusher interface {
	Flush() error
}

// flush pushes buffered output through writers such as *bufio.Writer.
func flush(w io.Writer) error {
	if f, ok := w.(flusher); ok {
		return f.Flush()
	}
	return nil
}
