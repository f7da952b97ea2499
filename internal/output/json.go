package output

import (
	"encoding/json"
	"fmt"
	"io"

	"stdinspector/internal/inspector"
)

// JSONRenderer writes the report as one JSON object keyed by standard code.
type JSONRenderer struct {
	Indent string
}

func (r *JSONRenderer) Render(w io.Writer, report *inspector.Report) error {
	var (
		raw []byte
		err error
	)
	if r.Indent != "" {
		raw, err = json.MarshalIndent(report, "", r.Indent)
	} else {
		raw, err = json.Marshal(report)
	}
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if _, err := fmt.Fprintf(w, "%s\n", raw); err != nil {
		return err
	}
	return flush(w)
}
