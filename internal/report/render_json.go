package report

import (
	"encoding/json"
	"fmt"
	"io"
)

// RenderJSON writes the machine-readable report.
func RenderJSON(w io.Writer, out *Output) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
