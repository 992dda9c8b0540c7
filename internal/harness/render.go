package harness

import (
	"bytes"
	"fmt"
	"io"
)

// Lines renders one "<name>: <detail>" line per unit in discovery order.
func (r *Report) Lines() []string {
	lines := make([]string, len(r.Results))
	for i, res := range r.Results {
		lines[i] = fmt.Sprintf("%s: %s", res.Name, res.Verdict.Detail)
	}
	return lines
}

// Summary renders the final counters line.
func (r *Report) Summary() string {
	return fmt.Sprintf("passed: %d, failed: %d", r.Passed, r.Failed())
}

// WriteText writes the per-unit lines followed by the summary line.
func WriteText(w io.Writer, r *Report) error {
	for _, line := range r.Lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, r.Summary())
	return err
}

// Text returns the WriteText rendering as a byte slice.
func Text(r *Report) []byte {
	var buf bytes.Buffer
	_ = WriteText(&buf, r)
	return buf.Bytes()
}
