package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// AssertGolden compares the text rendering of report against the golden
// file testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./... -update
func AssertGolden(t *testing.T, name string, report *Report) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Text(report))
}

// RunWithGolden runs module and compares the rendered report against the
// golden file named after the module.
func RunWithGolden(t *testing.T, h *Harness, module string) (*Report, error) {
	t.Helper()

	report, err := h.Run(module)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, module, report)
	return report, nil
}
