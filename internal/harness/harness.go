package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/marktest/internal/discover"
	"github.com/roach88/marktest/internal/expect"
	"github.com/roach88/marktest/internal/invoke"
	"github.com/roach88/marktest/internal/kind"
	"github.com/roach88/marktest/internal/match"
)

// Harness runs the units of one module at a time.
type Harness struct {
	enum   discover.Enumerator
	kinds  *kind.Hierarchy
	logger *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger used for per-unit diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithKinds sets the kind hierarchy used for matching.
func WithKinds(k *kind.Hierarchy) Option {
	return func(h *Harness) {
		if k != nil {
			h.kinds = k
		}
	}
}

// New creates a Harness resolving modules through enum.
// Without options it matches against the built-in kind hierarchy and
// discards logs.
func New(enum discover.Enumerator, opts ...Option) *Harness {
	h := &Harness{
		enum:   enum,
		kinds:  kind.NewHierarchy(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Kinds returns the hierarchy used for matching.
func (h *Harness) Kinds() *kind.Hierarchy {
	return h.kinds
}

// Run discovers, invokes and judges every unit of module, strictly one
// at a time in discovery order.
//
// Per-unit failures and misuse are verdicts in the returned Report. A
// RunError is returned, with no Report, only when the module cannot be
// resolved or the harness itself is defective.
func (h *Harness) Run(module string) (*Report, error) {
	units, err := discover.Discover(h.enum, module)
	if err != nil {
		code := ErrCodeDiscovery
		if discover.IsModuleNotFound(err) {
			code = ErrCodeModuleNotFound
		}
		return nil, &RunError{Code: code, Module: module, Err: err}
	}

	h.logger.Info("running module", "module", module, "units", len(units))

	agg := NewAggregator(module)
	for _, unit := range units {
		verdict, err := h.judge(unit)
		if err != nil {
			return nil, &RunError{Code: ErrCodeHarnessDefect, Module: module, Unit: unit.Name, Err: err}
		}
		agg.Add(unit.Name, verdict)

		h.logger.Debug("unit judged",
			"unit", unit.Name,
			"status", verdict.Status,
			"detail", verdict.Detail,
		)
	}

	report := agg.Report()
	h.logger.Info("module finished",
		"module", module,
		"total", report.Total,
		"passed", report.Passed,
		"misused", report.Misused(),
	)
	return report, nil
}

// judge produces the verdict for one unit. A unit whose markers could
// not be normalised, or that names a kind outside the hierarchy, is
// misuse and is not invoked.
func (h *Harness) judge(unit discover.Unit) (match.Verdict, error) {
	if unit.DeclErr != nil {
		return match.MisuseOf(fmt.Sprintf("invalid markers: %v", unit.DeclErr)), nil
	}
	if h.kinds != nil {
		for _, k := range expect.Declared(unit.Expect) {
			if !h.kinds.Known(k) {
				return match.MisuseOf(fmt.Sprintf("unknown kind %q", k)), nil
			}
		}
	}
	outcome := invoke.Invoke(unit)
	return match.Match(outcome, unit.Expect, h.kinds)
}
