// Package harness runs the declared test units of a module and reports
// how many passed.
//
// A run is a fixed pipeline over one module identifier:
//
//	discover.Discover  -> units with one normalised expectation each
//	invoke.Invoke      -> Completed | Raised(kind, err) | Rejected(reason)
//	match.Match        -> Pass | Fail(detail) | Misuse(detail)
//	Aggregator.Add     -> Report{Total, Passed, Results}
//
// Units run sequentially in discovery order with no overlap; units may
// share mutable state, so concurrent execution would make results depend
// on scheduling. There is no timeout: a unit that never returns hangs the
// run.
//
// # Failure Classes
//
//   - Fail: the unit ran and its behavior violated its expectation
//   - Misuse: the unit or its markers are malformed (wrong arity,
//     unresolvable target, empty or conflicting markers)
//   - RunError: the module cannot be resolved, or the harness itself
//     is defective; the run is aborted and no Report is produced
//
// # Usage
//
//	reg := discover.NewRegistry()
//	reg.Module("arith").Add("divideByZero", divideByZero,
//	    expect.Single{Kind: kind.Arithmetic})
//
//	report, err := harness.New(reg).Run("arith")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	harness.WriteText(os.Stdout, report)
//
// Running twice against unchanged, deterministic units yields identical
// Reports; golden files under testdata/golden pin the rendered form.
package harness
