package scenario

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/roach88/eventchains/internal/graph"
	"github.com/roach88/eventchains/internal/trace"
)

// AssertionError describes one failed expectation.
type AssertionError struct {
	Check    string // Expect field that failed
	Expected string
	Actual   string
	Trace    []trace.Entry
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "expectation failed: %s\n", e.Check)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\n\nFull trace:\n")
		for _, entry := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s", entry.Seq, entry.Label())
			if entry.Error != "" {
				fmt.Fprintf(&buf, " (%s)", entry.Error)
			}
			buf.WriteByte('\n')
		}
	}
	return buf.String()
}

// evaluate runs every configured check and returns one message per failure.
func evaluate(exp Expect, r *Result) []string {
	var errs []error
	check := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	check(checkDistance(exp, r))
	check(checkPath(exp, r))
	check(checkStatus(exp, r))
	check(checkFailures(exp, r))
	check(checkNames("failed_events", exp.FailedEvents, r.Chain.FailedEvents()))
	check(checkNames("skipped", exp.Skipped, r.Chain.Skipped))
	check(checkReference(exp, r))
	check(checkTraceOrder(exp.TraceOrder, r.Trace))
	check(checkTraceCount(exp.TraceCount, r.Trace))

	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return msgs
}

func checkDistance(exp Expect, r *Result) error {
	if exp.Unreachable && r.Path.Reachable {
		return &AssertionError{
			Check:    "unreachable",
			Expected: "target unreachable",
			Actual:   fmt.Sprintf("reachable at distance %d", r.Path.Distance),
		}
	}
	if exp.Distance == nil {
		return nil
	}
	if !r.Path.Reachable {
		return &AssertionError{
			Check:    "distance",
			Expected: fmt.Sprintf("%d", *exp.Distance),
			Actual:   "unreachable",
		}
	}
	if r.Path.Distance != *exp.Distance {
		return &AssertionError{
			Check:    "distance",
			Expected: fmt.Sprintf("%d", *exp.Distance),
			Actual:   fmt.Sprintf("%d", r.Path.Distance),
		}
	}
	return nil
}

func checkPath(exp Expect, r *Result) error {
	if exp.Path == nil {
		return nil
	}
	want := make([]graph.NodeID, len(exp.Path))
	for i, n := range exp.Path {
		want[i] = graph.NodeID(n)
	}
	got := r.Path.Path
	if got == nil {
		got = []graph.NodeID{}
	}
	if !reflect.DeepEqual(want, got) {
		return &AssertionError{
			Check:    "path",
			Expected: fmt.Sprintf("%v", want),
			Actual:   fmt.Sprintf("%v", got),
		}
	}
	return nil
}

func checkStatus(exp Expect, r *Result) error {
	if exp.Status == "" {
		return nil
	}
	want, err := parseStatus(exp.Status)
	if err != nil {
		return err
	}
	if r.Chain.Status != want {
		return &AssertionError{
			Check:    "status",
			Expected: want.String(),
			Actual:   r.Chain.Status.String(),
			Trace:    r.Trace,
		}
	}
	return nil
}

func checkFailures(exp Expect, r *Result) error {
	if exp.Failures == nil {
		return nil
	}
	if got := len(r.Chain.Failures); got != *exp.Failures {
		return &AssertionError{
			Check:    "failures",
			Expected: fmt.Sprintf("%d failures", *exp.Failures),
			Actual:   fmt.Sprintf("%d failures %v", got, r.Chain.FailedEvents()),
			Trace:    r.Trace,
		}
	}
	return nil
}

func checkNames(field string, want, got []string) error {
	if want == nil {
		return nil
	}
	if got == nil {
		got = []string{}
	}
	if !reflect.DeepEqual(want, got) {
		return &AssertionError{
			Check:    field,
			Expected: fmt.Sprintf("%v", want),
			Actual:   fmt.Sprintf("%v", got),
		}
	}
	return nil
}

func checkReference(exp Expect, r *Result) error {
	if !exp.MatchReference {
		return nil
	}
	if r.Reference == nil {
		return &AssertionError{
			Check:    "match_reference",
			Expected: "a reference result",
			Actual:   "source out of range, no reference computed",
		}
	}
	if !reflect.DeepEqual(*r.Reference, r.Path) {
		return &AssertionError{
			Check:    "match_reference",
			Expected: fmt.Sprintf("%+v", *r.Reference),
			Actual:   fmt.Sprintf("%+v", r.Path),
		}
	}
	return nil
}

// checkTraceOrder checks that labels appear in the given order. Labels need
// not be consecutive; each is matched after the previous match.
func checkTraceOrder(labels []string, entries []trace.Entry) error {
	if len(labels) == 0 {
		return nil
	}
	pos := 0
	for _, want := range labels {
		found := false
		for pos < len(entries) {
			label := entries[pos].Label()
			pos++
			if label == want {
				found = true
				break
			}
		}
		if !found {
			return &AssertionError{
				Check:    "trace_order",
				Expected: fmt.Sprintf("labels in order: %v", labels),
				Actual:   fmt.Sprintf("%q not found in order", want),
				Trace:    entries,
			}
		}
	}
	return nil
}

// checkTraceCount checks exact occurrence counts per label. Labels are
// checked alphabetically so the first reported mismatch is stable.
func checkTraceCount(counts map[string]int, entries []trace.Entry) error {
	if len(counts) == 0 {
		return nil
	}
	got := make(map[string]int, len(counts))
	for _, e := range entries {
		got[e.Label()]++
	}

	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		if got[label] != counts[label] {
			return &AssertionError{
				Check:    "trace_count",
				Expected: fmt.Sprintf("%s x%d", label, counts[label]),
				Actual:   fmt.Sprintf("%s x%d", label, got[label]),
				Trace:    entries,
			}
		}
	}
	return nil
}
