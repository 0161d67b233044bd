package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/logrusorgru/aurora/v3"
)

// PassFail renders the classic green PASS / red FAIL verdict.
func PassFail(b bool) aurora.Value {
	if b {
		return aurora.Green("PASS")
	}
	return aurora.Red("FAIL")
}

// ConsoleSink prints one line per result as it arrives, with violation
// details indented underneath failures.
type ConsoleSink struct {
	mu      sync.Mutex
	w       io.Writer
	summary Summary
}

func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

func (s *ConsoleSink) Record(r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary = s.summary.count(r.Outcome)

	switch r.Outcome {
	case OutcomePass:
		fmt.Fprintf(s.w, "[%s] %s\n", PassFail(true), r.OperationID)
	case OutcomeFail:
		fmt.Fprintf(s.w, "[%s] %s\n", PassFail(false), r.OperationID)
		for _, v := range r.Violations {
			fmt.Fprintf(s.w, "       %s\n", aurora.Faint(v.String()))
		}
	case OutcomeError:
		fmt.Fprintf(s.w, "[%s]  %s%s\n", aurora.Yellow("ERR"), r.OperationID,
			aurora.Faint(fmt.Sprintf(" (%s)", r.Err)))
	case OutcomeSkip:
		fmt.Fprintf(s.w, "[%s] %s\n", aurora.Faint("SKIP"), r.OperationID)
	}
}

func (s *ConsoleSink) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

// WriteVerdict prints the closing tally and the bold final verdict.
func (s *ConsoleSink) WriteVerdict() {
	s.mu.Lock()
	summary := s.summary
	s.mu.Unlock()

	fmt.Fprintln(s.w)
	fmt.Fprintf(s.w, "%d/%d operations passed", summary.Passed, summary.Total)
	if summary.Errored > 0 {
		fmt.Fprintf(s.w, ", %d errored", summary.Errored)
	}
	if summary.Skipped > 0 {
		fmt.Fprintf(s.w, ", %d skipped", summary.Skipped)
	}
	fmt.Fprintln(s.w, ".")
	fmt.Fprintf(s.w, "Final verdict: %s\n", aurora.Bold(PassFail(summary.Clean())))
}
