// Package report holds the result model of a contract run and the sinks
// results stream into. Results are recorded as soon as they are available so
// a wrapping CLI can show progress before the run completes.
package report

import "time"

type Outcome string

const (
	OutcomePass Outcome = "pass"
	OutcomeFail Outcome = "fail"
	// OutcomeError marks infrastructure failures (unreachable server,
	// timeout, unsatisfiable parameters), as opposed to contract
	// violations, which are failures.
	OutcomeError Outcome = "error"
	OutcomeSkip  Outcome = "skip"
)

// Result is the outcome of validating one operation.
type Result struct {
	OperationID string        `json:"operation"`
	Outcome     Outcome       `json:"outcome"`
	Violations  []Violation   `json:"violations,omitempty"`
	Err         string        `json:"error,omitempty"`
	Duration    time.Duration `json:"duration_ns,omitempty"`
}

type Summary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Errored int `json:"errored"`
	Skipped int `json:"skipped"`
}

// Clean reports whether the run should gate a CI pipeline green: no contract
// violations and no infrastructure errors.
func (s Summary) Clean() bool {
	return s.Failed == 0 && s.Errored == 0
}

func (s Summary) count(outcome Outcome) Summary {
	s.Total++
	switch outcome {
	case OutcomePass:
		s.Passed++
	case OutcomeFail:
		s.Failed++
	case OutcomeError:
		s.Errored++
	case OutcomeSkip:
		s.Skipped++
	}
	return s
}

// Sink receives results incrementally. Implementations must be safe for
// concurrent Record calls: in independent-operations mode results arrive
// from multiple workers in completion order, not declaration order.
type Sink interface {
	Record(Result)
	Summary() Summary
}

// MultiSink fans every result out to all wrapped sinks.
type MultiSink []Sink

func (m MultiSink) Record(r Result) {
	for _, s := range m {
		s.Record(r)
	}
}

func (m MultiSink) Summary() Summary {
	if len(m) == 0 {
		return Summary{}
	}
	return m[0].Summary()
}
