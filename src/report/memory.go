package report

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RunReport is the machine-readable form of a completed (or aborted) run.
// Results appear in the order they were recorded.
type RunReport struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Duration  string    `json:"duration"`
	Summary   Summary   `json:"summary"`
	Results   []Result  `json:"results"`
}

// MemorySink accumulates results in memory in recording order.
type MemorySink struct {
	mu        sync.Mutex
	runID     string
	startedAt time.Time
	results   []Result
	summary   Summary
}

func NewMemorySink() *MemorySink {
	return &MemorySink{
		runID:     uuid.New().String(),
		startedAt: time.Now().UTC(),
	}
}

func (s *MemorySink) Record(r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
	s.summary = s.summary.count(r.Outcome)
}

func (s *MemorySink) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

func (s *MemorySink) Results() []Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Result, len(s.results))
	copy(out, s.results)
	return out
}

func (s *MemorySink) Report() RunReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	results := make([]Result, len(s.results))
	copy(results, s.results)
	return RunReport{
		RunID:     s.runID,
		StartedAt: s.startedAt,
		Duration:  time.Since(s.startedAt).Round(time.Millisecond).String(),
		Summary:   s.summary,
		Results:   results,
	}
}

// WriteJSON serializes the full report, e.g. for a CI artifact.
func (s *MemorySink) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s.Report())
}
