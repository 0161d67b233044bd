// Package serialization loads the run suite: base URL, shared headers, and
// per-operation fixture overrides (the hookfile analogue, scoped to a single
// run instead of process-wide state).
package serialization

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"contract-testing/src/contract"
	"contract-testing/src/serialization/openapi"
)

type Suite struct {
	BaseURL string            `yaml:"baseUrl"`
	Headers map[string]string `yaml:"headers"`

	Timeout            string `yaml:"timeout"`
	StopOnFirstFailure bool   `yaml:"stopOnFirstFailure"`
	Strict             bool   `yaml:"strict"`

	// Concurrency above 1 declares the operations independent and lets
	// the runner dispatch them in parallel.
	Concurrency int `yaml:"concurrency"`

	Operations []OperationOverride `yaml:"operations"`
}

// OperationOverride seeds one operation with fixture data, keyed by
// operationId (or "METHOD /path" when the document declares none).
type OperationOverride struct {
	Operation string                 `yaml:"operation"`
	Params    map[string]interface{} `yaml:"params"`
	Headers   map[string]string      `yaml:"headers"`
	Body      interface{}            `yaml:"body"`
	Skip      bool                   `yaml:"skip"`
}

type wrapper struct {
	Suite Suite `yaml:"suite"`
}

func LoadSuite(path string) (*Suite, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSuite(content)
}

func ParseSuite(content []byte) (*Suite, error) {
	w := wrapper{}
	if err := yaml.Unmarshal(content, &w); err != nil {
		return nil, err
	}
	return &w.Suite, nil
}

// RequestTimeout parses the per-request timeout, empty meaning none set.
func (s *Suite) RequestTimeout() (time.Duration, error) {
	if s.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 0, fmt.Errorf("suite timeout: %w", err)
	}
	return d, nil
}

// Overrides converts the suite's fixture entries into the synthesizer's
// override form, plus the skip set. Suite-level headers apply to every
// operation; per-operation headers win.
func (s *Suite) Overrides() (map[string]*contract.Overrides, map[string]bool, error) {
	overrides := make(map[string]*contract.Overrides, len(s.Operations))
	skip := map[string]bool{}

	for _, entry := range s.Operations {
		if entry.Operation == "" {
			return nil, nil, fmt.Errorf("suite operation entry without an operation id")
		}
		if entry.Skip {
			skip[entry.Operation] = true
		}

		ov := &contract.Overrides{
			Params:  entry.Params,
			Headers: mergeHeaders(s.Headers, entry.Headers),
		}
		if entry.Body != nil {
			body, err := json.Marshal(openapi.NormalizeValue(entry.Body))
			if err != nil {
				return nil, nil, fmt.Errorf("suite body for %s: %w", entry.Operation, err)
			}
			ov.Body = body
		}
		overrides[entry.Operation] = ov
	}

	// Suite-level headers still apply to operations with no entry of
	// their own; the runner looks overrides up per operation, so the
	// shared set rides along lazily via SharedOverrides.
	return overrides, skip, nil
}

// SharedOverrides is the fallback for operations the suite does not mention:
// just the suite-level headers.
func (s *Suite) SharedOverrides() *contract.Overrides {
	if len(s.Headers) == 0 {
		return nil
	}
	return &contract.Overrides{Headers: mergeHeaders(s.Headers, nil)}
}

func mergeHeaders(shared, own map[string]string) map[string]string {
	if len(shared) == 0 && len(own) == 0 {
		return nil
	}
	merged := make(map[string]string, len(shared)+len(own))
	for k, v := range shared {
		merged[k] = v
	}
	for k, v := range own {
		merged[k] = v
	}
	return merged
}
