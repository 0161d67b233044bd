package contract

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"contract-testing/src/report"
	"contract-testing/src/serialization/openapi"
	"contract-testing/src/transport"
)

const DefaultTimeout = 10 * time.Second

type Options struct {
	// BaseURL of the live API; falls back to the document's first server.
	BaseURL string

	// Timeout applies per request, not per run.
	Timeout time.Duration

	// StopOnFirstFailure aborts dispatching after the first non-pass
	// outcome. Off by default: validating the rest gives more signal.
	StopOnFirstFailure bool

	// Concurrency > 1 dispatches operations through a bounded worker
	// group. Only meaningful when the operations are independent; sink
	// ordering becomes completion order.
	Concurrency int

	// Strict flags response properties the schema does not declare.
	Strict bool

	// Overrides and Skip are keyed by operation ID.
	Overrides map[string]*Overrides
	Skip      map[string]bool
}

// Runner validates every operation a document declares against a live API.
type Runner struct {
	doc       *openapi.Document
	transport transport.Transport
	validator *Validator
	synth     *Synthesizer
	logger    zerolog.Logger
	opts      Options
}

func NewRunner(doc *openapi.Document, tr transport.Transport, logger zerolog.Logger, opts Options) *Runner {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.BaseURL == "" {
		opts.BaseURL = doc.ServerURL()
	}
	return &Runner{
		doc:       doc,
		transport: tr,
		validator: NewValidator(doc, opts.Strict),
		synth:     NewSynthesizer(doc),
		logger:    logger,
		opts:      opts,
	}
}

// Run validates operations in document declaration order (or completion
// order when Concurrency > 1), streaming each result into sink the moment
// it is known. Cancelling ctx stops dispatching new requests; requests
// already in flight finish or hit their own timeout, and their results are
// still recorded.
func (r *Runner) Run(ctx context.Context, sink report.Sink) error {
	ops := r.doc.Operations()
	r.logger.Info().
		Int("operations", len(ops)).
		Str("base_url", r.opts.BaseURL).
		Int("concurrency", r.opts.Concurrency).
		Msg("starting contract run")

	if r.opts.Concurrency > 1 {
		return r.runConcurrent(ctx, ops, sink)
	}

	for _, op := range ops {
		if ctx.Err() != nil {
			break
		}
		if r.opts.Skip[op.ID] {
			sink.Record(report.Result{OperationID: op.ID, Outcome: report.OutcomeSkip})
			continue
		}
		res := r.runOne(ctx, op)
		sink.Record(res)
		if r.opts.StopOnFirstFailure && res.Outcome != report.OutcomePass {
			break
		}
	}
	return ctx.Err()
}

func (r *Runner) runConcurrent(ctx context.Context, ops []*openapi.OperationSpec, sink report.Sink) error {
	var stopped atomic.Bool
	var g errgroup.Group
	g.SetLimit(r.opts.Concurrency)

	for _, op := range ops {
		if ctx.Err() != nil || stopped.Load() {
			break
		}
		if r.opts.Skip[op.ID] {
			sink.Record(report.Result{OperationID: op.ID, Outcome: report.OutcomeSkip})
			continue
		}
		op := op
		g.Go(func() error {
			res := r.runOne(ctx, op)
			sink.Record(res)
			if r.opts.StopOnFirstFailure && res.Outcome != report.OutcomePass {
				stopped.Store(true)
			}
			return nil
		})
	}
	_ = g.Wait()
	return ctx.Err()
}

func (r *Runner) runOne(ctx context.Context, op *openapi.OperationSpec) report.Result {
	start := time.Now()
	res := report.Result{OperationID: op.ID}

	req, err := r.synth.Synthesize(op, r.opts.BaseURL, r.opts.Overrides[op.ID])
	if err != nil {
		res.Outcome = report.OutcomeError
		res.Err = err.Error()
		res.Duration = time.Since(start)
		r.logger.Warn().Str("operation", op.ID).Err(err).Msg("request synthesis failed")
		return res
	}

	// The request deadline is independent of run cancellation so an
	// aborted run lets in-flight requests drain cleanly.
	reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.opts.Timeout)
	defer cancel()

	resp, err := r.transport.Send(reqCtx, req)
	if err != nil {
		res.Outcome = report.OutcomeError
		res.Err = err.Error()
		res.Duration = time.Since(start)
		r.logger.Warn().Str("operation", op.ID).Err(err).Msg("transport failure")
		return res
	}

	res.Violations = r.validateResponse(op, resp)
	if len(res.Violations) == 0 {
		res.Outcome = report.OutcomePass
	} else {
		res.Outcome = report.OutcomeFail
	}
	res.Duration = time.Since(start)

	r.logger.Debug().
		Str("operation", op.ID).
		Str("outcome", string(res.Outcome)).
		Int("status", resp.StatusCode).
		Int("violations", len(res.Violations)).
		Dur("elapsed", res.Duration).
		Msg("operation validated")
	return res
}

// validateResponse matches the received response against the declared
// ResponseSpec for its exact status code. An undeclared status is itself the
// violation; there is no declared schema to check the body against.
func (r *Runner) validateResponse(op *openapi.OperationSpec, resp *transport.LiveResponse) []report.Violation {
	rs, ok := op.Responses[resp.StatusCode]
	if !ok {
		return []report.Violation{{
			Path:     "status",
			Kind:     report.KindUnexpectedStatus,
			Expected: fmt.Sprintf("one of %v", op.DeclaredStatuses()),
			Actual:   strconv.Itoa(resp.StatusCode),
		}}
	}

	var violations []report.Violation
	for _, name := range rs.RequiredHeaders {
		if !headerPresent(resp.Header, name) {
			violations = append(violations, report.Violation{
				Path:     "headers." + name,
				Kind:     report.KindMissingHeader,
				Expected: fmt.Sprintf("header %q", name),
				Actual:   "absent",
			})
		}
	}

	if rs.BodySchema != nil && resp.StatusCode != http.StatusNoContent {
		value, err := DecodeJSON(resp.Body)
		if err != nil {
			violations = append(violations, report.Violation{
				Path:     "body",
				Kind:     report.KindTypeMismatch,
				Expected: "valid JSON body",
				Actual:   err.Error(),
			})
		} else {
			violations = append(violations, r.validator.Validate(value, rs.BodySchema)...)
		}
	}
	return violations
}

// headerPresent matches header names case-insensitively. net/http stores
// canonical keys, but a custom Transport is not obliged to.
func headerPresent(h http.Header, name string) bool {
	if _, ok := h[http.CanonicalHeaderKey(name)]; ok {
		return true
	}
	for key := range h {
		if strings.EqualFold(key, name) {
			return true
		}
	}
	return false
}
