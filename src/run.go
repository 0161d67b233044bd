package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"contract-testing/src/contract"
	"contract-testing/src/report"
	"contract-testing/src/serialization"
	"contract-testing/src/serialization/openapi"
	"contract-testing/src/transport"
)

var (
	specPath      string
	baseURL       string
	suitePath     string
	timeout       time.Duration
	concurrency   int
	stopOnFailure bool
	strict        bool
	reportPath    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the contract suite against a live API",
	Long: `Load the OpenAPI document, synthesize one request per declared operation,
and validate every live response against its declared contract.

Operations run sequentially in document order by default, so fixture chains
(create, then fetch) behave deterministically. With --concurrency above 1 the
operations are treated as independent and results arrive in completion order.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		doc, err := openapi.LoadDocument(specPath)
		if err != nil {
			// ParseError and UnresolvedReferenceError are fatal: no
			// request is sent against a broken document.
			return fmt.Errorf("load document %s: %w", specPath, err)
		}

		opts := contract.Options{
			BaseURL:            baseURL,
			Timeout:            timeout,
			StopOnFirstFailure: stopOnFailure,
			Concurrency:        concurrency,
			Strict:             strict,
		}

		var suite *serialization.Suite
		if suitePath != "" {
			suite, err = serialization.LoadSuite(suitePath)
			if err != nil {
				return fmt.Errorf("load suite %s: %w", suitePath, err)
			}
			if err := applySuite(suite, doc, &opts, cmd); err != nil {
				return err
			}
		}

		console := report.NewConsoleSink(cmd.OutOrStdout())
		memory := report.NewMemorySink()
		sink := report.MultiSink{memory, console}

		runner := contract.NewRunner(doc, transport.NewHTTPTransport(), logger, opts)
		if err := runner.Run(contextWithSignal(), sink); err != nil {
			logger.Warn().Err(err).Msg("run aborted; partial report follows")
		}

		console.WriteVerdict()

		if reportPath != "" {
			if err := writeReport(memory, reportPath); err != nil {
				return err
			}
		}

		if !memory.Summary().Clean() {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&specPath, "spec", "openapi.yaml", "path to the OpenAPI 3.x document")
	runCmd.Flags().StringVar(&baseURL, "url", "", "base URL of the live API (default: first server in the document)")
	runCmd.Flags().StringVar(&suitePath, "suite", "", "path to a suite YAML with fixture overrides")
	runCmd.Flags().DurationVar(&timeout, "timeout", contract.DefaultTimeout, "per-request timeout")
	runCmd.Flags().IntVar(&concurrency, "concurrency", 1, "parallel workers; above 1 declares operations independent")
	runCmd.Flags().BoolVar(&stopOnFailure, "stop-on-failure", false, "stop after the first failing operation")
	runCmd.Flags().BoolVar(&strict, "strict", false, "flag response properties the schema does not declare")
	runCmd.Flags().StringVar(&reportPath, "report", "", "write the machine-readable JSON report to this file")
}

// applySuite folds suite settings into the runner options. Explicit CLI
// flags win over suite values.
func applySuite(suite *serialization.Suite, doc *openapi.Document, opts *contract.Options, cmd *cobra.Command) error {
	overrides, skip, err := suite.Overrides()
	if err != nil {
		return err
	}
	if shared := suite.SharedOverrides(); shared != nil {
		for _, op := range doc.Operations() {
			if _, ok := overrides[op.ID]; !ok {
				overrides[op.ID] = shared
			}
		}
	}
	opts.Overrides = overrides
	opts.Skip = skip

	if opts.BaseURL == "" {
		opts.BaseURL = suite.BaseURL
	}
	if !cmd.Flags().Changed("timeout") {
		if d, err := suite.RequestTimeout(); err != nil {
			return err
		} else if d > 0 {
			opts.Timeout = d
		}
	}
	if !cmd.Flags().Changed("concurrency") && suite.Concurrency > 0 {
		opts.Concurrency = suite.Concurrency
	}
	if !cmd.Flags().Changed("stop-on-failure") {
		opts.StopOnFirstFailure = suite.StopOnFirstFailure
	}
	if !cmd.Flags().Changed("strict") {
		opts.Strict = suite.Strict
	}
	return nil
}

func writeReport(memory *report.MemorySink, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()
	if err := memory.WriteJSON(f); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
