/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/moamenhredeen/reqcheck/internal/models"
	"github.com/moamenhredeen/reqcheck/internal/output"
	"github.com/moamenhredeen/reqcheck/internal/runner"
	"github.com/moamenhredeen/reqcheck/internal/suite"
	"github.com/moamenhredeen/reqcheck/internal/tester"
)

var (
	runConcurrency int
	runRateLimit   float64
	runTimeout     time.Duration
	runOutputDir   string
	runFormat      string
	runHistoryDB   string
	runNoExport    bool
	runStdout      bool
	verbose        bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [suite-file]",
	Short: "Run a suite of request cases",
	Long: `Run every case of a suite concurrently, check the assertions and
write a timestamped report.

Press Ctrl+C to stop dispatching new cases; cases already in flight
finish and the partial report is still written.

Examples:
  # Run with defaults (5 concurrent cases, JSON report in ./results)
  reqcheck run smoke.yaml

  # Limit concurrency and dispatch rate
  reqcheck run smoke.yaml -c 2 --rate 10

  # CSV report plus a row in the run history database
  reqcheck run smoke.yaml -o csv --history runs.db`,
	Args: cobra.ExactArgs(1),
	Run:  runSuite,
}

func runSuite(cmd *cobra.Command, args []string) {
	s, err := suite.Load(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading suite: %v\n", err)
		os.Exit(1)
	}

	// flags win over the suite file, which wins over config
	concurrency := appConfig.Concurrency
	if cmd.Flags().Changed("concurrency") {
		concurrency = runConcurrency
	} else if s.Concurrency > 0 {
		concurrency = s.Concurrency
	}
	rateLimit := appConfig.RateLimit
	if cmd.Flags().Changed("rate") {
		rateLimit = runRateLimit
	}
	timeout := appConfig.Timeout
	if cmd.Flags().Changed("timeout") {
		timeout = runTimeout
	}
	formatName := appConfig.Format
	if cmd.Flags().Changed("output") {
		formatName = runFormat
	}
	format, err := output.ParseFormat(formatName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	historyDB := appConfig.HistoryDB
	if cmd.Flags().Changed("history") {
		historyDB = runHistoryDB
	}
	outputDir := suite.OutputDir(s, firstNonEmpty(runOutputDir, appConfig.OutputDir))

	if !runStdout {
		fmt.Printf("\n%s\n", white("=== Run Configuration ==="))
		fmt.Printf("Suite:       %s\n", s.SuiteName)
		fmt.Printf("Cases:       %d\n", len(s.Cases))
		fmt.Printf("Concurrency: %d\n", concurrency)
		if rateLimit > 0 {
			fmt.Printf("Rate Limit:  %.0f cases/sec\n", rateLimit)
		}
		fmt.Printf("Timeout:     %v\n", timeout)
		fmt.Println()
	}

	transport := tester.NewHTTPTransport(timeout, logger)
	r := runner.NewRunner(tester.NewTester(transport), runner.Config{
		Concurrency: concurrency,
		RateLimit:   rateLimit,
	})

	var sp *spinner.Spinner
	if isTTY && !runStdout {
		sp = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		sp.Suffix = fmt.Sprintf(" 0/%d cases", len(s.Cases))
		sp.Start()
	}

	// Create event handler for live output
	r.OnEvent = func(event runner.Event) {
		switch event.Type {
		case runner.EventCaseStarted:
			logger.Debug("case started", "case_id", event.Case.CaseID, "method", event.Case.Request.Method, "url", event.Case.Request.URL)

		case runner.EventCaseFinished:
			logger.Debug("case finished", "case_id", event.Result.CaseID, "result", event.Result.Result)
			if runStdout {
				return
			}
			if sp != nil {
				sp.Stop()
			}
			printCaseResult(*event.Result, event.Completed, event.Total, verbose)
			if sp != nil {
				sp.Suffix = fmt.Sprintf(" %d/%d cases", event.Completed, event.Total)
				sp.Start()
			}

		case runner.EventCanceled:
			logger.Warn("run canceled", "completed", event.Completed, "total", event.Total)

		case runner.EventFinished:
			logger.Info("run finished", "pass", event.Outcome.Summary.Pass, "fail", event.Outcome.Summary.Fail, "canceled", event.Outcome.Canceled)
		}
	}

	startedAt := time.Now()
	if err := r.Start(context.Background(), s.Cases); err != nil {
		fmt.Fprintf(os.Stderr, "Error starting run: %v\n", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\n\nRun interrupted, waiting for in-flight cases...")
		r.Cancel()
	}()

	outcome := r.Wait()
	if sp != nil {
		sp.Stop()
	}

	env := models.NewResultEnvelope(s.SuiteName, outcome.Results, startedAt)
	env.Canceled = outcome.Canceled
	if outcome.Err != nil {
		env.Error = outcome.Err.Error()
	}

	if runStdout {
		if err := output.WriteEnvelope(env, format, ""); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing results: %v\n", err)
			os.Exit(1)
		}
	} else {
		locations, err := exportRun(env, outputDir, format, historyDB, !runNoExport)
		for _, location := range locations {
			logger.Info("results exported", "location", location, "run_id", env.RunID)
			fmt.Printf("\nResults exported to: %s\n", location)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting results: %v\n", err)
			os.Exit(1)
		}
		displayRunSummary(env)
	}

	// Exit with error code if anything failed
	if env.Summary.Fail > 0 || env.Canceled || env.Error != "" {
		os.Exit(1)
	}
}

// exportRun hands env to the report file sink (when writeFile is set) and
// the history database (when historyDB is set). It stops at the first
// failing sink and returns the locations written so far.
func exportRun(env models.ResultEnvelope, outputDir string, format output.Format, historyDB string, writeFile bool) ([]string, error) {
	var sinks []output.Sink
	if writeFile {
		sinks = append(sinks, output.NewFileSink(outputDir, format))
	}
	if historyDB != "" {
		history, err := output.OpenHistory(historyDB)
		if err != nil {
			return nil, err
		}
		defer history.Close()
		sinks = append(sinks, history)
	}

	var locations []string
	for _, sink := range sinks {
		location, err := sink.Export(env)
		if err != nil {
			return locations, err
		}
		locations = append(locations, location)
	}
	return locations, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVarP(&runConcurrency, "concurrency", "c", 5, "Max cases in flight")
	runCmd.Flags().Float64VarP(&runRateLimit, "rate", "r", 0, "Max cases started per second (0 = unlimited)")
	runCmd.Flags().DurationVarP(&runTimeout, "timeout", "t", 20*time.Second, "Timeout for requests that do not set their own")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show passing assertions too")

	// Output flags
	runCmd.Flags().StringVarP(&runFormat, "output", "o", "json", "Report format: json, csv")
	runCmd.Flags().StringVar(&runOutputDir, "output-dir", "", "Report directory (default: suite output_dir or ./results)")
	runCmd.Flags().StringVar(&runHistoryDB, "history", "", "Also record the run in this SQLite database")
	runCmd.Flags().BoolVar(&runNoExport, "no-export", false, "Do not write a report file")
	runCmd.Flags().BoolVar(&runStdout, "stdout", false, "Write the report to stdout instead of the live view")
}
