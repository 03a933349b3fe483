/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/moamenhredeen/reqcheck/internal/output"
)

var (
	historyDBPath string
	historySuite  string
	historyLimit  int
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past runs recorded in the history database",
	Long: `List the most recent runs recorded with "reqcheck run --history".

Examples:
  reqcheck history --db runs.db
  reqcheck history --db runs.db --suite smoke -n 5`,
	Args: cobra.NoArgs,
	Run:  listHistory,
}

func listHistory(cmd *cobra.Command, args []string) {
	dbPath := historyDBPath
	if dbPath == "" {
		dbPath = appConfig.HistoryDB
	}
	if dbPath == "" {
		fmt.Fprintln(os.Stderr, "Error: no history database; pass --db or set history_db in the config")
		os.Exit(1)
	}

	history, err := output.OpenHistory(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening history: %v\n", err)
		os.Exit(1)
	}
	runs, err := history.RecentRuns(historySuite, historyLimit)
	history.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading history: %v\n", err)
		os.Exit(1)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded")
		return
	}
	printRuns(os.Stdout, runs)
}

func printRuns(w io.Writer, runs []output.RunRecord) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tSUITE\tSTARTED\tTOTAL\tPASS\tFAIL\tSTATUS")
	for _, r := range runs {
		status := "ok"
		switch {
		case r.Error != "":
			status = "error"
		case r.Canceled:
			status = "canceled"
		case r.Fail > 0:
			status = "failed"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n", r.RunID, r.SuiteName, r.ExecuteTime, r.Total, r.Pass, r.Fail, status)
	}
	tw.Flush()
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyDBPath, "db", "", "History database (default: history_db from config)")
	historyCmd.Flags().StringVar(&historySuite, "suite", "", "Only runs of this suite")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Max runs to list")
}
