/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/moamenhredeen/reqcheck/internal/models"
)

var (
	isTTY = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	// Color helpers
	green  = color.New(color.FgGreen, color.Bold).SprintFunc()
	red    = color.New(color.FgRed, color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	white  = color.New(color.FgWhite, color.Bold).SprintFunc()
)

// printCaseResult prints one line per case, plus details when verbose or failed
func printCaseResult(r models.CaseResult, completed, total int, verbose bool) {
	status := green("✓ PASS")
	if !r.Passed() {
		status = red("✗ FAIL")
	}

	fmt.Printf("[%d/%d] %s %s %s %s", completed, total, status, r.CaseID, r.Request.Method, r.Request.URL)
	if r.Response.StatusCode != nil {
		fmt.Printf(" %s", cyan(*r.Response.StatusCode))
	}
	if r.Response.ElapsedMS != nil {
		fmt.Printf(" (%dms)", *r.Response.ElapsedMS)
	}
	fmt.Println()

	if !r.Response.Success {
		fmt.Printf("    %s %s: %s\n", red("→"), r.Response.ErrorType, r.Response.ErrorMessage)
		return
	}

	for _, v := range r.AssertionResults {
		if v.Passed() && !verbose {
			continue
		}
		mark := green("✓")
		if !v.Passed() {
			mark = red("✗")
		}
		fmt.Printf("    %s %s", mark, describeAssertion(v))
		if v.Message != "" {
			fmt.Printf(" - %s", strings.ReplaceAll(v.Message, "\n", "\n      "))
		}
		fmt.Println()
	}
}

func describeAssertion(v models.AssertionVerdict) string {
	parts := []string{string(v.Type)}
	for _, s := range []string{v.Path, v.Header, v.Target} {
		if s != "" {
			parts = append(parts, s)
			break
		}
	}
	if v.Operator != "" {
		parts = append(parts, v.Operator)
	}
	if v.Expected != nil {
		parts = append(parts, fmt.Sprint(v.Expected))
	}
	return strings.Join(parts, " ")
}

func displayRunSummary(env models.ResultEnvelope) {
	fmt.Println()
	fmt.Printf("%s\n", white("=== Run Summary ==="))
	fmt.Printf("Suite:   %s\n", env.SuiteName)
	fmt.Printf("Started: %s\n", env.ExecuteTime)
	fmt.Printf("Total:   %d\n", env.Summary.Total)
	fmt.Printf("Passed:  %s\n", green(env.Summary.Pass))
	if env.Summary.Fail > 0 {
		fmt.Printf("Failed:  %s\n", red(env.Summary.Fail))
	} else {
		fmt.Printf("Failed:  %d\n", env.Summary.Fail)
	}
	if env.Canceled {
		fmt.Printf("%s\n", yellow("Run was canceled; cases that never started are not listed."))
	}
	if env.Error != "" {
		fmt.Printf("Error:   %s\n", red(env.Error))
	}
}
