/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/moamenhredeen/reqcheck/internal/models"
	"github.com/moamenhredeen/reqcheck/internal/tester"
)

var (
	sendMethod     string
	sendHeaders    []string
	sendData       string
	sendTimeout    time.Duration
	sendAssertions []string
	sendJSON       bool
	sendCaseFile   string
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send [url]",
	Short: "Send a single request and check the response",
	Long: `Send one HTTP request, run the given assertions against the response
and print the case result.

Assertions use the form "<type> [target] <operator> <expected>". The
json_path and header types take a target (the path or header name).

Examples:
  reqcheck send https://api.example.com/health -a "status_code == 200"

  reqcheck send https://api.example.com/orders -X POST \
    -H "X-Token: abc" -d '{"sku": "A1"}' \
    -a "status_code between 200~299" \
    -a "json_path $.data.id exists" \
    -a "response_time < 500"

  # Run a case stored in a YAML or JSON file
  reqcheck send --case health.yaml`,
	Args: cobra.MaximumNArgs(1),
	Run:  sendRequest,
}

func sendRequest(cmd *cobra.Command, args []string) {
	headers, err := parseHeaders(sendHeaders)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	assertions := make([]models.AssertionSpec, 0, len(sendAssertions))
	for _, raw := range sendAssertions {
		a, err := parseAssertion(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		assertions = append(assertions, a)
	}

	timeout := appConfig.Timeout
	if cmd.Flags().Changed("timeout") {
		timeout = sendTimeout
	}

	var c models.CaseSpec
	if sendCaseFile != "" {
		c, err = loadCase(sendCaseFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading case: %v\n", err)
			os.Exit(1)
		}
	}
	if c.CaseID == "" {
		c.CaseID = "send"
	}

	// flags extend or override the case file
	if len(args) == 1 {
		c.Request.URL = args[0]
	}
	if c.Request.URL == "" {
		fmt.Fprintln(os.Stderr, "Error: a url argument or a case file with request.url is required")
		os.Exit(1)
	}
	if c.Name == "" {
		c.Name = c.Request.URL
	}
	if c.Request.Method == "" || cmd.Flags().Changed("method") {
		c.Request.Method = strings.ToUpper(sendMethod)
	}
	for name, value := range headers {
		if c.Request.Headers == nil {
			c.Request.Headers = map[string]string{}
		}
		c.Request.Headers[name] = value
	}
	if sendData != "" {
		c.Request.Body = parseBody(sendData)
	}
	c.Assertions = append(c.Assertions, assertions...)

	t := tester.NewTester(tester.NewHTTPTransport(timeout, logger))
	result := t.Execute(context.Background(), c)

	if sendJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding result: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	} else {
		printCaseResult(result, 1, 1, true)
		if result.Response.ResponseText != nil && verbose {
			fmt.Println()
			fmt.Println(*result.Response.ResponseText)
		}
	}

	if !result.Passed() {
		os.Exit(1)
	}
}

// loadCase reads a single case from a YAML or JSON file
func loadCase(path string) (models.CaseSpec, error) {
	var c models.CaseSpec
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("failed to read case: %w", err)
	}
	// YAML is a superset of JSON, so one decoder serves both
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("failed to parse case: %w", err)
	}
	return c, nil
}

// parseHeaders turns "Name: value" pairs into a header map
func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q, expected \"Name: value\"", h)
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers, nil
}

// parseBody sends JSON data as a decoded value and anything else as a string
func parseBody(data string) any {
	if data == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(data), &v); err == nil {
		return v
	}
	return data
}

// parseAssertion reads "<type> [target] <operator> [expected...]"
func parseAssertion(raw string) (models.AssertionSpec, error) {
	fields := strings.Fields(raw)
	if len(fields) < 2 {
		return models.AssertionSpec{}, fmt.Errorf("invalid assertion %q", raw)
	}

	a := models.AssertionSpec{Type: models.AssertionKind(fields[0])}
	rest := fields[1:]

	switch a.Type {
	case models.KindJSONPath, models.KindHeader:
		if len(rest) < 2 {
			return models.AssertionSpec{}, fmt.Errorf("assertion %q needs a target and an operator", raw)
		}
		if a.Type == models.KindJSONPath {
			a.Path = rest[0]
		} else {
			a.Header = rest[0]
		}
		rest = rest[1:]
	case models.KindStatusCode, models.KindResponseBody, models.KindResponseTime:
	default:
		return models.AssertionSpec{}, fmt.Errorf("unknown assertion type %q", fields[0])
	}

	a.Operator = rest[0]
	if len(rest) > 1 {
		a.Expected = parseExpected(strings.Join(rest[1:], " "))
	}
	return a, nil
}

// parseExpected keeps JSON scalars typed so numeric comparisons work
func parseExpected(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVarP(&sendMethod, "method", "X", "GET", "HTTP method")
	sendCmd.Flags().StringArrayVarP(&sendHeaders, "header", "H", nil, "Request header, \"Name: value\" (repeatable)")
	sendCmd.Flags().StringVarP(&sendData, "data", "d", "", "Request body; JSON is sent as JSON")
	sendCmd.Flags().DurationVarP(&sendTimeout, "timeout", "t", 20*time.Second, "Request timeout")
	sendCmd.Flags().StringArrayVarP(&sendAssertions, "assert", "a", nil, "Assertion, e.g. \"status_code == 200\" (repeatable)")
	sendCmd.Flags().StringVar(&sendCaseFile, "case", "", "Load the request and assertions from a YAML or JSON case file")
	sendCmd.Flags().BoolVar(&sendJSON, "json", false, "Print the case result as JSON")
	sendCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Also print the response body")
}
