package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logdigest/pkg/config"
	"github.com/ccollicutt/logdigest/pkg/detector"
)

// Diagnostic statuses.
const (
	statusOK      = "ok"
	statusWarning = "warning"
	statusError   = "error"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	ConfigPath string
	Verbose    bool
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand() *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose <log-file>",
		Short: "Check a log file and configuration before analysis",
		Long: `Check a log file and configuration before analysis.

Checks:
- Log file existence and readability
- Share of lines in a recognized format
- Timestamps that no layout can parse
- Config file, server temp directory and webhooks

Example:
  logdigest diagnose /var/log/app.log
  logdigest diagnose -c logdigest.yaml -v /var/log/app.log  # verbose, probes webhooks`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runDiagnose(ctx, cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to a YAML config file")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")

	return cmd
}

func runDiagnose(ctx context.Context, w io.Writer, logFile string, opts *DiagnoseOptions) error {
	results := []DiagnosticResult{}

	result := checkLogFile(logFile)
	results = append(results, result)
	if result.Status != statusError {
		results = append(results, checkLineFormats(ctx, logFile, opts)...)
	}

	cfg, result := checkConfig(ctx, opts.ConfigPath)
	results = append(results, result)
	if cfg != nil {
		results = append(results, checkTempDir(cfg))
		results = append(results, checkWebhooks(cfg, opts)...)
	}

	printDiagnostics(w, results, opts)
	return nil
}

func checkLogFile(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Log File",
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = statusError
		result.Message = fmt.Sprintf("Log file not found: %s", path)
		result.Suggests = []string{"Check the file path is correct"}
		return result
	}
	if err != nil {
		result.Status = statusError
		result.Message = fmt.Sprintf("Cannot access log file: %v", err)
		result.Suggests = []string{"Check file permissions"}
		return result
	}
	if info.IsDir() {
		result.Status = statusError
		result.Message = "Path is a directory, not a file"
		result.Suggests = []string{"Analyze one file at a time"}
		return result
	}

	f, err := os.Open(path) // #nosec G304 -- user-provided log path
	if err != nil {
		result.Status = statusError
		result.Message = fmt.Sprintf("Cannot read log file: %v", err)
		result.Suggests = []string{"Check file permissions"}
		return result
	}
	_ = f.Close()

	if info.Size() == 0 {
		result.Status = statusWarning
		result.Message = "File is empty (0 bytes); the report will have no entries"
		return result
	}

	result.Status = statusOK
	result.Message = fmt.Sprintf("Found: %s (%d bytes)", path, info.Size())
	return result
}

func checkLineFormats(ctx context.Context, logFile string, opts *DiagnoseOptions) []DiagnosticResult {
	result := DiagnosticResult{
		Check: "Line Formats",
	}

	detResult, err := detector.New().DetectFromFile(ctx, logFile)
	if err != nil {
		result.Status = statusError
		result.Message = fmt.Sprintf("Cannot sample log file: %v", err)
		return []DiagnosticResult{result}
	}
	if detResult.SampledLines == 0 {
		result.Status = statusWarning
		result.Message = "No non-empty lines to sample"
		return []DiagnosticResult{result}
	}

	recognized := detResult.SampledLines - detResult.Unrecognized
	switch {
	case recognized == 0:
		result.Status = statusError
		result.Message = "No sampled line is in a known format"
		result.Suggests = []string{
			"Every line will be counted as OTHER with no address, message or timestamp",
			"Run 'logdigest detect " + logFile + "' to see the expected formats",
		}
	case recognized*2 < detResult.SampledLines:
		result.Status = statusWarning
		result.Message = fmt.Sprintf("Only %d/%d sampled lines are in a known format", recognized, detResult.SampledLines)
	default:
		result.Status = statusOK
		result.Message = fmt.Sprintf("%d/%d sampled lines are in a known format", recognized, detResult.SampledLines)
	}

	if detResult.Unrecognized > 0 && (opts.Verbose || result.Status != statusOK) {
		result.Details = []string{
			"Sample line that didn't match:",
			truncate(detResult.UnrecognizedSample, 80),
		}
	}

	results := []DiagnosticResult{result}

	for _, m := range detResult.Matches {
		tsResult := DiagnosticResult{
			Check: fmt.Sprintf("Timestamps: %s", m.Format),
		}
		if m.UnparsedTimestamps > 0 {
			tsResult.Status = statusWarning
			tsResult.Message = fmt.Sprintf("%d/%d timestamps match no layout", m.UnparsedTimestamps, m.MatchCount)
			tsResult.Suggests = []string{"Lines with unparsed timestamps are left out of errors per hour"}
		} else {
			tsResult.Status = statusOK
			tsResult.Message = fmt.Sprintf("Layout: %s", m.TimestampLayout)
		}
		results = append(results, tsResult)
	}

	return results
}

func checkConfig(ctx context.Context, path string) (*config.Config, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Config",
	}

	cfg, err := config.Resolve(ctx, path)
	if err != nil {
		result.Status = statusError
		result.Message = fmt.Sprintf("Failed to load config: %v", err)
		result.Suggests = []string{
			"Check YAML syntax - ensure proper indentation (use spaces, not tabs)",
			"Use 'logdigest detect <log-file> --write-config logdigest.yaml' to generate a starter config",
		}
		return nil, result
	}

	result.Status = statusOK
	if path == "" {
		result.Message = "No config file given; using defaults"
	} else {
		result.Message = "Config file parsed successfully"
	}
	result.Details = []string{
		fmt.Sprintf("Top: %d", cfg.Top),
		fmt.Sprintf("Output: %s", cfg.Output),
		fmt.Sprintf("Webhooks: %d", len(cfg.Webhooks)),
	}
	return cfg, result
}

func checkTempDir(cfg *config.Config) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Server Temp Directory",
	}

	dir := cfg.Server.TempDir
	if dir == "" {
		dir = os.TempDir()
	}

	f, err := os.CreateTemp(dir, "diagnose_*.log")
	if err != nil {
		result.Status = statusWarning
		result.Message = fmt.Sprintf("Cannot write to %s: %v", dir, err)
		result.Suggests = []string{"'logdigest serve' stores uploads here; set server.temp_dir to a writable directory"}
		return result
	}
	_ = f.Close()
	_ = os.Remove(f.Name())

	result.Status = statusOK
	result.Message = fmt.Sprintf("Writable: %s", dir)
	return result
}

func checkWebhooks(cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	if len(cfg.Webhooks) == 0 {
		if opts.Verbose {
			results = append(results, DiagnosticResult{
				Check:   "Webhooks",
				Status:  statusOK,
				Message: "No webhooks configured (optional)",
			})
		}
		return results
	}

	for _, wh := range cfg.Webhooks {
		result := DiagnosticResult{
			Check: fmt.Sprintf("Webhook: %s", webhookName(wh)),
		}

		if wh.Trigger == config.WebhookTriggerNever {
			result.Status = statusWarning
			result.Message = "Trigger is 'never'; this webhook is disabled"
		} else {
			result.Status = statusOK
			result.Message = fmt.Sprintf("Trigger: %s", wh.Trigger)
		}
		if opts.Verbose {
			result.Details = []string{
				fmt.Sprintf("URL: %s", wh.URL),
				fmt.Sprintf("Timeout: %s", wh.Timeout),
			}
			if wh.Token != "" {
				result.Details = append(result.Details, "Token: configured")
			}
		}

		results = append(results, result)
	}

	// Probing endpoints makes network calls, so only in verbose mode.
	if opts.Verbose {
		for _, wh := range cfg.Webhooks {
			result := checkWebhookConnectivity(wh)
			result.Check = fmt.Sprintf("Webhook Connectivity: %s", webhookName(wh))
			results = append(results, result)
		}
	}

	return results
}

func webhookName(wh config.WebhookConfig) string {
	if wh.Name != "" {
		return wh.Name
	}
	return wh.URL
}

func checkWebhookConnectivity(wh config.WebhookConfig) DiagnosticResult {
	result := DiagnosticResult{}

	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequest(http.MethodHead, wh.URL, nil)
	if err != nil {
		result.Status = statusWarning
		result.Message = fmt.Sprintf("Cannot create request: %v", err)
		return result
	}

	if wh.Token != "" {
		req.Header.Set("Authorization", "Bearer "+wh.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		result.Status = statusWarning
		result.Message = fmt.Sprintf("Cannot connect: %v", err)
		result.Suggests = []string{
			"Check if the webhook URL is correct",
			"Verify network connectivity",
		}
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		result.Status = statusOK
		result.Message = fmt.Sprintf("Reachable (status %d)", resp.StatusCode)
	} else {
		result.Status = statusWarning
		result.Message = fmt.Sprintf("Reachable but returned status %d", resp.StatusCode)
		result.Suggests = []string{
			"The endpoint may only accept POST (will work during actual webhook send)",
			"Check authentication if using a token",
		}
	}

	return result
}

func printDiagnostics(w io.Writer, results []DiagnosticResult, opts *DiagnoseOptions) {
	fmt.Fprintln(w, "=== logdigest Diagnostics ===")
	fmt.Fprintln(w)

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		var icon string
		switch r.Status {
		case statusOK:
			icon = "PASS"
			okCount++
		case statusWarning:
			icon = "WARN"
			warnCount++
		case statusError:
			icon = "FAIL"
			errCount++
		}

		fmt.Fprintf(w, "[%s] %s\n", icon, r.Check)
		fmt.Fprintf(w, "    %s\n", r.Message)

		if opts.Verbose || r.Status != statusOK {
			for _, d := range r.Details {
				fmt.Fprintf(w, "      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			fmt.Fprintf(w, "      Hint: %s\n", s)
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	switch {
	case errCount > 0:
		fmt.Fprintln(w, "\nFix the errors above before running analysis.")
	case warnCount > 0:
		fmt.Fprintln(w, "\nAnalysis will run but the report may be incomplete.")
	default:
		fmt.Fprintln(w, "\nReady to analyze.")
	}
}

// truncate shortens s to at most maxLen runes, marking the cut with "...".
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-3]) + "..."
}
