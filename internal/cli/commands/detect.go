package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/logdigest/pkg/config"
	"github.com/ccollicutt/logdigest/pkg/detector"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output      string
	SampleSize  int
	WriteConfig string
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <log-file>",
		Short: "Report which line formats a log file contains",
		Long: `Sample the head of a log file and report which line formats it contains.

For every recognized format the report shows how many sampled lines matched,
an example line and the timestamp layout that parsed it. Lines no format
accepts are counted as unrecognized; they still count towards the OTHER
level in a full analysis.

Optionally writes a starter config with --write-config.

Example:
  logdigest detect /var/log/app.log
  logdigest detect --sample 500 -o json /var/log/app.log
  logdigest detect -w logdigest.yaml /var/log/app.log`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", detector.DefaultSampleSize, "Number of lines to sample")
	cmd.Flags().StringVarP(&opts.WriteConfig, "write-config", "w", "", "Write starter config to file (will not overwrite)")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, opts *DetectOptions) error {
	logFile := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	d := detector.New(detector.WithSampleSize(opts.SampleSize))

	result, err := d.DetectFromFile(ctx, logFile)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	out := cmd.OutOrStdout()

	if opts.WriteConfig != "" {
		if err := writeStarterConfig(out, result, logFile, opts.WriteConfig); err != nil {
			return err
		}
	}

	switch opts.Output {
	case "json":
		return outputDetectJSON(out, result, logFile)
	case "text":
		outputDetectText(out, result, logFile)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}
}

func outputDetectText(w io.Writer, result *detector.DetectionResult, logFile string) {
	fmt.Fprintln(w, "=== Line Format Detection ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "File: %s\n", logFile)
	fmt.Fprintf(w, "Lines sampled: %d\n", result.SampledLines)
	fmt.Fprintf(w, "Unrecognized lines: %d\n", result.Unrecognized)
	fmt.Fprintln(w)

	if !result.HasMatch() {
		fmt.Fprintln(w, "No known line format detected.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Every line will be counted as OTHER. Recognized formats are:")
		fmt.Fprintln(w, `  access:     1.2.3.4 - - [01/Jan/2024:10:00:00 +0000] "GET / HTTP/1.1" 200 512`)
		fmt.Fprintln(w, "  structured: 2024-01-01T10:00:00Z INFO 1.2.3.4 - message duration_ms=12")
		return
	}

	for _, m := range result.Matches {
		fmt.Fprintf(w, "Format: %s\n", m.Format)
		fmt.Fprintf(w, "Share: %.1f%% (%d/%d lines)\n", m.Share*100, m.MatchCount, result.SampledLines)
		fmt.Fprintf(w, "Sample match:\n  %s\n", truncate(m.SampleLine, 120))
		if m.TimestampLayout != "" {
			fmt.Fprintf(w, "Timestamp layout: %s\n", m.TimestampLayout)
			fmt.Fprintf(w, "Parsed as: %s\n", m.ParsedTime.Format("2006-01-02 15:04:05 MST"))
		} else {
			fmt.Fprintln(w, "Timestamp layout: none parsed")
		}
		if m.UnparsedTimestamps > 0 {
			fmt.Fprintf(w, "WARNING: %d timestamp(s) matched no layout; those lines are left out of errors per hour.\n",
				m.UnparsedTimestamps)
		}
		fmt.Fprintln(w)
	}

	if result.Unrecognized > 0 {
		fmt.Fprintf(w, "Sample unrecognized line:\n  %s\n", truncate(result.UnrecognizedSample, 120))
	}
}

// JSONMatch represents a format match in JSON output.
type JSONMatch struct {
	Format             string     `json:"format"`
	Share              float64    `json:"share"`
	MatchCount         int        `json:"match_count"`
	SampleLine         string     `json:"sample_line"`
	TimestampLayout    string     `json:"timestamp_layout,omitempty"`
	ParsedTime         *time.Time `json:"parsed_time,omitempty"`
	UnparsedTimestamps int        `json:"unparsed_timestamps"`
}

// JSONOutput represents the full JSON output.
type JSONOutput struct {
	File               string      `json:"file"`
	SampledLines       int         `json:"sampled_lines"`
	Unrecognized       int         `json:"unrecognized"`
	UnrecognizedSample string      `json:"unrecognized_sample,omitempty"`
	Matches            []JSONMatch `json:"matches"`
}

func outputDetectJSON(w io.Writer, result *detector.DetectionResult, logFile string) error {
	doc := JSONOutput{
		File:               logFile,
		SampledLines:       result.SampledLines,
		Unrecognized:       result.Unrecognized,
		UnrecognizedSample: result.UnrecognizedSample,
		Matches:            make([]JSONMatch, 0, len(result.Matches)),
	}

	for _, m := range result.Matches {
		jm := JSONMatch{
			Format:             string(m.Format),
			Share:              m.Share,
			MatchCount:         m.MatchCount,
			SampleLine:         m.SampleLine,
			TimestampLayout:    m.TimestampLayout,
			UnparsedTimestamps: m.UnparsedTimestamps,
		}
		if m.TimestampLayout != "" {
			ts := m.ParsedTime
			jm.ParsedTime = &ts
		}
		doc.Matches = append(doc.Matches, jm)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}

// writeStarterConfig writes the default configuration, annotated with what
// was detected in logFile.
func writeStarterConfig(w io.Writer, result *detector.DetectionResult, logFile, configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", configPath)
	}

	content, err := generateStarterConfig(result, logFile)
	if err != nil {
		return err
	}

	// #nosec G306 - config file doesn't need restrictive permissions
	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(w, "Wrote starter config to: %s\n\n", configPath)
	return nil
}

// generateStarterConfig renders DefaultConfig as YAML under a comment header.
func generateStarterConfig(result *detector.DetectionResult, logFile string) ([]byte, error) {
	body, err := yaml.Marshal(config.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("encoding starter config: %w", err)
	}

	header := fmt.Sprintf("# logdigest configuration\n# Generated by: logdigest detect %s\n", logFile)
	if best := result.BestMatch(); best != nil {
		header += fmt.Sprintf("# Detected format: %s (%.0f%% of sampled lines)\n", best.Format, best.Share*100)
	} else {
		header += "# Detected format: none\n"
	}
	header += `#
# Webhooks receive the JSON report after each analysis:
# webhooks:
#   - name: ops
#     url: https://hooks.example.com/logdigest
#     token: ${OPS_TOKEN}
#     trigger: on_errors
`

	return append([]byte(header+"\n"), body...), nil
}
