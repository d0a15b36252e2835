package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ccollicutt/logdigest/pkg/config"
	"github.com/ccollicutt/logdigest/pkg/digest"
	"github.com/ccollicutt/logdigest/pkg/output"
	"github.com/ccollicutt/logdigest/pkg/parser"
	"github.com/ccollicutt/logdigest/pkg/webhook"
)

// AnalyzeOptions holds command-line options for analyzing a log file.
type AnalyzeOptions struct {
	ConfigPath string
	Top        int
	Output     string
	Quiet      bool

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <log-file>",
		Short: "Analyze a log file and print a summary report",
		Long: `Analyze a log file and print a summary report.

Recognizes access-log lines and structured lines of the form
"<ISO-timestamp> <LEVEL> <ip> - <message>". The report contains:
  - Total lines and counts per level and HTTP status
  - Top client addresses and messages
  - ERROR lines per hour (UTC)
  - Slowest lines by duration_ms

Exit codes:
  0 - Report printed
  2 - Configuration or I/O error`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunAnalyze(cmd, args[0], opts)
		},
	}

	AddAnalyzeFlags(cmd.Flags(), opts)
	return cmd
}

// AddAnalyzeFlags registers the analysis flags on fs.
func AddAnalyzeFlags(fs *pflag.FlagSet, opts *AnalyzeOptions) {
	fs.StringVarP(&opts.ConfigPath, "config", "c", "", "Path to a YAML config file")
	fs.IntVar(&opts.Top, "top", digest.DefaultTop, "Number of entries in each ranked section")
	fs.StringVarP(&opts.Output, "output", "o", config.DefaultOutput, "Output format (text|json)")
	fs.BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no ranked sections")

	fs.StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	fs.StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	fs.StringVar(&opts.WebhookTrigger, "webhook-trigger", string(config.WebhookTriggerOnErrors),
		"When to fire webhook (on_errors|always|never)")
}

// RunAnalyze analyzes the file at path and writes the report to the
// command's output. Flags set explicitly win over the config file.
func RunAnalyze(cmd *cobra.Command, path string, opts *AnalyzeOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Resolve(ctx, opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	top := cfg.Top
	if cmd.Flags().Changed("top") {
		top = opts.Top
	}
	format := cfg.Output
	if cmd.Flags().Changed("output") {
		format = opts.Output
	}

	formatter, ok := output.NewFormatter(format, output.FormatOptions{Quiet: opts.Quiet})
	if !ok {
		return fmt.Errorf("unknown output format %q (use text or json)", format)
	}

	res, err := digest.Analyze(ctx, parser.NewFileSource(path), top)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if err := formatter.Format(ctx, res.Report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	// Webhook failures are reported but never fail the analysis.
	sendWebhooks(ctx, cmd, collectWebhooks(cfg, opts), res.Report)

	return nil
}

func sendWebhooks(ctx context.Context, cmd *cobra.Command, targets []config.WebhookConfig, report *output.Report) {
	if len(targets) == 0 {
		return
	}

	for _, d := range webhook.NewClient().Notify(ctx, report, targets) {
		if d.Success() {
			fmt.Fprintf(cmd.ErrOrStderr(), "Webhook %s: sent (%d, %s)\n", d.Name, d.StatusCode, d.Duration)
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "Webhook %s: failed (%v)\n", d.Name, d.Error)
		}
	}
}

// collectWebhooks merges config file webhooks with the one given on the command line.
func collectWebhooks(cfg *config.Config, opts *AnalyzeOptions) []config.WebhookConfig {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.WebhookURL != "" {
		trigger := config.WebhookTrigger(opts.WebhookTrigger)
		if trigger == "" {
			trigger = config.WebhookTriggerOnErrors
		}

		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return webhooks
}
