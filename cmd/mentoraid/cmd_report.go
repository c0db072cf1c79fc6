package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/mentoraid/report"
)

func newReportCmd(a *app) *cobra.Command {
	var flags struct {
		html     string
		markdown string
		noChart  bool
	}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate the model documentation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := report.Options{
				HTMLPath:     a.cfg.Report.HTMLPath,
				MarkdownPath: a.cfg.Report.MarkdownPath,
				ChartPath:    a.cfg.Report.ChartPath,
				Logger:       a.logger,
			}
			if flags.html != "" {
				opts.HTMLPath = flags.html
			}
			if flags.markdown != "" {
				opts.MarkdownPath = flags.markdown
			}
			if flags.noChart {
				opts.ChartPath = ""
			}
			if err := report.Generate(opts, time.Now()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Documentation saved to: %s\n", opts.HTMLPath)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.html, "html", "", "HTML output path (default from config)")
	f.StringVar(&flags.markdown, "markdown", "", "Also write Markdown to this path")
	f.BoolVar(&flags.noChart, "no-chart", false, "Skip the accuracy chart")
	return cmd
}
