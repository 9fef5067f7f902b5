package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"StockPulse/internal/di"
	"StockPulse/internal/domain/models"
	"StockPulse/internal/usecase"
)

func analyzeCmd(load configLoader) *cobra.Command {
	var (
		deadline time.Duration
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "analyze <query>",
		Short: "Build a report for a security code or name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return fmt.Errorf("config load failed: %w", err)
			}
			// stdout carries the report
			if cfg.Log.Output == "" || cfg.Log.Output == "stdout" {
				cfg.Log.Output = "stderr"
			}
			analyzer, cleanup, err := di.InitializeAnalyzer(cfg)
			if err != nil {
				return fmt.Errorf("analyzer initialization failed: %w", err)
			}
			defer cleanup()

			report, err := analyzer.Analyze(cmd.Context(), strings.Join(args, " "), usecase.AnalyzeOptions{Deadline: deadline})
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			return writeSummary(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().DurationVar(&deadline, "deadline", 0, "overall deadline (0 uses the configured default)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full report as JSON")
	return cmd
}

func writeJSON(w io.Writer, r *models.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func writeSummary(w io.Writer, r *models.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	p := r.Profile

	name := ""
	if p.Spot != nil {
		name = p.Spot.Name
	}
	fmt.Fprintf(tw, "%s\t%s\n", p.Code, name)
	if s := p.Spot; s != nil {
		fmt.Fprintf(tw, "price\t%s\n", num(s.LastPrice))
		fmt.Fprintf(tw, "change %%\t%s\n", num(s.ChangePercent))
		fmt.Fprintf(tw, "turnover %%\t%s\n", num(s.TurnoverRate))
		fmt.Fprintf(tw, "volume ratio\t%s\n", num(s.VolumeRatio))
	}
	if v := p.Valuation; v != nil {
		fmt.Fprintf(tw, "pe ttm\t%s\t%s\n", num(v.PE), v.Date.Format("2006-01-02"))
	}
	if f := p.Financials; f != nil {
		fmt.Fprintf(tw, "roe\t%s\t%s\n", num(f.ROE), f.ReportDate.Format("2006-01-02"))
	}
	fmt.Fprintln(tw)
	for _, s := range r.Signals {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Name, s.Label, s.Threshold)
	}
	if len(p.News) > 0 {
		fmt.Fprintln(tw)
		for _, n := range p.News {
			fmt.Fprintf(tw, "%s\t%s\n", n.PublishedAt.Format("2006-01-02 15:04"), n.Title)
		}
	}
	for _, c := range models.Categories {
		if reason, ok := p.Absent[c]; ok {
			fmt.Fprintf(tw, "absent %s\t%s\n", c, reason)
		}
	}
	return tw.Flush()
}

func num(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
