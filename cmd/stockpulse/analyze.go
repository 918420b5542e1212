package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"StockPulse/internal/analysis"
	"StockPulse/internal/model"
	"StockPulse/internal/notifier"
	"StockPulse/internal/report"
	"StockPulse/internal/scheduler"
)

func init() {
	analyzeCmd.Flags().Bool("no-commentary", false, "skip the language model commentary")
	analyzeCmd.Flags().String("chart", "", "write the price chart as PNG to this path")
	analyzeCmd.Flags().Int("rows", report.DefaultRows, "number of recent sessions to print")
	analyzeCmd.Flags().Bool("json", false, "print the summary as JSON")
	analyzeCmd.Flags().Bool("notify", false, "also send the report to the Telegram chat")
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [TICKER]",
	Short: "compute indicators and the latest signal for a ticker",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		noCommentary, err := cmd.Flags().GetBool("no-commentary")
		if err != nil {
			return err
		}
		chartPath, err := cmd.Flags().GetString("chart")
		if err != nil {
			return err
		}
		rows, err := cmd.Flags().GetInt("rows")
		if err != nil {
			return err
		}
		asJSON, err := cmd.Flags().GetBool("json")
		if err != nil {
			return err
		}
		notify, err := cmd.Flags().GetBool("notify")
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if notify {
			if err := cfg.ValidateWatch(); err != nil {
				return err
			}
		}

		symbol := cfg.Symbol
		if len(args) > 0 {
			symbol = args[0]
		}

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		r, err := a.service.Run(ctx, symbol, !noCommentary)
		if err != nil {
			var nd *model.NoDataError
			if errors.As(err, &nd) {
				fmt.Fprintln(os.Stderr, model.NoDataMessage)
			}
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(r.Summary); err != nil {
				return err
			}
		} else {
			printReport(cmd, r, rows)
		}

		if chartPath != "" {
			var buf bytes.Buffer
			if err := report.Chart(r.Analysis).RenderPNG(&buf); err != nil {
				log.WithError(err).Warn("render chart")
			} else if err := os.WriteFile(chartPath, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write chart: %w", err)
			} else {
				log.Infof("chart written to %s", chartPath)
			}
		}

		if notify {
			tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
			err := tn.SendWithRetry(ctx, notifier.FormatReport(r), 3)
			a.metrics.ObserveNotification(scheduler.KindReport, err)
			if err != nil {
				return err
			}
		}
		return nil
	},
}

func printReport(cmd *cobra.Command, r *analysis.Report, rows int) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, report.FormatLatest(r.Summary))
	fmt.Fprintln(out)

	switch {
	case r.CommentaryErr != nil:
		fmt.Fprintf(out, "Không thể tạo nhận định: %v\n\n", r.CommentaryErr)
	case r.Commentary != "":
		fmt.Fprintln(out, r.Commentary)
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, report.RenderText(r.Analysis, rows))
	for _, w := range r.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
}
