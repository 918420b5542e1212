package main

import (
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"StockPulse/internal/notifier"
	"StockPulse/internal/scheduler"
)

func init() {
	watchCmd.Flags().Bool("run-on-start", false, "send a report immediately after start")
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "run scheduled reports, signal alerts and Telegram commands",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runOnStart, err := cmd.Flags().GetBool("run-on-start")
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.ValidateWatch(); err != nil {
			return err
		}
		loc, err := cfg.Location()
		if err != nil {
			return err
		}

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sched := scheduler.NewScheduler(ctx, a.service, tn, a.recorder, a.metrics, cfg.Symbol, loc)
		if err := sched.RegisterAll(cfg.Schedule.ReportCron, cfg.Schedule.SignalCron); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()

		go tn.StartPolling(ctx, sched.HandleCommand)

		if runOnStart {
			go sched.RunNow()
		}

		log.Infof("watching %s, report %q, signal %q (%s)", cfg.Symbol, cfg.Schedule.ReportCron, cfg.Schedule.SignalCron, loc)
		<-ctx.Done()
		log.Info("shutting down")
		return nil
	},
}
