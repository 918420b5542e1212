package main

import (
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"StockPulse/internal/server"
)

func init() {
	serveCmd.Flags().String("addr", "", "listen address, overrides server.addr")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve the dashboard and JSON API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		addr, err := cmd.Flags().GetString("addr")
		if err != nil {
			return err
		}
		if addr == "" {
			addr = cfg.Server.Addr
		}

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(a.service, a.registry, cfg.Symbol, cfg.Server.Timeout)
		err = srv.ListenAndServe(ctx, addr)
		log.Info("server stopped")
		return err
	},
}
