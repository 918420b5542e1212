package main

import (
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"StockPulse/internal/config"
)

var RootCmd = &cobra.Command{
	Use:   "stockpulse",
	Short: "technical indicators and EMA crossover signals for Vietnamese stocks",

	// SilenceUsage is an option to silence usage when an error occurs.
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().Bool("debug", false, "debug flag")
	RootCmd.PersistentFlags().String("config", "configs/config.yaml", "config file")
	RootCmd.PersistentFlags().String("dotenv", ".env", "dotenv file loaded before the config")
	RootCmd.PersistentFlags().String("provider", "", "price provider: vndirect, yahoo or mock")

	RootCmd.AddCommand(analyzeCmd, serveCmd, watchCmd)
}

// loadConfig reads .env, the YAML config and flag overrides, and sets up logging.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(viper.GetString("dotenv")); err != nil {
		return nil, err
	}
	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return nil, err
	}
	if p := viper.GetString("provider"); p != "" {
		cfg.Provider.Name = p
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.WithError(err).Warnf("unknown log level %q, using info", cfg.Log.Level)
		level = log.InfoLevel
	}
	if viper.GetBool("debug") {
		level = log.DebugLevel
	}
	log.SetLevel(level)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Execute() error {
	viper.SetEnvPrefix("STOCKPULSE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// Enable environment variable binding, the env vars are not overloaded yet.
	viper.AutomaticEnv()

	// Once the flags are defined, we can bind config keys with flags.
	if err := viper.BindPFlags(RootCmd.PersistentFlags()); err != nil {
		log.WithError(err).Errorf("failed to bind persistent flags. please check the flag settings.")
	}

	log.SetFormatter(&prefixed.TextFormatter{FullTimestamp: true})

	return RootCmd.Execute()
}
