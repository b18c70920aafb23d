// truevalue is the batch CLI around the prediction and validation engine:
// compute a gameweek's predictions, backtest the formula over past
// gameweeks, or search parameter space for improvements.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fantasyedge/truevalue/internal/config"
	"github.com/fantasyedge/truevalue/internal/store"
	"github.com/fantasyedge/truevalue/internal/store/postgres"
)

var (
	flagConfig   string
	flagDSN      string
	flagRedis    string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "truevalue",
	Short: "Fantasy-football True Value prediction and validation engine",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(flagLogLevel)
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to parameter document (YAML); defaults are used when empty")
	rootCmd.PersistentFlags().StringVar(&flagDSN, "dsn", os.Getenv("TRUEVALUE_DSN"), "postgres DSN for the signal store")
	rootCmd.PersistentFlags().StringVar(&flagRedis, "redis-addr", os.Getenv("TRUEVALUE_REDIS"), "redis address for the prediction cache; disabled when empty")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level: debug|info|warn|error")

	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(backtestCmd)
	rootCmd.AddCommand(tuneCmd)
	rootCmd.AddCommand(healthCmd)
}

func setupLogging(level string) error {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(parsed)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	return nil
}

func loadParams() (config.Params, error) {
	if flagConfig == "" {
		return config.Default(), nil
	}
	return config.Load(flagConfig)
}

func openStore() (*postgres.Store, error) {
	if flagDSN == "" {
		return nil, fmt.Errorf("no store configured: pass --dsn or set TRUEVALUE_DSN")
	}
	return postgres.Open(flagDSN, 10*time.Second)
}

// wrapStore layers the optional Redis prediction cache over the store.
func wrapStore(pg *postgres.Store) store.Store {
	if flagRedis == "" {
		return pg
	}
	rdb := redis.NewClient(&redis.Options{Addr: flagRedis})
	return store.WithPredictionCache(pg, rdb, 15*time.Minute)
}
