package main

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"adalock.dev/market/config"
	"adalock.dev/market/store"
)

var (
	flagDataDir  string
	flagLogLevel string

	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "marketd",
	Short: "Escrow listing index",
	Long:  "Tracks escrowed marketplace listings and settled sales in a local index.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(flagLogLevel)))
		if err != nil {
			return err
		}
		logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
		return nil
	},
}

func openIndex() (*store.DB, error) {
	return store.Open(flagDataDir)
}

func main() {
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "datadir", config.DefaultDataDir(), "index data directory")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level: debug|info|warn|error")
	rootCmd.AddCommand(trackCmd, showCmd, settleCmd, listCmd, verifyCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
