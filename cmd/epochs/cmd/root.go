package cmd

import (
	"os"

	"github.com/dgraph-io/badger/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	flagDataDir  string
	flagLogLevel string

	log zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "epochs",
	Short: "Operate and inspect the epoch and DKG state machines",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogger()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "datadir", "d", "./epochs-db",
		"directory of the badger database holding the epoch and DKG state")
	rootCmd.PersistentFlags().StringVarP(&flagLogLevel, "loglevel", "l", "info",
		"log level (panic, fatal, error, warn, info, debug)")
}

func initLogger() {
	level, err := zerolog.ParseLevel(flagLogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// openDB opens the badger database under the data directory.
func openDB() (*badger.DB, error) {
	opts := badger.
		DefaultOptions(flagDataDir).
		WithLogger(nil)
	return badger.Open(opts)
}
