package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshdurbin/fitness-wrapped/internal/config"
	"github.com/joshdurbin/fitness-wrapped/internal/logging"
)

// version is set at build time with -ldflags "-X .../internal/cmd.version=..."
var version = "dev"

var (
	verbosity  int
	configPath string
	dbPath     string
	logFormat  string

	// cfg is loaded by the root PersistentPreRunE before any subcommand runs
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "fitness-wrapped",
	Short: "Fitness Wrapped - a year in review of your workouts",
	Long: `Fitness Wrapped imports activity and wellness exports (FIT, Garmin Connect CSV
and JSON) into a local SQLite database and turns each calendar year into a
"year in review": totals, per-sport statistics, personal records, calendar
patterns, wellness insights, a training personality and achievement badges.

Summaries can be printed in the terminal, exported, published to Kafka or
served to AI assistants over the Model Context Protocol (MCP).

Settings are read from .fitness-wrapped.yaml in the current directory or
$HOME (or --config), overridden by FITNESS_WRAPPED_* environment variables
and finally by command line flags.
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("db") {
			loaded.DB.Path = dbPath
		}
		if cmd.Flags().Changed("log-format") {
			loaded.Log.Format = logFormat
		}

		format, err := logging.ParseFormat(loaded.Log.Format)
		if err != nil {
			return err
		}
		logging.Setup(logging.Level(verbosity), format)

		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase verbosity (-v for debug, -vv for trace with payload dumps)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default .fitness-wrapped.yaml in . or $HOME)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", config.DefaultDBPath, "path to SQLite database file")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", config.DefaultLogFormat, "log output format (console or json)")

	rootCmd.AddCommand(serveCmd, importCmd, summaryCmd, compareCmd, exportCmd, checkConfigCmd)
	rootCmd.Version = version
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
