package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/warp/worktime-engine/config"
	"github.com/warp/worktime-engine/store/sqlite"
	"github.com/warp/worktime-engine/tracker"
)

// app is what PersistentPreRunE opens for every subcommand.
type app struct {
	cfg     *config.Config
	store   *sqlite.Store
	service *tracker.Service
}

// close releases the store. Safe to call more than once.
func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

func newRootCmd(a *app) *cobra.Command {
	var (
		configPath string
		dbPath     string
		verbose    bool
	)

	rootCmd := &cobra.Command{
		Use:   "worktime",
		Short: "Track working hours, overtime, and absences",
		Long: `worktime records work intervals and absence days in a local SQLite
database and reports overtime per day, week, month, and overall.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a.cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			if dbPath != "" {
				a.cfg.DatabasePath = dbPath
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			defaults, err := a.cfg.Settings()
			if err != nil {
				return err
			}

			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			a.store, err = sqlite.New(a.cfg.DatabasePath)
			if err != nil {
				return err
			}
			a.service = tracker.New(a.store, logger)
			a.service.Defaults = defaults
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "worktime.yaml", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(newStatsCmd(a))
	rootCmd.AddCommand(newReportCmd(a))
	rootCmd.AddCommand(newAbsencesCmd(a))
	rootCmd.AddCommand(newLogCmd(a))
	rootCmd.AddCommand(newAbsenceCmd(a))
	rootCmd.AddCommand(newExportCmd(a))
	rootCmd.AddCommand(newImportCmd(a))

	return rootCmd
}

func execute(args []string, stdout, stderr io.Writer) error {
	return executeApp(&app{}, args, stdout, stderr)
}

// executeApp runs the root command and closes the store even when a
// subcommand fails, since cobra skips PersistentPostRunE on errors.
func executeApp(a *app, args []string, stdout, stderr io.Writer) error {
	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()
	if closeErr := a.close(); err == nil {
		err = closeErr
	}
	return err
}

func main() {
	if err := execute(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
