// Package cli provides the command-line interface for dbview.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joacominatel/dbview/internal/app"
	"github.com/joacominatel/dbview/internal/config"
	"github.com/joacominatel/dbview/internal/database"
	"github.com/joacominatel/dbview/internal/database/mysql"
	"github.com/joacominatel/dbview/internal/database/postgres"
	"github.com/joacominatel/dbview/internal/database/sqlite"
	"github.com/joacominatel/dbview/internal/logging"
	"github.com/joacominatel/dbview/internal/report"
	"github.com/joacominatel/dbview/internal/tui"
	"github.com/spf13/cobra"
)

const connectTimeout = 10 * time.Second

// Version information (set at build time).
var Version = "0.1.0"

// runViewer starts the interactive viewer. Replaced in tests.
var runViewer = tui.Run

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "dbview",
		Short: "Browse the tables of a MySQL, PostgreSQL or SQLite database",
		Long: `dbview connects to a database, lists its tables and shows their rows.

By default the first rows of every table are printed as a grid. With --gui
an interactive viewer lists the tables and opens one on Enter or
double-click.`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, cfgFile)
			if err != nil {
				return err
			}
			return run(cmd, cfg)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.dbview/config.yaml)")
	config.RegisterFlags(rootCmd.PersistentFlags())

	_ = rootCmd.RegisterFlagCompletionFunc("driver", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.DriverMySQL, config.DriverPostgres, config.DriverSQLite}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.FormatTable, config.FormatMarkdown, config.FormatCSV}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newPasswordCmd(&cfgFile))

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func loadConfig(cmd *cobra.Command, path string) (*config.Config, error) {
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, &app.ErrConfig{Cause: err}
	}
	return cfg, nil
}

func run(cmd *cobra.Command, cfg *config.Config) error {
	gui := cfg.Preferences.ShowGUI

	// the viewer owns the terminal, so it only logs to a file
	var fallback io.Writer = cmd.ErrOrStderr()
	if gui {
		fallback = nil
	}
	logger, closeLog, err := logging.Open(cfg.Preferences.LogFile, cfg.Preferences.LogLevel, fallback)
	if err != nil {
		return &app.ErrConfig{Cause: err}
	}
	defer func() { _ = closeLog() }()

	conn := cfg.Connection
	if conn.Password == "" && conn.Driver != config.DriverSQLite {
		pw, err := config.LookupPassword(conn)
		if err != nil {
			logger.Warn("keyring unavailable", "error", err)
		}
		conn.Password = pw
	}

	driver, err := newDriver(conn.Driver)
	if err != nil {
		return err
	}
	svc := app.NewService(driver, logger)

	ctx, cancel := context.WithTimeout(cmd.Context(), connectTimeout)
	err = svc.Connect(ctx, conn.DSN())
	cancel()
	if err != nil {
		logger.Error("connect failed", "target", conn.DisplayString(), "error", err)
		return err
	}
	defer func() {
		if err := svc.Disconnect(); err != nil {
			logger.Warn("disconnect failed", "error", err)
		}
	}()
	logger.Info("connected", "target", conn.DisplayString(), "database", svc.DatabaseName())

	if gui {
		return runViewer(svc, tui.Options{
			PreferredTable: cfg.Preferences.PreferredTable,
			Logger:         logger,
		})
	}

	printer := report.New(svc, cmd.OutOrStdout(), report.Options{
		Limit:  cfg.Preferences.PreviewLimit,
		Format: cfg.Preferences.Format,
		Logger: logger,
	})
	return printer.PrintAll(cmd.Context())
}

func newDriver(kind string) (database.Driver, error) {
	switch kind {
	case config.DriverMySQL:
		return mysql.New(), nil
	case config.DriverPostgres:
		return postgres.New(), nil
	case config.DriverSQLite:
		return sqlite.New(), nil
	default:
		return nil, &app.ErrConfig{Cause: errors.New("unsupported driver " + kind)}
	}
}
