package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/panuwat93/smpk-duty-roster/cmd/cli/commands"
	"github.com/panuwat93/smpk-duty-roster/internal/config"
	"github.com/panuwat93/smpk-duty-roster/pkg/db"
	"github.com/panuwat93/smpk-duty-roster/pkg/realtime"
	"github.com/panuwat93/smpk-duty-roster/pkg/utils/logging"
)

var (
	env string
	app = &commands.AppContext{}
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cli",
		Short: "Duty roster CLI - Manage shift exchange requests",
		Long:  `A CLI tool for submitting, reviewing and deciding shift exchange and give-away requests against the department duty roster.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Logger != nil {
				app.Logger.Sync()
			}
			if app.Hub != nil {
				app.Hub.Close()
			}
		},
	}

	// Add persistent environment flag
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (test, prod, etc.)")

	// Add all commands
	rootCmd.AddCommand(commands.SubmitExchangeCmd(app))
	rootCmd.AddCommand(commands.SubmitGiveCmd(app))
	rootCmd.AddCommand(commands.ListRequestsCmd(app))
	rootCmd.AddCommand(commands.ReviewCmd(app))
	rootCmd.AddCommand(commands.ApproveCmd(app))
	rootCmd.AddCommand(commands.RejectCmd(app))
	rootCmd.AddCommand(commands.ShowRosterCmd(app))
	rootCmd.AddCommand(commands.ServeCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, store and the realtime hub
func initApp() error {
	var err error
	app.Ctx = context.Background()

	// Initialize logger
	app.Logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	// Load configuration
	app.Logger.Info("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully",
		zap.String("department", app.Cfg.Department))

	// Initialize store
	if app.Cfg.DatabaseURL != "" {
		app.Logger.Info("Connecting to database")
		pool, err := db.Connect(app.Ctx, app.Cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		pg := db.NewPostgres(pool)
		if err := pg.EnsureSchema(app.Ctx); err != nil {
			return err
		}
		app.Store = pg
		app.Logger.Info("Database initialized successfully")
	} else {
		app.Store = db.NewMemory()
		app.Logger.Warn("No databaseURL configured, using in-memory store (data is not persisted)")
	}

	// Initialize realtime hub
	app.Hub = realtime.NewHub()

	return nil
}
