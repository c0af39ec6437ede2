package worker

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fundhive/fundhive/internal/infrastructure/config"
	"github.com/fundhive/fundhive/internal/infrastructure/database"
	"github.com/fundhive/fundhive/internal/interfaces/cli/server"
	httpRouter "github.com/fundhive/fundhive/internal/interfaces/http"
	"github.com/fundhive/fundhive/internal/shared/logger"
	"github.com/fundhive/fundhive/internal/shared/version"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run background jobs",
		Long:  `Deliver scheduled notification mail, reconcile pending payments and end expired campaigns.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(server.MapEnvToGinMode(env))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.Logger, cfg.Server.Mode); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	log := logger.NewLogger()
	log.Infow("starting worker", "environment", env, "version", version.String())

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Errorw("failed to close database", "error", err)
		}
	}()

	container, err := httpRouter.NewContainer(database.Get(), cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build service container: %w", err)
	}
	defer container.Close()

	container.Scheduler().Start()
	log.Infow("worker started", "jobs", len(container.Scheduler().Jobs()))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	log.Infow("received shutdown signal", "signal", sig.String())
	return nil
}
