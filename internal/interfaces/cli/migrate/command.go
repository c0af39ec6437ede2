package migrate

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/fundhive/fundhive/internal/infrastructure/config"
	"github.com/fundhive/fundhive/internal/infrastructure/database"
	"github.com/fundhive/fundhive/internal/infrastructure/migration"
	"github.com/fundhive/fundhive/internal/interfaces/cli/server"
	"github.com/fundhive/fundhive/internal/shared/logger"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Create or update the campaign, donation, ledger, activity and mail job tables.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	cmd.AddCommand(
		newUpCommand(),
		newStatusCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply the schema",
		Long:  `Create missing tables, columns and indexes for every model.`,
		RunE:  runUp,
	}
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Long:  `List every model table and whether it exists in the configured database.`,
		RunE:  runStatus,
	}
}

func initEnv() (logger.Interface, error) {
	cfg, err := config.Load(server.MapEnvToGinMode(env))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.Logger, cfg.Server.Mode); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return logger.NewLogger(), nil
}

func runUp(cmd *cobra.Command, args []string) error {
	log, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	log.Infow("running up migrations", "environment", env)

	if err := migration.NewManager(log).Migrate(database.Get()); err != nil {
		return err
	}

	log.Infow("migrations completed successfully")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	if _, err := initEnv(); err != nil {
		return err
	}
	defer database.Close()

	rows, err := tableStatus(database.Get())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TABLE\tSTATUS\n")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\n", r.table, r.status)
	}
	return w.Flush()
}

type tableRow struct {
	table  string
	status string
}

func tableStatus(db *gorm.DB) ([]tableRow, error) {
	migrator := db.Migrator()
	rows := make([]tableRow, 0, len(migration.AutoMigrateModels()))
	for _, model := range migration.AutoMigrateModels() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("failed to parse model %T: %w", model, err)
		}

		status := "missing"
		if migrator.HasTable(model) {
			status = "present"
		}
		rows = append(rows, tableRow{table: stmt.Schema.Table, status: status})
	}
	return rows, nil
}
