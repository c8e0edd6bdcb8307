package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"broker-crm/internal/config"
	"broker-crm/internal/database"
	"broker-crm/internal/features/audit"
	"broker-crm/internal/features/email_template"
	"broker-crm/internal/features/field_catalog"
	"broker-crm/internal/features/record"
	"broker-crm/internal/migration"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose bool
	timeout time.Duration

	logger *zap.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "One-off data migrations for the broker CRM",
	Long: `Seeds the merge-field catalog and email templates from YAML fixtures
and imports contacts from the legacy Postgres backend.

Every command runs as a list of steps. When a step fails, the steps
already completed are undone in reverse order.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewDevelopmentConfig()
		if !verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
		var err error
		if logger, err = zc.Build(); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		cfg, err = config.LoadConfig()
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var seedFieldsCmd = &cobra.Command{
	Use:   "seed-fields <fixture.yaml>",
	Short: "Upsert merge field definitions by name",
	Args:  cobra.ExactArgs(1),
	RunE: withDatabase(func(ctx context.Context, db *database.MongodbDB, args []string) error {
		fields, err := migration.LoadFieldFixture(args[0])
		if err != nil {
			return err
		}
		repo := field_catalog.NewFieldRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return err
		}
		svc := field_catalog.NewFieldService(repo, auditService(db), logger)
		n, err := svc.Seed(ctx, fields)
		if err != nil {
			return err
		}
		logger.Info("seeded fields", zap.Int("count", n))
		return nil
	}),
}

var seedTemplatesCmd = &cobra.Command{
	Use:   "seed-templates <fixture.yaml>",
	Short: "Create or overwrite email templates by name",
	Args:  cobra.ExactArgs(1),
	RunE: withDatabase(func(ctx context.Context, db *database.MongodbDB, args []string) error {
		templates, err := migration.LoadTemplateFixture(args[0])
		if err != nil {
			return err
		}
		seed := migration.NewTemplateSeed(email_template.NewEmailTemplateRepository(db), auditService(db), logger)
		return seed.Plan(templates).Run(ctx)
	}),
}

var importContactsCmd = &cobra.Command{
	Use:   "import-contacts",
	Short: "Replace contacts with the legacy contacts table",
	Long: `Reads every row of the legacy contacts table (LEGACY_DATABASE_URL),
deletes the current contacts and inserts the legacy rows. The legacy row
id is kept as legacy_id. A failed insert restores the previous contacts.`,
	RunE: withDatabase(func(ctx context.Context, db *database.MongodbDB, args []string) error {
		legacy, err := migration.OpenLegacyDB(ctx, cfg.LegacyDatabaseURL)
		if err != nil {
			return err
		}
		defer legacy.Close()

		imp := migration.NewContactImport(legacy, record.NewRecordRepository(db), auditService(db), logger)
		return imp.Plan().Run(ctx)
	}),
}

func auditService(db *database.MongodbDB) audit.AuditService {
	return audit.NewAuditService(audit.NewAuditRepository(db), logger)
}

// withDatabase connects to Mongo for the duration of one command.
func withDatabase(run func(ctx context.Context, db *database.MongodbDB, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		db, err := database.Connect(ctx, cfg.MongoURI, cfg.DBName)
		if err != nil {
			return fmt.Errorf("failed to connect to mongo: %w", err)
		}
		defer func() {
			_ = db.Client.Disconnect(context.Background())
		}()
		return run(ctx, db, args)
	}
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "overall deadline")
	rootCmd.AddCommand(seedFieldsCmd, seedTemplatesCmd, importContactsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
