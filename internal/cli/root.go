package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"invoice-import-backend/internal/apperrors"
	"invoice-import-backend/internal/config"
	"invoice-import-backend/internal/logger"
	service "invoice-import-backend/internal/services/importer"
)

var version = "dev"

// app holds what every command needs once the root pre-run has opened the
// database.
type app struct {
	configFile string
	database   string

	cfg *config.Config
	db  *gorm.DB
	svc *service.Service
}

// NewRootCommand builds the invoicer command tree.
func NewRootCommand() (*cobra.Command, func() error) {
	a := &app{}

	root := &cobra.Command{
		Use:   "invoicer",
		Short: "Import client profiles and time entries into invoices",
		Long: `invoicer validates a client profile (JSON) and a tab-separated
invoice data file and stores them as an invoice with its line items.

Examples:
  invoicer import acme.json invoice-data-3-31.txt
  invoicer list --customer-id 2
  invoicer show 1`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (optional)")
	root.PersistentFlags().StringVar(&a.database, "database", "", "database URL or SQLite file (overrides DATABASE_URL)")

	root.AddCommand(
		a.importCommand(),
		a.listCommand(),
		a.showCommand(),
		a.customersCommand(),
		a.runsCommand(),
		a.statusCommand(),
		a.serveCommand(),
	)
	return root, a.close
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	v, err := config.NewViper(a.configFile)
	if err != nil {
		return err
	}
	if err := v.BindPFlag("database_url", cmd.Root().PersistentFlags().Lookup("database")); err != nil {
		return err
	}
	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		return err
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}
	a.db = db
	if err := config.Migrate(cmd.Context(), db, cfg.Vendor); err != nil {
		return err
	}

	a.cfg = cfg
	a.svc = service.New(db)
	return nil
}

func (a *app) close() error {
	err := config.Close(a.db)
	a.db = nil
	return err
}

// Run executes the CLI with args and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	root, closeDB := NewRootCommand()
	defer closeDB()

	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return apperrors.ExitCode(err)
	}
	return 0
}

func Execute() {
	code := Run(os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}
