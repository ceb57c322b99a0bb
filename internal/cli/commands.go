package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"invoice-import-backend/internal/apperrors"
	"invoice-import-backend/internal/logger"
	"invoice-import-backend/internal/routes"
	"invoice-import-backend/internal/validators"
)

func (a *app) importCommand() *cobra.Command {
	var (
		year   int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "import <client-profile.json> <invoice-data-M-D.txt>",
		Short: "Validate and store one invoice",
		Long: `Import reads the client profile and the data file, derives the
invoice number and dates from the data file name, and stores the customer,
the invoice and its items. Nothing is written when any input is invalid.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.svc.ImportFiles(cmd.Context(), args[0], args[1], year)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, data)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Invoice %s imported (Total: %s)\n",
				data.InvoiceNumber, validators.FormatMoney(data.Total))
			fmt.Fprintf(cmd.OutOrStdout(), "Output name: %s\n", data.BaseFilename())
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "year for the M-D token (default: current year)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the assembled invoice as JSON")
	return cmd
}

func (a *app) listCommand() *cobra.Command {
	var customerID uint
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List invoices, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter *uint
			if cmd.Flags().Changed("customer-id") {
				filter = &customerID
			}
			invoices, err := a.svc.ListInvoices(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return writeJSON(cmd, invoices)
		},
	}
	cmd.Flags().UintVar(&customerID, "customer-id", 0, "only invoices for this customer")
	return cmd
}

func (a *app) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <invoice-id>",
		Short: "Print one invoice with its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return apperrors.Validation("invoice id must be a positive number", err).WithContext("value", args[0])
			}
			data, err := a.svc.GetInvoice(cmd.Context(), uint(id))
			if err != nil {
				return err
			}
			return writeJSON(cmd, data)
		},
	}
}

func (a *app) customersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "customers",
		Short: "List customers by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			customers, err := a.svc.ListCustomers(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd, customers)
		},
	}
}

func (a *app) runsCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent import attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runs, err := a.svc.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return writeJSON(cmd, runs)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show")
	return cmd
}

func (a *app) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the database and count invoices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := a.svc.Status(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd, status)
		},
	}
}

func (a *app) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := logger.WithComponent("server")
			r := routes.NewRouter(a.cfg.CORSOrigins, a.svc)
			log.Info().Str("addr", a.cfg.Addr()).Msg("starting server")
			return r.Run(a.cfg.Addr())
		},
	}
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
