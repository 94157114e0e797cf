package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/DanielPopoola/vpnshop-gateway/internal/infrastructure/persistence/postgres"
	"github.com/spf13/cobra"
)

func ledgerCmd() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "ledger [user_id]",
		Short: "List credentials issued to a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || userID <= 0 {
				return fmt.Errorf("invalid user id %q", args[0])
			}

			db, closeDB, err := connectDB(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			issuances, err := postgres.NewLedgerRepository(db).FindByUser(cmd.Context(), userID, limit)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(issuances)
			}
			return printIssuances(cmd.OutOrStdout(), issuances)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum rows")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "output as JSON")
	return cmd
}

func printIssuances(out io.Writer, issuances []postgres.Issuance) error {
	if len(issuances) == 0 {
		fmt.Fprintln(out, "no issuances")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CREDENTIAL\tPLAN\tSOURCE\tREFERENCE\tISSUED\tEXPIRES")
	for _, i := range issuances {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			i.CredentialID, i.Plan, i.Source, i.Reference,
			i.IssuedAt.UTC().Format(time.RFC3339), i.ExpiresAt.UTC().Format(time.RFC3339))
	}
	return w.Flush()
}
