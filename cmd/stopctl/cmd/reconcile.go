package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/stoptracker/internal/app"
	"github.com/MrJamesThe3rd/stoptracker/internal/reconcile"
)

func newReconcileCmd(rt *runtime) *cobra.Command {
	var (
		start    string
		end      string
		reported int
		invoice  string
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare logged stops with the count reported by the company",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if reported < 0 {
				return fmt.Errorf("--reported must not be negative")
			}

			from, err := rt.parseDate(start)
			if err != nil {
				return err
			}

			to, err := rt.parseDate(end)
			if err != nil {
				return err
			}

			var opts []reconcile.Option

			if invoice != "" {
				amount, err := decimal.NewFromString(invoice)
				if err != nil {
					return fmt.Errorf("invalid invoice amount %q: %w", invoice, err)
				}

				opts = append(opts, reconcile.WithInvoiceAmount(amount))
			}

			return rt.withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				records, err := a.Workdays.All(ctx, rt.scope)
				if err != nil {
					return err
				}

				c := reconcile.Reconcile(records, from, to, reported, opts...)

				accuracy := "-"
				if c.Accuracy != nil {
					accuracy = strconv.FormatFloat(*c.Accuracy, 'f', 1, 64) + "%"
				}

				rows := [][]string{
					{"Reported", strconv.Itoa(c.ExternalTotal)},
					{"Logged", strconv.Itoa(c.AppTotal)},
					{"Difference", fmt.Sprintf("%+d", c.Difference)},
					{"Accuracy", accuracy},
					{"Status", string(c.Status)},
					{"Earnings", c.AppEarnings.StringFixed(2)},
				}

				if c.InvoiceAmount != nil && c.EarningsDifference != nil {
					rows = append(rows,
						[]string{"Invoice", c.InvoiceAmount.StringFixed(2)},
						[]string{"Pay difference", c.EarningsDifference.StringFixed(2)},
					)
				}

				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "%s to %s\n", rt.formatDate(c.Start), rt.formatDate(c.End))
				printTable(w, []string{"", ""}, rows)

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "First day of the range")
	cmd.Flags().StringVar(&end, "end", "", "Last day of the range")
	cmd.Flags().IntVar(&reported, "reported", 0, "Stops reported by the company")
	cmd.Flags().StringVar(&invoice, "invoice", "", "Invoice amount to compare with logged earnings")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	_ = cmd.MarkFlagRequired("reported")

	return cmd
}
