package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/stoptracker/internal/app"
	"github.com/MrJamesThe3rd/stoptracker/internal/expense"
)

func newExpenseCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "expense",
		Aliases: []string{"expenses"},
		Short:   "Manage work expenses",
	}

	cmd.AddCommand(
		newExpenseAddCmd(rt),
		newExpenseListCmd(rt),
		newExpenseRemoveCmd(rt),
		newExpenseCategoriesCmd(),
	)

	return cmd
}

func newExpenseAddCmd(rt *runtime) *cobra.Command {
	var (
		date        string
		category    string
		amount      string
		description string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := civil.DateOf(time.Now())
			if date != "" {
				var err error
				if d, err = rt.parseDate(date); err != nil {
					return err
				}
			}

			params := expense.CreateParams{
				Date:        d,
				Category:    expense.Category(category),
				Description: description,
			}

			if amount != "" {
				v, err := decimal.NewFromString(amount)
				if err != nil {
					return fmt.Errorf("invalid amount %q: %w", amount, err)
				}

				params.Amount = &v
			}

			return rt.withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				rec, err := a.Expenses.Add(ctx, rt.scope, params)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s %s on %s (%s)\n",
					rec.Category, rec.Amount.StringFixed(2), rt.formatDate(rec.Date), rec.ID)

				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "Expense date (defaults to today)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category, see 'expense categories'")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount spent")
	cmd.Flags().StringVar(&description, "description", "", "What it was for")

	return cmd
}

func newExpenseListCmd(rt *runtime) *cobra.Command {
	var summary bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				records, err := a.Expenses.All(ctx, rt.scope)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()

				if summary {
					s := expense.Summarize(records)

					rows := make([][]string, 0, len(s.Categories)+1)
					for _, ct := range s.Categories {
						rows = append(rows, []string{string(ct.Category), strconv.Itoa(ct.Count), ct.Total.StringFixed(2)})
					}

					rows = append(rows, []string{"Total", strconv.Itoa(len(records)), s.Total.StringFixed(2)})
					printTable(w, []string{"Category", "Count", "Total"}, rows)

					return nil
				}

				if len(records) == 0 {
					fmt.Fprintln(w, "No expenses recorded.")
					return nil
				}

				rows := make([][]string, 0, len(records))
				for _, r := range records {
					rows = append(rows, []string{
						rt.formatDate(r.Date),
						string(r.Category),
						r.Amount.StringFixed(2),
						r.Description,
						r.ID.String(),
					})
				}

				printTable(w, []string{"Date", "Category", "Amount", "Description", "ID"}, rows)

				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&summary, "summary", false, "Show totals per category instead")

	return cmd
}

func newExpenseRemoveCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}

			return rt.withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if err := a.Expenses.Delete(ctx, rt.scope, id); err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), "Deleted", id)

				return nil
			})
		},
	}
}

func newExpenseCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the suggested expense categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, c := range expense.Categories() {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}

			return nil
		},
	}
}
