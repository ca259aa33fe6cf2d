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
	"github.com/MrJamesThe3rd/stoptracker/internal/workday"
)

func newAddCmd(rt *runtime) *cobra.Command {
	var (
		date  string
		stops int
		extra string
		notes string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log a workday",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("stops") {
				return workday.ErrMissingStops
			}

			d := civil.DateOf(time.Now())
			if date != "" {
				var err error
				if d, err = rt.parseDate(date); err != nil {
					return err
				}
			}

			x := decimal.Zero
			if extra != "" {
				var err error
				if x, err = decimal.NewFromString(extra); err != nil {
					return fmt.Errorf("invalid extra %q: %w", extra, err)
				}
			}

			return rt.withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				cfg, err := a.Settings.Get(ctx, rt.scope)
				if err != nil {
					return err
				}

				rec, err := a.Workdays.Add(ctx, rt.scope, cfg, workday.CreateParams{
					Date:  d,
					Stops: &stops,
					Extra: x,
					Notes: notes,
				})
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Logged %s: %d stops, total %s (%s)\n",
					rt.formatDate(rec.Date), rec.Stops, rec.Total.StringFixed(2), rec.ID)

				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "Workday date (defaults to today)")
	cmd.Flags().IntVarP(&stops, "stops", "s", 0, "Number of stops")
	cmd.Flags().StringVarP(&extra, "extra", "x", "", "Extra pay on top of the stop rate")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Free text notes")

	return cmd
}

func newListCmd(rt *runtime) *cobra.Command {
	var (
		sortBy  string
		order   string
		page    int
		perPage int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List logged workdays",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				p, err := a.Workdays.List(ctx, rt.scope, workday.ListOptions{
					SortBy:  workday.SortField(sortBy),
					Order:   workday.Order(order),
					Page:    page,
					PerPage: perPage,
				})
				if err != nil {
					return err
				}

				if p.Total == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No workdays logged.")
					return nil
				}

				rows := make([][]string, 0, len(p.Records))
				for _, r := range p.Records {
					rows = append(rows, []string{
						rt.formatDate(r.Date),
						strconv.Itoa(r.Stops),
						r.Extra.StringFixed(2),
						r.Total.StringFixed(2),
						r.Notes,
						r.ID.String(),
					})
				}

				printTable(cmd.OutOrStdout(), []string{"Date", "Stops", "Extra", "Total", "Notes", "ID"}, rows)
				fmt.Fprintf(cmd.OutOrStdout(), "Page %d of %d, %d workdays\n", p.Page, max(p.TotalPages, 1), p.Total)

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&sortBy, "sort", string(workday.SortByDate), "Sort by date, stops or total")
	cmd.Flags().StringVar(&order, "order", string(workday.OrderDesc), "asc or desc")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&perPage, "per-page", workday.DefaultPerPage, "Rows per page")

	return cmd
}

func newRemoveCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a workday",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}

			return rt.withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if err := a.Workdays.Delete(ctx, rt.scope, id); err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), "Deleted", id)

				return nil
			})
		},
	}
}
