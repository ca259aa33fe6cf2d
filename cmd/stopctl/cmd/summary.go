package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/stoptracker/internal/aggregate"
	"github.com/MrJamesThe3rd/stoptracker/internal/app"
	"github.com/MrJamesThe3rd/stoptracker/internal/workday"
)

func newSummaryCmd(rt *runtime) *cobra.Command {
	var (
		by           string
		trend        int
		distribution bool
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show earnings and stops, overall or per period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				records, err := a.Workdays.All(ctx, rt.scope)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()

				if len(records) == 0 {
					fmt.Fprintln(w, "No workdays logged.")
					return nil
				}

				if distribution {
					rows := [][]string{}
					for _, b := range aggregate.Bucketize(records) {
						rows = append(rows, []string{b.Label, strconv.Itoa(b.Count), strconv.FormatFloat(b.Percentage, 'f', 1, 64) + "%"})
					}

					printTable(w, []string{"Stops", "Days", "Share"}, rows)

					return nil
				}

				if by == "" {
					rt.printOverview(cmd, records)
					return nil
				}

				fn, err := aggregate.PeriodByName(by)
				if err != nil {
					return err
				}

				summaries := aggregate.Sorted(aggregate.GroupByPeriod(records, fn))
				if trend > 0 {
					summaries = aggregate.Trend(records, fn, trend)
				}

				rows := make([][]string, 0, len(summaries))
				for _, s := range summaries {
					rows = append(rows, []string{
						s.Label,
						strconv.Itoa(s.DaysWorked),
						strconv.Itoa(s.TotalStops),
						strconv.FormatFloat(s.AverageStops, 'f', 1, 64),
						s.TotalEarnings.StringFixed(2),
					})
				}

				printTable(w, []string{"Period", "Days", "Stops", "Avg stops", "Earnings"}, rows)

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&by, "by", "", "Group by week, month or weekday")
	cmd.Flags().IntVar(&trend, "trend", 0, "Only the N most recent periods, oldest first")
	cmd.Flags().BoolVar(&distribution, "distribution", false, "Show how many days fall in each stop range")

	return cmd
}

func (rt *runtime) printOverview(cmd *cobra.Command, records []workday.Record) {
	stats := aggregate.Overview(records)

	rows := [][]string{
		{"Total earnings", stats.TotalEarnings.StringFixed(2)},
		{"Total stops", strconv.Itoa(stats.TotalStops)},
		{"Days worked", strconv.Itoa(stats.TotalDays)},
	}

	if stats.AverageStops != nil {
		rows = append(rows, []string{"Average stops", strconv.FormatFloat(*stats.AverageStops, 'f', 1, 64)})
	}

	if stats.AveragePay != nil {
		rows = append(rows, []string{"Average pay", stats.AveragePay.StringFixed(2)})
	}

	if stats.BestDay != nil {
		rows = append(rows, []string{"Best day", fmt.Sprintf("%s (%s)", rt.formatDate(stats.BestDay.Date), stats.BestDay.Total.StringFixed(2))})
	}

	printTable(cmd.OutOrStdout(), []string{"", ""}, rows)
}
