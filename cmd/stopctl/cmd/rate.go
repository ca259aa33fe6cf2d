package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/stoptracker/internal/app"
	"github.com/MrJamesThe3rd/stoptracker/internal/rate"
)

func newRateCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rate",
		Short: "Show or change the pay rates",
		Long: `Show or change the pay rates. Changes apply to workdays logged afterwards;
totals already logged keep the rate they were computed with.`,
	}

	cmd.AddCommand(newRateShowCmd(rt), newRateSetCmd(rt), newRatePresetCmd(rt))

	return cmd
}

func printRate(cmd *cobra.Command, cfg rate.Config) {
	printTable(cmd.OutOrStdout(), []string{"Cutoff", "Rate up to cutoff", "Rate after cutoff"}, [][]string{{
		strconv.Itoa(cfg.CutoffPoint),
		cfg.RateBeforeCutoff.StringFixed(2),
		cfg.RateAfterCutoff.StringFixed(2),
	}})
}

func newRateShowCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current rate config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				cfg, err := a.Settings.Get(ctx, rt.scope)
				if err != nil {
					return err
				}

				printRate(cmd, cfg)

				return nil
			})
		},
	}
}

func newRateSetCmd(rt *runtime) *cobra.Command {
	var (
		cutoff int
		before string
		after  string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Save custom rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := decimal.NewFromString(before)
			if err != nil {
				return fmt.Errorf("invalid --before %q: %w", before, err)
			}

			af, err := decimal.NewFromString(after)
			if err != nil {
				return fmt.Errorf("invalid --after %q: %w", after, err)
			}

			cfg := rate.Config{CutoffPoint: cutoff, RateBeforeCutoff: b, RateAfterCutoff: af}

			return rt.withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if err := a.Settings.Save(ctx, rt.scope, cfg); err != nil {
					return err
				}

				printRate(cmd, cfg)

				return nil
			})
		},
	}

	cmd.Flags().IntVar(&cutoff, "cutoff", 0, "Stops paid at the first rate")
	cmd.Flags().StringVar(&before, "before", "", "Rate per stop up to the cutoff")
	cmd.Flags().StringVar(&after, "after", "", "Rate per stop after the cutoff")
	_ = cmd.MarkFlagRequired("cutoff")
	_ = cmd.MarkFlagRequired("before")
	_ = cmd.MarkFlagRequired("after")

	return cmd
}

func newRatePresetCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "preset [name]",
		Short: "List presets, or apply one by name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				rows := [][]string{}
				for _, p := range rate.Presets() {
					rows = append(rows, []string{
						p.Name,
						strconv.Itoa(p.Config.CutoffPoint),
						p.Config.RateBeforeCutoff.StringFixed(2),
						p.Config.RateAfterCutoff.StringFixed(2),
					})
				}

				printTable(cmd.OutOrStdout(), []string{"Preset", "Cutoff", "Before", "After"}, rows)

				return nil
			}

			return rt.withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				cfg, err := a.Settings.ApplyPreset(ctx, rt.scope, args[0])
				if err != nil {
					return err
				}

				printRate(cmd, cfg)

				return nil
			})
		},
	}
}
