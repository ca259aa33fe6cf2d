package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/stoptracker/internal/app"
	"github.com/MrJamesThe3rd/stoptracker/internal/backup"
	"github.com/MrJamesThe3rd/stoptracker/internal/export"
	"github.com/MrJamesThe3rd/stoptracker/internal/importer"
)

func newExportCmd(rt *runtime) *cobra.Command {
	var (
		dir    string
		start  string
		end    string
		bundle bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write workdays and expenses as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, err := rt.optionalDate(start)
			if err != nil {
				return err
			}

			to, err := rt.optionalDate(end)
			if err != nil {
				return err
			}

			return rt.withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				now := time.Now()

				if bundle {
					path := filepath.Join(dir, "stoptracker-"+now.Format("20060102")+".zip")
					if err := writeFile(path, func(w io.Writer) error { return a.Exports.WriteBundle(ctx, w, rt.scope) }); err != nil {
						return err
					}

					fmt.Fprintln(cmd.OutOrStdout(), path)

					return nil
				}

				paths, err := a.Exports.ToDir(ctx, rt.scope, dir, now, export.Between(from, to))
				if err != nil {
					return err
				}

				for _, p := range paths {
					fmt.Fprintln(cmd.OutOrStdout(), p)
				}

				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&dir, "out", "o", "./exports", "Output directory")
	cmd.Flags().StringVar(&start, "start", "", "First day to include")
	cmd.Flags().StringVar(&end, "end", "", "Last day to include")
	cmd.Flags().BoolVar(&bundle, "bundle", false, "Write a zip with both CSVs and a backup instead")

	return cmd
}

func newImportCmd(rt *runtime) *cobra.Command {
	var (
		format string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import workdays from a CSV file",
		Long: `Import workdays from a CSV file. Totals are recomputed with the current
rate config. When a row falls on an already logged date nothing is written
unless --force is given, which keeps both.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			return rt.withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				params, err := a.Importer.Import(importer.Format(format), f)
				if err != nil {
					return err
				}

				cfg, err := a.Settings.Get(ctx, rt.scope)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()

				if force {
					created, err := a.Workdays.AddBatch(ctx, rt.scope, cfg, params)
					if err != nil {
						return err
					}

					fmt.Fprintf(w, "Imported %d workdays.\n", len(created))

					return nil
				}

				result, err := a.Workdays.Import(ctx, rt.scope, cfg, params)
				if err != nil {
					return err
				}

				if len(result.Conflicts) == 0 {
					fmt.Fprintf(w, "Imported %d workdays.\n", len(result.Imported))
					return nil
				}

				rows := make([][]string, 0, len(result.Conflicts))
				for _, c := range result.Conflicts {
					incoming := "-"
					if c.Incoming.Stops != nil {
						incoming = strconv.Itoa(*c.Incoming.Stops)
					}

					rows = append(rows, []string{rt.formatDate(c.Existing.Date), strconv.Itoa(c.Existing.Stops), incoming})
				}

				printTable(w, []string{"Date", "Logged", "In file"}, rows)

				return fmt.Errorf("%d rows fall on logged dates, nothing imported; rerun with --force to keep both", len(result.Conflicts))
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(importer.FormatStandard), "File format: standard or eu")
	cmd.Flags().BoolVar(&force, "force", false, "Import rows even when the date is already logged")

	return cmd
}

func newBackupCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "backup <file>",
		Short: "Write all data for the scope to a JSON backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				snap, err := a.Backups.Create(ctx, rt.scope)
				if err != nil {
					return err
				}

				if err := writeFile(args[0], func(w io.Writer) error { return backup.Encode(w, snap) }); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Backed up %d workdays and %d expenses to %s\n",
					len(snap.Logs), len(snap.Expenses), args[0])

				return nil
			})
		},
	}
}

func newRestoreCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file>",
		Short: "Replace all data for the scope with a JSON backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			snap, err := backup.Decode(f)
			if err != nil {
				return err
			}

			return rt.withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if err := a.Backups.Restore(ctx, rt.scope, *snap); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Restored %d workdays and %d expenses\n", len(snap.Logs), len(snap.Expenses))

				return nil
			})
		},
	}
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := write(f); err != nil {
		return err
	}

	return f.Close()
}
