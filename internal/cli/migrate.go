package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/rutacontrol/backend/migrations"
)

// MigrateCmd returns the migrate command
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply, roll back or inspect database migrations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withProvider(cmd.Context(), func(p *goose.Provider) error {
				results, err := p.Up(cmd.Context())
				printResults(cmd.OutOrStdout(), results)
				if err != nil {
					return fmt.Errorf("migrate up: %w", err)
				}
				if len(results) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
				}
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withProvider(cmd.Context(), func(p *goose.Provider) error {
				res, err := p.Down(cmd.Context())
				if res != nil {
					printResults(cmd.OutOrStdout(), []*goose.MigrationResult{res})
				}
				if err != nil {
					return fmt.Errorf("migrate down: %w", err)
				}
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withProvider(cmd.Context(), func(p *goose.Provider) error {
				statuses, err := p.Status(cmd.Context())
				if err != nil {
					return fmt.Errorf("migrate status: %w", err)
				}
				printStatus(cmd.OutOrStdout(), statuses)
				return nil
			})
		},
	})
	return cmd
}

func withProvider(ctx context.Context, fn func(*goose.Provider) error) error {
	db, err := openSQLDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	p, err := migrations.NewProvider(db)
	if err != nil {
		return err
	}
	return fn(p)
}

func printResults(w io.Writer, results []*goose.MigrationResult) {
	for _, r := range results {
		mark := color.New(color.FgGreen).Sprint("OK  ")
		if r.Error != nil {
			mark = color.New(color.FgRed).Sprint("FAIL")
		}
		fmt.Fprintf(w, "%s %-4s %s (%s)\n", mark, r.Direction, r.Source.Path, r.Duration.Round(1e6))
	}
}

func printStatus(w io.Writer, statuses []*goose.MigrationStatus) {
	for _, s := range statuses {
		state := color.New(color.FgYellow).Sprint("pending")
		applied := ""
		if s.State == goose.StateApplied {
			state = color.New(color.FgGreen).Sprint("applied")
			applied = s.AppliedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%05d  %-8s %-16s %s\n", s.Source.Version, state, applied, s.Source.Path)
	}
}
