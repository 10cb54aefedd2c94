package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rutacontrol/backend/internal/domain"
	"github.com/rutacontrol/backend/internal/eligibility"
	"github.com/rutacontrol/backend/internal/service"
)

const defaultExpiringDays = 30

// ExpiringCmd returns the expiring command
func ExpiringCmd() *cobra.Command {
	var (
		days         int
		requirements string
	)

	cmd := &cobra.Command{
		Use:   "expiring",
		Short: "List fleet documents that are expired or expire soon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := eligibility.NewRegistry(requirements)
			if err != nil {
				return err
			}
			pool, err := openPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			stats := service.NewStatsService(fleetRepos(pool), reg, defaultExpiringDays)
			docs, err := stats.Expiring(cmd.Context(), days)
			if err != nil {
				return err
			}
			printExpiring(cmd.OutOrStdout(), docs)
			return nil
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", defaultExpiringDays, "look-ahead window in days")
	cmd.Flags().StringVar(&requirements, "requirements", os.Getenv("REQUIREMENTS_FILE"), "YAML requirement table")
	return cmd
}

func printExpiring(w io.Writer, docs []domain.ExpiringDocument) {
	if len(docs) == 0 {
		fmt.Fprintln(w, "No documents expiring.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tKIND\tRESOURCE\tDOCUMENT\tEXPIRES")
	for _, d := range docs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			expiryBadge(d), d.ResourceKind, d.ResourceName, d.DocumentLabel, d.ExpiresOn.Format("2006-01-02"))
	}
	tw.Flush()
}

func expiryBadge(d domain.ExpiringDocument) string {
	switch {
	case d.Expired:
		return color.New(color.FgRed, color.Bold).Sprint("EXPIRED")
	case d.DaysLeft == 0:
		return color.New(color.FgYellow).Sprint("TODAY")
	case d.DaysLeft == 1:
		return color.New(color.FgYellow).Sprint("1 day")
	default:
		return color.New(color.FgYellow).Sprintf("%d days", d.DaysLeft)
	}
}
