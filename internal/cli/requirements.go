package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rutacontrol/backend/internal/domain"
	"github.com/rutacontrol/backend/internal/eligibility"
)

// RequirementsCmd returns the requirements command
func RequirementsCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "requirements",
		Short: "Validate and print a document requirement table",
		Long: `Load a requirement table the same way the API does and print it.

With no --file (and REQUIREMENTS_FILE unset) the built-in table is shown.
A table that fails to parse is reported with a non-zero exit status, so the
command can gate a deploy before the API is asked to reload it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := eligibility.NewRegistry(file)
			if err != nil {
				return err
			}
			source := reg.Path()
			if source == "" {
				source = "built-in"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Requirement table (%s)\n\n", source)
			printSnapshot(cmd.OutOrStdout(), reg.Table().Snapshot())
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", os.Getenv("REQUIREMENTS_FILE"), "YAML requirement table")
	return cmd
}

func printSnapshot(w io.Writer, s eligibility.Snapshot) {
	header := color.New(color.Bold)

	header.Fprintln(w, "Resources")
	for _, k := range []domain.ResourceKind{domain.KindDriver, domain.KindTractor, domain.KindTrailer} {
		fmt.Fprintf(w, "  %-8s %s\n", k, joinDocs(s.Resources[k], s.Labels))
	}

	fmt.Fprintln(w)
	header.Fprintln(w, "Services")
	names := make([]string, 0, len(s.Services))
	for name := range s.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, name := range names {
		fmt.Fprintf(w, "  %-20s %s\n", name, joinDocs(s.Services[name], s.Labels))
	}
}

func joinDocs(docs []domain.DocumentKind, labels map[domain.DocumentKind]string) string {
	if len(docs) == 0 {
		return color.New(color.Faint).Sprint("-")
	}
	parts := make([]string, len(docs))
	for i, d := range docs {
		if l, ok := labels[d]; ok && l != string(d) {
			parts[i] = fmt.Sprintf("%s (%s)", d, l)
		} else {
			parts[i] = string(d)
		}
	}
	return strings.Join(parts, ", ")
}
