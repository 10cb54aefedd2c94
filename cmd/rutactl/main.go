// Command rutactl is the operator CLI for Ruta Control: schema migrations,
// the document requirement table, expiring paperwork and user bootstrap.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rutacontrol/backend/internal/cli"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "rutactl",
		Short:         "rutactl - operator tool for the Ruta Control backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `rutactl manages the Ruta Control database and configuration.
Database commands read DATABASE_URL from the environment or a .env file.`,
	}

	rootCmd.AddCommand(cli.MigrateCmd())
	rootCmd.AddCommand(cli.RequirementsCmd())
	rootCmd.AddCommand(cli.ExpiringCmd())
	rootCmd.AddCommand(cli.UsersCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.New(color.FgRed).Sprint("Error:"), err)
		os.Exit(1)
	}
}
