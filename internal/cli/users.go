package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rutacontrol/backend/internal/domain"
	"github.com/rutacontrol/backend/internal/repo"
	"github.com/rutacontrol/backend/internal/service"
)

// UsersCmd returns the users command
func UsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage application users",
	}
	cmd.AddCommand(usersAddCmd())
	return cmd
}

func usersAddCmd() *cobra.Command {
	var in service.NewUser

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a user, typically the first admin",
		Long: `Create a user directly in the database.

The password is read from --password or, when that is empty, from the
RUTACTL_PASSWORD environment variable so it stays out of shell history.
Roles: 1 admin, 2 dispatcher, 3 viewer.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.Password == "" {
				in.Password = os.Getenv("RUTACTL_PASSWORD")
			}
			if in.Password == "" {
				return errors.New("password required: pass --password or set RUTACTL_PASSWORD")
			}

			pool, err := openPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			users := service.NewUserService(repo.NewUserRepo(pool), nil)
			u, err := users.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s created user %s (%s, %s)\n",
				color.New(color.FgGreen).Sprint("✓"), u.Username, roleName(u.RoleID), u.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&in.Username, "username", "u", "", "login name (required)")
	cmd.Flags().StringVar(&in.DisplayName, "display-name", "", "name shown in the UI")
	cmd.Flags().IntVarP(&in.RoleID, "role", "r", domain.RoleAdmin, "role id")
	cmd.Flags().StringVarP(&in.Password, "password", "p", "", "initial password")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func roleName(id int) string {
	switch id {
	case domain.RoleAdmin:
		return "admin"
	case domain.RoleDispatcher:
		return "dispatcher"
	case domain.RoleViewer:
		return "viewer"
	default:
		return fmt.Sprintf("role %d", id)
	}
}
