package users

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/terraconstructs/skillshare/cmd/cmdutil"
	"github.com/terraconstructs/skillshare/internal/config"
	"github.com/terraconstructs/skillshare/internal/db/models"
)

// UsersCmd is the parent command for user management operations
var UsersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
	Long:  `Commands for managing accounts directly against the database, e.g. to create the first administrator.`,
}

func init() {
	createCmd.Flags().StringVar(&emailFlag, "email", "", "Email address of the user")
	createCmd.Flags().StringVar(&usernameFlag, "username", "", "Unique handle of the user")
	createCmd.Flags().StringVar(&nameFlag, "name", "", "Display name of the user")
	createCmd.Flags().StringVar(&passwordFlag, "password", "", "Password for the user (use --stdin to avoid shell history)")
	createCmd.Flags().StringVar(&roleFlag, "role", models.RoleUser, "Role of the user (user, moderator, admin)")
	createCmd.Flags().BoolVar(&stdinFlag, "stdin", false, "Read password from stdin instead of --password flag")

	setRoleCmd.Flags().StringVar(&newRoleFlag, "role", "", "New role (user, moderator, admin)")

	UsersCmd.AddCommand(createCmd, listCmd, disableCmd, enableCmd, setRoleCmd)
}

func openBundle() (*cmdutil.IAMServiceBundle, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cmdutil.NewIAMServiceBundle(cfg, cmdutil.IAMServiceOptions{})
}

func printUser(u *models.User) {
	fmt.Println("----------------------------------------")
	fmt.Printf("User ID:  %s\n", u.ID)
	fmt.Printf("Username: %s\n", u.Username)
	fmt.Printf("Email:    %s\n", u.Email)
	fmt.Printf("Role:     %s\n", u.Role)
	fmt.Printf("Enabled:  %t\n", u.Enabled())
	fmt.Println("----------------------------------------")
}
