package users

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	RunE: func(cmd *cobra.Command, args []string) error {
		bundle, err := openBundle()
		if err != nil {
			return err
		}
		defer bundle.Close()

		users, err := bundle.Service.ListUsers(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}
		for _, u := range users {
			state := "enabled"
			if !u.Enabled() {
				state = "disabled"
			}
			fmt.Printf("%s  %-20s %-30s %-10s %s\n", u.ID, u.Username, u.Email, u.Role, state)
		}
		return nil
	},
}

func setDisabledCmd(use, short string, disabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <user-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := openBundle()
			if err != nil {
				return err
			}
			defer bundle.Close()

			user, err := bundle.Service.SetDisabled(cmd.Context(), args[0], disabled)
			if err != nil {
				return fmt.Errorf("failed to %s user: %w", use, err)
			}
			printUser(user)
			return nil
		},
	}
}

var (
	disableCmd = setDisabledCmd("disable", "Disable a user; their tokens stop working immediately", true)
	enableCmd  = setDisabledCmd("enable", "Re-enable a disabled user", false)
)

var newRoleFlag string

var setRoleCmd = &cobra.Command{
	Use:   "set-role <user-id>",
	Short: "Change a user's role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if newRoleFlag == "" {
			return fmt.Errorf("--role flag is required")
		}
		bundle, err := openBundle()
		if err != nil {
			return err
		}
		defer bundle.Close()

		user, err := bundle.Service.SetRole(cmd.Context(), args[0], newRoleFlag)
		if err != nil {
			return fmt.Errorf("failed to set role: %w", err)
		}
		printUser(user)
		return nil
	},
}
