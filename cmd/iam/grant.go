package iam

import (
	"fmt"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/terraconstructs/skillshare/internal/auth"
)

var roleNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,31}$`)

// policyLine validates grant/revoke arguments and returns the casbin line.
func policyLine(args []string) (subject, objType, action string, err error) {
	role, objType, action := args[0], args[1], args[2]
	if !roleNamePattern.MatchString(role) {
		return "", "", "", fmt.Errorf("invalid role name %q", role)
	}
	if err := auth.ValidateGrant(objType, action); err != nil {
		return "", "", "", err
	}
	return auth.RoleID(role), objType, action, nil
}

var grantCmd = &cobra.Command{
	Use:   "grant <role> <object-type> <action>",
	Short: "Grant a role an action on an object type",
	Long: `Adds a policy line to casbin_rules. Owners never need a grant for their own
content; grants decide who may act on system-owned content and admin endpoints.

Example:
  skillapi iam grant moderator post post:update
  skillapi iam grant support admin admin:user-manage
`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, objType, action, err := policyLine(args)
		if err != nil {
			return err
		}

		bundle, err := openBundle(true)
		if err != nil {
			return err
		}
		defer bundle.Close()

		added, err := bundle.Enforcer.AddPolicy(subject, objType, action)
		if err != nil {
			return fmt.Errorf("failed to add policy: %w", err)
		}
		if !added {
			fmt.Printf("Policy already present: %s, %s, %s\n", subject, objType, action)
			return nil
		}
		fmt.Printf("✓ Granted %s on %s to %s\n", action, objType, subject)
		return nil
	},
}

var revokeCmd = &cobra.Command{
	Use:   "revoke <role> <object-type> <action>",
	Short: "Remove a policy line from a role",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, objType, action, err := policyLine(args)
		if err != nil {
			return err
		}

		bundle, err := openBundle(true)
		if err != nil {
			return err
		}
		defer bundle.Close()

		removed, err := bundle.Enforcer.RemovePolicy(subject, objType, action)
		if err != nil {
			return fmt.Errorf("failed to remove policy: %w", err)
		}
		if !removed {
			fmt.Printf("No such policy: %s, %s, %s\n", subject, objType, action)
			return nil
		}
		fmt.Printf("✓ Revoked %s on %s from %s\n", action, objType, subject)
		return nil
	},
}
