package iam

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/terraconstructs/skillshare/internal/auth"
)

// bootstrapCmd restores the default role policies
var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Restore the default role policies",
	Long: `Adds any missing default policy lines to casbin_rules:

  role:admin      may do anything, including acting on system-owned content
  role:moderator  may delete system posts and manage system comments

Existing lines, including custom ones, are left untouched.

Example:
  skillapi iam bootstrap
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bundle, err := openBundle(true)
		if err != nil {
			return err
		}
		defer bundle.Close()

		added := 0
		for _, rule := range auth.DefaultPolicies() {
			if rule.Ptype != "p" {
				continue
			}
			ok, err := bundle.Enforcer.AddPolicy(rule.V0, rule.V1, rule.V2)
			if err != nil {
				return fmt.Errorf("failed to add policy %s: %w", rule, err)
			}
			if ok {
				added++
				fmt.Printf("✓ Added %s\n", rule)
			}
		}

		if added == 0 {
			fmt.Println("Default policies already present")
		}
		return nil
	},
}
