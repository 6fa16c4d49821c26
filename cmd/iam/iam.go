package iam

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/terraconstructs/skillshare/cmd/cmdutil"
	"github.com/terraconstructs/skillshare/internal/config"
)

// IamCmd is the parent command for authorization policy operations
var IamCmd = &cobra.Command{
	Use:   "iam",
	Short: "Manage role policies",
	Long: `Commands for inspecting, granting and restoring the Casbin role policies
stored in casbin_rules. A running server picks up changes on SIGHUP or
POST /api/admin/policy/reload.`,
}

func init() {
	IamCmd.AddCommand(bootstrapCmd)
	IamCmd.AddCommand(policiesCmd)
	IamCmd.AddCommand(grantCmd)
	IamCmd.AddCommand(revokeCmd)
}

func openBundle(autoSave bool) (*cmdutil.IAMServiceBundle, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cmdutil.NewIAMServiceBundle(cfg, cmdutil.IAMServiceOptions{EnableAutoSave: autoSave})
}

var policiesCmd = &cobra.Command{
	Use:   "policies",
	Short: "List role policies",
	RunE: func(cmd *cobra.Command, args []string) error {
		bundle, err := openBundle(false)
		if err != nil {
			return err
		}
		defer bundle.Close()

		policies, err := bundle.Enforcer.GetPolicy()
		if err != nil {
			return fmt.Errorf("failed to read policies: %w", err)
		}
		if len(policies) == 0 {
			fmt.Println("No policies defined. Run 'skillapi iam bootstrap' to restore the defaults.")
			return nil
		}
		for _, p := range policies {
			fmt.Printf("  %v\n", p)
		}
		return nil
	},
}
