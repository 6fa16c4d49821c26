package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/terraconstructs/skillshare/cmd/iam"
	"github.com/terraconstructs/skillshare/cmd/users"
	"github.com/terraconstructs/skillshare/internal/config"
)

var (
	cfg     *config.Config
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "skillapi",
	Short: "Skill sharing API server",
	Long: `skillapi serves the skill sharing platform: accounts, posts, comments,
feeds, learning progress and live notifications over a JSON HTTP API.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
			if err := viper.ReadInConfig(); err != nil {
				return fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
			}
			log.Printf("Using config file %s", viper.ConfigFileUsed())
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Path to a YAML, TOML or JSON config file")
	flags.String("db-url", "", "Database connection URL (env: SKILLSHARE_DATABASE_URL)")
	flags.String("server-addr", "", "Server bind address (env: SKILLSHARE_SERVER_ADDR)")
	flags.String("server-url", "", "Public base URL (env: SKILLSHARE_SERVER_URL)")
	flags.String("content-visibility", "", "owner-scoped or public (env: SKILLSHARE_CONTENT_VISIBILITY)")
	flags.Bool("debug", false, "Enable debug logging (env: SKILLSHARE_DEBUG)")

	for key, flag := range map[string]string{
		"database_url":       "db-url",
		"server_addr":        "server-addr",
		"server_url":         "server-url",
		"content_visibility": "content-visibility",
		"debug":              "debug",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			log.Fatalf("bind flag %s: %v", flag, err)
		}
	}

	rootCmd.AddCommand(users.UsersCmd)
	rootCmd.AddCommand(iam.IamCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
