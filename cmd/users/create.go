package users

import (
	"bufio"
	"fmt"
	"net/mail"
	"os"

	"github.com/spf13/cobra"

	"github.com/terraconstructs/skillshare/internal/services/iam"
)

var (
	emailFlag    string
	usernameFlag string
	nameFlag     string
	passwordFlag string
	roleFlag     string
	stdinFlag    bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new user",
	Example: `  skillapi users create --username root --email root@example.com --role admin --stdin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if emailFlag == "" {
			return fmt.Errorf("--email flag is required")
		}
		if usernameFlag == "" {
			return fmt.Errorf("--username flag is required")
		}

		password := passwordFlag
		if stdinFlag {
			scanner := bufio.NewScanner(os.Stdin)
			fmt.Print("Enter password: ")
			if scanner.Scan() {
				password = scanner.Text()
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
		}
		if password == "" {
			return fmt.Errorf("password is required (use --password or --stdin)")
		}

		if _, err := mail.ParseAddress(emailFlag); err != nil {
			return fmt.Errorf("invalid email format: %w", err)
		}

		bundle, err := openBundle()
		if err != nil {
			return err
		}
		defer bundle.Close()

		user, err := bundle.Service.CreateUser(cmd.Context(), iam.CreateUserInput{
			Username: usernameFlag,
			Name:     nameFlag,
			Email:    emailFlag,
			Password: password,
			Role:     roleFlag,
		})
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		fmt.Println("User created successfully!")
		printUser(user)
		return nil
	},
}
