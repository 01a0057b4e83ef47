package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	loginIdentifier string
	loginPassword   string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with username or email",
	Long: `Logs in and keeps the access token in the session file.

Examples:
  newsvoice login -u premium@namisense.ai
  NEWSVOICE_PASSWORD=... newsvoice login -u namitech_pro`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and forget the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		newSession().Logout(cmd.Context())
		fmt.Println("Logged out.")
		return nil
	},
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Show the current login",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, ok := newSession().Verify(cmd.Context())
		if !ok {
			fmt.Println("Not logged in.")
			return nil
		}
		fmt.Printf("Logged in as %s (%s)\n", user.DisplayName(), user.Role)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, sessionCmd)

	loginCmd.Flags().StringVarP(&loginIdentifier, "user", "u", "", "username or email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (default: NEWSVOICE_PASSWORD or prompt)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	in := bufio.NewReader(os.Stdin)
	if loginIdentifier == "" {
		fmt.Print("Username or email: ")
		line, _ := in.ReadString('\n')
		loginIdentifier = strings.TrimSpace(line)
	}
	if loginPassword == "" {
		loginPassword = os.Getenv("NEWSVOICE_PASSWORD")
	}
	if loginPassword == "" {
		fmt.Print("Password: ")
		line, _ := in.ReadString('\n')
		loginPassword = strings.TrimRight(line, "\r\n")
	}

	user, err := newSession().Login(cmd.Context(), loginIdentifier, loginPassword)
	if err != nil {
		printError("login failed", err)
		return err
	}
	fmt.Printf("Welcome, %s (%s)\n", user.DisplayName(), user.Role)
	return nil
}
