// ABOUTME: Login command for the smartwallet CLI
// ABOUTME: Signs in with username/password and persists the session locally

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/0x5chn0uf/SmartWalletFX-sub000/internal/api"
)

var (
	loginUsername string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to SmartWalletFX",
	Long: `Sign in with your username and password.

Credentials not given as flags are prompted for interactively. On success
the session cookies are stored locally and later commands reuse them.

Exit codes:
  0 - Signed in
  1 - Invalid credentials
  2 - Error (connectivity, configuration)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		username, password := loginUsername, loginPassword
		if username == "" || password == "" {
			var err error
			username, password, err = promptCredentials(username, password)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(2)
			}
		}

		exitCode := runLogin(ctx, os.Stdout, username, password)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Account username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Account password (prompted if omitted)")
}

// promptCredentials collects missing credentials interactively
func promptCredentials(username, password string) (string, string, error) {
	var fields []huh.Field
	if username == "" {
		fields = append(fields, huh.NewInput().
			Title("Username").
			Value(&username).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("username is required")
				}
				return nil
			}))
	}
	if password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&password).
			Validate(func(s string) error {
				if s == "" {
					return errors.New("password is required")
				}
				return nil
			}))
	}

	form := huh.NewForm(huh.NewGroup(fields...))
	if err := form.Run(); err != nil {
		return "", "", err
	}
	return username, password, nil
}

// runLogin performs the login and returns an exit code
func runLogin(ctx context.Context, w io.Writer, username, password string) int {
	store, _, err := newSession()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if err := store.Login(ctx, username, password); err != nil {
		if api.IsUnreachable(err) {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
		fmt.Fprintf(w, "Login failed: %v\n", err)
		return 1
	}

	user := store.User()
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(user, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintf(w, "Signed in as %s (%s)\n", user.Username, user.Email)
		if !user.EmailVerified {
			fmt.Fprintln(w, "Note: your email is not verified yet. Run 'smartwallet verify-email' with the token from your inbox.")
		}
	}
	return 0
}
