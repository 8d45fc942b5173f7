// ABOUTME: Register command for the smartwallet CLI
// ABOUTME: Creates a new account; signing in remains a separate step

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/0x5chn0uf/SmartWalletFX-sub000/internal/api"
)

var (
	registerUsername string
	registerEmail    string
	registerPassword string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a SmartWalletFX account",
	Long: `Create a new account.

Registration never signs you in: verify your email first, then run
'smartwallet login' (email verification also starts a session).

Exit codes:
  0 - Account created
  1 - Registration rejected (duplicate account, validation)
  2 - Error (connectivity, configuration)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		username, email, password := registerUsername, registerEmail, registerPassword
		if username == "" || email == "" || password == "" {
			var err error
			username, email, password, err = promptRegistration(username, email, password)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(2)
			}
		}

		exitCode := runRegister(ctx, os.Stdout, username, email, password)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().StringVarP(&registerUsername, "username", "u", "", "Desired username")
	registerCmd.Flags().StringVarP(&registerEmail, "email", "e", "", "Account email address")
	registerCmd.Flags().StringVarP(&registerPassword, "password", "p", "", "Account password (prompted if omitted)")
}

// promptRegistration collects missing registration fields interactively
func promptRegistration(username, email, password string) (string, string, string, error) {
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
	if email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Value(&email).
			Validate(func(s string) error {
				if _, err := mail.ParseAddress(s); err != nil {
					return errors.New("enter a valid email address")
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
				if len(s) < 8 {
					return errors.New("password must be at least 8 characters")
				}
				return nil
			}))
	}

	form := huh.NewForm(huh.NewGroup(fields...))
	if err := form.Run(); err != nil {
		return "", "", "", err
	}
	return username, email, password, nil
}

// runRegister creates the account and returns an exit code
func runRegister(ctx context.Context, w io.Writer, username, email, password string) int {
	store, _, err := newSession()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if err := store.Register(ctx, username, email, password); err != nil {
		if api.IsUnreachable(err) {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
		fmt.Fprintf(w, "Registration failed: %v\n", err)
		var apiErr *api.Error
		if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
			for field, msg := range apiErr.Fields {
				fmt.Fprintf(w, "  %s: %s\n", field, msg)
			}
		}
		return 1
	}

	fmt.Fprintf(w, "Account created for %s. Check %s for a verification email, then run 'smartwallet login'.\n", username, email)
	return 0
}
