// ABOUTME: Root command for the smartwallet CLI
// ABOUTME: Handles global flags and wires config, session state, and the API client

package cmd

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/0x5chn0uf/SmartWalletFX-sub000/internal/api"
	"github.com/0x5chn0uf/SmartWalletFX-sub000/internal/config"
	"github.com/0x5chn0uf/SmartWalletFX-sub000/internal/logger"
	"github.com/0x5chn0uf/SmartWalletFX-sub000/internal/session"
)

var (
	apiURL     string
	jsonOutput bool
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "smartwallet",
	Short: "CLI for SmartWalletFX",
	Long: `smartwallet is a command-line interface for the SmartWalletFX backend.

It manages your account session locally: signing in stores the backend's
session cookies on disk, and expired access tokens are refreshed silently
on your next command.

Environment Variables:
  SMARTWALLET_API_URL    Backend API URL (default: http://localhost:8000)
  SMARTWALLET_TIMEOUT    Request timeout in seconds (default: 30)
  SMARTWALLET_STATE_DIR  Directory for session state (default: user config dir)`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(logger.Init)
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides SMARTWALLET_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// newSession builds the session store and API client from configuration.
// The --api-url flag takes priority over the environment.
func newSession() (*session.Store, *api.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	url := cfg.APIURL
	if apiURL != "" {
		url = apiURL
	}

	if err := os.MkdirAll(cfg.StateDir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("cannot create state directory: %w", err)
	}
	flag := session.NewFileFlag(cfg.StateDir)
	jar, err := api.NewFileJar(filepath.Join(cfg.StateDir, "cookies.json"))
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open cookie store: %w", err)
	}

	client := api.New(url, flag, api.Options{
		HTTPClient: &http.Client{Timeout: cfg.RequestTimeout},
		Jar:        jar,
		OnSessionExpired: func(error) {
			fmt.Fprintln(os.Stderr, "Session expired. Run 'smartwallet login' to sign in again.")
		},
	})

	return session.NewStore(client, flag), client, nil
}
