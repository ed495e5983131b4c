// Package commands implements the ciphera CLI: local identity management,
// pre-key bundle export, and an in-process handshake/messaging demo over
// the session façade in internal/session.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ciphera/internal/config"
)

var (
	homeDir    string
	passphrase string

	opts config.Options
)

// Execute builds and runs the root cobra command.
func Execute() error {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "ciphera",
		Short: "Double Ratchet / X3DH crypto core demo CLI",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if homeDir == "" {
				h, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("resolving home directory: %w", err)
				}
				homeDir = filepath.Join(h, ".ciphera")
			}
			if err := os.MkdirAll(homeDir, 0o700); err != nil {
				return fmt.Errorf("creating config dir: %w", err)
			}

			opts = config.FromEnv(config.Default())
			if opts.Debug {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&homeDir, "home", "", "config directory (default: $HOME/.ciphera)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase sealing identities and session blobs on disk")

	root.AddCommand(
		initCmd(),
		fingerprintCmd(),
		bundleCmd(),
		demoCmd(),
	)

	return root.Execute()
}

func identityPath() string {
	return filepath.Join(homeDir, "identity.json")
}

func sessionDBPath() string {
	return filepath.Join(homeDir, "sessions.db")
}
