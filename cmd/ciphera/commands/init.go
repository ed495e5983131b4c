package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"ciphera/internal/identity"
	"ciphera/internal/primitives"
)

func initCmd() *cobra.Command {
	var oneTimeCount, signedCount int

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new local identity, sealed under --passphrase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := identity.Generate(nextRegistrationID(), oneTimeCount, signedCount)
			if err != nil {
				return fmt.Errorf("generating identity: %w", err)
			}
			if err := saveIdentity(id); err != nil {
				return err
			}

			fmt.Printf("Identity created: registrationId=%d\n", id.RegistrationID)
			fmt.Printf("Fingerprint: %s\n", primitives.Thumbprint(id.SigningPublic.Slice()))
			fmt.Printf("One-time pre-keys: %d, signed pre-keys: %d\n", len(id.OneTimePreKeys), len(id.SignedPreKeys))
			return nil
		},
	}

	cmd.Flags().IntVar(&oneTimeCount, "one-time-keys", 10, "number of one-time pre-keys to generate")
	cmd.Flags().IntVar(&signedCount, "signed-keys", 1, "number of signed pre-keys to generate")
	return cmd
}
