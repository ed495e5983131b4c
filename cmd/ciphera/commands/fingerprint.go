package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"ciphera/internal/primitives"
)

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the local identity's signing-key fingerprint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := loadIdentity()
			if err != nil {
				return err
			}
			fmt.Println(primitives.Thumbprint(id.SigningPublic.Slice()))
			return nil
		},
	}
}
