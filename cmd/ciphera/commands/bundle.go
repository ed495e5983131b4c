package commands

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ciphera/internal/codec"
	"ciphera/internal/identity"
)

func bundleCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Export a pre-key bundle for peers to run X3DH against",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := loadIdentity()
			if err != nil {
				return err
			}

			b, err := identity.Bundle(id)
			if err != nil {
				return fmt.Errorf("assembling bundle: %w", err)
			}

			encoded := hex.EncodeToString(codec.EncodePreKeyBundle(b))
			if outPath == "" {
				fmt.Println(encoded)
				return nil
			}
			if err := os.WriteFile(outPath, []byte(encoded+"\n"), 0o644); err != nil {
				return fmt.Errorf("writing bundle to %s: %w", outPath, err)
			}
			fmt.Printf("Bundle written to %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the hex-encoded bundle to this file instead of stdout")
	return cmd
}
