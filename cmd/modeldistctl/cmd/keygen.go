package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/modeldist-dev/modeldist-sdk/manifest/signing"
)

var keygenDir string

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an Ed25519 signing keypair",
	Long:  "Generate a fresh Ed25519 keypair. The private key stays in the key directory; the public key is printed as base64 for embedding into consumer trust stores. An existing private key is never overwritten.",
	Args:  cobra.NoArgs,
	RunE:  runKeygen,
}

func init() {
	keygenCmd.Flags().StringVar(&keygenDir, "key-dir", "keys", "directory to write the keypair into")
}

func runKeygen(_ *cobra.Command, _ []string) error {
	_, pub, err := signing.GenerateKeyPair(keygenDir)
	if err != nil {
		return err
	}

	fmt.Printf("Private key: %s\n", filepath.Join(keygenDir, signing.PrivateKeyFile))
	fmt.Printf("Public key:  %s\n", filepath.Join(keygenDir, signing.PublicKeyFile))
	fmt.Println()
	fmt.Println("Public key for trust stores (base64):")
	fmt.Printf("  %s\n", signing.EncodePublicKey(pub))

	return nil
}
