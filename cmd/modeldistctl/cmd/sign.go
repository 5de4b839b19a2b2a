package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/modeldist-dev/modeldist-sdk/manifest/entities"
	"github.com/modeldist-dev/modeldist-sdk/manifest/signing"
	"github.com/modeldist-dev/modeldist-sdk/parser"
)

var (
	signKeyPath string
	signKeyID   string
)

var signCmd = &cobra.Command{
	Use:   "sign <manifest.json>",
	Short: "Sign a manifest file",
	Long:  "Sign a manifest with the producer's Ed25519 private key. The signature covers the canonical encoding with key_id included, and the file is rewritten in place only after the post-sign self check passes.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSign,
}

func init() {
	signCmd.Flags().StringVar(&signKeyPath, "key", "keys/"+signing.PrivateKeyFile, "path to the PEM private key")
	signCmd.Flags().StringVar(&signKeyID, "key-id", "", "key id to record in the manifest (required)")
	signCmd.MarkFlagRequired("key-id")
}

func runSign(_ *cobra.Command, args []string) error {
	manifestPath := args[0]

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	m, err := parser.NewJSONManifestParser().Parse(data)
	if err != nil {
		return err
	}

	priv, err := signing.LoadPrivateKey(signKeyPath)
	if err != nil {
		return err
	}

	signer, err := signing.NewSigner(priv)
	if err != nil {
		return err
	}

	signed, err := signer.Sign(m, signKeyID)
	if err != nil {
		return err
	}

	if err := writeManifest(manifestPath, &signed); err != nil {
		return err
	}

	fmt.Printf("Signed %s with key %s\n", manifestPath, signKeyID)
	return nil
}

func writeManifest(path string, m *entities.Manifest) error {
	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	out = append(out, '\n')
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
