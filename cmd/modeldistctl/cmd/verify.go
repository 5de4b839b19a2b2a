package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/modeldist-dev/modeldist-sdk/manifest"
	"github.com/modeldist-dev/modeldist-sdk/manifest/signing"
	"github.com/modeldist-dev/modeldist-sdk/manifest/trust"
)

var (
	verifyTrustStore string
	verifyPubPath    string
	verifyKeyID      string
)

var verifyCmd = &cobra.Command{
	Use:   "verify <manifest.json>",
	Short: "Verify a manifest signature",
	Long:  "Verify a manifest against a trust store. The key id named in the manifest must map to a trusted public key; verification failure blocks any artifact use.",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

func init() {
	verifyCmd.Flags().StringVar(&verifyTrustStore, "trust-store", "", "YAML trust store mapping key ids to base64 public keys")
	verifyCmd.Flags().StringVar(&verifyPubPath, "pub", "", "PEM public key (requires --key-id)")
	verifyCmd.Flags().StringVar(&verifyKeyID, "key-id", "", "key id to trust the --pub key under")
}

func runVerify(_ *cobra.Command, args []string) error {
	store, err := buildTrustStore()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	svc := manifest.NewService(store)
	m, result, err := svc.LoadVerified(data)
	if err != nil {
		return fmt.Errorf("verification failed (%s): %w", result.Status, err)
	}

	fmt.Printf("Signature valid (key %s, %d models, updated %s)\n",
		result.KeyID, len(m.Models), m.UpdatedAt)
	return nil
}

func buildTrustStore() (*trust.Store, error) {
	switch {
	case verifyTrustStore != "":
		return trust.LoadStore(verifyTrustStore)
	case verifyPubPath != "":
		if verifyKeyID == "" {
			return nil, fmt.Errorf("--pub requires --key-id")
		}
		pub, err := signing.LoadPublicKey(verifyPubPath)
		if err != nil {
			return nil, err
		}
		store := trust.NewStore()
		if err := store.Add(verifyKeyID, pub); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("either --trust-store or --pub is required")
	}
}
