package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/modeldist-dev/modeldist-sdk/catalog"
	"github.com/modeldist-dev/modeldist-sdk/manifest/entities"
	"github.com/modeldist-dev/modeldist-sdk/manifest/signing"
	"github.com/modeldist-dev/modeldist-sdk/parser"
)

var (
	updateModelsDir   string
	updateManifest    string
	updateBaseURL     string
	updateKeyPath     string
	updateKeyID       string
	updateInteractive bool
	updateReadme      string
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Rebuild and sign the manifest from the model catalog",
	Long:  "Scan the catalog root for model folders, recompute every artifact's size and SHA-256, rebuild the manifest in full, and sign it. Display names and selector versions are carried over from the previous manifest; hashes never are.",
	Args:  cobra.NoArgs,
	RunE:  runUpdate,
}

func init() {
	updateCmd.Flags().StringVar(&updateModelsDir, "models-dir", "models", "catalog root containing model folders")
	updateCmd.Flags().StringVar(&updateManifest, "manifest", "models.json", "manifest file to rebuild")
	updateCmd.Flags().StringVar(&updateBaseURL, "base-url", "", "artifact fetch root (required)")
	updateCmd.Flags().StringVar(&updateKeyPath, "key", "keys/"+signing.PrivateKeyFile, "path to the PEM private key")
	updateCmd.Flags().StringVar(&updateKeyID, "key-id", "", "key id to record in the manifest (required)")
	updateCmd.Flags().BoolVar(&updateInteractive, "interactive", true, "prompt for display names of new models")
	updateCmd.Flags().StringVar(&updateReadme, "readme", "README.md", "README whose Models table is refreshed (skipped if absent)")
	updateCmd.MarkFlagRequired("base-url")
	updateCmd.MarkFlagRequired("key-id")
}

func runUpdate(cobraCmd *cobra.Command, _ []string) error {
	previous, err := loadPreviousManifest(updateManifest)
	if err != nil {
		return err
	}

	var namer catalog.Namer = catalog.FolderNamer{}
	if updateInteractive {
		namer = catalog.NewTerminalNamer()
	}

	scanner := catalog.NewScanner(updateModelsDir)
	builder := catalog.NewBuilder(scanner, updateBaseURL, catalog.WithNamer(namer))

	rebuilt, err := builder.Rebuild(cobraCmd.Context(), previous)
	if err != nil {
		return err
	}

	priv, err := signing.LoadPrivateKey(updateKeyPath)
	if err != nil {
		return err
	}
	signer, err := signing.NewSigner(priv)
	if err != nil {
		return err
	}

	signed, err := signer.Sign(&rebuilt, updateKeyID)
	if err != nil {
		return err
	}

	if err := writeManifest(updateManifest, &signed); err != nil {
		return err
	}

	if err := catalog.UpdateReadme(updateReadme, &signed); err != nil {
		return err
	}

	fmt.Printf("Rebuilt %s: %d models, signed with key %s\n",
		updateManifest, len(signed.Models), updateKeyID)
	for _, m := range signed.Models {
		var total int64
		for _, f := range m.Files {
			total += f.Size
		}
		fmt.Printf("  - %s: %s (%.1f MB, selector v%d+)\n",
			m.ID, m.Name, float64(total)/(1024*1024), m.MinimumSelectorVersion)
	}
	return nil
}

func loadPreviousManifest(path string) (*entities.Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read previous manifest: %w", err)
	}
	return parser.NewJSONManifestParser().Parse(data)
}
