package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/modeldist-dev/modeldist-sdk/fetch"
	"github.com/modeldist-dev/modeldist-sdk/manifest"
	"github.com/modeldist-dev/modeldist-sdk/manifest/entities"
	"github.com/modeldist-dev/modeldist-sdk/manifest/values"
)

var (
	fetchDestDir string
	fetchLedger  string
	fetchModelID string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <manifest.json>",
	Short: "Download model artifacts declared by a verified manifest",
	Long:  "Verify the manifest against the trust store, then download and integrity-check the declared artifacts. Artifacts whose installed copies already match the manifest are skipped via the install ledger. Nothing is downloaded if verification fails.",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchDestDir, "dest", "models", "directory to install artifacts under (one folder per model id)")
	fetchCmd.Flags().StringVar(&fetchLedger, "ledger", "", "install ledger path (default <dest>/installed.yaml)")
	fetchCmd.Flags().StringVar(&fetchModelID, "model", "", "fetch only this model id (default all)")
	fetchCmd.Flags().StringVar(&verifyTrustStore, "trust-store", "", "YAML trust store mapping key ids to base64 public keys")
	fetchCmd.Flags().StringVar(&verifyPubPath, "pub", "", "PEM public key (requires --key-id)")
	fetchCmd.Flags().StringVar(&verifyKeyID, "key-id", "", "key id to trust the --pub key under")
}

func runFetch(cobraCmd *cobra.Command, args []string) error {
	store, err := buildTrustStore()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	m, result, err := manifest.NewService(store).LoadVerified(data)
	if err != nil {
		return fmt.Errorf("verification failed (%s): %w", result.Status, err)
	}

	models := m.Models
	if fetchModelID != "" {
		id, err := values.NewModelID(fetchModelID)
		if err != nil {
			return err
		}
		entry, err := m.FindModel(id)
		if err != nil {
			return err
		}
		models = []entities.ModelEntry{entry}
	}

	ledgerPath := fetchLedger
	if ledgerPath == "" {
		ledgerPath = filepath.Join(fetchDestDir, "installed.yaml")
	}
	ledger, err := fetch.LoadLedger(ledgerPath)
	if err != nil {
		return err
	}
	if ledger == nil {
		ledger = fetch.NewLedger()
	}

	fetcher := fetch.NewFetcher()
	var firstErr error
	for _, entry := range models {
		paths, err := fetcher.SyncModel(cobraCmd.Context(), entry,
			filepath.Join(fetchDestDir, entry.ID), result.KeyID, ledger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "model %s: %v\n", entry.ID, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		fmt.Printf("  - %s: %d artifacts in %s\n",
			entry.ID, len(paths), filepath.Join(fetchDestDir, entry.ID))
	}

	if err := fetch.SaveLedger(ledgerPath, ledger); err != nil {
		return err
	}
	return firstErr
}
