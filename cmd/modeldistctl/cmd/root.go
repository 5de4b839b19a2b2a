package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "modeldistctl",
	Short: "Signed model manifest tooling",
	Long:  "Producer and consumer tooling for the signed model manifest protocol: key generation, manifest rebuild, signing, and verification.",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(schemaCmd)
}
