package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modeldist-dev/modeldist-sdk/manifest/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the manifest JSON Schema",
	Long:  "Print the JSON Schema consumers can use to pre-validate manifest documents before parsing.",
	Args:  cobra.NoArgs,
	RunE:  runSchema,
}

func runSchema(_ *cobra.Command, _ []string) error {
	data, err := schema.Generate()
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
