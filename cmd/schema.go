package cmd

import (
	"fmt"

	"github.com/DefiantLabs/pricefeeds-indexer/cosmwasm/modules/pricefeeds"
	"github.com/spf13/cobra"
)

var schemaOutDir string

func init() {
	schemaCmd.Flags().StringVar(&schemaOutDir, "out-dir", "schema", "directory to write the schema files to")
	rootCmd.AddCommand(schemaCmd)
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Writes the JSON Schema of the PriceFeeds contract messages.",
	Long: `Writes the contract API document (<contract>.json) and the raw schema of every message to
	--out-dir, in the layout cosmwasm-schema generates for the contract.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		written, err := pricefeeds.WriteSchemaFiles(schemaOutDir)
		if err != nil {
			return err
		}
		for _, path := range written {
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
		}
		return nil
	},
}
