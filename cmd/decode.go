package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/DefiantLabs/pricefeeds-indexer/cosmwasm/modules/wasm"
	"github.com/spf13/cobra"
)

var (
	decodeKind string
	decodeFile string
)

func init() {
	decodeCmd.Flags().StringVar(&decodeKind, "kind", kindExecute, fmt.Sprintf("message kind (%s)", strings.Join(decodeKinds, ", ")))
	decodeCmd.Flags().StringVar(&decodeFile, "file", "", "file to read the JSON from (default is stdin)")
	rootCmd.AddCommand(decodeCmd)
}

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Strictly decodes a PriceFeeds message and prints its canonical JSON.",
	Long: `Strictly decodes a PriceFeeds message read from --file or stdin. A message that does not
	match the contract schema is reported with the path of the offending element.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if decodeFile == "" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(decodeFile)
		}
		if err != nil {
			return err
		}

		out, err := decodeMessage(decodeKind, data)
		var schemaErr *wasm.SchemaError
		if errors.As(err, &schemaErr) {
			cmd.SilenceUsage = true
			return fmt.Errorf("%s message does not match the contract schema: %w", decodeKind, err)
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}
