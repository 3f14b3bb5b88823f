package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/DefiantLabs/pricefeeds-indexer/cosmwasm/modules/consumer"
	"github.com/DefiantLabs/pricefeeds-indexer/cosmwasm/modules/pricefeeds"
	"github.com/DefiantLabs/pricefeeds-indexer/cosmwasm/modules/wasm"
	"github.com/spf13/cobra"
)

var (
	encodeArgs           executeArgs
	encodeDenom          string
	encodeCostPerRequest string
)

func init() {
	encodeExecuteCmd.Flags().StringVar(&encodeArgs.Symbol, "symbol", "", "symbol of publish_price, update_price, receive_price and request_price_feed")
	encodeExecuteCmd.Flags().StringVar(&encodeArgs.Price, "price", "", "decimal price of publish_price, update_price and receive_price")
	encodeExecuteCmd.Flags().StringSliceVar(&encodeArgs.Pairs, "pairs", nil, "pairs of request_price_feeds, in order")
	encodeExecuteCmd.Flags().StringSliceVar(&encodeArgs.Feeds, "feed", nil, "SYMBOL=PRICE entries of receive_prices, in order")
	encodeExecuteCmd.Flags().StringVar(&encodeArgs.Cost, "cost", "", "cost of set_cost_per_request")
	encodeExecuteCmd.Flags().StringVar(&encodeArgs.Address, "address", "", "new admin of change_admin")
	encodeExecuteCmd.Flags().StringVar(&encodeCostPerRequest, "cost-per-request", "", "when set, also print the funds a request needs at this cost per pair")
	encodeExecuteCmd.Flags().StringVar(&encodeDenom, "denom", consumer.DefaultDenom, "denom of the request funds")

	encodeInstantiateCmd.Flags().StringVar(&encodeDenom, "denom", consumer.DefaultDenom, "denom the contract charges requests in")

	encodeCmd.AddCommand(encodeExecuteCmd, encodeQueryCmd, encodeInstantiateCmd)
	rootCmd.AddCommand(encodeCmd)
}

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Builds a PriceFeeds contract message and prints its JSON.",
}

var encodeExecuteCmd = &cobra.Command{
	Use:       "execute <tag>",
	Short:     "Builds an execute message.",
	Long:      "Builds an execute message. Valid tags: " + strings.Join(pricefeeds.ExecuteTags, ", "),
	Args:      cobra.ExactArgs(1),
	ValidArgs: pricefeeds.ExecuteTags,
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := buildExecuteMsg(args[0], encodeArgs)
		if err != nil {
			return err
		}

		if encodeCostPerRequest == "" {
			return printMessage(cmd, msg)
		}

		funds, err := requestFunds(msg, encodeDenom, encodeCostPerRequest)
		if err != nil {
			return err
		}
		return printMessage(cmd, struct {
			Msg   pricefeeds.ExecuteMsg `json:"msg"`
			Funds wasm.Coins            `json:"funds"`
		}{msg, funds})
	},
}

var encodeQueryCmd = &cobra.Command{
	Use:       "query <tag>",
	Short:     "Builds a query message.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: pricefeeds.QueryTags,
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] != pricefeeds.TagGetAllSymbols {
			return fmt.Errorf("unknown query tag %q, expected %s", args[0], pricefeeds.TagGetAllSymbols)
		}
		return printMessage(cmd, pricefeeds.NewGetAllSymbols())
	},
}

var encodeInstantiateCmd = &cobra.Command{
	Use:   "instantiate",
	Short: "Builds the instantiate message.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printMessage(cmd, pricefeeds.InstantiateMsg{Denom: encodeDenom})
	},
}

func printMessage(cmd *cobra.Command, msg interface{}) error {
	out, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
