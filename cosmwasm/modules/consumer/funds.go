package consumer

import (
	"github.com/DefiantLabs/pricefeeds-indexer/cosmwasm/modules/pricefeeds"
	"github.com/DefiantLabs/pricefeeds-indexer/cosmwasm/modules/wasm"
)

// Fee the sample consumer attaches per requested pair.
const (
	DefaultDenom          = "uom"
	DefaultCostPerRequest = 1000
)

// RequestFunds returns the coins a consumer attaches to a request for the given number of pairs.
func RequestFunds(denom string, costPerRequest wasm.Uint128, pairs int) (wasm.Coins, error) {
	amount, err := pricefeeds.RequestCost(costPerRequest, pairs)
	if err != nil {
		return nil, err
	}
	return wasm.Coins{{Denom: denom, Amount: amount}}, nil
}

// PairCount is the number of pairs a request message asks for, zero for callbacks.
func PairCount(msg pricefeeds.ExecuteMsg) int {
	switch msg.Tag() {
	case pricefeeds.TagRequestPriceFeed:
		return 1
	case pricefeeds.TagRequestPriceFeeds:
		return len(msg.RequestPriceFeeds.Request.Pairs)
	default:
		return 0
	}
}
