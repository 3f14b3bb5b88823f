// Package pricefeeds describes the messages accepted and produced by the PriceFeeds contract.
//
// Every message decodes strictly: unknown fields, missing fields and nulls are schema mismatches,
// and tagged unions must carry exactly one variant.
package pricefeeds

import (
	"encoding/json"
	"fmt"

	"github.com/DefiantLabs/pricefeeds-indexer/cosmwasm/modules/wasm"
)

type (
	Decimal256 = wasm.Decimal256
	Uint128    = wasm.Uint128
)

// Reply IDs of the callbacks the contract sends back to requesters.
const (
	ReplyPriceFeed  uint64 = 1
	ReplyPriceFeeds uint64 = 2
)

type InstantiateMsg struct {
	Denom string `json:"denom"`
}

func (m *InstantiateMsg) UnmarshalJSON(data []byte) error {
	return wasm.DecodeFields(data, "", wasm.Field{Name: "denom", Dst: &m.Denom})
}

type Price struct {
	Price Decimal256 `json:"price"`
}

func (p *Price) UnmarshalJSON(data []byte) error {
	return wasm.DecodeFields(data, "", wasm.Field{Name: "price", Dst: &p.Price})
}

// PriceFeedReq lists the pairs of a multi-feed request. The response keeps this order.
type PriceFeedReq struct {
	Pairs []string `json:"pairs"`
}

func (r PriceFeedReq) MarshalJSON() ([]byte, error) {
	pairs := r.Pairs
	if pairs == nil {
		pairs = []string{}
	}
	return json.Marshal(struct {
		Pairs []string `json:"pairs"`
	}{pairs})
}

func (r *PriceFeedReq) UnmarshalJSON(data []byte) error {
	return wasm.DecodeFields(data, "", wasm.Field{Name: "pairs", Dst: &r.Pairs})
}

type PriceFeedResponse struct {
	Price  Decimal256 `json:"price"`
	Symbol string     `json:"symbol"`
}

func (r *PriceFeedResponse) UnmarshalJSON(data []byte) error {
	return wasm.DecodeFields(data, "",
		wasm.Field{Name: "price", Dst: &r.Price},
		wasm.Field{Name: "symbol", Dst: &r.Symbol},
	)
}

type PriceFeedsResponse struct {
	PriceFeeds []PriceFeedResponse `json:"price_feeds"`
}

func (r PriceFeedsResponse) MarshalJSON() ([]byte, error) {
	feeds := r.PriceFeeds
	if feeds == nil {
		feeds = []PriceFeedResponse{}
	}
	return json.Marshal(struct {
		PriceFeeds []PriceFeedResponse `json:"price_feeds"`
	}{feeds})
}

func (r *PriceFeedsResponse) UnmarshalJSON(data []byte) error {
	var raw json.RawMessage
	if err := wasm.DecodeFields(data, "", wasm.Field{Name: "price_feeds", Dst: &raw}); err != nil {
		return err
	}

	elems, err := wasm.DecodeArray(raw, "price_feeds")
	if err != nil {
		return err
	}

	feeds := make([]PriceFeedResponse, len(elems))
	for i, elem := range elems {
		if err := json.Unmarshal(elem, &feeds[i]); err != nil {
			return wasm.WithPath(err, fmt.Sprintf("price_feeds[%d]", i))
		}
	}

	r.PriceFeeds = feeds
	return nil
}

// ArrayOfString is the response to get_all_symbols.
type ArrayOfString []string

func (a ArrayOfString) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(a))
}

func (a *ArrayOfString) UnmarshalJSON(data []byte) error {
	list, err := wasm.DecodeStringList(data, "")
	if err != nil {
		return err
	}
	*a = list
	return nil
}

// RequestCost is the fee the contract expects for a request of the given number of pairs.
func RequestCost(costPerRequest Uint128, pairs int) (Uint128, error) {
	if pairs < 0 {
		return Uint128{}, wasm.SchemaErrorf("", "negative pair count %d", pairs)
	}
	return costPerRequest.Mul(wasm.NewUint128FromUint64(uint64(pairs)))
}
