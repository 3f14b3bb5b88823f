package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/DefiantLabs/pricefeeds-indexer/cosmwasm/modules/consumer"
	"github.com/DefiantLabs/pricefeeds-indexer/cosmwasm/modules/pricefeeds"
	"github.com/DefiantLabs/pricefeeds-indexer/cosmwasm/modules/wasm"
)

// Message kinds the decode command accepts.
const (
	kindExecute         = "execute"
	kindQuery           = "query"
	kindInstantiate     = "instantiate"
	kindSymbols         = "symbols"
	kindPrices          = "prices"
	kindPrice           = "price"
	kindConsumerExecute = "consumer-execute"
	kindConsumerQuery   = "consumer-query"
	kindConsumerFeed    = "consumer-price-feed"
)

var decodeKinds = []string{
	kindExecute, kindQuery, kindInstantiate, kindSymbols, kindPrices, kindPrice,
	kindConsumerExecute, kindConsumerQuery, kindConsumerFeed,
}

// executeArgs are the flag values an execute message is built from.
type executeArgs struct {
	Symbol  string
	Price   string
	Pairs   []string
	Feeds   []string // SYMBOL=PRICE
	Cost    string
	Address string
}

func buildExecuteMsg(tag string, args executeArgs) (pricefeeds.ExecuteMsg, error) {
	requireSymbol := func() error {
		if args.Symbol == "" {
			return fmt.Errorf("%s needs --symbol", tag)
		}
		return nil
	}

	switch tag {
	case pricefeeds.TagPublishPrice, pricefeeds.TagUpdatePrice, pricefeeds.TagReceivePrice:
		if err := requireSymbol(); err != nil {
			return pricefeeds.ExecuteMsg{}, err
		}
		price, err := wasm.ParseDecimal256(args.Price)
		if err != nil {
			return pricefeeds.ExecuteMsg{}, fmt.Errorf("--price: %w", err)
		}
		switch tag {
		case pricefeeds.TagPublishPrice:
			return pricefeeds.NewPublishPrice(args.Symbol, price), nil
		case pricefeeds.TagUpdatePrice:
			return pricefeeds.NewUpdatePrice(args.Symbol, price), nil
		default:
			return pricefeeds.NewReceivePrice(args.Symbol, price), nil
		}
	case pricefeeds.TagRequestPriceFeed:
		if err := requireSymbol(); err != nil {
			return pricefeeds.ExecuteMsg{}, err
		}
		return pricefeeds.NewRequestPriceFeed(args.Symbol), nil
	case pricefeeds.TagRequestPriceFeeds:
		return pricefeeds.NewRequestPriceFeeds(args.Pairs...), nil
	case pricefeeds.TagReceivePrices:
		feeds := make([]pricefeeds.PriceFeedResponse, 0, len(args.Feeds))
		for _, feed := range args.Feeds {
			symbol, rawPrice, ok := strings.Cut(feed, "=")
			if !ok || symbol == "" {
				return pricefeeds.ExecuteMsg{}, fmt.Errorf("invalid --feed %q, expected SYMBOL=PRICE", feed)
			}
			price, err := wasm.ParseDecimal256(rawPrice)
			if err != nil {
				return pricefeeds.ExecuteMsg{}, fmt.Errorf("--feed %s: %w", symbol, err)
			}
			feeds = append(feeds, pricefeeds.PriceFeedResponse{Symbol: symbol, Price: price})
		}
		return pricefeeds.NewReceivePrices(feeds...), nil
	case pricefeeds.TagSetCostPerRequest:
		cost, err := wasm.ParseUint128(args.Cost)
		if err != nil {
			return pricefeeds.ExecuteMsg{}, fmt.Errorf("--cost: %w", err)
		}
		return pricefeeds.NewSetCostPerRequest(cost), nil
	case pricefeeds.TagChangeAdmin:
		if args.Address == "" {
			return pricefeeds.ExecuteMsg{}, fmt.Errorf("%s needs --address", tag)
		}
		return pricefeeds.NewChangeAdmin(args.Address), nil
	default:
		return pricefeeds.ExecuteMsg{}, fmt.Errorf("unknown execute tag %q, expected one of %s", tag, strings.Join(pricefeeds.ExecuteTags, ", "))
	}
}

// requestFunds returns the coins to attach to a request message, nil for any other message.
func requestFunds(msg pricefeeds.ExecuteMsg, denom string, costPerRequest string) (wasm.Coins, error) {
	pairs := consumer.PairCount(msg)
	if pairs == 0 {
		return nil, nil
	}

	cost, err := wasm.ParseUint128(costPerRequest)
	if err != nil {
		return nil, fmt.Errorf("--cost-per-request: %w", err)
	}
	return consumer.RequestFunds(denom, cost, pairs)
}

// decodeMessage strictly decodes data as kind and returns the canonical JSON encoding of the message.
func decodeMessage(kind string, data []byte) ([]byte, error) {
	var (
		msg interface{}
		err error
	)

	switch kind {
	case kindExecute:
		msg, err = pricefeeds.UnmarshalExecuteMsg(data)
	case kindQuery:
		msg, err = pricefeeds.UnmarshalQueryMsg(data)
	case kindInstantiate:
		msg, err = pricefeeds.UnmarshalInstantiateMsg(data)
	case kindSymbols:
		msg, err = pricefeeds.UnmarshalArrayOfString(data)
	case kindPrices:
		msg, err = pricefeeds.UnmarshalPriceFeedsResponse(data)
	case kindPrice:
		msg, err = pricefeeds.UnmarshalPriceFeedResponse(data)
	case kindConsumerExecute:
		var m consumer.ExecuteMsg
		msg, err = &m, unmarshalStrict(data, &m)
	case kindConsumerQuery:
		var m consumer.QueryMsg
		msg, err = &m, unmarshalStrict(data, &m)
	case kindConsumerFeed:
		var m consumer.PriceFeed
		msg, err = &m, unmarshalStrict(data, &m)
	default:
		return nil, fmt.Errorf("unknown kind %q, expected one of %s", kind, strings.Join(decodeKinds, ", "))
	}
	if err != nil {
		return nil, err
	}

	return json.Marshal(msg)
}

func unmarshalStrict(data []byte, dst interface{}) error {
	if !json.Valid(data) {
		return wasm.SchemaErrorf("", "invalid JSON")
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return wasm.WithPath(err, "")
	}
	return nil
}
