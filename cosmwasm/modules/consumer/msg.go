// Package consumer holds the messages of the sample consumer contract that requests prices from
// a PriceFeeds contract and stores the callbacks it receives.
package consumer

import (
	"encoding/json"
	"strings"

	"github.com/DefiantLabs/pricefeeds-indexer/cosmwasm/modules/pricefeeds"
	"github.com/DefiantLabs/pricefeeds-indexer/cosmwasm/modules/wasm"
)

const (
	TagRequestSinglePrice    = "request_single_price"
	TagRequestMultiplePrices = "request_multiple_prices"
	TagReceivePrice          = "receive_price"
	TagReceivePrices         = "receive_prices"

	TagGetValue = "get_value"
)

var (
	ExecuteTags = []string{TagRequestSinglePrice, TagRequestMultiplePrices, TagReceivePrice, TagReceivePrices}
	QueryTags   = []string{TagGetValue}
)

type InstantiateMsg struct {
	PriceFeedContract string `json:"price_feed_contract"`
}

func (m *InstantiateMsg) UnmarshalJSON(data []byte) error {
	return wasm.DecodeFields(data, "", wasm.Field{Name: "price_feed_contract", Dst: &m.PriceFeedContract})
}

type ExecuteMsg struct {
	RequestSinglePrice    *RequestSinglePrice       `json:"request_single_price,omitempty"`
	RequestMultiplePrices *RequestMultiplePrices    `json:"request_multiple_prices,omitempty"`
	ReceivePrice          *pricefeeds.ReceivePrice  `json:"receive_price,omitempty"`
	ReceivePrices         *pricefeeds.ReceivePrices `json:"receive_prices,omitempty"`
}

type RequestSinglePrice struct {
	Pair string `json:"pair"`
}

func (v *RequestSinglePrice) UnmarshalJSON(data []byte) error {
	return wasm.DecodeFields(data, "", wasm.Field{Name: "pair", Dst: &v.Pair})
}

type RequestMultiplePrices struct {
	Pairs []string `json:"pairs"`
}

func (v RequestMultiplePrices) MarshalJSON() ([]byte, error) {
	pairs := v.Pairs
	if pairs == nil {
		pairs = []string{}
	}
	return json.Marshal(struct {
		Pairs []string `json:"pairs"`
	}{pairs})
}

func (v *RequestMultiplePrices) UnmarshalJSON(data []byte) error {
	return wasm.DecodeFields(data, "", wasm.Field{Name: "pairs", Dst: &v.Pairs})
}

func (m ExecuteMsg) setTags() []string {
	var tags []string
	if m.RequestSinglePrice != nil {
		tags = append(tags, TagRequestSinglePrice)
	}
	if m.RequestMultiplePrices != nil {
		tags = append(tags, TagRequestMultiplePrices)
	}
	if m.ReceivePrice != nil {
		tags = append(tags, TagReceivePrice)
	}
	if m.ReceivePrices != nil {
		tags = append(tags, TagReceivePrices)
	}
	return tags
}

func (m ExecuteMsg) Tag() string {
	tags := m.setTags()
	if len(tags) != 1 {
		return ""
	}
	return tags[0]
}

func (m ExecuteMsg) Validate() error {
	switch tags := m.setTags(); len(tags) {
	case 1:
		return nil
	case 0:
		return wasm.SchemaErrorf("execute_msg", "no variant set, expected one of %s", strings.Join(ExecuteTags, ", "))
	default:
		return wasm.SchemaErrorf("execute_msg", "multiple variants set: %s", strings.Join(tags, ", "))
	}
}

func (m ExecuteMsg) MarshalJSON() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	type plain ExecuteMsg
	return json.Marshal(plain(m))
}

func (m *ExecuteMsg) UnmarshalJSON(data []byte) error {
	tag, body, err := wasm.DecodeVariant(data, "execute_msg", ExecuteTags)
	if err != nil {
		return err
	}

	var out ExecuteMsg
	var dst interface{}
	switch tag {
	case TagRequestSinglePrice:
		out.RequestSinglePrice = &RequestSinglePrice{}
		dst = out.RequestSinglePrice
	case TagRequestMultiplePrices:
		out.RequestMultiplePrices = &RequestMultiplePrices{}
		dst = out.RequestMultiplePrices
	case TagReceivePrice:
		out.ReceivePrice = &pricefeeds.ReceivePrice{}
		dst = out.ReceivePrice
	case TagReceivePrices:
		out.ReceivePrices = &pricefeeds.ReceivePrices{}
		dst = out.ReceivePrices
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return wasm.WithPath(err, wasm.JoinPath("execute_msg", tag))
	}

	*m = out
	return nil
}

// QueryMsg has a single variant, get_value, answered with a PriceFeed.
type QueryMsg struct {
	GetValue *GetValue `json:"get_value,omitempty"`
}

type GetValue struct {
	Pair string `json:"pair"`
}

func (q *GetValue) UnmarshalJSON(data []byte) error {
	return wasm.DecodeFields(data, "", wasm.Field{Name: "pair", Dst: &q.Pair})
}

func (m QueryMsg) Tag() string {
	if m.GetValue != nil {
		return TagGetValue
	}
	return ""
}

func (m QueryMsg) MarshalJSON() ([]byte, error) {
	if m.GetValue == nil {
		return nil, wasm.SchemaErrorf("query_msg", "no variant set, expected %s", TagGetValue)
	}
	type plain QueryMsg
	return json.Marshal(plain(m))
}

func (m *QueryMsg) UnmarshalJSON(data []byte) error {
	_, body, err := wasm.DecodeVariant(data, "query_msg", QueryTags)
	if err != nil {
		return err
	}

	out := QueryMsg{GetValue: &GetValue{}}
	if err := json.Unmarshal(body, out.GetValue); err != nil {
		return wasm.WithPath(err, wasm.JoinPath("query_msg", TagGetValue))
	}

	*m = out
	return nil
}

// PriceFeed is the price the consumer stored for a pair.
type PriceFeed struct {
	Price wasm.Decimal256 `json:"price"`
}

func (p *PriceFeed) UnmarshalJSON(data []byte) error {
	return wasm.DecodeFields(data, "", wasm.Field{Name: "price", Dst: &p.Price})
}

func NewRequestSinglePrice(pair string) ExecuteMsg {
	return ExecuteMsg{RequestSinglePrice: &RequestSinglePrice{Pair: pair}}
}

func NewRequestMultiplePrices(pairs ...string) ExecuteMsg {
	return ExecuteMsg{RequestMultiplePrices: &RequestMultiplePrices{Pairs: append([]string{}, pairs...)}}
}

func NewGetValue(pair string) QueryMsg {
	return QueryMsg{GetValue: &GetValue{Pair: pair}}
}

// FeedRequest is the PriceFeeds execute message the consumer forwards for msg.
func FeedRequest(msg ExecuteMsg) (pricefeeds.ExecuteMsg, error) {
	switch msg.Tag() {
	case TagRequestSinglePrice:
		return pricefeeds.NewRequestPriceFeed(msg.RequestSinglePrice.Pair), nil
	case TagRequestMultiplePrices:
		return pricefeeds.NewRequestPriceFeeds(msg.RequestMultiplePrices.Pairs...), nil
	default:
		return pricefeeds.ExecuteMsg{}, wasm.SchemaErrorf("execute_msg", "%q does not request prices", msg.Tag())
	}
}
