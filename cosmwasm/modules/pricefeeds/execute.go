package pricefeeds

import (
	"encoding/json"
	"strings"

	"github.com/DefiantLabs/pricefeeds-indexer/cosmwasm/modules/wasm"
)

const (
	TagPublishPrice      = "publish_price"
	TagUpdatePrice       = "update_price"
	TagRequestPriceFeed  = "request_price_feed"
	TagRequestPriceFeeds = "request_price_feeds"
	TagReceivePrices     = "receive_prices"
	TagReceivePrice      = "receive_price"
	TagSetCostPerRequest = "set_cost_per_request"
	TagChangeAdmin       = "change_admin"
)

// ExecuteTags is the closed set of execute variants, in declaration order.
var ExecuteTags = []string{
	TagPublishPrice,
	TagUpdatePrice,
	TagRequestPriceFeed,
	TagRequestPriceFeeds,
	TagReceivePrices,
	TagReceivePrice,
	TagSetCostPerRequest,
	TagChangeAdmin,
}

func IsExecuteTag(tag string) bool {
	for _, t := range ExecuteTags {
		if t == tag {
			return true
		}
	}
	return false
}

// ExecuteMsg is a tagged union: exactly one field is set.
type ExecuteMsg struct {
	PublishPrice      *PublishPrice      `json:"publish_price,omitempty"`
	UpdatePrice       *UpdatePrice       `json:"update_price,omitempty"`
	RequestPriceFeed  *RequestPriceFeed  `json:"request_price_feed,omitempty"`
	RequestPriceFeeds *RequestPriceFeeds `json:"request_price_feeds,omitempty"`
	ReceivePrices     *ReceivePrices     `json:"receive_prices,omitempty"`
	ReceivePrice      *ReceivePrice      `json:"receive_price,omitempty"`
	SetCostPerRequest *SetCostPerRequest `json:"set_cost_per_request,omitempty"`
	ChangeAdmin       *ChangeAdmin       `json:"change_admin,omitempty"`
}

type PublishPrice struct {
	Price  Price  `json:"price"`
	Symbol string `json:"symbol"`
}

func (v *PublishPrice) UnmarshalJSON(data []byte) error {
	return wasm.DecodeFields(data, "",
		wasm.Field{Name: "price", Dst: &v.Price},
		wasm.Field{Name: "symbol", Dst: &v.Symbol},
	)
}

type UpdatePrice struct {
	Price  Price  `json:"price"`
	Symbol string `json:"symbol"`
}

func (v *UpdatePrice) UnmarshalJSON(data []byte) error {
	return wasm.DecodeFields(data, "",
		wasm.Field{Name: "price", Dst: &v.Price},
		wasm.Field{Name: "symbol", Dst: &v.Symbol},
	)
}

type RequestPriceFeed struct {
	Symbol string `json:"symbol"`
}

func (v *RequestPriceFeed) UnmarshalJSON(data []byte) error {
	return wasm.DecodeFields(data, "", wasm.Field{Name: "symbol", Dst: &v.Symbol})
}

type RequestPriceFeeds struct {
	Request PriceFeedReq `json:"request"`
}

func (v *RequestPriceFeeds) UnmarshalJSON(data []byte) error {
	return wasm.DecodeFields(data, "", wasm.Field{Name: "request", Dst: &v.Request})
}

// ReceivePrices is the callback carrying the answer to request_price_feeds.
type ReceivePrices struct {
	PricesResponse PriceFeedsResponse `json:"prices_response"`
}

func (v *ReceivePrices) UnmarshalJSON(data []byte) error {
	return wasm.DecodeFields(data, "", wasm.Field{Name: "prices_response", Dst: &v.PricesResponse})
}

// ReceivePrice is the callback carrying the answer to request_price_feed.
type ReceivePrice struct {
	PriceResponse PriceFeedResponse `json:"price_response"`
}

func (v *ReceivePrice) UnmarshalJSON(data []byte) error {
	return wasm.DecodeFields(data, "", wasm.Field{Name: "price_response", Dst: &v.PriceResponse})
}

type SetCostPerRequest struct {
	CostPerRequest Uint128 `json:"cost_per_request"`
}

func (v *SetCostPerRequest) UnmarshalJSON(data []byte) error {
	return wasm.DecodeFields(data, "", wasm.Field{Name: "cost_per_request", Dst: &v.CostPerRequest})
}

type ChangeAdmin struct {
	Address string `json:"address"`
}

func (v *ChangeAdmin) UnmarshalJSON(data []byte) error {
	return wasm.DecodeFields(data, "", wasm.Field{Name: "address", Dst: &v.Address})
}

func NewPublishPrice(symbol string, price Decimal256) ExecuteMsg {
	return ExecuteMsg{PublishPrice: &PublishPrice{Price: Price{Price: price}, Symbol: symbol}}
}

func NewUpdatePrice(symbol string, price Decimal256) ExecuteMsg {
	return ExecuteMsg{UpdatePrice: &UpdatePrice{Price: Price{Price: price}, Symbol: symbol}}
}

func NewRequestPriceFeed(symbol string) ExecuteMsg {
	return ExecuteMsg{RequestPriceFeed: &RequestPriceFeed{Symbol: symbol}}
}

func NewRequestPriceFeeds(pairs ...string) ExecuteMsg {
	return ExecuteMsg{RequestPriceFeeds: &RequestPriceFeeds{Request: PriceFeedReq{Pairs: append([]string{}, pairs...)}}}
}

func NewReceivePrices(feeds ...PriceFeedResponse) ExecuteMsg {
	return ExecuteMsg{ReceivePrices: &ReceivePrices{PricesResponse: PriceFeedsResponse{PriceFeeds: append([]PriceFeedResponse{}, feeds...)}}}
}

func NewReceivePrice(symbol string, price Decimal256) ExecuteMsg {
	return ExecuteMsg{ReceivePrice: &ReceivePrice{PriceResponse: PriceFeedResponse{Price: price, Symbol: symbol}}}
}

func NewSetCostPerRequest(cost Uint128) ExecuteMsg {
	return ExecuteMsg{SetCostPerRequest: &SetCostPerRequest{CostPerRequest: cost}}
}

func NewChangeAdmin(address string) ExecuteMsg {
	return ExecuteMsg{ChangeAdmin: &ChangeAdmin{Address: address}}
}

// setTags lists the populated variants in declaration order.
func (m ExecuteMsg) setTags() []string {
	var tags []string
	if m.PublishPrice != nil {
		tags = append(tags, TagPublishPrice)
	}
	if m.UpdatePrice != nil {
		tags = append(tags, TagUpdatePrice)
	}
	if m.RequestPriceFeed != nil {
		tags = append(tags, TagRequestPriceFeed)
	}
	if m.RequestPriceFeeds != nil {
		tags = append(tags, TagRequestPriceFeeds)
	}
	if m.ReceivePrices != nil {
		tags = append(tags, TagReceivePrices)
	}
	if m.ReceivePrice != nil {
		tags = append(tags, TagReceivePrice)
	}
	if m.SetCostPerRequest != nil {
		tags = append(tags, TagSetCostPerRequest)
	}
	if m.ChangeAdmin != nil {
		tags = append(tags, TagChangeAdmin)
	}
	return tags
}

// Tag returns the active variant, or an empty string when the message is not exactly one variant.
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
	case TagPublishPrice:
		out.PublishPrice = &PublishPrice{}
		dst = out.PublishPrice
	case TagUpdatePrice:
		out.UpdatePrice = &UpdatePrice{}
		dst = out.UpdatePrice
	case TagRequestPriceFeed:
		out.RequestPriceFeed = &RequestPriceFeed{}
		dst = out.RequestPriceFeed
	case TagRequestPriceFeeds:
		out.RequestPriceFeeds = &RequestPriceFeeds{}
		dst = out.RequestPriceFeeds
	case TagReceivePrices:
		out.ReceivePrices = &ReceivePrices{}
		dst = out.ReceivePrices
	case TagReceivePrice:
		out.ReceivePrice = &ReceivePrice{}
		dst = out.ReceivePrice
	case TagSetCostPerRequest:
		out.SetCostPerRequest = &SetCostPerRequest{}
		dst = out.SetCostPerRequest
	case TagChangeAdmin:
		out.ChangeAdmin = &ChangeAdmin{}
		dst = out.ChangeAdmin
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return wasm.WithPath(err, wasm.JoinPath("execute_msg", tag))
	}

	*m = out
	return nil
}
