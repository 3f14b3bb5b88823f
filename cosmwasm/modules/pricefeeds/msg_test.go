package pricefeeds

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DefiantLabs/pricefeeds-indexer/cosmwasm/modules/wasm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteMsgRoundTrip(t *testing.T) {
	price := wasm.MustDecimal256("123.456")

	msgs := map[string]ExecuteMsg{
		TagPublishPrice:      NewPublishPrice("BTC/USD", price),
		TagUpdatePrice:       NewUpdatePrice("ETH/USD", wasm.MustDecimal256("0")),
		TagRequestPriceFeed:  NewRequestPriceFeed("BTC/USD"),
		TagRequestPriceFeeds: NewRequestPriceFeeds("BTC/USD", "ETH/USD"),
		TagReceivePrices: NewReceivePrices(
			PriceFeedResponse{Symbol: "BTC/USD", Price: price},
			PriceFeedResponse{Symbol: "ETH/USD", Price: wasm.MustDecimal256("2.5")},
		),
		TagReceivePrice:      NewReceivePrice("ATOM/USD", wasm.MustDecimal256("9.87")),
		TagSetCostPerRequest: NewSetCostPerRequest(wasm.NewUint128FromUint64(1000)),
		TagChangeAdmin:       NewChangeAdmin("cosmos1admin"),
	}
	require.Len(t, msgs, len(ExecuteTags))

	for tag, msg := range msgs {
		require.Equal(t, tag, msg.Tag())

		out, err := msg.Marshal()
		require.NoError(t, err, tag)

		decoded, err := UnmarshalExecuteMsg(out)
		require.NoError(t, err, tag)
		assert.Equal(t, tag, decoded.Tag())

		again, err := decoded.Marshal()
		require.NoError(t, err, tag)
		assert.JSONEq(t, string(out), string(again), tag)
	}
}

func TestExecuteMsgWireFormat(t *testing.T) {
	out, err := NewPublishPrice("BTC/USD", wasm.MustDecimal256("123.4560")).Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, `{"publish_price":{"price":{"price":"123.456"},"symbol":"BTC/USD"}}`, string(out))

	out, err = NewSetCostPerRequest(wasm.MustUint128("340282366920938463463374607431768211455")).Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, `{"set_cost_per_request":{"cost_per_request":"340282366920938463463374607431768211455"}}`, string(out))

	out, err = NewReceivePrices().Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, `{"receive_prices":{"prices_response":{"price_feeds":[]}}}`, string(out))

	out, err = ExecuteMsg{RequestPriceFeeds: &RequestPriceFeeds{}}.Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, `{"request_price_feeds":{"request":{"pairs":[]}}}`, string(out))
}

func TestRequestPriceFeedsKeepsOrder(t *testing.T) {
	msg, err := UnmarshalExecuteMsg([]byte(`{"request_price_feeds":{"request":{"pairs":["BTC/USD","ETH/USD"]}}}`))
	require.NoError(t, err)
	require.NotNil(t, msg.RequestPriceFeeds)
	assert.Equal(t, []string{"BTC/USD", "ETH/USD"}, msg.RequestPriceFeeds.Request.Pairs)

	msg, err = UnmarshalExecuteMsg([]byte(`{"receive_prices":{"prices_response":{"price_feeds":[
		{"price":"3","symbol":"C"},{"price":"1","symbol":"A"},{"price":"2","symbol":"B"}]}}}`))
	require.NoError(t, err)
	var symbols []string
	for _, feed := range msg.ReceivePrices.PricesResponse.PriceFeeds {
		symbols = append(symbols, feed.Symbol)
	}
	assert.Equal(t, []string{"C", "A", "B"}, symbols)
}

func TestExecuteMsgRejectsMismatches(t *testing.T) {
	cases := map[string]struct {
		input string
		path  string
	}{
		"two tags": {
			`{"request_price_feed":{"symbol":"BTC/USD"},"change_admin":{"address":"a"}}`,
			"execute_msg",
		},
		"no tags":         {`{}`, "execute_msg"},
		"unknown tag":     {`{"delete_price":{"symbol":"BTC/USD"}}`, "execute_msg.delete_price"},
		"not an object":   {`["publish_price"]`, "execute_msg"},
		"null body":       {`{"change_admin":null}`, "execute_msg.change_admin"},
		"missing field":   {`{"publish_price":{"symbol":"BTC/USD"}}`, "execute_msg.publish_price.price"},
		"unknown field":   {`{"change_admin":{"address":"a","reason":"b"}}`, "execute_msg.change_admin.reason"},
		"negative price":  {`{"publish_price":{"price":{"price":"-1"},"symbol":"BTC/USD"}}`, "execute_msg.publish_price.price.price"},
		"numeric price":   {`{"update_price":{"price":{"price":1.5},"symbol":"BTC/USD"}}`, "execute_msg.update_price.price.price"},
		"numeric symbol":  {`{"request_price_feed":{"symbol":7}}`, "execute_msg.request_price_feed.symbol"},
		"null pair":       {`{"request_price_feeds":{"request":{"pairs":["BTC/USD",null]}}}`, "execute_msg.request_price_feeds.request.pairs[1]"},
		"null pairs":      {`{"request_price_feeds":{"request":{"pairs":null}}}`, "execute_msg.request_price_feeds.request.pairs"},
		"bad feed":        {`{"receive_prices":{"prices_response":{"price_feeds":[{"price":"1"}]}}}`, "execute_msg.receive_prices.prices_response.price_feeds[0].symbol"},
		"cost overflow":   {`{"set_cost_per_request":{"cost_per_request":"340282366920938463463374607431768211456"}}`, "execute_msg.set_cost_per_request.cost_per_request"},
		"cost as number":  {`{"set_cost_per_request":{"cost_per_request":1000}}`, "execute_msg.set_cost_per_request.cost_per_request"},
		"bad price shape": {`{"receive_price":{"price_response":{"price":"1.0.0","symbol":"X"}}}`, "execute_msg.receive_price.price_response.price"},
		"repeated tag": {
			`{"change_admin":{"address":"a"},"change_admin":{"address":"b"}}`,
			"execute_msg.change_admin",
		},
		"repeated field": {`{"change_admin":{"address":"a","address":"b"}}`, "execute_msg.change_admin.address"},
		"invalid utf-8":  {"{\"change_admin\":{\"address\":\"\xff\xfe\"}}", "execute_msg"},
	}

	for name, tc := range cases {
		_, err := UnmarshalExecuteMsg([]byte(tc.input))
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, wasm.ErrSchemaMismatch), name)

		var schemaErr *wasm.SchemaError
		require.True(t, errors.As(err, &schemaErr), name)
		assert.Equal(t, tc.path, schemaErr.Path, name)
	}

	_, err := UnmarshalExecuteMsg([]byte(`{"publish_price":`))
	assert.True(t, errors.Is(err, wasm.ErrSchemaMismatch))
}

func TestExecuteMsgMarshalRequiresOneVariant(t *testing.T) {
	_, err := ExecuteMsg{}.Marshal()
	require.Error(t, err)
	assert.True(t, errors.Is(err, wasm.ErrSchemaMismatch))

	both := NewRequestPriceFeed("BTC/USD")
	both.ChangeAdmin = &ChangeAdmin{Address: "a"}
	_, err = both.Marshal()
	require.Error(t, err)
	assert.Equal(t, "", both.Tag())
	assert.Error(t, both.Validate())
}

func TestQueryMsg(t *testing.T) {
	out, err := NewGetAllSymbols().Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, `{"get_all_symbols":{}}`, string(out))

	msg, err := UnmarshalQueryMsg([]byte(`{"get_all_symbols":{}}`))
	require.NoError(t, err)
	assert.Equal(t, TagGetAllSymbols, msg.Tag())

	for _, input := range []string{
		`{}`,
		`{"get_all_symbols":{"limit":10}}`,
		`{"get_all_symbols":null}`,
		`{"get_all_symbols":{},"get_price":{}}`,
		`{"get_price":{}}`,
		`"get_all_symbols"`,
	} {
		_, err := UnmarshalQueryMsg([]byte(input))
		assert.True(t, errors.Is(err, wasm.ErrSchemaMismatch), input)
	}

	_, err = QueryMsg{}.Marshal()
	assert.Error(t, err)
}

func TestArrayOfString(t *testing.T) {
	symbols, err := UnmarshalArrayOfString([]byte(`["BTC/USD","ETH/USD"]`))
	require.NoError(t, err)
	assert.Equal(t, ArrayOfString{"BTC/USD", "ETH/USD"}, symbols)

	empty, err := UnmarshalArrayOfString([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, empty)

	out, err := ArrayOfString(nil).Marshal()
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(out))

	for _, input := range []string{`null`, `["a",1]`, `{"symbols":[]}`} {
		_, err := UnmarshalArrayOfString([]byte(input))
		assert.Error(t, err, input)
	}
}

func TestInstantiateMsg(t *testing.T) {
	msg, err := UnmarshalInstantiateMsg([]byte(`{"denom":"uom"}`))
	require.NoError(t, err)
	assert.Equal(t, "uom", msg.Denom)

	_, err = UnmarshalInstantiateMsg([]byte(`{"denom":"uom","admin":"x"}`))
	assert.Error(t, err)

	_, err = UnmarshalInstantiateMsg([]byte(`{}`))
	var schemaErr *wasm.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "instantiate_msg.denom", schemaErr.Path)
}

func TestPriceFeedResponses(t *testing.T) {
	single, err := UnmarshalPriceFeedResponse([]byte(`{"price":"0","symbol":"BTC/USD"}`))
	require.NoError(t, err)
	assert.True(t, single.Price.IsZero())

	multi, err := UnmarshalPriceFeedsResponse([]byte(`{"price_feeds":[]}`))
	require.NoError(t, err)
	assert.Empty(t, multi.PriceFeeds)

	_, err = UnmarshalPriceFeedsResponse([]byte(`{"price_feeds":[null]}`))
	assert.Error(t, err)
}

func TestRequestCost(t *testing.T) {
	cost, err := RequestCost(wasm.NewUint128FromUint64(1000), 2)
	require.NoError(t, err)
	assert.Equal(t, "2000", cost.String())

	cost, err = RequestCost(wasm.NewUint128FromUint64(1000), 0)
	require.NoError(t, err)
	assert.True(t, cost.IsZero())

	_, err = RequestCost(wasm.MaxUint128(), 2)
	assert.Error(t, err)

	_, err = RequestCost(wasm.NewUint128FromUint64(1), -1)
	assert.Error(t, err)
}

func TestClassifyContractError(t *testing.T) {
	cases := map[string]ContractErrorKind{
		"failed to execute message; message index: 0: Unauthorized: execute wasm contract failed":      ContractErrorUnauthorized,
		"failed to execute message; message index: 0: Insufficient Fees: execute wasm contract failed": ContractErrorInsufficientFees,
		"InvalidExecuteMsg: execute wasm contract failed":                                              ContractErrorInvalidExecuteMsg,
		"price_feeds::state::Price not found: execute wasm contract failed":                            ContractErrorStd,
	}

	for log, kind := range cases {
		contractErr := ClassifyContractError(log)
		assert.Equal(t, kind, contractErr.Kind, log)
		assert.Contains(t, contractErr.Error(), string(kind))
	}
}

func TestSchemaDocument(t *testing.T) {
	doc := Schema()
	assert.Equal(t, ContractName, doc["contract_name"])

	execute, ok := doc["execute"].(map[string]interface{})
	require.True(t, ok)
	variants, ok := execute["oneOf"].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, variants, len(ExecuteTags))

	for i, v := range variants {
		required, ok := v["required"].([]string)
		require.True(t, ok)
		assert.Equal(t, []string{ExecuteTags[i]}, required)
		assert.Equal(t, false, v["additionalProperties"])
	}

	dir := t.TempDir()
	written, err := WriteSchemaFiles(dir)
	require.NoError(t, err)
	assert.Len(t, written, 6)

	raw, err := os.ReadFile(filepath.Join(dir, "raw", "execute.json"))
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "ExecuteMsg", decoded["title"])
}
