package pricefeeds

import (
	"encoding/json"

	"github.com/DefiantLabs/pricefeeds-indexer/cosmwasm/modules/wasm"
)

// To parse and produce contract messages:
//
//	executeMsg, err := UnmarshalExecuteMsg(bytes)
//	bytes, err = executeMsg.Marshal()
//
// Decoding errors wrap wasm.ErrSchemaMismatch.

func UnmarshalInstantiateMsg(data []byte) (InstantiateMsg, error) {
	var r InstantiateMsg
	err := unmarshal(data, &r, "instantiate_msg")
	return r, err
}

func (r InstantiateMsg) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

func UnmarshalExecuteMsg(data []byte) (ExecuteMsg, error) {
	var r ExecuteMsg
	err := unmarshal(data, &r, "")
	return r, err
}

func (r ExecuteMsg) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

func UnmarshalQueryMsg(data []byte) (QueryMsg, error) {
	var r QueryMsg
	err := unmarshal(data, &r, "")
	return r, err
}

func (r QueryMsg) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

func UnmarshalArrayOfString(data []byte) (ArrayOfString, error) {
	var r ArrayOfString
	err := unmarshal(data, &r, "array_of_string")
	return r, err
}

func (r ArrayOfString) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

func UnmarshalPriceFeedResponse(data []byte) (PriceFeedResponse, error) {
	var r PriceFeedResponse
	err := unmarshal(data, &r, "price_feed_response")
	return r, err
}

func (r PriceFeedResponse) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

func UnmarshalPriceFeedsResponse(data []byte) (PriceFeedsResponse, error) {
	var r PriceFeedsResponse
	err := unmarshal(data, &r, "price_feeds_response")
	return r, err
}

func (r PriceFeedsResponse) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// unmarshal decodes one message. Syntax errors are reported as schema mismatches at path.
func unmarshal(data []byte, dst interface{}, path string) error {
	if !json.Valid(data) {
		return wasm.SchemaErrorf(path, "invalid JSON")
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return wasm.WithPath(err, path)
	}
	return nil
}
