package tx

import (
	"encoding/json"
	"strconv"
)

// GetTxsEventResponse is the LCD answer to /cosmos/tx/v1beta1/txs. Txs and TxResponses are parallel arrays.
type GetTxsEventResponse struct {
	Txs         []IndexerTx `json:"txs"`
	TxResponses []Response  `json:"tx_responses"`
	Pagination  Pagination  `json:"pagination"`
	Total       string      `json:"total"`
}

type Pagination struct {
	NextKey string `json:"next_key"`
	Total   string `json:"total"`
}

// TotalCount returns the number of txs matching the search, as reported by either the legacy total or the pagination.
func (r GetTxsEventResponse) TotalCount() uint64 {
	for _, s := range []string{r.Total, r.Pagination.Total} {
		if n, err := strconv.ParseUint(s, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

type IndexerTx struct {
	Body     Body     `json:"body"`
	AuthInfo AuthInfo `json:"auth_info"`
}

type Response struct {
	TxHash    string       `json:"txhash"`
	Height    string       `json:"height"`
	TimeStamp string       `json:"timestamp"`
	Code      uint32       `json:"code"`
	Codespace string       `json:"codespace"`
	RawLog    string       `json:"raw_log"`
	Log       []LogMessage `json:"logs"`
	GasWanted string       `json:"gas_wanted"`
	GasUsed   string       `json:"gas_used"`
}

// TxLogMessage:
// Cosmos blockchains return Transactions with an array of "logs" e.g.
//
// "logs": [
//
//	{
//		"msg_index": 0,
//		"events": [
//		  {
//			"type": "wasm",
//			"attributes": [
//			  {
//				"key": "_contract_address",
//				"value": "osmo1..."
//			  }, ...
//			]
//		  } ...
//
// The individual log always has a msg_index corresponding to the Message from the Transaction.
// Failed transactions carry no logs, only the raw_log with the error.
type LogMessage struct {
	MessageIndex int               `json:"msg_index"`
	Events       []LogMessageEvent `json:"events"`
}

type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type LogMessageEvent struct {
	Type       string      `json:"type"`
	Attributes []Attribute `json:"attributes"`
}

// Body keeps messages raw, they are decoded per type URL.
type Body struct {
	Messages []json.RawMessage `json:"messages"`
	Memo     string            `json:"memo"`
}

type AuthInfo struct {
	TxFee Fee `json:"fee"`
}

type Fee struct {
	TxFeeAmount []FeeAmount `json:"amount"`
	GasLimit    string      `json:"gas_limit"`
	Payer       string      `json:"payer"`
}

type FeeAmount struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// In the json, TX data is split into 2 arrays, used to merge the full dataset
type MergedTx struct {
	Tx         IndexerTx
	TxResponse Response
}

// MergeTxs pairs each tx response with its tx body.
func MergeTxs(resp GetTxsEventResponse) ([]MergedTx, error) {
	if len(resp.Txs) != len(resp.TxResponses) {
		return nil, &TxResponseMismatchError{Txs: len(resp.Txs), TxResponses: len(resp.TxResponses)}
	}

	merged := make([]MergedTx, len(resp.Txs))
	for i := range resp.Txs {
		merged[i] = MergedTx{Tx: resp.Txs[i], TxResponse: resp.TxResponses[i]}
	}
	return merged, nil
}
