package wasm

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/cosmos/cosmos-sdk/types/bech32"
)

const (
	MsgExecuteContract     = "/cosmwasm.wasm.v1.MsgExecuteContract"
	MsgInstantiateContract = "/cosmwasm.wasm.v1.MsgInstantiateContract"
	MsgMigrateContract     = "/cosmwasm.wasm.v1.MsgMigrateContract"
)

// Coin is the cosmwasm-std coin. Amounts attached to contract calls are Uint128.
type Coin struct {
	Denom  string  `json:"denom"`
	Amount Uint128 `json:"amount"`
}

type Coins []Coin

// AmountOf returns the amount sent in denom, zero when absent.
func (c Coins) AmountOf(denom string) Uint128 {
	for _, coin := range c {
		if coin.Denom == denom {
			return coin.Amount
		}
	}
	return Uint128{}
}

func (c Coins) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Coin(c))
}

// TypedMessage peeks at the type URL of a message from an LCD tx body.
type TypedMessage struct {
	Type string `json:"@type"`
}

// ExecuteContract is a MsgExecuteContract as rendered by the LCD. Msg holds the contract message as JSON; wasmd renders it
// inline, older gateways as a base64 string. Both are accepted.
type ExecuteContract struct {
	Type     string          `json:"@type,omitempty"`
	Sender   string          `json:"sender"`
	Contract string          `json:"contract"`
	Msg      json.RawMessage `json:"msg"`
	Funds    Coins           `json:"funds"`
}

func (m *ExecuteContract) UnmarshalJSON(data []byte) error {
	type plain ExecuteContract
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	msg, err := normalizeContractMsg(p.Msg)
	if err != nil {
		return fmt.Errorf("error decoding execute msg for contract %s: %w", p.Contract, err)
	}

	p.Msg = msg
	*m = ExecuteContract(p)
	return nil
}

// InstantiateContract is a MsgInstantiateContract as rendered by the LCD.
type InstantiateContract struct {
	Type   string          `json:"@type,omitempty"`
	Sender string          `json:"sender"`
	Admin  string          `json:"admin"`
	CodeID string          `json:"code_id"`
	Label  string          `json:"label"`
	Msg    json.RawMessage `json:"msg"`
	Funds  Coins           `json:"funds"`
}

func (m *InstantiateContract) UnmarshalJSON(data []byte) error {
	type plain InstantiateContract
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	msg, err := normalizeContractMsg(p.Msg)
	if err != nil {
		return fmt.Errorf("error decoding instantiate msg with label %q: %w", p.Label, err)
	}

	p.Msg = msg
	*m = InstantiateContract(p)
	return nil
}

func normalizeContractMsg(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return trimmed, nil
	}

	var encoded string
	if err := json.Unmarshal(trimmed, &encoded); err != nil {
		return nil, err
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}

	if !json.Valid(decoded) {
		return nil, fmt.Errorf("msg is not valid JSON")
	}

	return decoded, nil
}

// ValidateAddress checks addr is bech32 with the given human readable prefix. An empty prefix accepts any.
func ValidateAddress(addr string, prefix string) error {
	hrp, _, err := bech32.DecodeAndConvert(addr)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", addr, err)
	}

	if prefix != "" && hrp != prefix {
		return fmt.Errorf("invalid address %q: expected prefix %s, got %s", addr, prefix, hrp)
	}

	return nil
}
