package pricefeeds

import (
	"encoding/json"

	"github.com/DefiantLabs/pricefeeds-indexer/cosmwasm/modules/wasm"
)

const TagGetAllSymbols = "get_all_symbols"

var QueryTags = []string{TagGetAllSymbols}

// QueryMsg is a tagged union with a single variant.
type QueryMsg struct {
	GetAllSymbols *GetAllSymbols `json:"get_all_symbols,omitempty"`
}

// GetAllSymbols takes no arguments and is answered with an ArrayOfString in ascending order.
type GetAllSymbols struct{}

func (q *GetAllSymbols) UnmarshalJSON(data []byte) error {
	return wasm.DecodeFields(data, "")
}

func NewGetAllSymbols() QueryMsg {
	return QueryMsg{GetAllSymbols: &GetAllSymbols{}}
}

func (m QueryMsg) Tag() string {
	if m.GetAllSymbols != nil {
		return TagGetAllSymbols
	}
	return ""
}

func (m QueryMsg) Validate() error {
	if m.GetAllSymbols == nil {
		return wasm.SchemaErrorf("query_msg", "no variant set, expected %s", TagGetAllSymbols)
	}
	return nil
}

func (m QueryMsg) MarshalJSON() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	type plain QueryMsg
	return json.Marshal(plain(m))
}

func (m *QueryMsg) UnmarshalJSON(data []byte) error {
	_, body, err := wasm.DecodeVariant(data, "query_msg", QueryTags)
	if err != nil {
		return err
	}

	var out QueryMsg
	out.GetAllSymbols = &GetAllSymbols{}
	if err := json.Unmarshal(body, out.GetAllSymbols); err != nil {
		return wasm.WithPath(err, wasm.JoinPath("query_msg", TagGetAllSymbols))
	}

	*m = out
	return nil
}
