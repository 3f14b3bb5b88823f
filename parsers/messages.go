package parsers

import (
	"time"

	txtypes "github.com/DefiantLabs/pricefeeds-indexer/cosmos/modules/tx"
	"github.com/DefiantLabs/pricefeeds-indexer/cosmwasm/modules/pricefeeds"
	"github.com/DefiantLabs/pricefeeds-indexer/cosmwasm/modules/wasm"
	"github.com/DefiantLabs/pricefeeds-indexer/db/models"
	"gorm.io/gorm"
)

// SchemaParserIdentifier tracks execute messages whose body did not match the contract schema.
const SchemaParserIdentifier = "execute-msg-schema"

// MessageContext is what a parser knows about the message besides its body.
type MessageContext struct {
	ContractID uint
	TxHash     string
	Height     int64
	TimeStamp  time.Time
	Sender     string
	Funds      wasm.Coins
	Log        *txtypes.LogMessage
}

type MessageParser interface {
	Identifier() string
	ParseMessage(pricefeeds.ExecuteMsg, MessageContext) (any, error)
	IndexMessage(any, *gorm.DB, models.ExecuteMessage, MessageContext) error
}

type MessageParsedData struct {
	Data   any
	Error  error
	Parser MessageParser
}

// ParseWithAll runs every parser over the message. Parser failures are kept, not returned.
func ParseWithAll(msg pricefeeds.ExecuteMsg, ctx MessageContext, parsers []MessageParser) []MessageParsedData {
	parsed := make([]MessageParsedData, 0, len(parsers))
	for _, parser := range parsers {
		data, err := parser.ParseMessage(msg, ctx)
		if err == nil && data == nil {
			continue
		}
		parsed = append(parsed, MessageParsedData{Data: data, Error: err, Parser: parser})
	}
	return parsed
}
