package db

import (
	"github.com/DefiantLabs/pricefeeds-indexer/db/models"
	"github.com/DefiantLabs/pricefeeds-indexer/parsers"
)

// Store contract txs with their execute messages for easy database creation
type TxDBWrapper struct {
	Tx       models.Tx
	FailedTx *models.FailedTx
	Messages []MessageDBWrapper
}

type MessageDBWrapper struct {
	Message models.ExecuteMessage
	Sender  string
	Context parsers.MessageContext
	// SchemaError is set when the message body did not match the execute schema. Parsers do not run on such messages.
	SchemaError           error
	MessageParsedDatasets []parsers.MessageParsedData
}
