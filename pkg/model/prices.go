package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceUpdate is a price the contract stored, as cached and published to subscribers.
type PriceUpdate struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Source    string          `json:"source"`
	Height    int64           `json:"height"`
	TimeStamp time.Time       `json:"time_stamp"`
	TxHash    string          `json:"tx_hash"`
}

type PricePoint struct {
	Price     decimal.Decimal `json:"price"`
	Source    string          `json:"source"`
	Height    int64           `json:"height"`
	TimeStamp time.Time       `json:"time_stamp"`
	TxHash    string          `json:"tx_hash"`
}

type FeedRequestInfo struct {
	TxHash    string          `json:"tx_hash"`
	Height    int64           `json:"height"`
	TimeStamp time.Time       `json:"time_stamp"`
	Requester string          `json:"requester"`
	ReplyID   uint64          `json:"reply_id"`
	FeeDenom  string          `json:"fee_denom"`
	FeeAmount decimal.Decimal `json:"fee_amount"`
	Pairs     []string        `json:"pairs"`
}
