package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceObservation is a price the contract stored or forwarded. Position orders the prices of a receive_prices batch.
type PriceObservation struct {
	ID               uint
	ExecuteMessageID uint `gorm:"uniqueIndex:observationIndex,priority:1"`
	ExecuteMessage   ExecuteMessage
	Position         int  `gorm:"uniqueIndex:observationIndex,priority:2"`
	SymbolID         uint `gorm:"index"`
	Symbol           Symbol
	Price            decimal.Decimal `gorm:"type:decimal(96,18);"`
	Source           string
	Height           int64 `gorm:"index"`
	TimeStamp        time.Time
}

type FeedRequest struct {
	ID                 uint
	ExecuteMessageID   uint `gorm:"uniqueIndex"`
	ExecuteMessage     ExecuteMessage
	RequesterAddressID uint `gorm:"index"`
	RequesterAddress   Address
	ReplyID            uint64
	FeeDenom           string
	FeeAmount          decimal.Decimal `gorm:"type:decimal(39,0);"`
	Pairs              []FeedRequestPair
}

type FeedRequestPair struct {
	ID            uint
	FeedRequestID uint `gorm:"uniqueIndex:feedRequestPair,priority:1"`
	Position      int  `gorm:"uniqueIndex:feedRequestPair,priority:2"`
	SymbolID      uint
	Symbol        Symbol
}

type CostChange struct {
	ID               uint
	ExecuteMessageID uint `gorm:"uniqueIndex"`
	ExecuteMessage   ExecuteMessage
	CostPerRequest   decimal.Decimal `gorm:"type:decimal(39,0);"`
}

type AdminChange struct {
	ID                uint
	ExecuteMessageID  uint `gorm:"uniqueIndex"`
	ExecuteMessage    ExecuteMessage
	NewAdminAddressID uint
	NewAdminAddress   Address
}
