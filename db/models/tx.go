package models

import (
	"time"
)

type Tx struct {
	ID           uint
	Hash         string `gorm:"uniqueIndex"`
	Code         uint32
	Height       int64 `gorm:"index"`
	TimeStamp    time.Time
	Memo         string
	ContractID   uint `gorm:"index:idx_contract_offset,priority:1"`
	Contract     Contract
	SearchOffset uint64 `gorm:"index:idx_contract_offset,priority:2"` // position of the tx in the ascending contract tx search
}

// FailedTx holds the contract error a failed tx was rejected with.
type FailedTx struct {
	ID        uint
	TxID      uint `gorm:"uniqueIndex"`
	Tx        Tx
	Codespace string
	RawLog    string
	ErrorKind string `gorm:"index"`
}

type Address struct {
	ID      uint
	Address string `gorm:"uniqueIndex"`
}

// ExecuteMessage is one MsgExecuteContract sent to the contract. Tag is empty when the message did not match the schema.
type ExecuteMessage struct {
	ID              uint
	TxID            uint `gorm:"uniqueIndex:executeMessageIndex,priority:1"`
	Tx              Tx
	MessageIndex    int    `gorm:"uniqueIndex:executeMessageIndex,priority:2"`
	Tag             string `gorm:"index"`
	SenderAddressID uint   `gorm:"index"`
	SenderAddress   Address
	MsgJSON         string `gorm:"type:text"`
	FundsJSON       string `gorm:"type:text"`
	Actions         string // comma separated wasm "action" attributes emitted by the contract
}
