package models

type Contract struct {
	ID      uint   `gorm:"primaryKey"`
	Address string `gorm:"uniqueIndex"` // e.g. osmo14hj2tavq8fpesdwxxcu44rty3hh90vhujrvcmstl4zr3txmfvw9sq2r9g9
	CodeID  string
	Label   string
}

// Symbol is a pair the contract holds a price for, e.g. BTC/USD.
type Symbol struct {
	ID         uint `gorm:"primaryKey"`
	ContractID uint `gorm:"uniqueIndex:contractSymbol,priority:1"`
	Contract   Contract
	Symbol     string `gorm:"uniqueIndex:contractSymbol,priority:2"`
}
