package db

import (
	"time"

	"github.com/DefiantLabs/pricefeeds-indexer/cosmwasm/modules/pricefeeds"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Observation sources that change the price the contract stores. Callbacks only forward a price.
var storedPriceSources = []string{pricefeeds.TagPublishPrice, pricefeeds.TagUpdatePrice}

type LatestPrice struct {
	Symbol    string
	Price     decimal.Decimal
	Source    string
	Height    int64
	TimeStamp time.Time
	TxHash    string
}

// GetAllSymbols lists the symbols the contract holds a price for, in the byte order the contract iterates them.
func GetAllSymbols(db *gorm.DB, contractAddress string) (pricefeeds.ArrayOfString, error) {
	var symbols []string
	err := db.Raw(`SELECT DISTINCT symbols.symbol COLLATE "C" AS symbol
		FROM symbols
		JOIN contracts ON contracts.id = symbols.contract_id
		JOIN price_observations ON price_observations.symbol_id = symbols.id
		WHERE contracts.address = ? AND price_observations.source IN ?
		ORDER BY symbol`, contractAddress, storedPriceSources).Scan(&symbols).Error
	if err != nil {
		return nil, err
	}
	return pricefeeds.ArrayOfString(symbols), nil
}

// GetLatestPrices returns the last stored price per symbol. An empty symbol list returns every symbol.
func GetLatestPrices(db *gorm.DB, contractAddress string, symbols []string) ([]LatestPrice, error) {
	query := `SELECT DISTINCT ON (price_observations.symbol_id)
			symbols.symbol, price_observations.price, price_observations.source,
			price_observations.height, price_observations.time_stamp, txs.hash AS tx_hash
		FROM price_observations
		JOIN symbols ON symbols.id = price_observations.symbol_id
		JOIN contracts ON contracts.id = symbols.contract_id
		JOIN execute_messages ON execute_messages.id = price_observations.execute_message_id
		JOIN txs ON txs.id = execute_messages.tx_id
		WHERE contracts.address = ? AND price_observations.source IN ?`
	args := []interface{}{contractAddress, storedPriceSources}

	if len(symbols) != 0 {
		query += ` AND symbols.symbol IN ?`
		args = append(args, symbols)
	}

	query += ` ORDER BY price_observations.symbol_id, txs.search_offset DESC, execute_messages.message_index DESC`

	var prices []LatestPrice
	err := db.Raw(`SELECT * FROM (`+query+`) latest ORDER BY symbol COLLATE "C"`, args...).Scan(&prices).Error
	return prices, err
}
