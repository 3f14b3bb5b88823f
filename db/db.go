package db

import (
	"fmt"

	"github.com/DefiantLabs/pricefeeds-indexer/config"
	"github.com/DefiantLabs/pricefeeds-indexer/db/models"
	"github.com/DefiantLabs/pricefeeds-indexer/parsers"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// PostgresDbConnect connects to the database according to the passed in parameters
func PostgresDbConnect(host string, port string, database string, user string, password string, level string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s dbname=%s user=%s password=%s sslmode=disable", host, port, database, user, password)
	gormLogLevel := logger.Silent

	if level == "info" {
		gormLogLevel = logger.Info
	}
	return gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(gormLogLevel)})
}

// MigrateModels runs the gorm automigrations with all the db models. This will migrate as needed and do nothing if nothing has changed.
func MigrateModels(db *gorm.DB) error {
	if err := migrateContractModels(db); err != nil {
		return err
	}

	if err := migrateTXModels(db); err != nil {
		return err
	}

	if err := migratePriceFeedModels(db); err != nil {
		return err
	}

	return migrateParserModels(db)
}

func migrateContractModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Contract{},
		&models.Symbol{},
	)
}

func migrateTXModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Tx{},
		&models.FailedTx{},
		&models.Address{},
		&models.ExecuteMessage{},
	)
}

func migratePriceFeedModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.PriceObservation{},
		&models.FeedRequest{},
		&models.FeedRequestPair{},
		&models.CostChange{},
		&models.AdminChange{},
	)
}

func migrateParserModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.MessageParser{},
		&models.MessageParserError{},
	)
}

func GetDBContractID(db *gorm.DB, contract models.Contract) (uint, error) {
	if err := db.Where("address = ?", contract.Address).FirstOrCreate(&contract).Error; err != nil {
		config.Log.Error("Error getting/creating contract DB object.", err)
		return contract.ID, err
	}
	return contract.ID, nil
}

// GetHighestIndexedOffset returns the search offset to resume the contract tx search from.
func GetHighestIndexedOffset(db *gorm.DB, contractID uint) (uint64, error) {
	var next uint64
	err := db.Raw(`SELECT COALESCE(MAX(search_offset) + 1, 0) FROM txs WHERE contract_id = ?`, contractID).Row().Scan(&next)
	return next, err
}

// IndexContractTxs upserts a page of contract txs with their execute messages and runs the parsed data through the parsers' indexers.
// Ordering matters due to foreign key constraints: Tx -> (For each Message: Sender Address -> Message -> Parsed Data)
func IndexContractTxs(db *gorm.DB, contractID uint, txs []TxDBWrapper, messageParserTrackers map[string]models.MessageParser) ([]TxDBWrapper, error) {
	err := db.Transaction(func(dbTransaction *gorm.DB) error {
		for txIndex := range txs {
			tx := &txs[txIndex]
			tx.Tx.ContractID = contractID

			if err := dbTransaction.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "hash"}},
				DoUpdates: clause.AssignmentColumns([]string{"code", "height", "time_stamp", "memo", "contract_id", "search_offset"}),
			}).Create(&tx.Tx).Error; err != nil {
				config.Log.Error("Error getting/creating tx.", err)
				return err
			}

			if tx.FailedTx != nil {
				tx.FailedTx.TxID = tx.Tx.ID
				if err := dbTransaction.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "tx_id"}},
					DoUpdates: clause.AssignmentColumns([]string{"codespace", "raw_log", "error_kind"}),
				}).Create(tx.FailedTx).Error; err != nil {
					config.Log.Error("Error getting/creating failed tx.", err)
					return err
				}
			}

			for messageIndex := range tx.Messages {
				if err := indexExecuteMessage(dbTransaction, tx.Tx, &tx.Messages[messageIndex], messageParserTrackers); err != nil {
					return err
				}
			}
		}
		return nil
	})

	// Contract: ensure that txs have been loaded with the indexed data before returning
	return txs, err
}

func indexExecuteMessage(dbTransaction *gorm.DB, tx models.Tx, message *MessageDBWrapper, messageParserTrackers map[string]models.MessageParser) error {
	sender, err := FindOrCreateAddressByAddress(dbTransaction, message.Sender)
	if err != nil {
		config.Log.Error("Error getting/creating sender address DB object.", err)
		return err
	}

	message.Message.TxID = tx.ID
	message.Message.SenderAddressID = sender.ID
	if err := dbTransaction.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tx_id"}, {Name: "message_index"}},
		DoUpdates: clause.AssignmentColumns([]string{"tag", "sender_address_id", "msg_json", "funds_json", "actions"}),
	}).Create(&message.Message).Error; err != nil {
		config.Log.Error("Error getting/creating execute message.", err)
		return err
	}

	if message.SchemaError != nil {
		return CreateMessageParserError(dbTransaction, message.Message, messageParserTrackers[parsers.SchemaParserIdentifier], message.SchemaError)
	}

	for _, parsedData := range message.MessageParsedDatasets {
		if parsedData.Parser == nil {
			continue
		}

		tracker := messageParserTrackers[parsedData.Parser.Identifier()]
		if parsedData.Error != nil {
			if err := CreateMessageParserError(dbTransaction, message.Message, tracker, parsedData.Error); err != nil {
				config.Log.Error("Error inserting message parser error.", err)
				return err
			}
			continue
		}

		if err := parsedData.Parser.IndexMessage(parsedData.Data, dbTransaction, message.Message, message.Context); err != nil {
			config.Log.Error("Error indexing message.", err)
			return err
		}

		if err := DeleteCustomMessageParserError(dbTransaction, message.Message, tracker); err != nil {
			return err
		}
	}

	return nil
}
