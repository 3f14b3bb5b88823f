package db

import (
	"errors"

	"github.com/DefiantLabs/pricefeeds-indexer/cosmwasm/modules/wasm"
	"github.com/DefiantLabs/pricefeeds-indexer/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func FindOrCreateCustomMessageParsers(db *gorm.DB, parsers map[string]models.MessageParser) error {
	err := db.Transaction(func(dbTransaction *gorm.DB) error {
		for key := range parsers {
			currParser := parsers[key]
			res := dbTransaction.FirstOrCreate(&currParser, &currParser)

			if res.Error != nil {
				return res.Error
			}
			parsers[key] = currParser
		}
		return nil
	})
	return err
}

// CreateMessageParserError records why a parser could not handle a message. Schema errors keep their field path.
func CreateMessageParserError(db *gorm.DB, message models.ExecuteMessage, parser models.MessageParser, parserError error) error {
	parserErr := models.MessageParserError{
		Error:            parserError.Error(),
		MessageParserID:  parser.ID,
		ExecuteMessageID: message.ID,
	}

	var schemaErr *wasm.SchemaError
	if errors.As(parserError, &schemaErr) {
		parserErr.Path = schemaErr.Path
	}

	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_parser_id"}, {Name: "execute_message_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"error", "path"}),
	}).Create(&parserErr).Error
}

func DeleteCustomMessageParserError(db *gorm.DB, message models.ExecuteMessage, parser models.MessageParser) error {
	parserError := models.MessageParserError{
		MessageParserID:  parser.ID,
		ExecuteMessageID: message.ID,
	}
	return db.Where(&parserError).Delete(&parserError).Error
}
