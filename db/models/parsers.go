package models

type MessageParser struct {
	ID         uint
	Identifier string `gorm:"uniqueIndex"`
}

type MessageParserError struct {
	ID               uint
	Error            string
	Path             string
	MessageParserID  uint `gorm:"uniqueIndex:idx_message_parser_error,priority:1"`
	MessageParser    MessageParser
	ExecuteMessageID uint `gorm:"uniqueIndex:idx_message_parser_error,priority:2"`
	ExecuteMessage   ExecuteMessage
}
