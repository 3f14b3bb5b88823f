package indexer

import (
	"fmt"

	"github.com/DefiantLabs/pricefeeds-indexer/config"
	"github.com/DefiantLabs/pricefeeds-indexer/db/models"
	"github.com/DefiantLabs/pricefeeds-indexer/filter"
	"github.com/DefiantLabs/pricefeeds-indexer/parsers"
	"github.com/DefiantLabs/pricefeeds-indexer/rest"
	"gorm.io/gorm"
)

// New returns an indexer with the schema tracker registered, so that execute messages the contract
// schema rejects get an error row like any other parser failure.
func New(conf *config.IndexConfig, db *gorm.DB, client *rest.Client) *Indexer {
	return &Indexer{
		Config: conf,
		DryRun: conf.Base.Dry,
		DB:     db,
		Client: client,
		MessageParserTrackers: map[string]models.MessageParser{
			parsers.SchemaParserIdentifier: {Identifier: parsers.SchemaParserIdentifier},
		},
	}
}

func (indexer *Indexer) RegisterExecuteTagFilter(filters ...filter.ExecuteTagFilter) {
	indexer.ExecuteTagFilters = append(indexer.ExecuteTagFilters, filters...)
}

func (indexer *Indexer) RegisterCustomMessageParser(parser parsers.MessageParser) error {
	if indexer.MessageParserTrackers == nil {
		indexer.MessageParserTrackers = make(map[string]models.MessageParser)
	}

	if _, ok := indexer.MessageParserTrackers[parser.Identifier()]; ok {
		return fmt.Errorf("found duplicate message parser with identifier \"%s\", parsers must be uniquely identified", parser.Identifier())
	}

	indexer.MessageParsers = append(indexer.MessageParsers, parser)
	indexer.MessageParserTrackers[parser.Identifier()] = models.MessageParser{
		Identifier: parser.Identifier(),
	}

	return nil
}
