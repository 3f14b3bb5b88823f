package indexer

import (
	"github.com/DefiantLabs/pricefeeds-indexer/config"
	dbTypes "github.com/DefiantLabs/pricefeeds-indexer/db"
	"github.com/DefiantLabs/pricefeeds-indexer/db/models"
	"github.com/DefiantLabs/pricefeeds-indexer/filter"
	"github.com/DefiantLabs/pricefeeds-indexer/parsers"
	"github.com/DefiantLabs/pricefeeds-indexer/pkg/repository"
	"github.com/DefiantLabs/pricefeeds-indexer/rest"
	"gorm.io/gorm"
)

type Indexer struct {
	Config                *config.IndexConfig
	DryRun                bool
	DB                    *gorm.DB
	Client                *rest.Client
	Cache                 repository.PricesCache // nil when redis is not configured
	ContractID            uint
	ExecuteTagFilters     []filter.ExecuteTagFilter
	MessageParsers        []parsers.MessageParser
	MessageParserTrackers map[string]models.MessageParser // Used for tracking message parsers in the database
}

type DBData struct {
	offset       uint64
	txDBWrappers []dbTypes.TxDBWrapper
}
