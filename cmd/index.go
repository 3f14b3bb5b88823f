package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DefiantLabs/pricefeeds-indexer/config"
	"github.com/DefiantLabs/pricefeeds-indexer/core"
	dbTypes "github.com/DefiantLabs/pricefeeds-indexer/db"
	"github.com/DefiantLabs/pricefeeds-indexer/db/models"
	"github.com/DefiantLabs/pricefeeds-indexer/indexer"
	"github.com/DefiantLabs/pricefeeds-indexer/parsers"
	"github.com/DefiantLabs/pricefeeds-indexer/pkg/repository"
	"github.com/DefiantLabs/pricefeeds-indexer/rest"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	indexConfig       = &config.IndexConfig{}
	indexDbConnection *gorm.DB
)

func init() {
	config.SetupLogFlags(&indexConfig.Log, indexCmd)
	config.SetupDatabaseFlags(&indexConfig.Database, indexCmd)
	config.SetupLCDFlags(&indexConfig.LCD, indexCmd)
	config.SetupRedisFlags(&indexConfig.Redis, indexCmd)
	config.SetupThrottlingFlag(&indexConfig.Base.Throttling, indexCmd)
	config.SetupIndexSpecificFlags(indexConfig, indexCmd)

	rootCmd.AddCommand(indexCmd)
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Indexes the PriceFeeds contract txs according to the configuration defined.",
	Long: `Indexes the execute messages sent to a PriceFeeds contract, reading the contract txs from
	the chain LCD page by page. Published prices, feed requests, cost and admin changes are stored in
	the database, and the latest prices are cached in Redis when it is configured. Keep this command
	running with base.exit-when-caught-up=false to follow the contract as new txs land.`,
	PreRunE: setupIndex,
	Run:     index,
}

func setupIndex(cmd *cobra.Command, args []string) error {
	bindFlags(cmd, viperConf)

	err := indexConfig.Validate()
	if err != nil {
		return err
	}

	ignoredKeys := config.CheckSuperfluousIndexKeys(viperConf.AllKeys())

	if len(ignoredKeys) > 0 {
		config.Log.Warnf("Warning, the following invalid keys will be ignored: %v", ignoredKeys)
	}

	setupLogger(indexConfig.Log.Level, indexConfig.Log.Path, indexConfig.Log.Pretty)

	// A dry run still reads the resume offset if a database is configured
	if !indexConfig.Base.Dry || indexConfig.Database.Host != "" {
		db, err := connectToDBAndMigrate(indexConfig.Database)
		if err != nil {
			config.Log.Fatal("Could not establish connection to the database", err)
		}
		indexDbConnection = db
	}

	return nil
}

func setupIndexer() *indexer.Indexer {
	client := rest.NewClient(indexConfig.LCD.API).
		WithRetry(indexConfig.Base.RequestRetryAttempts, time.Duration(indexConfig.Base.RequestRetryMaxWait)*time.Second)

	idxr := indexer.New(indexConfig, indexDbConnection, client)

	if indexConfig.Base.FilterFile != "" {
		filters, err := config.LoadFilterFile(indexConfig.Base.FilterFile)
		if err != nil {
			config.Log.Fatal("Failed to load the execute tag filter file", err)
		}
		config.Log.Infof("Loaded %d execute tag filters", len(filters))
		idxr.RegisterExecuteTagFilter(filters...)
	}

	err := idxr.RegisterCustomMessageParser(&parsers.PriceFeedsParser{Denom: indexConfig.Base.FeeDenom})
	if err != nil {
		config.Log.Fatal("Error registering the PriceFeeds message parser", err)
	}

	if indexConfig.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     indexConfig.Redis.Addr,
			Password: indexConfig.Redis.Password,
			DB:       indexConfig.Redis.DB,
		})
		idxr.Cache = repository.NewCache(rdb)
	}

	// Check the contract exists before walking its txs
	info, err := client.GetContractInfo(indexConfig.LCD.Contract)
	if err != nil {
		config.Log.Fatal("Error querying the contract info", err)
	}
	config.Log.Infof("Indexing contract %s (code %s, label %q)", info.Address, info.ContractInfo.CodeID, info.ContractInfo.Label)

	height, err := client.GetLatestBlockHeight()
	if err != nil {
		config.Log.Warn("Could not read the latest block height", err)
	} else {
		config.Log.Infof("Chain head is at height %d", height)
	}

	if idxr.DB != nil {
		contractID, err := dbTypes.GetDBContractID(idxr.DB, models.Contract{
			Address: indexConfig.LCD.Contract,
			CodeID:  info.ContractInfo.CodeID,
			Label:   info.ContractInfo.Label,
		})
		if err != nil {
			config.Log.Fatal("Failed to add/create contract in DB", err)
		}
		idxr.ContractID = contractID

		err = dbTypes.FindOrCreateCustomMessageParsers(idxr.DB, idxr.MessageParserTrackers)
		if err != nil {
			config.Log.Fatal("Failed to create message parser trackers in DB", err)
		}
	}

	return idxr
}

func index(cmd *cobra.Command, args []string) {
	idxr := setupIndexer()
	if idxr.DB != nil {
		dbConn, err := idxr.DB.DB()
		if err != nil {
			config.Log.Fatal("Failed to connect to DB", err)
		}
		defer dbConn.Close()
	}

	startOffset := uint64(0)
	switch {
	case indexConfig.Base.StartOffset >= 0:
		startOffset = uint64(indexConfig.Base.StartOffset)
	case idxr.DB != nil:
		offset, err := dbTypes.GetHighestIndexedOffset(idxr.DB, idxr.ContractID)
		if err != nil {
			config.Log.Fatal("Failed to read the highest indexed offset", err)
		}
		startOffset = offset
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config.Log.Infof("Starting indexer at offset %d", startOffset)
	if err := idxr.Run(ctx, startOffset, core.HandleFailedPage); err != nil {
		config.Log.Fatal("Indexing stopped", err)
	}
}
