package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/DefiantLabs/pricefeeds-indexer/cosmwasm/modules/pricefeeds"
	"github.com/DefiantLabs/pricefeeds-indexer/cosmwasm/modules/wasm"
	dbTypes "github.com/DefiantLabs/pricefeeds-indexer/db"
	"github.com/DefiantLabs/pricefeeds-indexer/db/models"
	"github.com/DefiantLabs/pricefeeds-indexer/parsers"
	testUtils "github.com/DefiantLabs/pricefeeds-indexer/test/utils"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const testContract = "osmo1pricefeeds"

var (
	postgresConn *pgxpool.Pool
	redisClient  *redis.Client
)

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	dbConf, err := testUtils.SetupTestDatabase("")
	if err != nil {
		log.Err(err).Msgf("Could not start postgres: %s", err)
		os.Exit(1)
	}

	redisConf, err := testUtils.SetupTestRedis()
	if err != nil {
		log.Err(err).Msgf("Could not start redis: %s", err)
		dbConf.Clean()
		os.Exit(1)
	}

	if err := seedPrices(dbConf); err != nil {
		log.Err(err).Msgf("Could not seed the database: %s", err)
	}

	postgresConn, err = pgxpool.New(ctx, dbConf.DSN())
	if err != nil {
		log.Err(err).Msgf("Could not connect to database: %s", err)
	}
	redisClient = redisConf.Client

	// Run tests
	code := m.Run()

	// You can't defer this because os.Exit doesn't care for defer
	if postgresConn != nil {
		postgresConn.Close()
	}
	redisConf.Clean()
	dbConf.Clean()

	os.Exit(code)
}

func seedPrices(conf *testUtils.TestDockerDBConfig) error {
	if err := dbTypes.MigrateModels(conf.GormDB); err != nil {
		return err
	}

	contractID, err := dbTypes.GetDBContractID(conf.GormDB, models.Contract{Address: testContract})
	if err != nil {
		return err
	}

	parser := &parsers.PriceFeedsParser{Denom: "uom"}
	trackers := map[string]models.MessageParser{parser.Identifier(): {Identifier: parser.Identifier()}}
	if err := dbTypes.FindOrCreateCustomMessageParsers(conf.GormDB, trackers); err != nil {
		return err
	}

	message := func(index int, sender string, msg pricefeeds.ExecuteMsg, height int64, funds wasm.Coins) dbTypes.MessageDBWrapper {
		ctx := parsers.MessageContext{ContractID: contractID, Height: height, Sender: sender, Funds: funds}
		return dbTypes.MessageDBWrapper{
			Message:               models.ExecuteMessage{MessageIndex: index, Tag: msg.Tag(), FundsJSON: "[]"},
			Sender:                sender,
			Context:               ctx,
			MessageParsedDatasets: parsers.ParseWithAll(msg, ctx, []parsers.MessageParser{parser}),
		}
	}

	tx := func(hash string, offset uint64, messages ...dbTypes.MessageDBWrapper) dbTypes.TxDBWrapper {
		return dbTypes.TxDBWrapper{
			Tx:       models.Tx{Hash: hash, Height: int64(100 + offset), TimeStamp: time.Now().UTC(), SearchOffset: offset},
			Messages: messages,
		}
	}

	txs := []dbTypes.TxDBWrapper{
		tx("A1", 0, message(0, "osmo1publisher", pricefeeds.NewPublishPrice("BTC/USD", wasm.MustDecimal256("64000")), 100, nil)),
		tx("B2", 1, message(0, "osmo1publisher", pricefeeds.NewUpdatePrice("BTC/USD", wasm.MustDecimal256("64100.5")), 101, nil)),
		tx("C3", 2, message(0, "osmo1consumer", pricefeeds.NewRequestPriceFeeds("BTC/USD", "ETH/USD"), 102,
			wasm.Coins{{Denom: "uom", Amount: wasm.MustUint128("2000")}})),
		tx("D4", 3, message(0, "osmo1consumer", pricefeeds.NewRequestPriceFeed("BTC/USD"), 103,
			wasm.Coins{{Denom: "uom", Amount: wasm.MustUint128("1000")}})),
	}

	_, err = dbTypes.IndexContractTxs(conf.GormDB, contractID, txs, trackers)
	return err
}
