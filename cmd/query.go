package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/DefiantLabs/pricefeeds-indexer/config"
	"github.com/DefiantLabs/pricefeeds-indexer/csv"
	dbTypes "github.com/DefiantLabs/pricefeeds-indexer/db"
	"github.com/DefiantLabs/pricefeeds-indexer/pkg/model"
	"github.com/DefiantLabs/pricefeeds-indexer/pkg/repository"
	"github.com/DefiantLabs/pricefeeds-indexer/rest"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	queryConfig       config.QueryConfig
	queryDbConnection *gorm.DB
)

func init() {
	config.SetupLogFlags(&queryConfig.Log, queryCmd)
	config.SetupDatabaseFlags(&queryConfig.Database, queryCmd)
	config.SetupLCDFlags(&queryConfig.LCD, queryCmd)
	config.SetupRedisFlags(&queryConfig.Redis, queryCmd)
	config.SetupQuerySpecificFlags(&queryConfig, queryCmd)

	queryCmd.AddCommand(querySymbolsCmd, queryPricesCmd, queryHistoryCmd, queryRequestsCmd, queryWatchCmd)
	rootCmd.AddCommand(queryCmd)
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Queries the currently indexed PriceFeeds data.",
	Long: `Queries the indexed PriceFeeds data. Symbols can also be read from the contract itself with
	--source chain, which runs the get_all_symbols smart query through the LCD.`,
	PersistentPreRunE: setupQuery,
}

var querySymbolsCmd = &cobra.Command{
	Use:   "symbols",
	Short: "Lists every symbol the contract holds a price for, in the contract's order.",
	Run: func(cmd *cobra.Command, args []string) {
		var symbols []string
		if queryConfig.Base.Source == config.SourceChain {
			client := rest.NewClient(queryConfig.LCD.API).
				WithRetry(queryConfig.Base.RequestRetryAttempts, time.Duration(queryConfig.Base.RequestRetryMaxWait)*time.Second)
			res, err := client.GetAllSymbols(queryConfig.LCD.Contract)
			if err != nil {
				config.Log.Fatal("Error querying the contract symbols", err)
			}
			symbols = res
		} else {
			res, err := dbTypes.GetAllSymbols(queryDbConnection, queryConfig.LCD.Contract)
			if err != nil {
				config.Log.Fatal("Error reading the indexed symbols", err)
			}
			symbols = res
		}
		if symbols == nil {
			symbols = []string{}
		}

		rows := make([]csv.SymbolRow, len(symbols))
		for i, symbol := range symbols {
			rows[i] = csv.SymbolRow(symbol)
		}
		writeQueryResult(symbols, rows, csv.SymbolHeaders)
	},
}

var queryPricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Exports the latest indexed price of every symbol, or of the --symbol list.",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireDBSource()
	},
	Run: func(cmd *cobra.Command, args []string) {
		prices, err := dbTypes.GetLatestPrices(queryDbConnection, queryConfig.LCD.Contract, queryConfig.Base.Symbols)
		if err != nil {
			config.Log.Fatal("Error reading the latest prices", err)
		}

		updates := make([]model.PriceUpdate, len(prices))
		rows := make([]csv.PriceRow, len(prices))
		for i, price := range prices {
			updates[i] = model.PriceUpdate(price)
			rows[i] = csv.PriceRow(price)
		}
		writeQueryResult(updates, rows, csv.PriceHeaders)
	},
}

var queryHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Exports the stored prices of a single --symbol, newest first.",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if len(queryConfig.Base.Symbols) != 1 {
			return errors.New("history needs exactly one --symbol")
		}
		return requireDBSource()
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		pool := connectToPool(ctx)
		defer pool.Close()

		points, err := repository.NewPrices(pool).PriceHistory(ctx, queryConfig.LCD.Contract, queryConfig.Base.Symbols[0], queryConfig.Base.Limit)
		if err != nil {
			config.Log.Fatal("Error reading the price history", err)
		}

		rows := make([]csv.PricePointRow, len(points))
		for i, point := range points {
			rows[i] = csv.PricePointRow(*point)
		}
		writeQueryResult(points, rows, csv.PricePointHeaders)
	},
}

var queryRequestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "Exports the latest price feed requests with their pairs, newest first.",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireDBSource()
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		pool := connectToPool(ctx)
		defer pool.Close()

		requests, err := repository.NewPrices(pool).FeedRequests(ctx, queryConfig.LCD.Contract, queryConfig.Base.Limit)
		if err != nil {
			config.Log.Fatal("Error reading the feed requests", err)
		}

		rows := make([]csv.FeedRequestRow, len(requests))
		for i, request := range requests {
			rows[i] = csv.FeedRequestRow(*request)
		}
		writeQueryResult(requests, rows, csv.FeedRequestHeaders)
	},
}

var queryWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Prints the cached latest prices, then every price update the indexer publishes.",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if queryConfig.Redis.Addr == "" {
			return errors.New("watch needs redis.addr to be set")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		rdb := redis.NewClient(&redis.Options{
			Addr:     queryConfig.Redis.Addr,
			Password: queryConfig.Redis.Password,
			DB:       queryConfig.Redis.DB,
		})
		defer rdb.Close()

		cache := repository.NewCache(rdb)
		sub := cache.SubscribePriceUpdates(ctx)
		defer sub.Close()

		latest, err := cache.GetLatestPrices(ctx, queryConfig.Base.Symbols...)
		if err != nil {
			config.Log.Fatal("Error reading the cached prices", err)
		}
		for _, update := range latest {
			printPriceUpdate(update)
		}

		wanted := make(map[string]bool, len(queryConfig.Base.Symbols))
		for _, symbol := range queryConfig.Base.Symbols {
			wanted[symbol] = true
		}

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				var update model.PriceUpdate
				if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
					config.Log.Warn("Skipping malformed price update", err)
					continue
				}
				if len(wanted) > 0 && !wanted[update.Symbol] {
					continue
				}
				printPriceUpdate(&update)
			}
		}
	},
}

func setupQuery(cmd *cobra.Command, args []string) error {
	bindFlags(cmd, viperConf)

	err := queryConfig.Validate()
	if err != nil {
		return err
	}

	ignoredKeys := config.CheckSuperfluousQueryKeys(viperConf.AllKeys())

	if len(ignoredKeys) > 0 {
		config.Log.Warnf("Warning, the following invalid keys will be ignored: %v", ignoredKeys)
	}

	setupLogger(queryConfig.Log.Level, queryConfig.Log.Path, queryConfig.Log.Pretty)

	if queryConfig.Base.Source == config.SourceDB && cmd != queryWatchCmd {
		db, err := connectToDBAndMigrate(queryConfig.Database)
		if err != nil {
			config.Log.Fatal("Could not establish connection to the database", err)
		}
		queryDbConnection = db
	}

	return nil
}

func requireDBSource() error {
	if queryConfig.Base.Source != config.SourceDB {
		return fmt.Errorf("only symbols can be answered from the %s source", queryConfig.Base.Source)
	}
	return nil
}

func connectToPool(ctx context.Context) *pgxpool.Pool {
	pool, err := pgxpool.New(ctx, queryConfig.Database.DSN())
	if err != nil {
		config.Log.Fatal("Could not establish connection to the database", err)
	}
	return pool
}

func writeQueryResult[T csv.Row](result any, rows []T, headers []string) {
	var out []byte
	if queryConfig.Base.Format == "csv" {
		buffer, err := csv.ToCsv(rows, headers)
		if err != nil {
			config.Log.Fatal("Error generating CSV", err)
		}
		out = buffer.Bytes()
	} else {
		res, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			config.Log.Fatal("Error generating JSON", err)
		}
		out = append(res, '\n')
	}

	if queryConfig.Base.Output == "" {
		fmt.Print(string(out))
		return
	}

	if err := os.WriteFile(queryConfig.Base.Output, out, 0o600); err != nil {
		config.Log.Fatal("Error writing the query result", err)
	}
}

func printPriceUpdate(update *model.PriceUpdate) {
	fmt.Printf("%s %s %s height=%d tx=%s\n", update.TimeStamp.UTC().Format(csv.TimeLayout), update.Symbol, update.Price.String(), update.Height, update.TxHash)
}
