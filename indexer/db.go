package indexer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DefiantLabs/pricefeeds-indexer/config"
	"github.com/DefiantLabs/pricefeeds-indexer/core"
	dbTypes "github.com/DefiantLabs/pricefeeds-indexer/db"
	"github.com/DefiantLabs/pricefeeds-indexer/pkg/model"
)

// DoDBUpdates reads the processed pages off the db data chan and indexes them in the DB, in order.
// On a dry run the channel is only drained. Published and updated prices are pushed to the cache
// once their page is committed. A page that cannot be stored stops the run.
func (indexer *Indexer) DoDBUpdates(ctx context.Context, wg *sync.WaitGroup, failedPageHandler core.FailedPageHandler, dbDataChan chan *DBData, cancel context.CancelFunc) {
	defer wg.Done()

	pagesProcessed := 0
	txsProcessed := 0
	timeStart := time.Now()

	for data := range dbDataChan {
		// While debugging we'll sometimes want to turn off INSERTS to the DB
		if indexer.DryRun {
			config.Log.Infof("Processing %d txs at offset %d (dry run, data will not be stored in DB).", len(data.txDBWrappers), data.offset)
			continue
		}

		indexed, err := dbTypes.IndexContractTxs(indexer.DB, indexer.ContractID, data.txDBWrappers, indexer.MessageParserTrackers)
		if err != nil {
			// Do a single reattempt on failure
			indexed, err = dbTypes.IndexContractTxs(indexer.DB, indexer.ContractID, data.txDBWrappers, indexer.MessageParserTrackers)
			if err != nil {
				failedPageHandler(data.offset, core.PageIndexError, err)
				cancel()
				for range dbDataChan {
				}
				return
			}
		}

		updates := core.PriceUpdates(indexed)
		indexer.cachePrices(ctx, updates)

		config.Log.ZInfo().
			Uint64("offset", data.offset).
			Int("txs", len(indexed)).
			Int("prices", len(updates)).
			Msg("Indexed contract txs")

		pagesProcessed++
		txsProcessed += len(indexed)
	}

	config.Log.Infof("DB updates complete, indexed %d txs in %d pages in %.2f seconds", txsProcessed, pagesProcessed, time.Since(timeStart).Seconds())
}

func (indexer *Indexer) cachePrices(ctx context.Context, updates []*model.PriceUpdate) {
	if indexer.Cache == nil {
		return
	}

	for _, update := range updates {
		if err := indexer.Cache.SetLatestPrice(ctx, update); err != nil {
			config.Log.Error(fmt.Sprintf("Error caching latest price of %s", update.Symbol), err)
			continue
		}

		if err := indexer.Cache.AddPriceUpdate(ctx, update); err != nil {
			config.Log.Error(fmt.Sprintf("Error caching price update of %s", update.Symbol), err)
		}

		if err := indexer.Cache.PublishPriceUpdate(ctx, update); err != nil {
			config.Log.Error(fmt.Sprintf("Error publishing price update of %s", update.Symbol), err)
		}
	}
}
