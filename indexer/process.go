package indexer

import (
	"context"
	"sync"
	"time"

	"github.com/DefiantLabs/pricefeeds-indexer/config"
	"github.com/DefiantLabs/pricefeeds-indexer/core"
)

// Run indexes the contract txs from startOffset on. It returns once every page fetched has been
// written, either because the search caught up with ExitWhenCaughtUp set, a page failed, or ctx
// was cancelled. The first failed page is returned as a *core.PageError.
func (indexer *Indexer) Run(ctx context.Context, startOffset uint64, failedPageHandler core.FailedPageHandler) error {
	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg      sync.WaitGroup
		failMu  sync.Mutex
		failure *core.PageError
	)

	onFailure := func(offset uint64, code core.PageProcessingFailure, err error) {
		failedPageHandler(offset, code, err)

		failMu.Lock()
		defer failMu.Unlock()
		if failure == nil {
			failure = &core.PageError{Offset: offset, Code: code, Err: err}
		}
	}

	// Pages are fetched one request at a time, the buffer lets the LCD run ahead of processing.
	pageChan := make(chan *core.ContractTxPage, 4)
	dbDataChan := make(chan *DBData, 4)

	wg.Add(3)
	go indexer.EnqueuePages(fetchCtx, &wg, onFailure, pageChan, startOffset)
	go indexer.ProcessPages(&wg, onFailure, pageChan, dbDataChan, cancel)
	go indexer.DoDBUpdates(ctx, &wg, onFailure, dbDataChan, cancel)

	wg.Wait()

	if failure != nil {
		return failure
	}
	return nil
}

// EnqueuePages walks the contract tx search in order, one page per request, until it catches up.
// When ExitWhenCaughtUp is off it keeps polling for new txs until ctx is done.
//
// The LCD pages by page number, so requests are always aligned on the page limit. When offset falls
// inside a page, the txs of that page below offset are marked to be skipped.
func (indexer *Indexer) EnqueuePages(ctx context.Context, wg *sync.WaitGroup, failedPageHandler core.FailedPageHandler, pageChan chan *core.ContractTxPage, offset uint64) {
	defer close(pageChan)
	defer wg.Done()

	contract := indexer.Config.LCD.Contract
	limit := indexer.Config.Base.PageLimit
	throttle := time.Duration(indexer.Config.Base.Throttling * float64(time.Second))
	pollInterval := time.Duration(indexer.Config.Base.PollInterval) * time.Second

	for {
		page := offset/limit + 1
		pageStart := (page - 1) * limit
		skip := offset - pageStart

		resp, err := indexer.Client.GetContractTxs(contract, page, limit)
		if err != nil {
			failedPageHandler(offset, core.PageQueryError, err)
			return
		}

		fetched := uint64(len(resp.TxResponses))
		if fetched > skip {
			config.Log.ZInfo().
				Uint64("page", page).
				Uint64("offset", offset).
				Uint64("new_txs", fetched-skip).
				Msg("Fetched contract txs")
			select {
			case pageChan <- &core.ContractTxPage{Offset: pageStart, Skip: skip, Response: resp}:
			case <-ctx.Done():
				return
			}
			offset = pageStart + fetched
		}

		total := resp.TotalCount()
		caughtUp := fetched < limit || (total > 0 && offset >= total)

		wait := throttle
		if caughtUp {
			if indexer.Config.Base.ExitWhenCaughtUp {
				config.Log.Infof("Caught up with the contract txs at offset %d", offset)
				return
			}
			config.Log.ZDebug().
				Uint64("offset", offset).
				Dur("poll_interval", pollInterval).
				Msg("Caught up, waiting for new txs")
			wait = pollInterval
		}

		if !sleep(ctx, wait) {
			return
		}
	}
}

// ProcessPages decodes the fetched pages into db wrappers. A page that cannot be processed stops the
// run, later pages would otherwise move the resume offset past it.
func (indexer *Indexer) ProcessPages(wg *sync.WaitGroup, failedPageHandler core.FailedPageHandler, pageChan chan *core.ContractTxPage, dbDataChan chan *DBData, cancel context.CancelFunc) {
	defer close(dbDataChan)
	defer wg.Done()

	processor := core.ContractProcessor{
		Contract:   indexer.Config.LCD.Contract,
		ContractID: indexer.ContractID,
		Filters:    indexer.ExecuteTagFilters,
		Parsers:    indexer.MessageParsers,
	}

	for page := range pageChan {
		config.Log.Debugf("Parsing %d txs at offset %d", uint64(len(page.Response.TxResponses))-page.Skip, page.Offset+page.Skip)

		txDBWrappers, err := processor.ProcessContractTxs(*page)
		if err != nil {
			failedPageHandler(page.Offset+page.Skip, core.UnprocessableTxError, err)
			cancel()
			for range pageChan {
			}
			return
		}

		dbDataChan <- &DBData{
			offset:       page.Offset + page.Skip,
			txDBWrappers: txDBWrappers,
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
