package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"sync"
	"testing"

	"github.com/DefiantLabs/pricefeeds-indexer/config"
	"github.com/DefiantLabs/pricefeeds-indexer/core"
	txtypes "github.com/DefiantLabs/pricefeeds-indexer/cosmos/modules/tx"
	dbTypes "github.com/DefiantLabs/pricefeeds-indexer/db"
	"github.com/DefiantLabs/pricefeeds-indexer/parsers"
	"github.com/DefiantLabs/pricefeeds-indexer/pkg/model"
	"github.com/DefiantLabs/pricefeeds-indexer/rest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

const emptyPage = `{"txs":[],"tx_responses":[],"pagination":{"next_key":null,"total":"3"},"total":"3"}`

type fakeCache struct {
	mu        sync.Mutex
	failFor   string
	latest    []string
	updates   []string
	published []string
}

func (c *fakeCache) SetLatestPrice(_ context.Context, update *model.PriceUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if update.Symbol == c.failFor {
		return errors.New("connection refused")
	}
	c.latest = append(c.latest, update.Symbol)
	return nil
}

func (c *fakeCache) GetLatestPrices(context.Context, ...string) ([]*model.PriceUpdate, error) {
	return nil, nil
}

func (c *fakeCache) AddPriceUpdate(_ context.Context, update *model.PriceUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updates = append(c.updates, update.Symbol)
	return nil
}

func (c *fakeCache) GetPriceUpdates(context.Context, int64, int64) ([]*model.PriceUpdate, error) {
	return nil, nil
}

func (c *fakeCache) PublishPriceUpdate(_ context.Context, update *model.PriceUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, update.Symbol)
	return nil
}

type IndexerTestSuite struct {
	suite.Suite
	fixture []byte
}

func (suite *IndexerTestSuite) SetupSuite() {
	fixture, err := os.ReadFile("../rest/testdata/contract_txs.json")
	suite.Require().NoError(err)
	suite.fixture = fixture
}

// lcd serves the fixture as page 1 and an empty page past it, reporting every requested page.
func (suite *IndexerTestSuite) lcd(onRequest func(page uint64)) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, err := strconv.ParseUint(r.URL.Query().Get("page"), 10, 64)
		suite.Assert().NoError(err)
		if onRequest != nil {
			onRequest(page)
		}
		if page == 1 {
			_, _ = w.Write(suite.fixture)
			return
		}
		_, _ = w.Write([]byte(emptyPage))
	}))
}

// chainLCD answers the tx search the way the SDK tx service does: it pages on page and limit only,
// with a default limit of 100, and ignores the pagination params.
func chainLCD(total int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, limit := 1, 100
		if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
			page = v
		}
		if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
			limit = v
		}

		resp := txtypes.GetTxsEventResponse{
			Txs:         []txtypes.IndexerTx{},
			TxResponses: []txtypes.Response{},
			Total:       strconv.Itoa(total),
		}
		for i := (page - 1) * limit; i < page*limit && i < total; i++ {
			resp.Txs = append(resp.Txs, txtypes.IndexerTx{Body: txtypes.Body{Messages: []json.RawMessage{}}})
			resp.TxResponses = append(resp.TxResponses, txtypes.Response{
				TxHash:    fmt.Sprintf("H%d", i),
				Height:    strconv.Itoa(1000 + i),
				TimeStamp: "2024-03-01T10:00:00Z",
			})
		}

		_ = json.NewEncoder(w).Encode(resp)
	}))
}

// collectTxs runs the fetch and process stages from offset and returns every tx they produced.
func (suite *IndexerTestSuite) collectTxs(idxr *Indexer, offset uint64) []dbTypes.TxDBWrapper {
	pageChan := make(chan *core.ContractTxPage, 4)
	dbDataChan := make(chan *DBData, 4)

	var failures []error
	handler := func(_ uint64, _ core.PageProcessingFailure, err error) {
		failures = append(failures, err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go idxr.EnqueuePages(context.Background(), &wg, handler, pageChan, offset)
	go idxr.ProcessPages(&wg, handler, pageChan, dbDataChan, func() {})

	var txs []dbTypes.TxDBWrapper
	for data := range dbDataChan {
		txs = append(txs, data.txDBWrappers...)
	}
	wg.Wait()

	suite.Require().Empty(failures)
	return txs
}

func (suite *IndexerTestSuite) newIndexer(host string) *Indexer {
	conf := &config.IndexConfig{}
	conf.LCD.Contract = "osmo1pricefeeds"
	conf.Base.PageLimit = 3
	conf.Base.ExitWhenCaughtUp = true
	conf.Base.PollInterval = 1
	conf.Base.Dry = true

	idxr := New(conf, nil, rest.NewClient(host))
	suite.Require().NoError(idxr.RegisterCustomMessageParser(&parsers.PriceFeedsParser{Denom: "uom"}))
	return idxr
}

func (suite *IndexerTestSuite) TestRegistration() {
	idxr := suite.newIndexer("http://localhost")
	suite.Assert().True(idxr.DryRun)
	suite.Assert().Len(idxr.MessageParsers, 1)
	suite.Assert().Contains(idxr.MessageParserTrackers, parsers.SchemaParserIdentifier)
	suite.Assert().Contains(idxr.MessageParserTrackers, parsers.PriceFeedsParserIdentifier)

	err := idxr.RegisterCustomMessageParser(&parsers.PriceFeedsParser{})
	suite.Require().Error(err)
	suite.Assert().Len(idxr.MessageParsers, 1)
}

func (suite *IndexerTestSuite) TestEnqueueAndProcessPages() {
	var requested []uint64
	server := suite.lcd(func(page uint64) { requested = append(requested, page) })
	defer server.Close()

	idxr := suite.newIndexer(server.URL)
	pageChan := make(chan *core.ContractTxPage, 4)
	dbDataChan := make(chan *DBData, 4)

	var failures []core.PageProcessingFailure
	handler := func(offset uint64, code core.PageProcessingFailure, err error) {
		failures = append(failures, code)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go idxr.EnqueuePages(context.Background(), &wg, handler, pageChan, 0)
	go idxr.ProcessPages(&wg, handler, pageChan, dbDataChan, func() {})
	wg.Wait()

	suite.Assert().Empty(failures)
	suite.Assert().Equal([]uint64{1}, requested)

	var pages []*DBData
	for data := range dbDataChan {
		pages = append(pages, data)
	}
	suite.Require().Len(pages, 1)
	suite.Assert().Equal(uint64(0), pages[0].offset)
	suite.Require().Len(pages[0].txDBWrappers, 3)
	suite.Assert().Equal(uint64(2), pages[0].txDBWrappers[2].Tx.SearchOffset)
	suite.Assert().NotNil(pages[0].txDBWrappers[2].FailedTx)
}

func (suite *IndexerTestSuite) TestPollsUntilCancelled() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var requested []uint64
	server := suite.lcd(func(page uint64) {
		requested = append(requested, page)
		if len(requested) > 1 {
			cancel()
		}
	})
	defer server.Close()

	idxr := suite.newIndexer(server.URL)
	idxr.Config.Base.ExitWhenCaughtUp = false
	idxr.Config.Base.PageLimit = 10

	pageChan := make(chan *core.ContractTxPage, 4)
	var wg sync.WaitGroup
	wg.Add(1)
	go idxr.EnqueuePages(ctx, &wg, core.HandleFailedPage, pageChan, 0)
	wg.Wait()

	var pages []*core.ContractTxPage
	for page := range pageChan {
		pages = append(pages, page)
	}
	suite.Require().Len(pages, 1)
	suite.Assert().Equal([]uint64{1, 1}, requested)
}

func (suite *IndexerTestSuite) TestQueryFailureStopsEnqueue() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	idxr := suite.newIndexer(server.URL)
	pageChan := make(chan *core.ContractTxPage, 1)

	var failedAt []uint64
	var wg sync.WaitGroup
	wg.Add(1)
	go idxr.EnqueuePages(context.Background(), &wg, func(offset uint64, code core.PageProcessingFailure, err error) {
		suite.Assert().Equal(core.PageQueryError, code)
		failedAt = append(failedAt, offset)
	}, pageChan, 7)
	wg.Wait()

	_, open := <-pageChan
	suite.Assert().False(open)
	suite.Assert().Equal([]uint64{7}, failedAt)
}

func (suite *IndexerTestSuite) TestProcessFailureStopsRun() {
	idxr := suite.newIndexer("http://localhost")

	bad := &core.ContractTxPage{Offset: 5}
	bad.Response.Txs = []txtypes.IndexerTx{{}}
	pageChan := make(chan *core.ContractTxPage, 2)
	dbDataChan := make(chan *DBData, 2)
	pageChan <- bad
	close(pageChan)

	cancelled := false
	var failedAt []uint64
	var wg sync.WaitGroup
	wg.Add(1)
	go idxr.ProcessPages(&wg, func(offset uint64, code core.PageProcessingFailure, err error) {
		suite.Assert().Equal(core.UnprocessableTxError, code)
		failedAt = append(failedAt, offset)
	}, pageChan, dbDataChan, func() { cancelled = true })
	wg.Wait()

	suite.Assert().True(cancelled)
	suite.Assert().Equal([]uint64{5}, failedAt)
	_, open := <-dbDataChan
	suite.Assert().False(open)
}

func (suite *IndexerTestSuite) TestRunDryRun() {
	var requested []uint64
	server := suite.lcd(func(page uint64) { requested = append(requested, page) })
	defer server.Close()

	idxr := suite.newIndexer(server.URL)
	cache := &fakeCache{}
	idxr.Cache = cache

	suite.Require().NoError(idxr.Run(context.Background(), 0, core.HandleFailedPage))

	suite.Assert().Equal([]uint64{1}, requested)
	suite.Assert().Empty(cache.latest)
}

func (suite *IndexerTestSuite) TestWalksEveryPage() {
	server := chainLCD(250)
	defer server.Close()

	idxr := suite.newIndexer(server.URL)
	idxr.Config.Base.PageLimit = 100

	txs := suite.collectTxs(idxr, 0)
	suite.Require().Len(txs, 250)
	for i, tx := range txs {
		suite.Assert().Equal(fmt.Sprintf("H%d", i), tx.Tx.Hash)
		suite.Assert().Equal(uint64(i), tx.Tx.SearchOffset)
	}
}

func (suite *IndexerTestSuite) TestResumesInsideAPage() {
	server := chainLCD(250)
	defer server.Close()

	idxr := suite.newIndexer(server.URL)
	idxr.Config.Base.PageLimit = 100

	txs := suite.collectTxs(idxr, 130)
	suite.Require().Len(txs, 120)
	suite.Assert().Equal("H130", txs[0].Tx.Hash)
	suite.Assert().Equal(uint64(130), txs[0].Tx.SearchOffset)
	suite.Assert().Equal("H249", txs[119].Tx.Hash)
	suite.Assert().Equal(uint64(249), txs[119].Tx.SearchOffset)
}

func (suite *IndexerTestSuite) TestRunReportsFailedPage() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	idxr := suite.newIndexer(server.URL)

	var handled []uint64
	err := idxr.Run(context.Background(), 4, func(offset uint64, code core.PageProcessingFailure, err error) {
		handled = append(handled, offset)
	})
	suite.Require().Error(err)

	var pageErr *core.PageError
	suite.Require().True(errors.As(err, &pageErr))
	suite.Assert().Equal(uint64(4), pageErr.Offset)
	suite.Assert().Equal(core.PageQueryError, pageErr.Code)

	var statusErr *rest.StatusError
	suite.Assert().True(errors.As(err, &statusErr))
	suite.Assert().Equal([]uint64{4}, handled)
}

func (suite *IndexerTestSuite) TestCachePrices() {
	cache := &fakeCache{failFor: "ETH/USD"}
	idxr := &Indexer{Cache: cache}

	idxr.cachePrices(context.Background(), []*model.PriceUpdate{
		{Symbol: "BTC/USD", Price: decimal.RequireFromString("64000.5"), Source: "publish_price"},
		{Symbol: "ETH/USD", Price: decimal.RequireFromString("3100.25"), Source: "update_price"},
	})

	suite.Assert().Equal([]string{"BTC/USD"}, cache.latest)
	suite.Assert().Equal([]string{"BTC/USD"}, cache.updates)
	suite.Assert().Equal([]string{"BTC/USD"}, cache.published)

	// no cache configured
	(&Indexer{}).cachePrices(context.Background(), []*model.PriceUpdate{{Symbol: "BTC/USD"}})
}

func TestIndexer(t *testing.T) {
	suite.Run(t, new(IndexerTestSuite))
}
