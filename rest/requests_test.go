package rest

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

const testContract = "osmo1pricefeeds"

type RestClientTestSuite struct {
	suite.Suite
	fixture []byte
}

func (suite *RestClientTestSuite) SetupSuite() {
	fixture, err := os.ReadFile("testdata/contract_txs.json")
	suite.Require().NoError(err)
	suite.fixture = fixture
}

func (suite *RestClientTestSuite) TestGetContractTxs() {
	var gotQuery, gotEvents string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		suite.Assert().Equal("/cosmos/tx/v1beta1/txs", r.URL.Path)
		gotQuery = r.URL.RawQuery
		gotEvents = r.URL.Query().Get("events")
		_, _ = w.Write(suite.fixture)
	}))
	defer server.Close()

	resp, err := NewClient(server.URL).GetContractTxs(testContract, 3, 10)
	suite.Require().NoError(err)
	suite.Assert().Len(resp.Txs, 3)
	suite.Assert().Len(resp.TxResponses, 3)
	suite.Assert().Equal(uint64(3), resp.TotalCount())
	suite.Assert().Equal("C3", resp.TxResponses[2].TxHash)

	suite.Assert().Contains(gotQuery, "&page=3&")
	suite.Assert().Contains(gotQuery, "&limit=10&")
	suite.Assert().Contains(gotQuery, "pagination.offset=20")
	suite.Assert().Contains(gotQuery, "pagination.limit=10")
	suite.Assert().Contains(gotQuery, "order_by=ORDER_BY_ASC")
	suite.Assert().Equal(fmt.Sprintf("execute._contract_address='%s'", testContract), gotEvents)
}

func (suite *RestClientTestSuite) TestGetContractTxsRejectsPageZero() {
	_, err := NewClient("http://localhost").GetContractTxs(testContract, 0, 10)
	suite.Require().Error(err)
}

func (suite *RestClientTestSuite) TestGetAllSymbols() {
	expectedPath := "/cosmwasm/wasm/v1/contract/" + testContract + "/smart/" + base64.URLEncoding.EncodeToString([]byte(`{"get_all_symbols":{}}`))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		suite.Assert().Equal(expectedPath, r.URL.Path)
		_, _ = w.Write([]byte(`{"data":["BTC/USD","ETH/USD"]}`))
	}))
	defer server.Close()

	symbols, err := NewClient(server.URL).GetAllSymbols(testContract)
	suite.Require().NoError(err)
	suite.Assert().Equal([]string{"BTC/USD", "ETH/USD"}, []string(symbols))
}

func (suite *RestClientTestSuite) TestStatusErrors() {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":5,"message":"not found"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).WithRetry(3, 10*time.Millisecond).GetContractInfo(testContract)
	suite.Require().Error(err)

	var statusErr *StatusError
	suite.Require().True(errors.As(err, &statusErr))
	suite.Assert().Equal(http.StatusNotFound, statusErr.StatusCode)
	suite.Assert().Contains(statusErr.Body, "not found")
	suite.Assert().Equal(int32(1), atomic.LoadInt32(&calls))
}

func (suite *RestClientTestSuite) TestRetriesServerErrors() {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"block":{"header":{"height":"12345"}}}`))
	}))
	defer server.Close()

	height, err := NewClient(server.URL).WithRetry(5, 10*time.Millisecond).GetLatestBlockHeight()
	suite.Require().NoError(err)
	suite.Assert().Equal(uint64(12345), height)
	suite.Assert().Equal(int32(3), atomic.LoadInt32(&calls))

	atomic.StoreInt32(&calls, 0)
	_, err = NewClient(server.URL).GetLatestBlockHeight()
	suite.Require().Error(err)
	suite.Assert().Equal(int32(1), atomic.LoadInt32(&calls))
}

func TestRestClient(t *testing.T) {
	suite.Run(t, new(RestClientTestSuite))
}
