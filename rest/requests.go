package rest

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/DefiantLabs/pricefeeds-indexer/cosmos/modules/tx"
	"github.com/DefiantLabs/pricefeeds-indexer/cosmwasm/modules/pricefeeds"
	"github.com/cenkalti/backoff/v4"
)

var apiEndpoints = map[string]string{
	"contract_txs_endpoint":  "/cosmos/tx/v1beta1/txs?events=%s&page=%d&limit=%d&pagination.offset=%d&pagination.limit=%d&order_by=ORDER_BY_ASC",
	"smart_query_endpoint":   "/cosmwasm/wasm/v1/contract/%s/smart/%s",
	"contract_info_endpoint": "/cosmwasm/wasm/v1/contract/%s",
	"latest_block_endpoint":  "/cosmos/base/tendermint/v1beta1/blocks/latest",
}

// Client talks to a Cosmos LCD. With zero Retries every request is attempted once.
type Client struct {
	Host       string
	HTTPClient *http.Client
	Retries    uint64
	MaxWait    time.Duration
}

func NewClient(host string) *Client {
	return &Client{
		Host:       host,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// WithRetry retries failed requests with exponential backoff, waiting at most maxWait between attempts.
// Client errors (4xx) are not retried.
func (c *Client) WithRetry(attempts uint64, maxWait time.Duration) *Client {
	c.Retries = attempts
	c.MaxWait = maxWait
	return c
}

// StatusError is returned for any non-200 LCD response.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("error getting response for endpoint %s: Status %s Body %s", e.Endpoint, e.Status, e.Body)
}

// GetContractTxs makes a request to the Cosmos REST API for one page of the txs that executed the contract, oldest first.
// Pages start at 1. Nodes on SDK 0.46 and later only read page and limit, older ones read the pagination offset,
// both are sent and point at the same txs.
func (c *Client) GetContractTxs(contract string, page, limit uint64) (tx.GetTxsEventResponse, error) {
	var result tx.GetTxsEventResponse

	if page == 0 || limit == 0 {
		return result, fmt.Errorf("invalid contract txs page %d with limit %d", page, limit)
	}

	events := url.QueryEscape(fmt.Sprintf("execute._contract_address='%s'", contract))
	requestEndpoint := fmt.Sprintf(apiEndpoints["contract_txs_endpoint"], events, page, limit, (page-1)*limit, limit)

	err := c.getJSON(requestEndpoint, &result)
	return result, err
}

// QueryContractSmart runs a smart query against the contract and returns the raw "data" field of the answer.
func (c *Client) QueryContractSmart(contract string, msg []byte) (json.RawMessage, error) {
	var result struct {
		Data json.RawMessage `json:"data"`
	}

	encoded := base64.URLEncoding.EncodeToString(msg)
	requestEndpoint := fmt.Sprintf(apiEndpoints["smart_query_endpoint"], contract, encoded)

	if err := c.getJSON(requestEndpoint, &result); err != nil {
		return nil, err
	}

	return result.Data, nil
}

// GetAllSymbols asks the contract for every symbol it holds a price for.
func (c *Client) GetAllSymbols(contract string) (pricefeeds.ArrayOfString, error) {
	query, err := pricefeeds.NewGetAllSymbols().Marshal()
	if err != nil {
		return nil, err
	}

	data, err := c.QueryContractSmart(contract, query)
	if err != nil {
		return nil, err
	}

	return pricefeeds.UnmarshalArrayOfString(data)
}

type ContractInfo struct {
	Address      string `json:"address"`
	ContractInfo struct {
		CodeID  string `json:"code_id"`
		Creator string `json:"creator"`
		Admin   string `json:"admin"`
		Label   string `json:"label"`
	} `json:"contract_info"`
}

func (c *Client) GetContractInfo(contract string) (ContractInfo, error) {
	var result ContractInfo
	err := c.getJSON(fmt.Sprintf(apiEndpoints["contract_info_endpoint"], contract), &result)
	return result, err
}

// GetLatestBlockHeight returns the height of the newest block the node knows about
func (c *Client) GetLatestBlockHeight() (uint64, error) {
	var result struct {
		Block struct {
			Header struct {
				Height string `json:"height"`
			} `json:"header"`
		} `json:"block"`
	}

	if err := c.getJSON(apiEndpoints["latest_block_endpoint"], &result); err != nil {
		return 0, err
	}

	return strconv.ParseUint(result.Block.Header.Height, 10, 64)
}

func (c *Client) getJSON(requestEndpoint string, result interface{}) error {
	operation := func() error {
		return c.doGet(requestEndpoint, result)
	}

	policy := backoff.NewExponentialBackOff()
	if c.MaxWait > 0 {
		policy.MaxInterval = c.MaxWait
		if policy.InitialInterval > c.MaxWait {
			policy.InitialInterval = c.MaxWait
		}
	}

	return backoff.Retry(operation, backoff.WithMaxRetries(policy, c.Retries))
}

func (c *Client) doGet(requestEndpoint string, result interface{}) error {
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Get(fmt.Sprintf("%s%s", c.Host, requestEndpoint))
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	err = checkResponseErrorCode(requestEndpoint, resp)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode >= 400 && statusErr.StatusCode < 500 {
			return backoff.Permanent(err)
		}
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	err = json.Unmarshal(body, result)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("error decoding response for endpoint %s: %w", requestEndpoint, err))
	}

	return nil
}

func checkResponseErrorCode(requestEndpoint string, resp *http.Response) error {
	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return &StatusError{Endpoint: requestEndpoint, StatusCode: resp.StatusCode, Status: resp.Status, Body: string(body)}
	}

	return nil
}
