package csv

import (
	"strconv"
	"strings"

	"github.com/DefiantLabs/pricefeeds-indexer/pkg/model"
)

const TimeLayout = "2006-01-02 15:04:05"

var (
	SymbolHeaders      = []string{"Symbol"}
	PriceHeaders       = []string{"Symbol", "Price", "Source", "Height", "Date", "Tx Hash"}
	PricePointHeaders  = []string{"Price", "Source", "Height", "Date", "Tx Hash"}
	FeedRequestHeaders = []string{"Tx Hash", "Height", "Date", "Requester", "Pairs", "Reply ID", "Fee Amount", "Fee Denom"}
)

type SymbolRow string

func (r SymbolRow) GetRowForCsv() []string {
	return []string{string(r)}
}

type PriceRow model.PriceUpdate

func (r PriceRow) GetRowForCsv() []string {
	return []string{
		r.Symbol,
		r.Price.String(),
		r.Source,
		strconv.FormatInt(r.Height, 10),
		r.TimeStamp.UTC().Format(TimeLayout),
		r.TxHash,
	}
}

type PricePointRow model.PricePoint

func (r PricePointRow) GetRowForCsv() []string {
	return []string{
		r.Price.String(),
		r.Source,
		strconv.FormatInt(r.Height, 10),
		r.TimeStamp.UTC().Format(TimeLayout),
		r.TxHash,
	}
}

// FeedRequestRow keeps the pairs in one cell, separated by spaces in request order.
type FeedRequestRow model.FeedRequestInfo

func (r FeedRequestRow) GetRowForCsv() []string {
	feeAmount := ""
	if r.FeeDenom != "" {
		feeAmount = r.FeeAmount.String()
	}

	return []string{
		r.TxHash,
		strconv.FormatInt(r.Height, 10),
		r.TimeStamp.UTC().Format(TimeLayout),
		r.Requester,
		strings.Join(r.Pairs, " "),
		strconv.FormatUint(r.ReplyID, 10),
		feeAmount,
		r.FeeDenom,
	}
}
