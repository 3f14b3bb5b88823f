package core

import (
	"fmt"

	"github.com/DefiantLabs/pricefeeds-indexer/config"
)

type PageProcessingFailure int

const (
	PageQueryError PageProcessingFailure = iota
	UnprocessableTxError
	PageIndexError
)

type FailedPageHandler func(offset uint64, code PageProcessingFailure, err error)

// PageError reports the page that stopped an indexing run.
type PageError struct {
	Offset uint64
	Code   PageProcessingFailure
	Err    error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page at offset %d failed: %s: %v", e.Offset, e.Code, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

func (code PageProcessingFailure) String() string {
	switch code {
	case PageQueryError:
		return "failed to query contract txs from the LCD"
	case UnprocessableTxError:
		return "page has a tx that could not be processed"
	case PageIndexError:
		return "failed to store the page in the DB"
	default:
		return "{unknown error}"
	}
}

// Log error to stdout. Not much else we can do to handle right now.
func HandleFailedPage(offset uint64, code PageProcessingFailure, err error) {
	config.Log.Error(fmt.Sprintf("Page at offset %v failed. Reason: %v", offset, code), err)
}
