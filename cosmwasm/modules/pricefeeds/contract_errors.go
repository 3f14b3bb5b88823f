package pricefeeds

import (
	"fmt"
	"strings"
)

// ContractErrorKind names the error variants the contract can fail an execution with.
type ContractErrorKind string

const (
	ContractErrorUnauthorized      ContractErrorKind = "unauthorized"
	ContractErrorPriceDoesNotExist ContractErrorKind = "price_does_not_exist"
	ContractErrorInvalidExecuteMsg ContractErrorKind = "invalid_execute_msg"
	ContractErrorPriceFeedExists   ContractErrorKind = "price_feed_exists"
	ContractErrorInsufficientFees  ContractErrorKind = "insufficient_fees"
	ContractErrorStd               ContractErrorKind = "std"
)

// Display strings of the contract errors as they show up in failed tx logs.
var contractErrorDisplays = []struct {
	display string
	kind    ContractErrorKind
}{
	{"Insufficient Fees", ContractErrorInsufficientFees},
	{"PriceDoesNotExist", ContractErrorPriceDoesNotExist},
	{"InvalidExecuteMsg", ContractErrorInvalidExecuteMsg},
	{"PriceFeedExists", ContractErrorPriceFeedExists},
	{"Unauthorized", ContractErrorUnauthorized},
}

type ContractError struct {
	Kind   ContractErrorKind
	RawLog string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("contract error %s: %s", e.Kind, e.RawLog)
}

// ClassifyContractError maps the raw log of a failed execution to the contract error it reports.
// Logs that match none of the contract's own errors are standard library failures (not found, parse, ...).
func ClassifyContractError(rawLog string) *ContractError {
	for _, d := range contractErrorDisplays {
		if strings.Contains(rawLog, d.display) {
			return &ContractError{Kind: d.kind, RawLog: rawLog}
		}
	}
	return &ContractError{Kind: ContractErrorStd, RawLog: rawLog}
}
