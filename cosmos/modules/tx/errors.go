package tx

import (
	"fmt"
)

type TxResponseMismatchError struct {
	Txs         int
	TxResponses int
}

func (e *TxResponseMismatchError) Error() string {
	return fmt.Sprintf("tx search returned %d txs but %d tx responses", e.Txs, e.TxResponses)
}
