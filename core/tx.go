package core

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/DefiantLabs/pricefeeds-indexer/config"
	txtypes "github.com/DefiantLabs/pricefeeds-indexer/cosmos/modules/tx"
	"github.com/DefiantLabs/pricefeeds-indexer/cosmwasm/modules/pricefeeds"
	"github.com/DefiantLabs/pricefeeds-indexer/cosmwasm/modules/wasm"
	dbTypes "github.com/DefiantLabs/pricefeeds-indexer/db"
	"github.com/DefiantLabs/pricefeeds-indexer/db/models"
	"github.com/DefiantLabs/pricefeeds-indexer/filter"
	"github.com/DefiantLabs/pricefeeds-indexer/parsers"
	"github.com/DefiantLabs/pricefeeds-indexer/pkg/model"
	"github.com/DefiantLabs/pricefeeds-indexer/util"
)

// ContractTxPage is one page of the contract tx search. Offset is the search offset of the first tx
// of the page, the first Skip txs were indexed by an earlier run.
type ContractTxPage struct {
	Offset   uint64
	Skip     uint64
	Response txtypes.GetTxsEventResponse
}

type ContractProcessor struct {
	Contract   string
	ContractID uint
	Filters    []filter.ExecuteTagFilter
	Parsers    []parsers.MessageParser
}

// ProcessContractTxs turns a page of LCD txs into db wrappers. Every tx of the page is kept, so that
// the search offset advances over txs with no matching messages.
func (p ContractProcessor) ProcessContractTxs(page ContractTxPage) ([]dbTypes.TxDBWrapper, error) {
	mergedTxs, err := txtypes.MergeTxs(page.Response)
	if err != nil {
		return nil, err
	}

	var wrappers []dbTypes.TxDBWrapper
	for txIdx, mergedTx := range mergedTxs {
		if uint64(txIdx) < page.Skip {
			continue
		}
		wrapper, err := p.ProcessTx(mergedTx, page.Offset+uint64(txIdx))
		if err != nil {
			return nil, fmt.Errorf("error processing tx %s: %w", mergedTx.TxResponse.TxHash, err)
		}
		wrappers = append(wrappers, wrapper)
	}

	return wrappers, nil
}

func (p ContractProcessor) ProcessTx(tx txtypes.MergedTx, searchOffset uint64) (txDBWrapper dbTypes.TxDBWrapper, err error) {
	height, err := util.ParseHeight(tx.TxResponse.Height)
	if err != nil {
		config.Log.Error("Error parsing tx height.", err)
		return txDBWrapper, err
	}

	txTime, err := util.ParseTimestamp(tx.TxResponse.TimeStamp)
	if err != nil {
		config.Log.Error("Error parsing tx timestamp.", err)
		return txDBWrapper, err
	}

	code := tx.TxResponse.Code
	txDBWrapper.Tx = models.Tx{
		Hash:         tx.TxResponse.TxHash,
		Code:         code,
		Height:       height,
		TimeStamp:    txTime,
		Memo:         tx.Tx.Body.Memo,
		SearchOffset: searchOffset,
	}

	// non-zero code means the Tx was unsuccessful. Its messages are kept but nothing they carry took effect.
	if code != 0 {
		contractErr := pricefeeds.ClassifyContractError(tx.TxResponse.RawLog)
		txDBWrapper.FailedTx = &models.FailedTx{
			Codespace: tx.TxResponse.Codespace,
			RawLog:    tx.TxResponse.RawLog,
			ErrorKind: string(contractErr.Kind),
		}
		config.Log.Debug(fmt.Sprintf("[Height: %v] [TX: %v] Failed with %s.", height, tx.TxResponse.TxHash, contractErr.Kind))
	}

	for messageIndex, rawMessage := range tx.Tx.Body.Messages {
		var typed wasm.TypedMessage
		if err := json.Unmarshal(rawMessage, &typed); err != nil {
			return txDBWrapper, err
		}

		if typed.Type != wasm.MsgExecuteContract {
			config.Log.Debug(fmt.Sprintf("[Height: %v] [TX: %v] Skipping msg of type '%v'.", height, tx.TxResponse.TxHash, typed.Type))
			continue
		}

		var execute wasm.ExecuteContract
		if err := json.Unmarshal(rawMessage, &execute); err != nil {
			return txDBWrapper, err
		}

		if execute.Contract != p.Contract {
			continue
		}

		messageLog := txtypes.GetMessageLogForIndex(tx.TxResponse.Log, messageIndex)
		ctx := parsers.MessageContext{
			ContractID: p.ContractID,
			TxHash:     tx.TxResponse.TxHash,
			Height:     height,
			TimeStamp:  txTime,
			Sender:     execute.Sender,
			Funds:      execute.Funds,
			Log:        messageLog,
		}

		messageDBWrapper, shouldIndex, err := p.ProcessMessage(messageIndex, execute, ctx, code == 0)
		if err != nil {
			return txDBWrapper, err
		}

		if !shouldIndex {
			config.Log.Debug(fmt.Sprintf("[Height: %v] [TX: %v] Filtered out msg %d with tag '%v'.", height, tx.TxResponse.TxHash, messageIndex, messageDBWrapper.Message.Tag))
			continue
		}

		txDBWrapper.Messages = append(txDBWrapper.Messages, messageDBWrapper)
	}

	return txDBWrapper, nil
}

// ProcessMessage decodes one execute message. Messages that do not match the schema are always kept, with the mismatch attached.
// Parsers only run on messages of successful txs.
func (p ContractProcessor) ProcessMessage(messageIndex int, execute wasm.ExecuteContract, ctx parsers.MessageContext, succeeded bool) (dbTypes.MessageDBWrapper, bool, error) {
	fundsJSON, err := json.Marshal(execute.Funds)
	if err != nil {
		return dbTypes.MessageDBWrapper{}, false, err
	}

	wrapper := dbTypes.MessageDBWrapper{
		Message: models.ExecuteMessage{
			MessageIndex: messageIndex,
			MsgJSON:      string(execute.Msg),
			FundsJSON:    string(fundsJSON),
			Actions:      strings.Join(txtypes.GetContractActions(p.Contract, ctx.Log), ","),
		},
		Sender:  execute.Sender,
		Context: ctx,
	}

	msg, err := pricefeeds.UnmarshalExecuteMsg(execute.Msg)
	if err != nil {
		config.Log.Warn(fmt.Sprintf("[Height: %v] [TX: %v] Msg %d does not match the execute schema: %v", ctx.Height, ctx.TxHash, messageIndex, err))
		wrapper.SchemaError = err
		return wrapper, true, nil
	}

	wrapper.Message.Tag = msg.Tag()

	shouldIndex, err := filter.ShouldIndex(wrapper.Message.Tag, p.Filters)
	if err != nil || !shouldIndex {
		return wrapper, false, err
	}

	if succeeded {
		wrapper.MessageParsedDatasets = parsers.ParseWithAll(msg, ctx, p.Parsers)
	}

	return wrapper, true, nil
}

// PriceUpdates lists the prices a processed page stored, in chain order.
func PriceUpdates(txs []dbTypes.TxDBWrapper) []*model.PriceUpdate {
	var updates []*model.PriceUpdate
	for _, tx := range txs {
		for _, message := range tx.Messages {
			for _, parsed := range message.MessageParsedDatasets {
				data, ok := parsed.Data.(*parsers.PriceFeedsData)
				if !ok || parsed.Error != nil {
					continue
				}
				if data.Tag != pricefeeds.TagPublishPrice && data.Tag != pricefeeds.TagUpdatePrice {
					continue
				}
				for _, price := range data.Prices {
					updates = append(updates, &model.PriceUpdate{
						Symbol:    price.Symbol,
						Price:     price.Price.Decimal(),
						Source:    data.Tag,
						Height:    message.Context.Height,
						TimeStamp: message.Context.TimeStamp,
						TxHash:    message.Context.TxHash,
					})
				}
			}
		}
	}
	return updates
}
