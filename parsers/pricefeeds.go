package parsers

import (
	"errors"
	"fmt"

	"github.com/DefiantLabs/pricefeeds-indexer/cosmwasm/modules/pricefeeds"
	"github.com/DefiantLabs/pricefeeds-indexer/cosmwasm/modules/wasm"
	"github.com/DefiantLabs/pricefeeds-indexer/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const PriceFeedsParserIdentifier = "pricefeeds"

type PriceRecord struct {
	Symbol string
	Price  wasm.Decimal256
}

// PriceFeedsData is the state change one execute message makes. Only the fields of its tag are set.
type PriceFeedsData struct {
	Tag            string
	Prices         []PriceRecord
	RequestedPairs []string
	ReplyID        uint64
	Fee            *wasm.Coin
	CostPerRequest *wasm.Uint128
	NewAdmin       string
}

// PriceFeedsParser turns PriceFeeds execute messages into price, request and admin rows.
// Denom is the fee denom the contract was instantiated with; when empty a single attached coin is taken as the fee.
type PriceFeedsParser struct {
	Denom string
}

func (p *PriceFeedsParser) Identifier() string {
	return PriceFeedsParserIdentifier
}

func (p *PriceFeedsParser) ParseMessage(msg pricefeeds.ExecuteMsg, ctx MessageContext) (any, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	data := &PriceFeedsData{Tag: msg.Tag()}

	switch data.Tag {
	case pricefeeds.TagPublishPrice:
		data.Prices = []PriceRecord{{Symbol: msg.PublishPrice.Symbol, Price: msg.PublishPrice.Price.Price}}
	case pricefeeds.TagUpdatePrice:
		data.Prices = []PriceRecord{{Symbol: msg.UpdatePrice.Symbol, Price: msg.UpdatePrice.Price.Price}}
	case pricefeeds.TagReceivePrice:
		feed := msg.ReceivePrice.PriceResponse
		data.Prices = []PriceRecord{{Symbol: feed.Symbol, Price: feed.Price}}
	case pricefeeds.TagReceivePrices:
		for _, feed := range msg.ReceivePrices.PricesResponse.PriceFeeds {
			data.Prices = append(data.Prices, PriceRecord{Symbol: feed.Symbol, Price: feed.Price})
		}
	case pricefeeds.TagRequestPriceFeed:
		if msg.RequestPriceFeed.Symbol == "" {
			return nil, wasm.SchemaErrorf("execute_msg.request_price_feed.symbol", "empty symbol")
		}
		data.RequestedPairs = []string{msg.RequestPriceFeed.Symbol}
		data.ReplyID = pricefeeds.ReplyPriceFeed
		data.Fee = p.fee(ctx.Funds)
	case pricefeeds.TagRequestPriceFeeds:
		for i, pair := range msg.RequestPriceFeeds.Request.Pairs {
			if pair == "" {
				return nil, wasm.SchemaErrorf(fmt.Sprintf("execute_msg.request_price_feeds.request.pairs[%d]", i), "empty symbol")
			}
		}
		data.RequestedPairs = append([]string{}, msg.RequestPriceFeeds.Request.Pairs...)
		data.ReplyID = pricefeeds.ReplyPriceFeeds
		data.Fee = p.fee(ctx.Funds)
	case pricefeeds.TagSetCostPerRequest:
		cost := msg.SetCostPerRequest.CostPerRequest
		data.CostPerRequest = &cost
	case pricefeeds.TagChangeAdmin:
		if msg.ChangeAdmin.Address == "" {
			return nil, wasm.SchemaErrorf("execute_msg.change_admin.address", "empty address")
		}
		data.NewAdmin = msg.ChangeAdmin.Address
	}

	for _, price := range data.Prices {
		if price.Symbol == "" {
			return nil, fmt.Errorf("%s in tx %s has a price without symbol", data.Tag, ctx.TxHash)
		}
	}

	return data, nil
}

func (p *PriceFeedsParser) fee(funds wasm.Coins) *wasm.Coin {
	if p.Denom != "" {
		return &wasm.Coin{Denom: p.Denom, Amount: funds.AmountOf(p.Denom)}
	}
	if len(funds) == 1 {
		coin := funds[0]
		return &coin
	}
	return nil
}

func (p *PriceFeedsParser) IndexMessage(parsed any, dbTransaction *gorm.DB, message models.ExecuteMessage, ctx MessageContext) error {
	data, ok := parsed.(*PriceFeedsData)
	if !ok || data == nil {
		return errors.New("pricefeeds parser was handed data it did not produce")
	}

	switch {
	case len(data.Prices) > 0:
		return p.indexPrices(dbTransaction, data, message, ctx)
	case len(data.RequestedPairs) > 0 || data.ReplyID != 0:
		return p.indexFeedRequest(dbTransaction, data, message, ctx)
	case data.CostPerRequest != nil:
		change := models.CostChange{ExecuteMessageID: message.ID}
		return dbTransaction.
			Where(models.CostChange{ExecuteMessageID: message.ID}).
			Assign(models.CostChange{CostPerRequest: data.CostPerRequest.Decimal()}).
			FirstOrCreate(&change).Error
	case data.NewAdmin != "":
		admin, err := findOrCreateAddress(dbTransaction, data.NewAdmin)
		if err != nil {
			return err
		}
		change := models.AdminChange{ExecuteMessageID: message.ID}
		return dbTransaction.
			Where(models.AdminChange{ExecuteMessageID: message.ID}).
			Assign(models.AdminChange{NewAdminAddressID: admin.ID}).
			FirstOrCreate(&change).Error
	}

	return nil
}

func (p *PriceFeedsParser) indexPrices(dbTransaction *gorm.DB, data *PriceFeedsData, message models.ExecuteMessage, ctx MessageContext) error {
	observations := make([]models.PriceObservation, 0, len(data.Prices))
	for position, price := range data.Prices {
		symbol, err := findOrCreateSymbol(dbTransaction, ctx.ContractID, price.Symbol)
		if err != nil {
			return err
		}

		observations = append(observations, models.PriceObservation{
			ExecuteMessageID: message.ID,
			Position:         position,
			SymbolID:         symbol.ID,
			Price:            price.Price.Decimal(),
			Source:           data.Tag,
			Height:           ctx.Height,
			TimeStamp:        ctx.TimeStamp,
		})
	}

	return dbTransaction.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "execute_message_id"}, {Name: "position"}},
		DoUpdates: clause.AssignmentColumns([]string{"symbol_id", "price", "source", "height", "time_stamp"}),
	}).Create(&observations).Error
}

func (p *PriceFeedsParser) indexFeedRequest(dbTransaction *gorm.DB, data *PriceFeedsData, message models.ExecuteMessage, ctx MessageContext) error {
	requester, err := findOrCreateAddress(dbTransaction, ctx.Sender)
	if err != nil {
		return err
	}

	assign := models.FeedRequest{RequesterAddressID: requester.ID, ReplyID: data.ReplyID}
	if data.Fee != nil {
		assign.FeeDenom = data.Fee.Denom
		assign.FeeAmount = data.Fee.Amount.Decimal()
	}

	request := models.FeedRequest{ExecuteMessageID: message.ID}
	if err := dbTransaction.
		Where(models.FeedRequest{ExecuteMessageID: message.ID}).
		Assign(assign).
		FirstOrCreate(&request).Error; err != nil {
		return err
	}

	if len(data.RequestedPairs) == 0 {
		return nil
	}

	pairs := make([]models.FeedRequestPair, 0, len(data.RequestedPairs))
	for position, pair := range data.RequestedPairs {
		symbol, err := findOrCreateSymbol(dbTransaction, ctx.ContractID, pair)
		if err != nil {
			return err
		}
		pairs = append(pairs, models.FeedRequestPair{FeedRequestID: request.ID, Position: position, SymbolID: symbol.ID})
	}

	return dbTransaction.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "feed_request_id"}, {Name: "position"}},
		DoUpdates: clause.AssignmentColumns([]string{"symbol_id"}),
	}).Create(&pairs).Error
}

func findOrCreateSymbol(db *gorm.DB, contractID uint, symbol string) (models.Symbol, error) {
	sym := models.Symbol{ContractID: contractID, Symbol: symbol}
	err := db.Where(&sym).FirstOrCreate(&sym).Error
	return sym, err
}

func findOrCreateAddress(db *gorm.DB, address string) (models.Address, error) {
	if address == "" {
		return models.Address{}, errors.New("address is required")
	}

	addr := models.Address{Address: address}
	err := db.Where(&addr).FirstOrCreate(&addr).Error
	return addr, err
}
