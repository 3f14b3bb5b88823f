package repository

import (
	"context"
	"fmt"

	"github.com/DefiantLabs/pricefeeds-indexer/pkg/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Prices interface {
	PriceHistory(ctx context.Context, contract string, symbol string, limit int64) ([]*model.PricePoint, error)
	FeedRequests(ctx context.Context, contract string, limit int64) ([]*model.FeedRequestInfo, error)
}

type prices struct {
	db *pgxpool.Pool
}

func NewPrices(db *pgxpool.Pool) Prices {
	return &prices{db: db}
}

// PriceHistory returns the prices stored for symbol, newest first.
func (r *prices) PriceHistory(ctx context.Context, contract string, symbol string, limit int64) ([]*model.PricePoint, error) {
	query := `
	select po.price, po.source, po.height, po.time_stamp, txs.hash
	from price_observations po
		join symbols s on po.symbol_id = s.id
		join contracts c on s.contract_id = c.id
		join execute_messages em on po.execute_message_id = em.id
		join txs on em.tx_id = txs.id
	where c.address = $1 and s.symbol = $2 and po.source in ('publish_price', 'update_price')
	order by txs.search_offset desc, em.message_index desc
	limit $3`

	rows, err := r.db.Query(ctx, query, contract, symbol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	data := make([]*model.PricePoint, 0)
	for rows.Next() {
		var in model.PricePoint
		if err := rows.Scan(&in.Price, &in.Source, &in.Height, &in.TimeStamp, &in.TxHash); err != nil {
			return nil, fmt.Errorf("repository.PriceHistory, Scan: %v", err)
		}
		data = append(data, &in)
	}

	return data, rows.Err()
}

// FeedRequests returns the latest price feed requests with their pairs in request order.
func (r *prices) FeedRequests(ctx context.Context, contract string, limit int64) ([]*model.FeedRequestInfo, error) {
	query := `
	select txs.hash, txs.height, txs.time_stamp, a.address, fr.reply_id, fr.fee_denom, fr.fee_amount,
		coalesce(array_agg(s.symbol order by frp.position) filter (where s.symbol is not null), '{}')
	from feed_requests fr
		join execute_messages em on fr.execute_message_id = em.id
		join txs on em.tx_id = txs.id
		join contracts c on txs.contract_id = c.id
		join addresses a on fr.requester_address_id = a.id
		left join feed_request_pairs frp on frp.feed_request_id = fr.id
		left join symbols s on frp.symbol_id = s.id
	where c.address = $1
	group by fr.id, txs.hash, txs.height, txs.time_stamp, txs.search_offset, em.message_index, a.address
	order by txs.search_offset desc, em.message_index desc
	limit $2`

	rows, err := r.db.Query(ctx, query, contract, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	data := make([]*model.FeedRequestInfo, 0)
	for rows.Next() {
		var in model.FeedRequestInfo
		if err := rows.Scan(&in.TxHash, &in.Height, &in.TimeStamp, &in.Requester, &in.ReplyID,
			&in.FeeDenom, &in.FeeAmount, &in.Pairs); err != nil {
			return nil, fmt.Errorf("repository.FeedRequests, Scan: %v", err)
		}
		data = append(data, &in)
	}

	return data, rows.Err()
}
