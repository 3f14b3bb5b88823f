package repository

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/DefiantLabs/pricefeeds-indexer/pkg/model"
	"github.com/redis/go-redis/v9"
)

const (
	pricesChannel            = "pub/prices"
	maxPriceUpdatesCacheSize = 50
	latestPricesKey          = "c/latest_prices"
	priceUpdatesKey          = "c/price_updates"
)

type PricesCache interface {
	SetLatestPrice(ctx context.Context, update *model.PriceUpdate) error
	GetLatestPrices(ctx context.Context, symbols ...string) ([]*model.PriceUpdate, error)
	AddPriceUpdate(ctx context.Context, update *model.PriceUpdate) error
	GetPriceUpdates(ctx context.Context, start, stop int64) ([]*model.PriceUpdate, error)
	PublishPriceUpdate(ctx context.Context, update *model.PriceUpdate) error
}

type Cache struct {
	rdb *redis.Client
}

func NewCache(rdb *redis.Client) *Cache {
	return &Cache{
		rdb: rdb,
	}
}

// SetLatestPrice keeps the newest price per symbol. Callers index in chain order, so the last write wins.
func (s *Cache) SetLatestPrice(ctx context.Context, update *model.PriceUpdate) error {
	res, err := json.Marshal(update)
	if err != nil {
		return err
	}

	return s.rdb.HSet(ctx, latestPricesKey, update.Symbol, string(res)).Err()
}

// GetLatestPrices returns the cached prices of the given symbols, or every cached symbol when none are given.
// Symbols without a cached price are skipped. The result is sorted by symbol.
func (s *Cache) GetLatestPrices(ctx context.Context, symbols ...string) ([]*model.PriceUpdate, error) {
	var values []string
	if len(symbols) == 0 {
		all, err := s.rdb.HGetAll(ctx, latestPricesKey).Result()
		if err != nil {
			return nil, err
		}
		for _, v := range all {
			values = append(values, v)
		}
	} else {
		res, err := s.rdb.HMGet(ctx, latestPricesKey, symbols...).Result()
		if err != nil {
			return nil, err
		}
		for _, v := range res {
			if str, ok := v.(string); ok {
				values = append(values, str)
			}
		}
	}

	updates := make([]*model.PriceUpdate, 0, len(values))
	for _, v := range values {
		var update model.PriceUpdate
		if err := json.Unmarshal([]byte(v), &update); err != nil {
			return nil, err
		}
		updates = append(updates, &update)
	}

	sort.Slice(updates, func(i, j int) bool { return updates[i].Symbol < updates[j].Symbol })
	return updates, nil
}

func (s *Cache) AddPriceUpdate(ctx context.Context, update *model.PriceUpdate) error {
	res, err := json.Marshal(update)
	if err != nil {
		return err
	}

	if err := s.rdb.LPush(ctx, priceUpdatesKey, string(res)).Err(); err != nil {
		return err
	}

	return s.rdb.LTrim(ctx, priceUpdatesKey, 0, maxPriceUpdatesCacheSize-1).Err()
}

// GetPriceUpdates returns the most recent updates first.
func (s *Cache) GetPriceUpdates(ctx context.Context, start, stop int64) ([]*model.PriceUpdate, error) {
	if stop >= maxPriceUpdatesCacheSize {
		stop = maxPriceUpdatesCacheSize - 1
	}

	res, err := s.rdb.LRange(ctx, priceUpdatesKey, start, stop).Result()
	if err != nil {
		return nil, err
	}

	var updates []*model.PriceUpdate
	for _, r := range res {
		var update model.PriceUpdate
		if err := json.Unmarshal([]byte(r), &update); err != nil {
			return nil, err
		}
		updates = append(updates, &update)
	}

	return updates, nil
}

func (s *Cache) PublishPriceUpdate(ctx context.Context, update *model.PriceUpdate) error {
	res, err := json.Marshal(update)
	if err != nil {
		return err
	}

	return s.rdb.Publish(ctx, pricesChannel, res).Err()
}

// SubscribePriceUpdates subscribes to published price updates. The caller closes the subscription.
func (s *Cache) SubscribePriceUpdates(ctx context.Context) *redis.PubSub {
	return s.rdb.Subscribe(ctx, pricesChannel)
}
