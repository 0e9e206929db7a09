package cache

import (
	"context"
	"time"

	jsoniter "github.com/json-iterator/go"

	"cs2arb/internal/domain/entity"
	"cs2arb/pkg/contextx"
	"cs2arb/pkg/logx"
)

var (
	json   = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals
	logger = contextx.LoggerFromContextOrDefault           //nolint:gochecknoglobals
)

// noListing кэширует отсутствие листингов, чтобы не спрашивать площадку повторно.
var noListing = []byte("null") //nolint:gochecknoglobals

type CheapestFetcher interface {
	FetchCheapest(ctx context.Context, marketHashName string) (*entity.CSFloatRecord, error)
}

type ListingNormalizer interface {
	Listing(rec entity.CSFloatRecord) (entity.Listing, error)
}

// CheapestListings отдаёт самый дешёвый листинг предмета, обращаясь
// к площадке только на промахе кэша. Ошибки кэша не мешают живому запросу.
type CheapestListings struct {
	fetcher    CheapestFetcher
	normalizer ListingNormalizer
	store      Store
	ttl        time.Duration
}

func NewCheapestListings(fetcher CheapestFetcher, normalizer ListingNormalizer, store Store, ttl time.Duration) *CheapestListings {
	return &CheapestListings{
		fetcher:    fetcher,
		normalizer: normalizer,
		store:      store,
		ttl:        ttl,
	}
}

func (c *CheapestListings) Cheapest(ctx context.Context, marketHashName string) (*entity.Listing, error) {
	key := "cheapest:" + marketHashName

	if listing, ok := c.cached(ctx, key); ok {
		return listing, nil
	}

	record, err := c.fetcher.FetchCheapest(ctx, marketHashName)
	if err != nil {
		return nil, err
	}

	var listing *entity.Listing
	if record != nil {
		normalized, err := c.normalizer.Listing(*record)
		if err != nil {
			logger(ctx).Warn("cheapest listing is malformed", "name", marketHashName, logx.Error(err))
		} else {
			listing = &normalized
		}
	}

	if err := c.store.Set(ctx, key, encode(listing), c.ttl); err != nil {
		logger(ctx).Warn("cheapest cache unavailable", logx.Error(err))
	}

	return listing, nil
}

func (c *CheapestListings) cached(ctx context.Context, key string) (*entity.Listing, bool) {
	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		logger(ctx).Warn("cheapest cache unavailable", logx.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	if string(data) == string(noListing) {
		return nil, true
	}

	var listing entity.Listing
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, false
	}
	return &listing, true
}

func encode(listing *entity.Listing) []byte {
	if listing == nil {
		return noListing
	}

	data, err := json.Marshal(listing)
	if err != nil {
		return noListing
	}
	return data
}
