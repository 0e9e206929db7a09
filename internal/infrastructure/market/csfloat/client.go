// Package csfloat — клиент листингов CSFloat.
package csfloat

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"cs2arb/internal/config"
	"cs2arb/internal/domain/entity"
	"cs2arb/internal/domain/value"
	"cs2arb/internal/infrastructure/market"
	"cs2arb/pkg/contextx"
	"cs2arb/pkg/logx"
)

const (
	listingsPath = "/api/v1/listings"
	// MaxPageSize — потолок limit у CSFloat.
	MaxPageSize = 50

	SortHighestDiscount = "highest_discount"
	SortLowestPrice     = "lowest_price"
	TypeBuyNow          = "buy_now"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// ListingsQuery — параметры GET /api/v1/listings. Нулевые поля не отправляются.
type ListingsQuery struct {
	Type           string
	SortBy         string
	Limit          int
	MinPriceCents  *int64
	MaxPriceCents  *int64
	Cursor         string
	MarketHashName string
}

func (q ListingsQuery) values() url.Values {
	v := url.Values{}

	listingType := q.Type
	if listingType == "" {
		listingType = TypeBuyNow
	}
	v.Set("type", listingType)

	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = SortHighestDiscount
	}
	v.Set("sort_by", sortBy)

	limit := q.Limit
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	v.Set("limit", strconv.Itoa(limit))

	if q.MinPriceCents != nil {
		v.Set("min_price", strconv.FormatInt(*q.MinPriceCents, 10))
	}
	if q.MaxPriceCents != nil {
		v.Set("max_price", strconv.FormatInt(*q.MaxPriceCents, 10))
	}
	if q.Cursor != "" {
		v.Set("cursor", q.Cursor)
	}
	if q.MarketHashName != "" {
		v.Set("market_hash_name", q.MarketHashName)
	}

	return v
}

type Client struct {
	http *market.Client
}

// NewClient собирает клиента; ключ CSFloat передаётся в Authorization без схемы.
func NewClient(cfg config.CSFloat, logFieldMaxLen int, transport http.RoundTripper) *Client {
	headers := map[string]string{}
	if token := cfg.Token(); token != "" {
		headers["Authorization"] = token
	}

	return &Client{
		http: market.NewClient(market.Options{
			Market:         "csfloat",
			BaseURL:        strings.TrimRight(cfg.BaseURL, "/"),
			Timeout:        cfg.Timeout,
			MinInterval:    cfg.MinInterval,
			LogFieldMaxLen: logFieldMaxLen,
			Headers:        headers,
			Transport:      transport,
		}),
	}
}

// FetchListings возвращает одну страницу листингов и курсор следующей.
func (c *Client) FetchListings(ctx context.Context, q ListingsQuery) ([]entity.CSFloatRecord, string, error) {
	var page listingsPage
	if err := c.http.GetJSON(ctx, listingsPath, q.values(), &page); err != nil {
		return nil, "", fmt.Errorf("csfloat listings: %w", err)
	}

	return page.records(), page.Cursor, nil
}

// FetchTopDiscounted обходит до pages страниц с сортировкой по скидке.
// Ошибка первой страницы возвращается; ошибка последующей обрывает обход,
// и уже полученные листинги остаются в результате.
func (c *Client) FetchTopDiscounted(
	ctx context.Context,
	minCents, maxCents int64,
	pages int,
	minDiscount *float64,
) ([]entity.CSFloatRecord, error) {
	var (
		all    []entity.CSFloatRecord
		cursor string
	)

	for page := 0; page < pages; page++ {
		records, next, err := c.FetchListings(ctx, ListingsQuery{
			Type:          TypeBuyNow,
			SortBy:        SortHighestDiscount,
			MinPriceCents: &minCents,
			MaxPriceCents: &maxCents,
			Cursor:        cursor,
		})
		if err != nil {
			if page == 0 {
				return nil, err
			}
			logger(ctx).Warn("csfloat pagination stopped", "page", page, logx.Error(err))
			break
		}

		if len(records) == 0 {
			break
		}
		all = append(all, records...)

		if next == "" {
			break
		}
		cursor = next
	}

	if minDiscount != nil {
		filtered := all[:0]
		for _, r := range all {
			if r.Discount != nil && *r.Discount >= *minDiscount {
				filtered = append(filtered, r)
			}
		}
		all = filtered
	}

	logger(ctx).Info("csfloat discounted listings fetched", "count", len(all))

	return all, nil
}

// FetchCheapest — самый дешёвый buy-now листинг предмета; (nil, nil), если листингов нет.
func (c *Client) FetchCheapest(ctx context.Context, marketHashName string) (*entity.CSFloatRecord, error) {
	records, _, err := c.FetchListings(ctx, ListingsQuery{
		Type:           TypeBuyNow,
		SortBy:         SortLowestPrice,
		Limit:          1,
		MarketHashName: marketHashName,
	})
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, nil //nolint:nilnil
	}
	return &records[0], nil
}

type listingsPage struct {
	Data     []rawListing `json:"data"`
	Listings []rawListing `json:"listings"`
	Cursor   string       `json:"cursor"`
}

func (p listingsPage) records() []entity.CSFloatRecord {
	raw := p.Data
	if len(raw) == 0 {
		raw = p.Listings
	}

	records := make([]entity.CSFloatRecord, 0, len(raw))
	for _, l := range raw {
		record := l.record()
		if record.ID == "" || record.MarketHashName == "" || record.PriceCents <= 0 {
			continue
		}
		records = append(records, record)
	}

	return records
}

type rawListing struct {
	ID        rawID        `json:"id"`
	Price     market.Int   `json:"price"`
	Discount  *float64     `json:"discount"`
	Type      string       `json:"type"`
	CreatedAt string       `json:"created_at"`
	Watchers  *int         `json:"watchers"`
	Reference *rawRef      `json:"reference"`
	Item      rawItem `json:"item"`
}

type rawRef struct {
	Quantity *int `json:"quantity"`
}

type rawItem struct {
	MarketHashName string        `json:"market_hash_name"`
	FloatValue     *float64      `json:"float_value"`
	PaintSeed      *int64        `json:"paint_seed"`
	WearName       string        `json:"wear_name"`
	Stickers       []*rawSticker `json:"stickers"`
}

type rawSticker struct {
	Name string   `json:"name"`
	Slot int      `json:"slot"`
	Wear *float64 `json:"wear"`
}

// rawID — идентификатор листинга, который приходит строкой или числом.
type rawID string

func (id *rawID) UnmarshalJSON(data []byte) error {
	*id = rawID(strings.Trim(string(data), `"`))
	if *id == "null" {
		*id = ""
	}
	return nil
}

func (l rawListing) record() entity.CSFloatRecord {
	listingType := l.Type
	if listingType == "" {
		listingType = TypeBuyNow
	}

	wear := l.Item.WearName
	if wear == "" && l.Item.FloatValue != nil {
		wear = value.WearFromFloat(*l.Item.FloatValue)
	}

	var stickers []entity.Sticker
	for _, s := range l.Item.Stickers {
		if s == nil {
			continue
		}
		stickers = append(stickers, entity.Sticker{Name: s.Name, Slot: s.Slot, Wear: s.Wear})
	}

	var quantity *int
	if l.Reference != nil {
		quantity = l.Reference.Quantity
	}

	return entity.CSFloatRecord{
		ID:                string(l.ID),
		MarketHashName:    l.Item.MarketHashName,
		PriceCents:        int64(l.Price),
		Discount:          l.Discount,
		Type:              listingType,
		FloatValue:        l.Item.FloatValue,
		PaintSeed:         l.Item.PaintSeed,
		WearName:          wear,
		Stickers:          stickers,
		ReferenceQuantity: quantity,
		Watchers:          l.Watchers,
		CreatedAt:         l.CreatedAt,
	}
}
