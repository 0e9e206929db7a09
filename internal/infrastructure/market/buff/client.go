// Package buff — клиент каталога Buff163.
package buff

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"cs2arb/internal/config"
	"cs2arb/internal/domain/entity"
	"cs2arb/internal/infrastructure/market"
	"cs2arb/pkg/contextx"
	"cs2arb/pkg/logx"
	"cs2arb/pkg/httpx"
)

const itemsPath = "/api/market/items"

var (
	json   = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals
	logger = contextx.LoggerFromContextOrDefault           //nolint:gochecknoglobals
)

// ErrRejected — Buff вернул код ошибки в конверте ответа.
var ErrRejected = errors.New("buff rejected request")

type Client struct {
	http     *market.Client
	game     string
	pageSize int
}

// NewClient собирает клиента с Bearer-ключом и, если задана, сессионной кукой.
func NewClient(cfg config.Buff, logFieldMaxLen int, transport http.RoundTripper) *Client {
	opts := market.Options{
		Market:         "buff",
		BaseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		Timeout:        cfg.Timeout,
		MinInterval:    cfg.MinInterval,
		LogFieldMaxLen: logFieldMaxLen,
		Transport:      transport,
	}

	if token := cfg.Token(); token != "" {
		opts.Wrap = func(next http.RoundTripper) http.RoundTripper {
			return httpx.NewAuthBearerRoundTripper(next, staticKey(token))
		}
	}

	if cfg.SessionCookie != "" {
		opts.Cookies = []*http.Cookie{{Name: "session", Value: cfg.SessionCookie}}
	}

	game := cfg.Game
	if game == "" {
		game = "cs2"
	}

	return &Client{
		http:     market.NewClient(opts),
		game:     game,
		pageSize: cfg.PageSize,
	}
}

// FetchAllItems забирает каталог целиком: Buff отдаёт все предметы одной страницей.
func (c *Client) FetchAllItems(ctx context.Context) ([]entity.BuffRecord, error) {
	query := url.Values{}
	query.Set("game", c.game)
	query.Set("include_sticker", "0")
	query.Set("page_num", "1")
	query.Set("page_size", strconv.Itoa(c.pageSize))

	var envelope itemsEnvelope
	if err := c.http.GetJSON(ctx, itemsPath, query, &envelope); err != nil {
		return nil, fmt.Errorf("buff items: %w", err)
	}

	if !envelope.ok() {
		return nil, fmt.Errorf("%w: %s", ErrRejected, envelope.message())
	}

	records := envelope.records(ctx)
	logger(ctx).Info("buff items fetched", "count", len(records))

	return records, nil
}

type staticKey string

func (k staticKey) BearerToken() string {
	return string(k)
}

// Authenticate вызывается только после 401: статический ключ обновить нечем.
func (k staticKey) Authenticate(context.Context) error {
	if k == "" {
		return errors.New("buff api key is empty")
	}
	return errors.New("buff api key was rejected")
}

type itemsEnvelope struct {
	Code    jsoniter.RawMessage `json:"code"`
	Msg     string              `json:"msg"`
	Message string              `json:"message"`
	Info    []rawItem           `json:"info"`
	Data    *struct {
		Items []rawItem `json:"items"`
	} `json:"data"`
	Items []rawItem `json:"items"`
}

func (e itemsEnvelope) ok() bool {
	code := bytes.TrimSpace(e.Code)
	switch string(code) {
	case "", "null", `"OK"`, "0":
		return true
	default:
		return false
	}
}

func (e itemsEnvelope) message() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Message != "":
		return e.Message
	default:
		return "unknown error"
	}
}

func (e itemsEnvelope) rawItems() []rawItem {
	if len(e.Info) > 0 {
		return e.Info
	}
	if e.Data != nil && len(e.Data.Items) > 0 {
		return e.Data.Items
	}
	return e.Items
}

func (e itemsEnvelope) records(ctx context.Context) []entity.BuffRecord {
	raw := e.rawItems()
	records := make([]entity.BuffRecord, 0, len(raw))

	for _, item := range raw {
		record, err := item.record()
		if err != nil {
			logger(ctx).Warn("skip malformed buff item", "goods_id", item.GoodsID, logx.Error(err))
			continue
		}
		if record.GoodsID == 0 || record.MarketHashName == "" {
			continue
		}
		records = append(records, record)
	}

	return records
}

type rawItem struct {
	GoodsID        market.Int            `json:"goods_id"`
	ID             market.Int            `json:"id"`
	MarketHashName string                `json:"market_hash_name"`
	Name           string                `json:"name"`
	UpdateTime     *market.Int           `json:"update_time"`
	StatTime       *market.Int           `json:"stat_time"`
	Sales          []jsoniter.RawMessage `json:"sales"`
	SellMinPrices  []jsoniter.RawMessage `json:"sell_min_prices"`
	SellMinPrice   market.Float          `json:"sell_min_price"`
	MinPrice       market.Float          `json:"min_price"`
}

type rawSale struct {
	MinPrice market.Float `json:"min_price"`
	Price    market.Float `json:"price"`
	TagID    *market.Int  `json:"tag_id"`
	TagName  string       `json:"tag_name"`
}

func (r rawItem) record() (entity.BuffRecord, error) {
	record := entity.BuffRecord{
		GoodsID:        int64(r.GoodsID),
		MarketHashName: r.MarketHashName,
		UpdateTime:     r.UpdateTime.Ptr(),
		StatTime:       r.StatTime.Ptr(),
	}
	if record.GoodsID == 0 {
		record.GoodsID = int64(r.ID)
	}
	if record.MarketHashName == "" {
		record.MarketHashName = r.Name
	}

	rawSales := r.Sales
	if len(rawSales) == 0 {
		rawSales = r.SellMinPrices
	}

	for _, raw := range rawSales {
		sale, err := parseSale(raw)
		if err != nil {
			return entity.BuffRecord{}, err
		}
		record.Sales = append(record.Sales, sale)
	}

	if len(record.Sales) == 0 {
		price := r.SellMinPrice
		if price == 0 {
			price = r.MinPrice
		}
		if price != 0 {
			record.Sales = append(record.Sales, entity.BuffSale{MinPrice: float64(price)})
		}
	}

	return record, nil
}

// parseSale разбирает элемент продаж: объект с тегом или голое число.
func parseSale(raw jsoniter.RawMessage) (entity.BuffSale, error) {
	raw = bytes.TrimSpace(raw)

	if len(raw) > 0 && raw[0] == '{' {
		var sale rawSale
		if err := json.Unmarshal(raw, &sale); err != nil {
			return entity.BuffSale{}, fmt.Errorf("sale: %w", err)
		}

		price := sale.MinPrice
		if price == 0 {
			price = sale.Price
		}

		return entity.BuffSale{
			MinPrice: float64(price),
			TagID:    sale.TagID.Ptr(),
			TagName:  sale.TagName,
		}, nil
	}

	var price market.Float
	if err := json.Unmarshal(raw, &price); err != nil {
		return entity.BuffSale{}, fmt.Errorf("sale price: %w", err)
	}

	return entity.BuffSale{MinPrice: float64(price)}, nil
}
