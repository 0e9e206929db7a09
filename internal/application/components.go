package application

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/mymmrac/telego"
	"github.com/redis/go-redis/v9"

	"cs2arb/internal/config"
	"cs2arb/internal/domain/service/classifier"
	"cs2arb/internal/domain/service/ingest"
	"cs2arb/internal/domain/service/ledger"
	"cs2arb/internal/domain/service/lifecycle"
	"cs2arb/internal/domain/service/normalizer"
	"cs2arb/internal/domain/service/signal"
	"cs2arb/internal/infrastructure/cache"
	"cs2arb/internal/infrastructure/market/buff"
	"cs2arb/internal/infrastructure/market/csfloat"
	"cs2arb/internal/infrastructure/notifier"
	"cs2arb/internal/infrastructure/watchlist"
	"cs2arb/pkg/application/connectors"
	"cs2arb/pkg/logx"
)

// components — собранный граф зависимостей, общий для сервиса и scanonce.
type components struct {
	cfg config.Config

	storage   *storage
	redis     *connectors.Redis
	asynq     *asynq.Client
	telegram  *telego.Bot
	delivery  notifier.Sender
	watchlist *watchlist.Watchlist

	ingest    *ingest.Service
	engine    *signal.Engine
	lifecycle *lifecycle.Manager
	ledger    *ledger.Ledger
}

func build(ctx context.Context, cfg config.Config) (*components, error) {
	st, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	c := &components{cfg: cfg, storage: st}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		c.redis = &connectors.Redis{
			Address:            cfg.Redis.Address,
			Username:           cfg.Redis.Username,
			Password:           cfg.Redis.Password,
			DatabaseNumber:     cfg.Redis.DatabaseNumber,
			PoolSize:           cfg.Redis.PoolSize,
			MinIdleConnections: cfg.Redis.MinIdleConnections,
			MaxIdleConnections: cfg.Redis.MaxIdleConnections,
		}
		redisClient = c.redis.Client(ctx)
	}

	buyFee, approximated := cfg.Arbitrage.BuffBuyFee()
	if approximated {
		logger(ctx).Warn("BUFF_BUY_FEE_PCT is not set: direction B uses the Buff sell fee as buy cost",
			"fee", buyFee)
	}

	norm := normalizer.New(cfg.Arbitrage.FXCNYToUSD, normalizer.PriceBand{
		MinUSD: cfg.Arbitrage.MinPriceUSD,
		MaxUSD: cfg.Arbitrage.MaxPriceUSD,
	})
	filter := classifier.NewFilter(cfg.Arbitrage.AllowedItemTypes)

	buffClient := buff.NewClient(cfg.Buff, cfg.Server.LogFieldMaxLen, nil)
	csfloatClient := csfloat.NewClient(cfg.CSFloat, cfg.Server.LogFieldMaxLen, nil)

	minCents, maxCents := cfg.Arbitrage.PriceBandCents()
	band := ingest.ScanBand{
		MinCents: minCents,
		MaxCents: maxCents,
		Pages:    cfg.CSFloat.PagesToFetch,
	}
	if cfg.CSFloat.MinDiscount > 0 {
		minDiscount := cfg.CSFloat.MinDiscount
		band.MinDiscount = &minDiscount
	}

	c.ingest = ingest.NewService(st.tx, st.items, st.snapshots, st.listings, norm, filter).
		WithCommitEvery(cfg.Scheduler.CommitEvery).
		WithFeeds(buffClient, csfloatClient).
		WithScanBand(band)

	var cacheStore cache.Store = cache.NewLocalStore(cfg.Redis.CheapestTTL)
	if redisClient != nil {
		cacheStore = cache.NewRedisStore(redisClient, cfg.App.Name+":")
	}

	alerts, err := c.buildAlerts(ctx)
	if err != nil {
		c.close(ctx)
		return nil, err
	}

	c.engine = signal.NewEngine(
		st.tx, st.items, st.snapshots, st.listings, st.signals,
		cfg.Arbitrage.FXCNYToUSD,
		signal.Fees{
			CSFloatBuy:  cfg.Arbitrage.CSFloatBuyFeePct,
			CSFloatSell: cfg.Arbitrage.CSFloatSellFeePct,
			BuffSell:    cfg.Arbitrage.BuffSellFeePct,
			BuffBuy:     buyFee,
		},
		signal.Thresholds{
			MinROICSFloatToBuff: cfg.Arbitrage.MinROICSFloatToBuff,
			MinROIBuffToCSFloat: cfg.Arbitrage.MinROIBuffToCSFloat,
			MinCSFloatListings:  cfg.Arbitrage.MinCSFloatListings,
			MinWatchers:         cfg.Arbitrage.MinWatchers,
			SnapshotMaxAge:      cfg.Arbitrage.SnapshotMaxAge,
		},
	).
		WithCheapestListingProvider(cache.NewCheapestListings(csfloatClient, norm, cacheStore, cfg.Redis.CheapestTTL)).
		WithNotifier(alerts)

	c.lifecycle = lifecycle.NewManager(st.signals, st.items, st.snapshots, st.listings)
	c.ledger = ledger.NewLedger(st.tx, st.trades, st.signals)
	c.watchlist = watchlist.LoadOrDefault(ctx, cfg.Scheduler.WatchlistPath)

	return c, nil
}

// buildAlerts выбирает доставку: Telegram или лог, опционально через очередь asynq.
func (c *components) buildAlerts(ctx context.Context) (*notifier.Alerts, error) {
	c.delivery = notifier.LogSender{}

	if c.cfg.Bot.Enabled() {
		api, err := telego.NewBot(c.cfg.Bot.Token)
		if err != nil {
			return nil, fmt.Errorf("telego.NewBot: %w", err)
		}
		c.telegram = api

		if c.cfg.Bot.ChatID != 0 {
			c.delivery = notifier.Fanout{notifier.LogSender{}, notifier.NewTelegramBot(api, c.cfg.Bot.ChatID)}
		} else {
			logger(ctx).Warn("BOT_CHAT_ID is not set: alerts go to the log only")
		}
	}

	sender := c.delivery

	if c.cfg.Redis.Enabled() && c.cfg.Redis.AlertQueue {
		c.asynq = asynq.NewClient(asynq.RedisClientOpt{
			Addr:     c.cfg.Redis.Address,
			Username: c.cfg.Redis.Username,
			Password: c.cfg.Redis.Password,
			DB:       c.cfg.Redis.DatabaseNumber,
		})
		sender = notifier.NewQueue(c.asynq)

		logger(ctx).Info("alerts are delivered through asynq", "queue", notifier.QueueAlerts)
	}

	return notifier.NewAlerts(sender), nil
}

func (c *components) close(ctx context.Context) {
	if c.asynq != nil {
		if err := c.asynq.Close(); err != nil {
			logger(ctx).Error("asynq client close", logx.Error(err))
		}
	}

	if c.redis != nil {
		c.redis.Close(ctx)
	}

	c.storage.close(ctx)
}
