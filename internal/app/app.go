package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/NasaVasa/pricebot/internal/config"
	"github.com/NasaVasa/pricebot/internal/delivery/httpapi"
	"github.com/NasaVasa/pricebot/internal/delivery/telegram"
	"github.com/NasaVasa/pricebot/internal/domain"
	"github.com/NasaVasa/pricebot/internal/infra/cache"
	"github.com/NasaVasa/pricebot/internal/infra/catalog"
	"github.com/NasaVasa/pricebot/internal/infra/db"
	"github.com/NasaVasa/pricebot/internal/infra/log"
	"github.com/NasaVasa/pricebot/internal/infra/messaging"
	"github.com/NasaVasa/pricebot/internal/infra/metrics"
	"github.com/NasaVasa/pricebot/internal/infra/pricesource"
	"github.com/NasaVasa/pricebot/internal/infra/scheduler"
	"github.com/NasaVasa/pricebot/internal/usecase"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg        config.Config
	bot        *telegram.Bot
	server     *httpapi.Server
	evaluator  *usecase.Evaluator
	refresher  *usecase.CatalogRefresher
	scheduler  *scheduler.Scheduler
	persister  *usecase.Persister
	stream     *pricesource.BinanceStream
	registry   *usecase.Registry
	resolver   *usecase.Resolver
	metrics    *metrics.Metrics
	logger     *zap.Logger
	cleanupFns []func() error
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := log.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, logger: logger, metrics: metrics.New(), registry: usecase.NewRegistry()}

	coinGecko := pricesource.NewCoinGecko(cfg.CoinGeckoBaseURL, cfg.CatalogTimeout, logger)
	var providers []domain.PriceProvider
	if cfg.BinanceStreamEnabled {
		a.stream = pricesource.NewBinanceStream(cfg.BinanceStreamURL, cfg.BinanceStreamMaxAge, logger)
		providers = append(providers, a.stream)
	}
	providers = append(providers,
		coinGecko,
		pricesource.NewBinance(cfg.BinanceBaseURL, cfg.PriceProviderTimeout, logger),
		pricesource.NewYahoo(cfg.YahooBaseURL, cfg.PriceProviderTimeout, logger),
	)
	sources := []domain.CatalogSource{coinGecko}
	if cfg.FinnhubAPIKey != "" {
		finnhub := pricesource.NewFinnhub(cfg.FinnhubBaseURL, cfg.FinnhubAPIKey, cfg.CatalogTimeout, logger)
		providers = append(providers, finnhub)
		sources = append(sources, finnhub)
	}

	var quoteCache usecase.QuoteCache
	if cfg.RedisAddr != "" {
		redisCache := cache.NewQuoteCache(cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), cfg.QuoteCacheTTL)
		quoteCache = redisCache
		a.cleanupFns = append(a.cleanupFns, redisCache.Close)
		logger.Info("redis quote cache enabled", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.QuoteCacheTTL))
	}
	prices := usecase.NewPriceSource(providers, cfg.PriceProviderTimeout, quoteCache, a.metrics, logger)

	seed, err := catalog.DefaultSeed()
	if err != nil {
		return nil, fmt.Errorf("load seed aliases: %w", err)
	}
	a.resolver = usecase.NewResolver(usecase.NewAliasTableBuilder().Build(), cfg.ResolverMatchThreshold)
	a.refresher = usecase.NewCatalogRefresher(seed, sources, a.resolver, prices, cfg.CatalogTimeout, logger)
	a.scheduler = scheduler.New(logger)
	if err := a.scheduler.AddJob(cfg.CatalogRefreshSpec, "catalog_refresh", a.refresher.Refresh); err != nil {
		return nil, err
	}

	if cfg.PersistenceEnabled() {
		dbConn, err := db.Open(cfg, logger)
		if err != nil {
			return nil, err
		}
		a.cleanupFns = append(a.cleanupFns, func() error {
			sqlDB, err := dbConn.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		})
		a.persister = usecase.NewPersister(a.registry, db.NewAlertRepository(dbConn), logger)
	} else {
		logger.Info("DB_HOST not set, alerts are kept in memory only")
	}

	api, err := telegram.NewAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("connect telegram: %w", err)
	}

	var mirrors []domain.Notifier
	if cfg.NATSURL != "" {
		publisher, err := messaging.NewPublisher(cfg.NATSURL, cfg.NATSSubject, logger)
		if err != nil {
			return nil, err
		}
		mirrors = append(mirrors, publisher)
		a.cleanupFns = append(a.cleanupFns, publisher.Close)
	}
	notifier := usecase.NewFanoutNotifier(telegram.NewNotifier(api, logger), logger, mirrors...)
	a.evaluator = usecase.NewEvaluator(a.registry, prices, notifier, cfg.EvaluatorInterval, cfg.EvaluatorMaxInFlight, a.metrics, logger)

	router := telegram.NewRouter(
		usecase.NewPriceUsecase(a.resolver, prices, coinGecko),
		usecase.NewAlertUsecase(a.resolver, a.registry, prices),
		logger,
	)
	handlers := telegram.NewHandlers(router, api, logger)
	a.bot = telegram.NewBot(api, handlers, cfg.TelegramPollTimeout, logger)

	opts := httpapi.Options{
		Addr:    cfg.HTTPAddr,
		Metrics: a.metrics.Handler(),
		Health:  a.health,
	}
	if cfg.TelegramMode == "webhook" {
		opts.Updates = handlers
		opts.WebhookSecret = cfg.TelegramWebhookSecret
	}
	a.server = httpapi.NewServer(opts, logger)

	return a, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("pricebot service starting", zap.String("telegram_mode", a.cfg.TelegramMode))

	if a.persister != nil {
		a.persister.Restore(ctx)
	}
	a.metrics.SetActiveAlerts(a.registry.Len())
	if err := a.refresher.Refresh(ctx); err != nil {
		a.logger.Warn("initial catalog refresh incomplete", zap.Error(err))
	}
	if a.cfg.TelegramMode == "webhook" {
		url := strings.TrimRight(a.cfg.TelegramWebhookURL, "/") + "/telegram/" + a.cfg.TelegramWebhookSecret
		if err := a.bot.RegisterWebhook(url); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.evaluator.Run(ctx) })
	g.Go(func() error { return a.scheduler.Run(ctx) })
	g.Go(func() error { return a.server.Run(ctx) })
	if a.persister != nil {
		g.Go(func() error { return a.persister.Run(ctx) })
	}
	if a.stream != nil {
		g.Go(func() error { return a.stream.Run(ctx) })
	}
	if a.cfg.TelegramMode != "webhook" {
		g.Go(func() error { return a.bot.Start(ctx) })
	}

	a.logger.Info("pricebot service started")
	return g.Wait()
}

func (a *App) Shutdown() {
	a.logger.Info("pricebot service shutting down")
	for _, cleanup := range a.cleanupFns {
		if err := cleanup(); err != nil {
			a.logger.Warn("cleanup failed", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

func (a *App) health() map[string]any {
	return map[string]any{
		"evaluator":     a.evaluator.State().String(),
		"active_alerts": a.registry.Len(),
		"aliases":       a.resolver.Table().Len(),
	}
}
