package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	TelegramBotToken      string `env:"TELEGRAM_BOT_TOKEN,required"`
	TelegramMode          string `env:"TELEGRAM_MODE,default=polling"`
	TelegramPollTimeout   int    `env:"TELEGRAM_POLL_TIMEOUT,default=60"`
	TelegramWebhookURL    string `env:"TELEGRAM_WEBHOOK_URL"`
	TelegramWebhookSecret string `env:"TELEGRAM_WEBHOOK_SECRET"`

	HTTPAddr string `env:"HTTP_ADDR,default=:8080"`

	DBHost            string        `env:"DB_HOST"`
	DBPort            int           `env:"DB_PORT,default=5432"`
	DBUser            string        `env:"DB_USER"`
	DBPassword        string        `env:"DB_PASSWORD"`
	DBName            string        `env:"DB_NAME,default=pricebot"`
	DBSSLMode         string        `env:"DB_SSLMODE,default=disable"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS,default=5"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS,default=10"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME,default=30m"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB,default=0"`
	QuoteCacheTTL time.Duration `env:"QUOTE_CACHE_TTL,default=10s"`

	NATSURL     string `env:"NATS_URL"`
	NATSSubject string `env:"NATS_SUBJECT,default=pricebot.notifications"`

	CoinGeckoBaseURL     string        `env:"COINGECKO_BASE_URL,default=https://api.coingecko.com/api/v3"`
	BinanceBaseURL       string        `env:"BINANCE_BASE_URL,default=https://api.binance.com"`
	BinanceStreamEnabled bool          `env:"BINANCE_STREAM_ENABLED,default=false"`
	BinanceStreamURL     string        `env:"BINANCE_STREAM_URL,default=wss://stream.binance.com:9443/ws/!miniTicker@arr"`
	BinanceStreamMaxAge  time.Duration `env:"BINANCE_STREAM_MAX_AGE,default=15s"`
	YahooBaseURL         string        `env:"YAHOO_BASE_URL,default=https://query1.finance.yahoo.com"`
	FinnhubBaseURL       string        `env:"FINNHUB_BASE_URL,default=https://finnhub.io/api/v1"`
	FinnhubAPIKey        string        `env:"FINNHUB_API_KEY"`
	PriceProviderTimeout time.Duration `env:"PRICE_PROVIDER_TIMEOUT,default=4s"`
	CatalogTimeout       time.Duration `env:"CATALOG_TIMEOUT,default=30s"`
	CatalogRefreshSpec   string        `env:"CATALOG_REFRESH_SPEC,default=@every 6h"`

	ResolverMatchThreshold int `env:"RESOLVER_MATCH_THRESHOLD,default=70"`

	EvaluatorInterval    time.Duration `env:"EVALUATOR_INTERVAL,default=30s"`
	EvaluatorMaxInFlight int           `env:"EVALUATOR_MAX_IN_FLIGHT,default=8"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=json"`
}

func Load(ctx context.Context) (Config, error) {
	return load(ctx, nil)
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.TelegramMode {
	case "polling":
	case "webhook":
		if c.TelegramWebhookURL == "" || c.TelegramWebhookSecret == "" {
			return fmt.Errorf("webhook mode requires TELEGRAM_WEBHOOK_URL and TELEGRAM_WEBHOOK_SECRET")
		}
	default:
		return fmt.Errorf("unknown TELEGRAM_MODE %q", c.TelegramMode)
	}
	if c.ResolverMatchThreshold < 1 || c.ResolverMatchThreshold > 100 {
		return fmt.Errorf("RESOLVER_MATCH_THRESHOLD must be within 1..100, got %d", c.ResolverMatchThreshold)
	}
	if c.EvaluatorInterval <= 0 {
		return fmt.Errorf("EVALUATOR_INTERVAL must be positive")
	}
	if c.EvaluatorMaxInFlight < 1 {
		return fmt.Errorf("EVALUATOR_MAX_IN_FLIGHT must be at least 1")
	}
	if c.PriceProviderTimeout <= 0 {
		return fmt.Errorf("PRICE_PROVIDER_TIMEOUT must be positive")
	}
	return nil
}

func (c Config) PersistenceEnabled() bool {
	return c.DBHost != ""
}
