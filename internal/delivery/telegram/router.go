package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/NasaVasa/pricebot/internal/domain"
	"github.com/NasaVasa/pricebot/internal/usecase"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const notFoundText = "❓ Sorry, I couldn't find anything for that. Try BTC, ETH, TSLA, AAPL, etc."

type Router struct {
	priceUC *usecase.PriceUsecase
	alertUC *usecase.AlertUsecase
	logger  *zap.Logger
}

func NewRouter(priceUC *usecase.PriceUsecase, alertUC *usecase.AlertUsecase, logger *zap.Logger) *Router {
	return &Router{priceUC: priceUC, alertUC: alertUC, logger: logger}
}

func (r *Router) Handle(ctx context.Context, userID, text string) string {
	cmd := ParseCommand(text)
	logger := r.logger.With(zap.String("user_id", userID), zap.String("command", cmd.Name))

	switch cmd.Name {
	case CommandStart:
		return "👋 Hi! " + HelpText
	case CommandHelp:
		return HelpText
	case CommandBTC:
		return r.price(ctx, logger, "bitcoin")
	case CommandTop:
		return r.top(ctx, logger)
	case CommandPrice:
		asset, err := ParseAssetArg(cmd.Args)
		if err != nil {
			if cmd.Slash {
				return priceUsage
			}
			return HelpText
		}
		return r.price(ctx, logger, asset)
	case CommandAlert:
		return r.setAlert(ctx, logger, userID, cmd.Args)
	case CommandAlerts:
		return r.listAlerts(logger, userID)
	case CommandCancel:
		return r.cancelAlert(logger, userID, cmd.Args)
	}

	logger.Warn("unknown command", zap.String("args", cmd.Args))
	return "Unknown command.\n\n" + HelpText
}

func (r *Router) price(ctx context.Context, logger *zap.Logger, text string) string {
	quote, err := r.priceUC.Lookup(ctx, text)
	switch {
	case errors.Is(err, usecase.ErrAssetNotFound):
		logger.Info("price lookup unresolved", zap.String("text", text))
		return notFoundText
	case errors.Is(err, usecase.ErrPriceUnavailable):
		logger.Warn("price unavailable", zap.String("asset", quote.Asset.ID))
		return fmt.Sprintf("❌ Couldn't fetch the %s price right now. Please try again later.", quote.Asset.DisplayName())
	case err != nil:
		return r.errorMessage(logger, err)
	}

	logger.Info("price lookup complete", zap.String("asset", quote.Asset.ID), zap.String("source", quote.Source))
	if quote.Asset.Kind == domain.KindStock {
		return fmt.Sprintf("📊 %s stock price: $%s", quote.Asset.DisplayName(), FormatPrice(quote.Price))
	}
	return fmt.Sprintf("💰 %s price: $%s", quote.Asset.DisplayName(), FormatPrice(quote.Price))
}

func (r *Router) top(ctx context.Context, logger *zap.Logger) string {
	markets, err := r.priceUC.TopMarkets(ctx, usecase.DefaultTopMarkets)
	if err != nil {
		logger.Warn("top markets unavailable", zap.Error(err))
		return "❌ Failed to get top cryptos."
	}
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("📈 Top %d Cryptos:\n", len(markets)))
	for _, market := range markets {
		builder.WriteString(fmt.Sprintf("- %s ($%s)\n", market.Name, FormatPrice(market.Price)))
	}
	return builder.String()
}

func (r *Router) setAlert(ctx context.Context, logger *zap.Logger, userID, args string) string {
	assetText, direction, threshold, err := ParseSetAlertArgs(args)
	if err != nil {
		logger.Info("set alert invalid args", zap.String("args", args))
		return setAlertUsage
	}
	alert, err := r.alertUC.SetAlert(ctx, userID, assetText, direction, threshold)
	if err != nil {
		logger.Info("set alert rejected", zap.String("args", args), zap.Error(err))
		return r.errorMessage(logger, err)
	}
	logger.Info(
		"set alert complete",
		zap.String("alert_id", alert.ID),
		zap.String("asset", alert.Asset.ID),
		zap.String("direction", string(alert.Direction)),
		zap.String("threshold", alert.Threshold.String()),
	)
	return fmt.Sprintf("🔔 Alert set: %s", describeAlert(alert))
}

func (r *Router) listAlerts(logger *zap.Logger, userID string) string {
	alerts := r.alertUC.ListAlerts(userID)
	logger.Info("alerts list complete", zap.Int("count", len(alerts)))
	if len(alerts) == 0 {
		return "You have no active alerts. Try: set alert btc above 30000"
	}
	var builder strings.Builder
	builder.WriteString("Your alerts:\n")
	for _, alert := range alerts {
		builder.WriteString("- " + describeAlert(alert) + "\n")
	}
	return builder.String()
}

func (r *Router) cancelAlert(logger *zap.Logger, userID, args string) string {
	assetText, err := ParseAssetArg(args)
	if err != nil {
		return cancelAlertUsage
	}
	asset, err := r.alertUC.CancelAlert(userID, assetText)
	if err != nil {
		logger.Info("cancel alert failed", zap.String("args", args), zap.Error(err))
		return r.errorMessage(logger, err)
	}
	logger.Info("cancel alert complete", zap.String("asset", asset.ID))
	return fmt.Sprintf("🗑 Alert cancelled: %s", asset.DisplayName())
}

func (r *Router) errorMessage(logger *zap.Logger, err error) string {
	switch {
	case errors.Is(err, usecase.ErrAssetNotFound):
		return notFoundText
	case errors.Is(err, usecase.ErrInvalidDirection):
		return "Invalid direction. Use above or below."
	case errors.Is(err, usecase.ErrInvalidThreshold):
		return "Invalid price. Use a positive number like 30000 or 0.25."
	case errors.Is(err, usecase.ErrAlertNotFound):
		return "You have no alert for that asset. Use /alerts to list them."
	case errors.Is(err, usecase.ErrPriceUnavailable):
		return "❌ Price is unavailable right now. Please try again later."
	}

	logger.Warn("unhandled error", zap.Error(err))
	return "Something went wrong. Please try again."
}

func describeAlert(alert domain.Alert) string {
	return fmt.Sprintf("%s %s $%s", alert.Asset.DisplayName(), alert.Direction.Word(), alert.Threshold.String())
}

func FormatPrice(price decimal.Decimal) string {
	if price.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return price.StringFixed(2)
	}
	return price.String()
}
