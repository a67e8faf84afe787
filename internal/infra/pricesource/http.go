package pricesource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/NasaVasa/pricebot/internal/domain"
	"go.uber.org/zap"
)

const maxBodyBytes = 32 << 20

type httpGetter struct {
	name    string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func newHTTPGetter(name, baseURL string, timeout time.Duration, logger *zap.Logger) httpGetter {
	return httpGetter{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With(zap.String("provider", name)),
	}
}

func (g httpGetter) getJSON(ctx context.Context, path string, out any) error {
	endpoint := g.baseURL + path
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", "pricebot/1.0")

	start := time.Now()
	response, err := g.client.Do(request)
	if err != nil {
		g.logger.Warn("provider request failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s: %w: %v", g.name, domain.ErrProviderUnavailable, err)
	}
	defer response.Body.Close()

	g.logger.Debug(
		"provider request complete",
		zap.String("path", path),
		zap.Int("status", response.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", g.name, domain.ErrNotFound)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("%s: %w: status %d", g.name, domain.ErrProviderUnavailable, response.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(response.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("%s: %w: %v", g.name, domain.ErrMalformedResponse, err)
	}
	return nil
}

func missingField(provider, field string) error {
	return fmt.Errorf("%s: %w: missing %s", provider, domain.ErrMalformedResponse, field)
}
