package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

type HealthFunc func() map[string]any

type Server struct {
	engine *gin.Engine
	srv    *http.Server
	logger *zap.Logger
}

type Options struct {
	Addr          string
	Metrics       http.Handler
	Health        HealthFunc
	Updates       UpdateHandler
	WebhookSecret string
}

func NewServer(opts Options, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger))

	engine.GET("/health", func(c *gin.Context) {
		body := gin.H{"status": "ok"}
		if opts.Health != nil {
			for k, v := range opts.Health() {
				body[k] = v
			}
		}
		c.JSON(http.StatusOK, body)
	})
	if opts.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(opts.Metrics))
	}
	if opts.Updates != nil && opts.WebhookSecret != "" {
		engine.POST("/telegram/"+opts.WebhookSecret, webhookHandler(opts.Updates, logger))
	}

	return &Server{
		engine: engine,
		srv:    &http.Server{Addr: opts.Addr, Handler: engine, ReadHeaderTimeout: 10 * time.Second},
		logger: logger,
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server started", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("http server shutdown failed", zap.Error(err))
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}

func webhookHandler(updates UpdateHandler, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var update tgbotapi.Update
		if err := c.ShouldBindJSON(&update); err != nil {
			logger.Warn("invalid telegram update", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update"})
			return
		}
		updates.HandleUpdate(c.Request.Context(), update)
		c.String(http.StatusOK, "ok")
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		logger.Debug(
			"http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(started)),
		)
	}
}
