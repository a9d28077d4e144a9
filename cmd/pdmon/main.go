// Pdmon replays captured power delivery traffic through the front-end
// stack and exposes the decoded capabilities as structured logs and
// prometheus metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/pdwire/go-pdstack"
	"github.com/pdwire/go-pdstack/config"
	"github.com/pdwire/go-pdstack/internal/observability"
	"github.com/pdwire/go-pdstack/tcddriver/replay"
	"github.com/pdwire/go-pdstack/tcdlog"
	"github.com/pdwire/go-pdstack/tcfe"
)

func main() {
	cfgPath := flag.String("config", "pdmon.toml", "path to configuration file")
	flag.Parse()

	logger := observability.InitLogger("pdmon")

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("configuration")
	}
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	zerolog.SetGlobalLevel(level)

	drv, err := replay.Open(cfg.TraceFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("trace")
	}

	stack := tcfe.New(drv, tcfe.Config{
		NumPorts:     uint8(cfg.NumPorts),
		QueueDepth:   cfg.QueueDepth,
		Logger:       &logger,
		Capabilities: tcdlog.New(logger, nil),
	})
	drv.Bind(stack)

	for p := 0; p < cfg.NumPorts; p++ {
		if err := stack.Init(uint8(p), pdstack.PortSink); err != nil {
			logger.Fatal().Err(err).Int("port", p).Msg("port init")
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		if err := stack.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("dispatch loop")
		}
	}()
	drv.Start()

	observability.RegisterMetrics()
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "pdmon",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server")
		}
	}()
	logger.Info().Str("addr", cfg.ListenAddr).Msg("serving metrics")

	<-ctx.Done()
	_ = srv.Shutdown(context.Background())
}
