package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"audio_conversion/config"
	"audio_conversion/internal/conversion"
	v1 "audio_conversion/internal/controller/http/v1"
	"audio_conversion/internal/telemetry/metric"
	ttrace "audio_conversion/internal/telemetry/trace"
	"audio_conversion/pkg/httpserver"
	"audio_conversion/pkg/logger"
)

var name = "audio-conversion-server"

// NewServer ...
func NewServer(cfg *config.Config) *Server {
	srv := &Server{}

	srv.InitGlobalProvider(name, cfg)

	return srv
}

type Server struct {
	traceProviderCloseFn []ttrace.CloseFunc
}

// Run ...
func (s *Server) Run(ctx context.Context, cfg *config.Config) error {
	l := logger.New(cfg.Log.Level)
	l.Info("Starting server...")

	convUsecase := conversion.NewConversionUsecase(cfg, l)

	go func() {
		if err := metric.Serve(cfg.OTEL.PrometheusPort); err != nil {
			l.Error(fmt.Errorf("app - Run - metric.Serve: %w", err))
		}
	}()

	handler := gin.New()
	v1.NewRouter(handler, l, convUsecase, cfg.Conversion.MaxUploadBytes)
	httpServer := httpserver.New(s.cors().Handler(handler), httpserver.Port(cfg.Server.Port))

	l.Info("server serving on port %s", cfg.Server.Port)

	// Waiting signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var err error
	select {
	case sig := <-interrupt:
		l.Info("app - Run - signal: " + sig.String())
	case err = <-httpServer.Notify():
		l.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", err))
	}

	log.Printf("server stopped")

	ctxShutDown, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown
	if err := httpServer.Shutdown(); err != nil {
		l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
	}

	for _, closeFn := range s.traceProviderCloseFn {
		closeFn := closeFn
		go func() {
			if err := closeFn(ctxShutDown); err != nil {
				log.Error().Err(err).Msgf("Unable to close trace provider")
			}
		}()
	}

	log.Printf("server exited properly")

	return err
}

func (s *Server) cors() *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     []string{"POST", "GET", "PUT", "DELETE", "HEAD", "OPTIONS"},
		AllowedHeaders:     []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization"},
		MaxAge:             60, // 1 minutes
		AllowCredentials:   true,
		OptionsPassthrough: false,
		Debug:              false,
	})
}
