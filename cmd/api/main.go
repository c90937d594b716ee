package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/viblyapp/vibly/backend/internal/config"
	"github.com/viblyapp/vibly/backend/internal/handler"
	"github.com/viblyapp/vibly/backend/internal/model/persona"
	"github.com/viblyapp/vibly/backend/internal/observability"
	"github.com/viblyapp/vibly/backend/internal/service/ai"
	"github.com/viblyapp/vibly/backend/internal/service/session"
	speechsvc "github.com/viblyapp/vibly/backend/internal/service/speech"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := observability.NewLogger(os.Getenv("LOG_DEV") != "")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	personaStore := persona.NewMemoryStore(persona.Seed())

	deps := session.Deps{
		Language:     speechsvc.LanguageForRole,
		HistoryLimit: cfg.AI.HistoryLimit,
		Logger:       observability.Named(logger, "session"),
	}

	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.AI, observability.Named(logger, "ai"))
		if err != nil {
			logger.Warn("AI service unavailable, turns will fail until configured", zap.Error(err))
		} else {
			deps.Completer = aiService
			if cfg.AI.CoachEnabled {
				deps.Coach = aiService
			}
			if cfg.AI.ImageEnabled {
				deps.Imager = aiService
			}
			logger.Info("AI service initialized")
		}
	} else {
		logger.Warn("OpenAI credentials missing, skipping AI initialization")
	}

	if cfg.Speech.TranscriptionEnabled() {
		speechService := speechsvc.NewService(cfg.Speech, observability.Named(logger, "speech"))
		deps.Transcriber = speechService
		if cfg.Speech.SynthesisEnabled() {
			deps.Synthesizer = speechService
			logger.Info("speech service initialized with synthesis")
		} else {
			logger.Info("speech service initialized, text-only replies")
		}
	} else {
		logger.Warn("speech credentials missing, skipping speech initialization")
	}

	sessions := session.NewManager(personaStore, deps)
	router := handler.NewRouter(personaStore, sessions, observability.Named(logger, "ws"))

	startServer(ctx, cfg.Server, router, logger)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger *zap.Logger) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("vibly backend listening", zap.String("addr", serverCfg.Addr))
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
