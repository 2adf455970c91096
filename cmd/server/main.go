// Command server runs the site backend: the contact-form relay and the
// chatbot session API behind one HTTP server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/domindev/site-backend/internal/botdb"
	"github.com/domindev/site-backend/internal/chat"
	"github.com/domindev/site-backend/internal/config"
	httpapi "github.com/domindev/site-backend/internal/http"
	"github.com/domindev/site-backend/internal/mailer"
	"github.com/domindev/site-backend/internal/observability"
	"github.com/domindev/site-backend/internal/relay"
	"github.com/domindev/site-backend/internal/repo"
	"github.com/domindev/site-backend/internal/sanitize"
	"github.com/domindev/site-backend/internal/sysutil"
	"github.com/domindev/site-backend/internal/verify"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Error().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	if n, err := repo.PruneExpired(ctx, db, time.Now()); err != nil {
		log.Warn().Err(err).Msg("pruning expired lead records")
	} else if n > 0 {
		log.Info().Int64("removed", n).Msg("pruned expired lead records")
	}

	sessions := newSessionManager(cfg)
	relaySvc := newRelayService(cfg, db)

	r := gin.New()
	httpapi.RegisterRoutes(r, db, relaySvc, sessions, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	}

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}

// newSessionManager wires the chat stack: the response database is loaded
// once up front and shared by every session. A load failure is logged and
// leaves the resolver in its offline state instead of aborting startup; the
// contact form still has to work when the chatbot data file is broken.
func newSessionManager(cfg config.Config) *chat.Manager {
	dbase, loadErr := botdb.Load(cfg.BotDataPath)
	if loadErr != nil {
		log.Error().Err(loadErr).Str("path", cfg.BotDataPath).Msg("chatbot database unavailable, resolver offline")
	} else if orphans := dbase.Orphans(); len(orphans) > 0 {
		log.Warn().Strs("intents", orphans).Msg("keyword rules reference intents with no responses")
	}

	loader := func(context.Context) (*botdb.Database, error) {
		if loadErr != nil {
			return nil, loadErr
		}
		return dbase, nil
	}
	opts := chat.Options{
		Cooldown:  cfg.Chat.Cooldown,
		TypingMin: cfg.Chat.TypingMin,
		TypingMax: cfg.Chat.TypingMax,
		Sanitize:  sanitize.HTML,
	}
	return chat.NewManager(loader, opts, cfg.Chat.SessionTTL)
}

// newRelayService wires the contact flow. Either credential may be absent;
// the corresponding collaborator stays nil and the relay reports the
// misconfiguration per request instead of the process refusing to start.
func newRelayService(cfg config.Config, db *gorm.DB) *relay.Service {
	var verifier relay.Verifier
	if cfg.Contact.TurnstileSecret != "" {
		verifier = verify.NewClient(cfg.Contact.TurnstileSecret)
	} else {
		log.Warn().Msg("TURNSTILE_SECRET_KEY unset, contact form will reject all submissions")
	}

	var sender relay.Mailer
	if cfg.Contact.ResendAPIKey != "" {
		sender = mailer.NewClient(cfg.Contact.ResendAPIKey)
	} else {
		log.Warn().Msg("RESEND_API_KEY unset, leads will only reach the fallback store")
	}

	return &relay.Service{
		Verifier: verifier,
		Mailer:   sender,
		Leads:    repo.LeadStore{DB: db},
		Cfg: relay.Config{
			OperatorAddr: cfg.Contact.OperatorAddr,
			LeadFrom:     cfg.Contact.LeadFrom,
			AckFrom:      cfg.Contact.AckFrom,
			FallbackTTL:  cfg.Contact.FallbackTTL,
		},
		Log: log.With().Str("component", "relay").Logger(),
	}
}
