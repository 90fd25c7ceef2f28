package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"scorevo/internal/audit"
	"scorevo/internal/config"
	"scorevo/internal/db"
	"scorevo/internal/events"
	"scorevo/internal/handlers"
	"scorevo/internal/mail"
	"scorevo/internal/otel"
	"scorevo/internal/service"
	"scorevo/internal/sweeper"
	"scorevo/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	cleanup, err := otel.Init(ctx, version.Name, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("init otel")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cleanup(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown otel")
		}
	}()

	database, err := db.Connect(ctx, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer func() {
		if err := db.Close(database); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}()

	if err := db.Migrate(ctx, database); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	var bus *nats.Conn
	if cfg.NATSURL != "" {
		bus, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatal().Err(err).Str("url", cfg.NATSURL).Msg("connect nats")
		}
		defer bus.Close()
	}
	publisher := events.NewPublisher(bus)
	recorder := audit.NewRecorder(database, log.Logger)

	var notifier service.Notifier = service.NopNotifier{}
	if cfg.SMTPHost != "" {
		notifier = mail.New(mail.Config{
			Host:        cfg.SMTPHost,
			Port:        cfg.SMTPPort,
			User:        cfg.SMTPUser,
			Password:    cfg.SMTPPassword,
			From:        cfg.SMTPFrom,
			FrontendURL: cfg.FrontendURL,
		}, database)
	}

	invitations := service.NewInvitationService(database, notifier, publisher, recorder, log.Logger, cfg.InvitationTTL)
	activities := service.NewActivityService(database, invitations, publisher, recorder, log.Logger)
	scores := service.NewScoreService(database, notifier, publisher, recorder, log.Logger)
	users := service.NewUserService(database, invitations, log.Logger)

	go sweeper.New(invitations, cfg.SweepInterval, log.Logger).Run(ctx)

	api := handlers.New(users, activities, scores, invitations)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(handlers.RouterOptions{AllowedOrigins: cfg.AllowedOrigins}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Str("version", version.Version).Msg("starting scorevo-api")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown server")
	}
}
