package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/weiawesome/wes-io-live/watchparty-service/internal/config"
	"github.com/weiawesome/wes-io-live/watchparty-service/internal/events"
	"github.com/weiawesome/wes-io-live/watchparty-service/internal/handler"
	"github.com/weiawesome/wes-io-live/watchparty-service/internal/hub"
	"github.com/weiawesome/wes-io-live/watchparty-service/internal/metrics"
	"github.com/weiawesome/wes-io-live/watchparty-service/internal/room"
	"github.com/weiawesome/wes-io-live/watchparty-service/internal/service"
	pkglog "github.com/weiawesome/wes-io-live/watchparty-service/pkg/log"
	"github.com/weiawesome/wes-io-live/watchparty-service/pkg/pubsub"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: "watchparty-service",
	})
	logger := pkglog.L()

	// Room policies
	successor, err := room.ParseSuccessorPolicy(cfg.Room.SuccessorPolicy)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid successor policy")
	}
	claim, err := room.ParseClaimPolicy(cfg.Room.ClaimPolicy)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid claim policy")
	}
	registry := room.NewRegistry(room.WithSuccessorPolicy(successor), room.WithClaimPolicy(claim))

	// Event bus publisher
	publisher, err := pubsub.NewPublisher(cfg.Events.PubSub())
	if err != nil {
		logger.Warn().Err(err).Str("driver", cfg.Events.Driver).Msg("event bus unavailable, room events disabled")
		publisher = pubsub.NopPublisher{}
	}
	forwarder := events.NewForwarder(publisher, cfg.Events.BufferSize)

	// Hub and room service
	h := hub.NewHub(cfg.WebSocket)
	svc := service.NewRoomService(registry, h, forwarder)
	h.SetDispatcher(svc)

	// Routes
	router := mux.NewRouter()
	handler.NewWSHandler(h, cfg.WebSocket).RegisterRoutes(router)
	handler.NewHTTPHandler(h, svc).RegisterRoutes(router)
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST"},
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      pkglog.HTTPMiddleware(logger)(c.Handler(router)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Cancelled only after the hub has stopped.
	fwdCtx, cancelFwd := context.WithCancel(context.Background())
	defer cancelFwd()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		h.Run()
		return nil
	})

	g.Go(func() error {
		return forwarder.Run(fwdCtx)
	})

	g.Go(func() error {
		logger.Info().
			Str("addr", addr).
			Str("events_driver", cfg.Events.Driver).
			Str("claim_policy", claim.String()).
			Msg("watchparty-service listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info().Msg("shutting down watchparty-service")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("server forced to shutdown")
		}

		h.Stop()
		cancelFwd()
		return nil
	})

	waitErr := g.Wait()
	if err := publisher.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close event bus publisher")
	}
	if waitErr != nil {
		logger.Error().Err(waitErr).Msg("server error")
		os.Exit(1)
	}
	logger.Info().Msg("watchparty-service stopped")
}
