package main

import (
	"context"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"

	"freight/db"
	"freight/db/migrations"
	"freight/internal/config"
	"freight/internal/handlers"
	"freight/internal/logger"
	"freight/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	manager, err := db.NewManager(cfg.DB.DSN, cfg.DB.MaxOpenConns, cfg.DB.MaxIdleConns, log)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot open database")
	}
	defer manager.Close()

	if err := manager.Connect(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("cannot connect to database")
	}

	if err := migrations.Run(manager.DB().DB); err != nil {
		log.Fatal().Err(err).Msg("cannot run migrations")
	}

	store := db.NewStorage(manager)
	svc := service.NewService(store, log)
	h := handlers.NewHandler(svc, log, cfg.Environment == "development")

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", h.PingHandler)
		// заявки
		r.Get("/applications", h.GetApplicationsHandler)
		r.Post("/applications", h.CreateApplicationHandler)
		r.Get("/applications/{id}", h.GetApplicationHandler)
		r.Delete("/applications/{id}", h.DeleteApplicationHandler)
		r.Get("/applications/{id}/bids", h.GetApplicationBidsHandler)
		// справочники
		r.Get("/applications/load/types", h.GetLoadTypesHandler)
		r.Get("/applications/transport/types", h.GetTransportTypesHandler)
		r.Get("/applications/payment/options", h.GetPaymentOptionsHandler)
		// ставки перевозчиков
		r.Post("/bids", h.CreateBidHandler)
		r.Get("/bids/{id}", h.GetBidHandler)
		r.Put("/bids/{id}/status", h.UpdateBidStatusHandler)
	})

	log.Info().Str("addr", cfg.ServerAddress).Msg("starting server")
	if err := http.ListenAndServe(cfg.ServerAddress, r); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
