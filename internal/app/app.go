// Package app собирает приложение: конфигурация, хранилище, HTTP-серверы
// API и метрик, graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/tiendaonline/backend/internal/api"
	healthcheck "github.com/tiendaonline/backend/internal/health"
	"github.com/tiendaonline/backend/internal/metrics"
	"github.com/tiendaonline/backend/internal/storage/memory"
	"github.com/tiendaonline/backend/internal/storage/postgres"
	"github.com/tiendaonline/backend/internal/version"
)

// Run запускает приложение и блокируется до отмены ctx или фатальной ошибки.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	repos, healthHandler, cleanup, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	pipelineMetrics := metrics.NewPipelineMetrics()
	apiHandler := api.New(api.Config{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
	}, repos, pipelineMetrics)

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	apiSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           apiHandler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP API слушает %s", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP API")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// buildStorage выбирает бэкенд по конфигурации и возвращает репозитории,
// health handler с проверкой хранилища и функцию освобождения ресурсов.
func buildStorage(ctx context.Context, cfg Config, logger *log.Entry) (api.Repositories, *healthcheck.Handler, func(), error) {
	healthHandler := healthcheck.NewHandler(version.String())

	switch cfg.Storage {
	case StoragePostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return api.Repositories{}, nil, nil, fmt.Errorf("open postgres store: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return api.Repositories{}, nil, nil, fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info("хранилище PostgreSQL готово, миграции применены")

		healthHandler.Register("postgres", store.Ping)
		repos := api.Repositories{
			Users:     postgres.NewUserRepository(store),
			Customers: postgres.NewCustomerRepository(store),
			Products:  postgres.NewProductRepository(store),
			Inventory: postgres.NewInventoryRepository(store),
			Carts:     postgres.NewCartRepository(store),
			Orders:    postgres.NewOrderRepository(store),
			Payments:  postgres.NewPaymentRepository(store),
			Sales:     postgres.NewSaleRepository(store),
		}
		cleanup := func() {
			if err := store.Close(); err != nil {
				logger.WithError(err).Warn("close postgres store")
			}
		}
		return repos, healthHandler, cleanup, nil

	case StorageMemory:
		logger.Warn("используется хранилище в памяти, данные не переживут перезапуск")
		store := memory.NewStore()
		repos := api.Repositories{
			Users:     store.Users(),
			Customers: store.Customers(),
			Products:  store.Products(),
			Inventory: store.Inventory(),
			Carts:     store.Carts(),
			Orders:    store.Orders(),
			Payments:  store.Payments(),
			Sales:     store.Sales(),
		}
		return repos, healthHandler, func() {}, nil

	default:
		return api.Repositories{}, nil, nil, fmt.Errorf("unsupported storage %q", cfg.Storage)
	}
}

// startMetricsServer запускает HTTP-обработчики /metrics и health-проб.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.Liveness)
	mux.HandleFunc("/readyz", healthHandler.Readiness)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
