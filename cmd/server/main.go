// Command server runs the RC lookup gateway: the HTTP API, the provider
// chain, the result cache, the prepaid ledger, and the audit worker.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"rcgateway/internal/account"
	"rcgateway/internal/audit"
	"rcgateway/internal/ledger"
	ledgerhandler "rcgateway/internal/ledger/handler"
	"rcgateway/internal/lookup"
	lookuphandler "rcgateway/internal/lookup/handler"
	lookupmetrics "rcgateway/internal/lookup/metrics"
	"rcgateway/internal/lookup/mock"
	"rcgateway/internal/lookup/orchestrator"
	"rcgateway/internal/lookup/providers"
	lookupstore "rcgateway/internal/lookup/store"
	"rcgateway/internal/lookup/tracer"
	"rcgateway/internal/payment"
	"rcgateway/internal/platform/config"
	"rcgateway/internal/platform/httpserver"
	"rcgateway/internal/platform/logger"
	platformredis "rcgateway/internal/platform/redis"
	httptransport "rcgateway/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	price, err := decimal.NewFromString(cfg.LookupPrice)
	if err != nil {
		log.Error("invalid lookup price", "value", cfg.LookupPrice, "error", err)
		os.Exit(1)
	}

	// Storage. Without a database URL the server runs fully in memory,
	// which is enough for local development against the mock table.
	var (
		db          *sql.DB
		ledgerStore ledger.Store
		txRunner    ledger.TxRunner
		cacheStore  lookupstore.Store
		auditStore  audit.Store
		auditReader lookuphandler.AuditReader
		payments    lookup.RedemptionVerifier
	)
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Error("open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err != nil {
			log.Error("database unreachable", "error", err)
			os.Exit(1)
		}

		ledgerStore = ledger.NewPostgresStore(db)
		txRunner = newLedgerPostgresTx(db)
		cacheStore = lookupstore.NewPostgresStore(db)
		pgAudit := audit.NewPostgresStore(db)
		auditStore = pgAudit
		auditReader = pgAudit
		payments = payment.NewLedgerResolver(db)
	} else {
		log.Warn("DATABASE_URL not set, running with in-memory stores")
		memLedger := ledger.NewMemoryStore()
		ledgerStore = memLedger
		txRunner = ledger.NewMemoryTxRunner(memLedger)
		cacheStore = lookupstore.NewMemoryStore()
		auditStore = audit.NewMemoryStore()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, continuing without hot cache", "error", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		cacheStore = lookupstore.NewRedisStore(cacheStore, redisClient, cfg.CacheTTL, log)
	}

	var publisher audit.Publisher
	kafkaPublisher, err := audit.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
	if err != nil {
		log.Warn("kafka unavailable, attempt events stay local", "error", err)
	}
	if kafkaPublisher != nil {
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	sink := audit.NewSink(log)
	worker := audit.NewWorker(auditStore, publisher, sink.Inbox(), log)
	go func() {
		if err := worker.Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit worker stopped", "error", err)
		}
	}()

	registry := providers.Build(cfg, log)
	if registry.Empty() {
		log.Warn("no external providers configured, serving mock records only")
	}

	m := lookupmetrics.New()
	orch := orchestrator.New(orchestrator.Config{
		Registry:       registry,
		Fetcher:        providers.NewCaller(providers.NewSigner(), log),
		Cache:          cacheStore,
		Audit:          sink,
		Mock:           mock.NewTable(),
		Tracer:         tracer.NewOTel(),
		Metrics:        m,
		Logger:         log,
		AttemptTimeout: cfg.LookupTimeout,
	})

	ledgerService := ledger.NewService(ledgerStore, txRunner, ledger.NewMetrics(), log)
	lookupService := lookup.NewService(orch, cacheStore, ledgerService, payments, price, m, log)

	health := map[string]httptransport.HealthChecker{}
	if db != nil {
		health["postgres"] = pingChecker{db}
	}
	if redisClient != nil {
		health["redis"] = redisClient
	}

	lookupHandler := lookuphandler.New(lookupService, auditReader, log)
	walletHandler := ledgerhandler.New(ledgerService, log)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:     log,
		Resolver:   account.NewJWTResolver(cfg.JWTSigningKey),
		AdminToken: cfg.AdminToken,
		Consumer:   []httptransport.Registrar{lookupHandler, walletHandler},
		Admin:      []httptransport.AdminRegistrar{lookupHandler, walletHandler},
		Guest:      []httptransport.GuestRegistrar{lookupHandler},
		Health:     health,
	})

	srv := httpserver.New(cfg.Addr, router)
	go func() {
		log.Info("server listening", "addr", cfg.Addr, "providers", registry.Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	stopWorker()
}

// pingChecker adapts *sql.DB to the health checker interface.
type pingChecker struct {
	db *sql.DB
}

func (p pingChecker) Health(ctx context.Context) error {
	return p.db.PingContext(ctx)
}
