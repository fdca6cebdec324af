package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"canopy/internal/access"
	accesshandler "canopy/internal/access/handler"
	"canopy/internal/audit"
	"canopy/internal/audit/relay"
	"canopy/internal/claim"
	claimhandler "canopy/internal/claim/handler"
	claimmetrics "canopy/internal/claim/metrics"
	claimservice "canopy/internal/claim/service"
	"canopy/internal/platform/config"
	"canopy/internal/platform/httpserver"
	"canopy/internal/platform/logger"
	"canopy/internal/platform/metrics"
	platformredis "canopy/internal/platform/redis"
	"canopy/internal/policy"
	policycache "canopy/internal/policy/cache"
	policyhandler "canopy/internal/policy/handler"
	policymetrics "canopy/internal/policy/metrics"
	policyservice "canopy/internal/policy/service"
	"canopy/internal/token"
	httptransport "canopy/internal/transport/http"
)

const shutdownTimeout = 10 * time.Second

// main wires config, stores, services, and handlers, then runs the HTTP
// server and the outbox relay until interrupted. Business logic lives in the
// internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// txRunner is the atomicity boundary shared by the claim and policy services.
type txRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]httptransport.HealthChecker{}

	var (
		claimStore  claim.Store
		policyStore policy.Store
		accessStore access.Store
		auditStore  audit.Store
		runner      txRunner
		outbox      *audit.PostgresStore
	)

	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}

		pgAudit := audit.NewPostgresStore(db)
		claimStore = claim.NewPostgresStore(db)
		policyStore = policy.NewPostgresStore(db)
		accessStore = access.NewPostgresStore(db)
		auditStore = pgAudit
		outbox = pgAudit
		runner = newPostgresTxRunner(db)
		checks["postgres"] = dbHealth{db}
		log.Info("using postgres stores")
	} else {
		claimStore = claim.NewInMemoryStore()
		policyStore = policy.NewInMemoryStore()
		accessStore = access.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
		runner = newMemoryTxRunner()
		log.Info("no postgres DSN configured, using memory stores")
	}

	policyMetrics := policymetrics.New()

	rdb, err := platformredis.New(cfg.RedisAddr)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		policyStore = policycache.New(policyStore, rdb.Client, config.PolicyCacheTTL, policyMetrics)
		checks["redis"] = rdb
		log.Info("policy cache enabled", "addr", cfg.RedisAddr)
	}

	accessService := access.NewService(accessStore)
	if err := accessService.Bootstrap(ctx, cfg.BootstrapAdmins); err != nil {
		return err
	}

	publisher := audit.NewPublisher(auditStore, log)
	policyService := policyservice.NewService(policyStore, accessService, publisher, runner, policyMetrics)
	claimService := claimservice.NewService(claimStore, policyStore, accessService, publisher, runner, log, claimmetrics.New())

	tokenService := token.NewService(cfg.JWTSigningKey, "canopy")

	m := metrics.New()
	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		Metrics:        m,
		TokenValidator: tokenService,
		Claims:         claimhandler.New(claimService, log),
		Policies:       policyhandler.New(policyService, log),
		Roles:          accesshandler.New(accessService, log),
		Checks:         checks,
	})

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting canopy registry", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if outbox != nil && len(cfg.KafkaBrokers) > 0 {
		rel, err := relay.New(cfg.KafkaBrokers, cfg.AuditTopic, outbox, log)
		if err != nil {
			return err
		}
		defer rel.Close()
		g.Go(func() error {
			log.Info("starting audit relay", "topic", cfg.AuditTopic)
			if err := rel.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// dbHealth adapts *sql.DB to the router's health check.
type dbHealth struct {
	db *sql.DB
}

func (h dbHealth) Health(ctx context.Context) error {
	return h.db.PingContext(ctx)
}
