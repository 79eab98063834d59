package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/riskibarqy/squad-auction/external/fpl"
	"github.com/riskibarqy/squad-auction/internal/config"
	"github.com/riskibarqy/squad-auction/internal/domain/auction"
	"github.com/riskibarqy/squad-auction/internal/domain/manager"
	"github.com/riskibarqy/squad-auction/internal/domain/player"
	"github.com/riskibarqy/squad-auction/internal/domain/roster"
	"github.com/riskibarqy/squad-auction/internal/domain/scoring"
	"github.com/riskibarqy/squad-auction/internal/domain/team"
	"github.com/riskibarqy/squad-auction/internal/infrastructure/account/gatekeeper"
	"github.com/riskibarqy/squad-auction/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/squad-auction/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/squad-auction/internal/interfaces/httpapi"
	"github.com/riskibarqy/squad-auction/internal/platform/cache"
	idgen "github.com/riskibarqy/squad-auction/internal/platform/id"
	"github.com/riskibarqy/squad-auction/internal/platform/logging"
	"github.com/riskibarqy/squad-auction/internal/platform/resilience"
	"github.com/riskibarqy/squad-auction/internal/usecase"
)

type repositories struct {
	managers manager.Repository
	players  player.Repository
	teams    team.Repository
	auctions auction.Repository
	rosters  roster.Repository
	scoring  scoring.Repository
}

func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repos := buildRepositories(cfg, logger)

	var store *cache.Store
	if cfg.CacheEnabled {
		store = cache.NewStore(cfg.CacheTTL)
	}

	idGen := idgen.NewUUIDGenerator()
	limits := roster.DefaultLimits()

	provider := fpl.NewClient(fpl.ClientConfig{
		BaseURL:    cfg.ProviderBaseURL,
		Timeout:    cfg.ProviderTimeout,
		MaxRetries: cfg.ProviderMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.ProviderCircuitEnabled,
			FailureThreshold: cfg.ProviderCircuitFailures,
			OpenTimeout:      cfg.ProviderCircuitOpenFor,
			HalfOpenMaxReq:   cfg.ProviderCircuitHalfOpen,
		},
	})

	verifier := gatekeeper.NewClient(gatekeeper.ClientConfig{
		HTTPClient:     &http.Client{Timeout: cfg.GatekeeperTimeout},
		BaseURL:        cfg.GatekeeperBaseURL,
		IntrospectPath: cfg.GatekeeperIntrospectPath,
		AdminKey:       cfg.GatekeeperAdminKey,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.GatekeeperCircuitEnabled,
			FailureThreshold: cfg.GatekeeperCircuitFailures,
			OpenTimeout:      cfg.GatekeeperCircuitOpenFor,
			HalfOpenMaxReq:   cfg.GatekeeperCircuitHalfOpen,
		},
		Logger: logger,
	})

	handler := httpapi.NewHandler(
		usecase.NewAuctionService(repos.auctions, repos.managers, repos.players, idGen, logger),
		usecase.NewBidService(repos.auctions, repos.managers, repos.players, repos.rosters, limits, idGen, logger),
		usecase.NewSaleService(repos.auctions, repos.managers, repos.players, repos.rosters, limits, logger),
		usecase.NewAllocationService(repos.auctions, repos.managers, repos.players, repos.rosters, limits, idGen, logger),
		usecase.NewBudgetService(repos.managers, repos.auctions, logger),
		usecase.NewManagerService(repos.managers, repos.auctions, repos.rosters, idGen, logger),
		usecase.NewPlayerService(repos.players, repos.teams, store, logger),
		usecase.NewCatalogSyncService(provider, repos.teams, repos.players, store, logger),
		usecase.NewScoringService(provider, repos.scoring, repos.rosters, logger),
		logger,
	)

	router := httpapi.NewRouter(handler, verifier, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}

// buildRepositories connects to postgres, falling back to the in-memory
// ledger when no database is reachable so local development works without
// one. The fallback loses state on restart.
func buildRepositories(cfg config.Config, logger *logging.Logger) repositories {
	db, err := connectDB(cfg)
	if err != nil {
		logger.Warn("postgres unavailable, using in-memory repositories", "error", err)
		ledger := memory.NewLedger()
		return repositories{
			managers: memory.NewManagerRepository(ledger),
			players:  memory.NewPlayerRepository(ledger),
			teams:    memory.NewTeamRepository(ledger),
			auctions: memory.NewAuctionRepository(ledger),
			rosters:  memory.NewRosterRepository(ledger),
			scoring:  memory.NewScoringRepository(ledger),
		}
	}

	logger.Info("postgres connected", "database", dbNameFromURL(cfg.DBURL))
	return repositories{
		managers: postgres.NewManagerRepository(db),
		players:  postgres.NewPlayerRepository(db),
		teams:    postgres.NewTeamRepository(db),
		auctions: postgres.NewAuctionRepository(db),
		rosters:  postgres.NewRosterRepository(db),
		scoring:  postgres.NewScoringRepository(db),
	}
}

func connectDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	if dsn == "" {
		return nil, fmt.Errorf("DB_URL is empty")
	}

	db, err := otelsqlx.Connect("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}
