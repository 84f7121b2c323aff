package app

import (
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/Devansh171021/swpl/external/sheets"
	"github.com/Devansh171021/swpl/external/sheetwriter"
	"github.com/Devansh171021/swpl/internal/config"
	"github.com/Devansh171021/swpl/internal/domain/player"
	"github.com/Devansh171021/swpl/internal/domain/transaction"
	"github.com/Devansh171021/swpl/internal/infrastructure/repository/memory"
	"github.com/Devansh171021/swpl/internal/infrastructure/repository/postgres"
	"github.com/Devansh171021/swpl/internal/interfaces/httpapi"
	"github.com/Devansh171021/swpl/internal/platform/cache"
	"github.com/Devansh171021/swpl/internal/platform/logging"
	"github.com/Devansh171021/swpl/internal/platform/resilience"
	"github.com/Devansh171021/swpl/internal/usecase"
)

// NewHTTPServer wires repositories, external clients, and services into the
// API server. The returned cleanup releases the database handle when one was
// opened.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	cleanup := func() error { return nil }

	recorder, db, err := newRecorder(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if db != nil {
		cleanup = db.Close
	}

	var rosterCache *cache.Store
	if cfg.CacheEnabled {
		rosterCache = cache.NewStore(cfg.CacheTTL)
	}

	importer := sheets.NewClient(sheets.ClientConfig{
		CSVURL:      cfg.SheetCSVURL,
		TeamsCSVURL: cfg.SheetTeamsCSVURL,
		APIKey:      cfg.GoogleAPIKey,
		SheetID:     cfg.GoogleSheetID,
		ValuesRange: cfg.GoogleSheetRange,
		TeamsRange:  cfg.SheetTeamsRange,
		GvizIndex:   cfg.SheetGvizIndex,
		Timeout:     cfg.SheetTimeout,
		MaxRetries:  cfg.SheetMaxRetries,
		Logger:      logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.SheetCircuitEnabled,
			FailureThreshold: cfg.SheetCircuitFailures,
			OpenTimeout:      cfg.SheetCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.SheetCircuitHalfOpenMax,
		},
		Cache: rosterCache,
	})

	writer := sheetwriter.NewClient(sheetwriter.ClientConfig{
		BaseURL: cfg.SheetWriterURL,
		Mode:    cfg.SheetWriterMode,
		SheetID: cfg.GoogleSheetID,
		Timeout: cfg.SheetWriterTimeout,
		Workers: cfg.ResyncWorkers,
		Logger:  logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.SheetWriterCircuitEnabled,
			FailureThreshold: cfg.SheetWriterCircuitFailures,
			OpenTimeout:      cfg.SheetWriterCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.SheetWriterCircuitHalfOpenMax,
		},
	})

	auctionService := usecase.NewAuctionService(usecase.AuctionServiceConfig{
		Sessions:          memory.NewSessionRepository(),
		Teams:             memory.NewTeamRepository(memory.SeedTeams()),
		Recorder:          recorder,
		Importer:          importer,
		Writer:            writer,
		SeedPlayers:       memory.SeedPlayers(),
		SeedTeams:         memory.SeedTeams(),
		RoleOrder:         parseRoleOrder(cfg.RoleOrder),
		AllowZeroPurchase: cfg.AllowZeroPurchase,
		WriteBackTimeout:  cfg.SheetWriterTimeout,
		Logger:            logger,
	})
	historyService := usecase.NewHistoryService(recorder, writer, logger)

	handler := httpapi.NewHandler(auctionService, historyService, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}

// newRecorder picks the transaction store: postgres when DB_URL is set, the
// in-memory log otherwise.
func newRecorder(cfg config.Config, logger *logging.Logger) (transaction.Recorder, *sqlx.DB, error) {
	if cfg.DBURL == "" {
		logger.Info("transaction log storage", "backend", "memory")
		return memory.NewTransactionRepository(), nil, nil
	}

	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	logger.Info("transaction log storage", "backend", "postgres", "database", dbNameFromURL(dsn))
	return postgres.NewTransactionRepository(db), db, nil
}

func parseRoleOrder(order []string) []player.Role {
	if len(order) == 0 {
		return nil
	}

	out := make([]player.Role, 0, len(order))
	for _, item := range order {
		out = append(out, player.NormalizeRole(item))
	}

	return out
}
