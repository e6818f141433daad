package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	appreview "github.com/apologia/backend/internal/application/review"
	appsermons "github.com/apologia/backend/internal/application/sermons"
	"github.com/apologia/backend/internal/config"
	domain "github.com/apologia/backend/internal/domain/sermons"
	"github.com/apologia/backend/internal/domain/suggest"
	agentclient "github.com/apologia/backend/internal/infra/ai/agent"
	openaiclient "github.com/apologia/backend/internal/infra/ai/openai"
	mysqldb "github.com/apologia/backend/internal/infra/db/mysql"
	postgresdb "github.com/apologia/backend/internal/infra/db/postgres"
	sqlitedb "github.com/apologia/backend/internal/infra/db/sqlite"
	"github.com/apologia/backend/internal/infra/docstore"
	"github.com/apologia/backend/internal/infra/httpserver"
	minioStore "github.com/apologia/backend/internal/infra/storage"
	"github.com/apologia/backend/internal/middleware"
)

type deckRepository interface {
	domain.Repository
	EnsureSchema(ctx context.Context) error
}

func connectRepository(ctx context.Context, cfg *config.Config) (deckRepository, *sql.DB, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		db, err := sqlitedb.Connect(ctx, cfg.Database.Path)
		if err != nil {
			return nil, nil, err
		}
		return sqlitedb.NewDeckRepository(db), db, nil
	case "mysql":
		db, err := mysqldb.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, err
		}
		return mysqldb.NewDeckRepository(db), db, nil
	case "postgres":
		db, err := postgresdb.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		return postgresdb.NewDeckRepository(db), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown database driver: %q", cfg.Database.Driver)
	}
}

func buildSuggester(cfg *config.Config) (suggest.Client, error) {
	switch cfg.AI.Provider {
	case "agent":
		return agentclient.NewClient(cfg.AI.AgentEndpoint), nil
	case "openai":
		if cfg.AI.OpenAIKey == "" {
			return nil, fmt.Errorf("ai.openaiKey is required for the openai provider")
		}
		return openaiclient.NewClient(cfg.AI.OpenAIKey, cfg.AI.OpenAIModel), nil
	default:
		return nil, fmt.Errorf("unknown ai provider: %q", cfg.AI.Provider)
	}
}

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	repo, db, err := connectRepository(ctx, cfg)
	if err != nil {
		log.Fatalf("database connect error: %v", err)
	}
	defer db.Close()
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("schema error: %v", err)
	}

	suggester, err := buildSuggester(cfg)
	if err != nil {
		log.Fatalf("ai init error: %v", err)
	}

	var artifacts domain.ArtifactStore
	if cfg.MinioEnabled() {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		artifacts = store
	}

	clock := appsermons.SystemClock{}
	decksSvc := &appsermons.Service{
		Repo:      repo,
		Clock:     clock,
		UploadDir: cfg.Storage.UploadDir,
	}
	reviewSvc := &appreview.Service{
		Decks:     decksSvc,
		Docs:      docstore.New(filepath.Join(cfg.Storage.DataDir, "sermons")),
		Suggest:   suggester,
		Artifacts: artifacts,
		Clock:     clock,
		DataDir:   cfg.Storage.DataDir,
	}

	mux := chi.NewRouter()
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	if len(cfg.Auth.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	}
	if cfg.RateLimit.Capacity > 0 {
		mux.Use(middleware.RateLimitMiddleware(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate))
	}
	checkers := map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
		"uploads":  &middleware.StorageHealthChecker{Dir: cfg.Storage.UploadDir},
		"storage":  &middleware.StorageHealthChecker{Dir: cfg.Storage.DataDir},
	}
	mux.Mount("/", httpserver.NewRouter(decksSvc, reviewSvc, checkers))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
