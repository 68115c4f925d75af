package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chatrelay/chatrelay-backend/internal/api"
	"github.com/chatrelay/chatrelay-backend/internal/config"
	"github.com/chatrelay/chatrelay-backend/internal/handlers"
	"github.com/chatrelay/chatrelay-backend/internal/services"
	"github.com/chatrelay/chatrelay-backend/internal/services/relay"
	"github.com/chatrelay/chatrelay-backend/internal/store"
	"github.com/chatrelay/chatrelay-backend/internal/store/memory"
	"github.com/chatrelay/chatrelay-backend/internal/store/postgres"
	"github.com/chatrelay/chatrelay-backend/internal/store/sqlite"
)

func main() {
	log.Println("Starting ChatRelay Backend...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize the storage backend. The choice is made exactly once,
	// here; every layer above speaks store.Store.
	st, err := openStore(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize %s store: %v", cfg.DBBackend, err)
	}
	defer st.Close()

	// Run idempotent schema creation for the durable backends.
	if m, ok := st.(store.Migrator); ok {
		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := m.Migrate(migrateCtx); err != nil {
			cancel()
			log.Fatalf("FATAL: Schema migration failed: %v", err)
		}
		cancel()
	}
	log.Printf("%s store initialized.", cfg.DBBackend)

	// 3. Initialize Services and Handlers
	relayClient := relay.NewClient(cfg.BotBackendURL, cfg.BotSharedSecret, cfg.BotProxyURL)
	threadService := services.NewThreadService(st)
	chatService := services.NewChatService(st, threadService, relayClient)

	router := api.NewRouter(api.RouterDependencies{
		HealthHandler: handlers.NewHealthHandler(st),
		ThreadHandler: handlers.NewThreadHandlers(threadService),
		ChatHandler:   handlers.NewChatHandlers(chatService),
		Config:        cfg,
	})
	log.Println("HTTP router configured.")

	// 4. Configure and Start HTTP Server
	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
		// ReadTimeout guards against slow request bodies; WriteTimeout must
		// cover the relay call, which can take up to a minute.
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting and listening on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: Could not listen on %s: %v", cfg.HTTPPort, err)
		}
	}()

	<-stopChan
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("WARN: Server graceful shutdown failed: %v", err)
	}

	log.Println("Server shutdown complete.")
}

// openStore builds the configured storage backend.
func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.DBBackend {
	case config.BackendPostgres:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return postgres.NewPostgresStore(pool), nil

	case config.BackendSQLite:
		return sqlite.NewSQLiteStore(cfg.SQLitePath)

	default: // config.BackendMemory, validated in LoadConfig
		return memory.NewMemoryStore(), nil
	}
}
