// cmd/stub-server runs the reference enrollment server standalone for
// local development. State lives in memory by default, or in a sqlite
// file when STUB_DB is set.
package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/aparkhill/activity-enrollment-client/internal/config"
	"github.com/aparkhill/activity-enrollment-client/internal/stubapi"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	store, err := newStore(cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}

	srv := &http.Server{
		Addr:         cfg.StubAddr,
		Handler:      stubapi.NewServer(store, cfg.StubSessionSecret).Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("✓ Stub server listening on %s", cfg.StubAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down stub server…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
	log.Println("server stopped")
}

// newStore picks sqlite persistence when a database path is configured,
// otherwise a seeded in-memory store.
func newStore(cfg config.Config) (stubapi.Store, error) {
	if cfg.StubDB == "" {
		log.Println("✓ Using in-memory store")
		return stubapi.NewMemoryStore(stubapi.DefaultActivities()), nil
	}

	db, err := sql.Open("sqlite3", cfg.StubDB)
	if err != nil {
		return nil, err
	}
	store, err := stubapi.NewSQLiteStore(db, stubapi.DefaultActivities())
	if err != nil {
		return nil, err
	}
	log.Printf("✓ Using sqlite store at %s", cfg.StubDB)
	return store, nil
}
