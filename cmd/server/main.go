/*
main.go - Application entry point

STARTUP SEQUENCE:
  1. Load TIMECLOCK_* environment, then apply command-line flags
  2. Build the zap logger
  3. Initialize SQLite store
  4. Optionally import legacy usuarios.csv / registros.csv
  5. Configure HTTP router and start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port        HTTP server port (overrides TIMECLOCK_LISTEN_ADDR)
  -db          SQLite database path (overrides TIMECLOCK_DB_PATH)
               Use ":memory:" for in-memory database
  -import-dir  Directory holding legacy usuarios.csv and registros.csv

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warp/timeclock/api"
	"github.com/warp/timeclock/config"
	"github.com/warp/timeclock/export"
	"github.com/warp/timeclock/logging"
	"github.com/warp/timeclock/punch"
	"github.com/warp/timeclock/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// Flags
	port := flag.Int("port", 0, "HTTP server port")
	dbPath := flag.String("db", "", "SQLite database path")
	importDir := flag.String("import-dir", "", "directory with legacy usuarios.csv and registros.csv")
	flag.Parse()

	cfg, err := config.Load(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *port != 0 {
		cfg.Server.ListenAddr = fmt.Sprintf(":%d", *port)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	workload, err := cfg.Workload()
	if err != nil {
		return err
	}

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	recorder := punch.NewRecorder(store, punch.NewSystemClock(loc), logger)

	if *importDir != "" {
		if err := importLegacy(context.Background(), *importDir, recorder, logger); err != nil {
			return fmt.Errorf("legacy import failed: %w", err)
		}
	}

	handler := api.NewHandler(store, recorder, workload, logger)
	router := api.NewRouter(handler, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", cfg.Server.ListenAddr),
			zap.String("db", cfg.DBPath),
			zap.String("timezone", loc.String()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// importLegacy registers everyone in usuarios.csv and replays registros.csv
// through the validator. Rejected rows and rows already imported are logged
// and skipped.
func importLegacy(ctx context.Context, dir string, recorder *punch.Recorder, logger *zap.Logger) error {
	loc := recorder.Clock().Location()

	pf, err := os.Open(filepath.Join(dir, "usuarios.csv"))
	if err != nil {
		return err
	}
	defer pf.Close()
	people, err := export.ReadLegacyPeople(pf)
	if err != nil {
		return fmt.Errorf("usuarios.csv: %w", err)
	}
	for _, p := range people {
		if _, _, err := recorder.Register(ctx, p.ID, p.Name); err != nil {
			return fmt.Errorf("register %s: %w", p.ID, err)
		}
	}

	ef, err := os.Open(filepath.Join(dir, "registros.csv"))
	if err != nil {
		return err
	}
	defer ef.Close()
	events, rowErrs, err := export.ReadLegacyEvents(ef, loc)
	if err != nil {
		return fmt.Errorf("registros.csv: %w", err)
	}
	for _, rowErr := range rowErrs {
		logger.Warn("legacy row unreadable", zap.Int("row", rowErr.Row), zap.Error(rowErr.Err))
	}

	imported, skipped := 0, len(rowErrs)
	for _, e := range events {
		if _, err := recorder.Import(ctx, e); err != nil {
			if punch.IsClientError(err) || punch.IsNotFound(err) || errors.Is(err, punch.ErrDuplicateEvent) {
				skipped++
				logger.Warn("legacy punch skipped",
					zap.String("person_id", string(e.PersonID)),
					zap.Time("at", e.At),
					zap.Error(err),
				)
				continue
			}
			return err
		}
		imported++
	}

	logger.Info("legacy import finished",
		zap.Int("people", len(people)),
		zap.Int("imported", imported),
		zap.Int("skipped", skipped),
	)
	return nil
}
