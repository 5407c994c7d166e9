package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/homeplay/internal/devserver"
	"github.com/abhisek/homeplay/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local homework API for development",
	Long: `Serve the homework submission endpoints from a local SQLite database.

Point HOMEPLAY_API_BASE_URL at this server to play without the real backend.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides HOMEPLAY_SERVER_ADDR)")
	serveCmd.Flags().String("db", "", "Path to SQLite database file (overrides HOMEPLAY_SERVER_DB_PATH)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Server.DBPath = db
	}

	dbPath, err := cfg.DBPath()
	if err != nil {
		return fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	api := devserver.New(st.Submissions(), devserver.Options{
		Logger:      logger.Named("devserver"),
		CORSOrigins: cfg.Server.CORSOrigins,
		Token:       cfg.API.Token,
		Registry:    reg,
	})
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("serving homework API", zap.String("addr", srv.Addr), zap.String("db", dbPath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
