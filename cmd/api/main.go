package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	configapi "finstat/pkg/api/config"
	"finstat/pkg/api/statement"
	"finstat/pkg/config"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", os.Getenv("FINSTAT_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] config: %v\n", err)
		os.Exit(1)
	}
	log := cfg.Logger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := cfg.Open(ctx, log)
	if err != nil {
		log.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer rt.Close()

	gin.SetMode(gin.ReleaseMode)
	router := statement.NewRouter(statement.NewHandler(rt.Pipeline, log))
	configapi.NewHandler(cfg, rt.Catalog).Register(router.Group("/api"))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown failed", "error", err)
		}
	}()

	log.Info("API server starting",
		"addr", srv.Addr,
		"max_document_bytes", rt.Pipeline.MaxDocumentBytes(),
		"database", rt.DB != nil)
	log.Info("routes",
		"endpoints", []string{
			"GET  /health",
			"GET  /api/config",
			"GET  /api/industries",
			"POST /api/statements/parse",
			"POST /api/statements/analyze",
			"POST /api/statements/batch",
		})

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}
