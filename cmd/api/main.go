package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shopdraw/drawcheck/internal/application"
	appanalysis "github.com/shopdraw/drawcheck/internal/application/analysis"
	"github.com/shopdraw/drawcheck/internal/config"
	aiclient "github.com/shopdraw/drawcheck/internal/infra/ai/openai"
	"github.com/shopdraw/drawcheck/internal/infra/httpserver"
	"github.com/shopdraw/drawcheck/internal/infra/pdf"
	"github.com/shopdraw/drawcheck/internal/infra/storage"
	"github.com/shopdraw/drawcheck/internal/middleware"
)

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

	// init minio
	store, err := storage.New(ctx, storage.Options{
		Endpoint:  cfg.Minio.Endpoint,
		Region:    cfg.Minio.Region,
		Bucket:    cfg.Minio.BucketName,
		AccessKey: cfg.Minio.AccessKey,
		SecretKey: cfg.Minio.SecretKey,
		UseSSL:    cfg.Minio.UseSSL,
		GrantTTL:  time.Duration(cfg.Minio.GrantTTL) * time.Second,
		MaxBytes:  cfg.Limits.HardMax,
	})
	if err != nil {
		log.Fatalf("minio init error: %v", err)
	}

	// init model client
	analyzer := aiclient.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model, cfg.OpenAI.MaxTokens)

	// init service
	svc := &appanalysis.Service{
		Analyzer:   analyzer,
		Store:      store,
		Compressor: pdf.NewCompressor(),
		Limits:     cfg.Limits,
		Clock:      application.SystemClock{},
		OnProgress: func(p appanalysis.Snapshot) {
			log.Printf("progress pct=%d phase=%q", p.Percent, p.Phase)
		},
	}

	checkers := map[string]middleware.HealthChecker{
		"minio": store,
	}

	mux := chi.NewRouter()
	mux.Mount("/", httpserver.NewRouter(svc, store, checkers, cfg.Limits, cfg.InlineTimeout(), cfg.BlobTimeout()))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.BlobTimeout() + 15*time.Second,
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
