package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/comigor/jokebot-go/internal/config"
	"github.com/comigor/jokebot-go/internal/journal"
	"github.com/comigor/jokebot-go/internal/llm"
	"github.com/comigor/jokebot-go/internal/logger"
	"github.com/comigor/jokebot-go/internal/relay"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.L.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A missing credential is not fatal: every turn answers 500 until it is configured.
	client, closeClient, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		logger.L.Error("completion client unavailable", "provider", cfg.LLM.Provider, "error", err)
		client = nil
	}
	defer func() {
		if err := closeClient(); err != nil {
			logger.L.Warn("closing completion client", "error", err)
		}
	}()

	j := journal.Open(cfg.Journal.Path)
	defer j.Close()

	rl := relay.New(client, err, j, cfg.LLM.Timeout)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           relay.NewRouter(rl, cfg.Server.StaticDir),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.LLM.Timeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.L.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.L.Error("graceful shutdown failed", "error", err)
		}
	}()

	logger.L.Info("starting server",
		"address", server.Addr,
		"provider", cfg.LLM.Provider,
		"model", cfg.LLM.Model,
		"journal", j.Persistent(),
	)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logger.L.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
