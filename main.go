// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/danielhkuo/quickly-stake/auth"
	"github.com/danielhkuo/quickly-stake/cliparse"
	"github.com/danielhkuo/quickly-stake/db"
	"github.com/danielhkuo/quickly-stake/engine"
	"github.com/danielhkuo/quickly-stake/middleware"
	"github.com/danielhkuo/quickly-stake/router"
	"github.com/danielhkuo/quickly-stake/store"
)

func main() {
	var err error

	// Text logs for a terminal, JSON for everything else
	var handler slog.Handler = slog.NewJSONHandler(os.Stderr, nil)
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		handler = slog.NewTextHandler(os.Stderr, nil)
	}
	slog.SetDefault(slog.New(handler))

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	// Load ledgers and projects
	ctx := context.Background()
	st := store.New(dbConn, cfg.DatabaseType)
	eng, err := engine.New(ctx, st,
		engine.WithInitialPoints(cfg.InitialPoints),
	)
	if err != nil {
		slog.Error("engine load failed", "error", err)
		os.Exit(1)
	}

	issuer, err := auth.NewIssuer(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		slog.Error("session issuer setup failed", "error", err)
		os.Exit(1)
	}
	if err := issuer.UseStore(ctx, st); err != nil {
		slog.Error("session issuer setup failed", "error", err)
		os.Exit(1)
	}

	provider, err := auth.NewHMACProvider(cfg.ProviderSecret, cfg.ProviderIssuer)
	if err != nil {
		slog.Error("identity provider setup failed", "error", err)
		os.Exit(1)
	}

	// Create router
	mux := router.NewRouter(eng, issuer, provider)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
