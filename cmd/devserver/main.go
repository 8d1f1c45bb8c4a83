// shopdesk devserver - in-memory shop admin backend for local development.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jeranaias/shopdesk-tui/internal/cli"
	"github.com/jeranaias/shopdesk-tui/internal/devserver"
	"github.com/jeranaias/shopdesk-tui/internal/logging"
)

const usage = `devserver - shopdesk development backend

Usage:
  devserver [--addr :8080] [--seed catalog.yaml] [--token-ttl 12h] [--verbose]

Environment:
  SHOPDESK_DEV_SECRET   token signing secret (random per run if unset)

Default login: admin@example.com / admin123
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	args := cli.NewArgParser(os.Args[1:], "verbose", "help", "h")
	if args.BoolFlag("help") || args.BoolFlag("h") {
		fmt.Print(usage)
		return nil
	}

	level := slog.LevelInfo
	if args.BoolFlag("verbose") {
		level = slog.LevelDebug
	}
	log := logging.New(os.Stderr, level)

	cfg := devserver.Config{Logger: log}
	if path := args.Flag("seed"); path != "" {
		seed, err := devserver.LoadSeed(path)
		if err != nil {
			return err
		}
		cfg.Seed = seed
	}
	if ttl := args.Flag("token-ttl"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return fmt.Errorf("--token-ttl: %w", err)
		}
		cfg.TokenTTL = d
	}
	if secret := os.Getenv("SHOPDESK_DEV_SECRET"); secret != "" {
		cfg.Secret = []byte(secret)
	} else {
		cfg.Secret = make([]byte, 32)
		if _, err := rand.Read(cfg.Secret); err != nil {
			return err
		}
	}

	srv, err := devserver.New(cfg)
	if err != nil {
		return err
	}

	addr := ":8080"
	if a := args.Flag("addr"); a != "" {
		addr = a
	}

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", logging.Event("DEVSERVER_START", "addr", httpSrv.Addr)...)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info(shutdownCtx, "shutting down", logging.Event("DEVSERVER_STOP")...)
	return httpSrv.Shutdown(shutdownCtx)
}
