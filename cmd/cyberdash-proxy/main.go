// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package main implements the cyberdash proxy server.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/wneessen/cyberdash/internal/config"
	"github.com/wneessen/cyberdash/internal/logger"
	"github.com/wneessen/cyberdash/internal/proxy"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGABRT, os.Interrupt)
	defer cancel()

	// Initialize Logger
	log := logger.NewLogger(slog.LevelError)

	confPath := flag.String("config", "", "path to the config file")
	flag.Parse()

	conf, err := config.Load(*confPath)
	if err != nil {
		log.Error("failed to load config", logger.Err(err))
		os.Exit(1)
	}
	log = logger.NewLogger(conf.LogLevel)

	srv, err := proxy.New(conf, log)
	if err != nil {
		log.Error("failed to initialize cyberdash proxy", logger.Err(err))
		os.Exit(1)
	}

	log.Info("starting cyberdash proxy", slog.String("listen", conf.Proxy.Listen),
		slog.String("version", version), slog.String("commit", commit), slog.String("date", date))
	if err = srv.ListenAndServe(ctx); err != nil {
		log.Error("cyberdash proxy failed", logger.Err(err))
		os.Exit(1)
	}
	log.Info("shutting down cyberdash proxy")
}
