package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
)

func main() {
	cfg, err := LoadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal("invalid configuration", "error", err)
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn("unknown log level, using info", "level", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetReportTimestamp(true)

	lobbies := NewRegistry(cfg.MaxLobbies, cfg.RoundOptions(), cfg.ReconnectGrace)
	auth := NewAuth(cfg.JWTSecret)
	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET not set, resume tokens will not survive a restart")
	}

	hub := NewHub(lobbies, auth, cfg.PublicURL)
	go hub.Run()

	router := SetupRoutes(hub, cfg.ClientDir)

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	server := &http.Server{Addr: cfg.Addr, Handler: router}

	go func() {
		log.Info("server starting", "addr", cfg.Addr, "client", cfg.ClientDir, "tickRate", cfg.TickRate)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal("listen failed", "error", err)
		}
	}()

	<-stop
	log.Info("shutting down")
	hub.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Warn("shutdown incomplete", "error", err)
	}
	lobbies.Shutdown()
}
