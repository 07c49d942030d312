// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command nestwell starts the NestWell concierge API server.
//
// The concierge routes customer messages into marketing, sales, support,
// or knowledge-base handling, with:
//   - Two interchangeable routing strategies (rule chain or state machine)
//   - An optional LLM tool-calling agent path
//   - Durable interaction logging (BadgerDB)
//   - OpenTelemetry tracing across the whole request
//
// Usage:
//
//	go run ./cmd/nestwell
//	go run ./cmd/nestwell -port 9090 -config concierge.yaml
//
// With the agent path (model-driven tool calling):
//
//	OPENAI_API_KEY=sk-... go run ./cmd/nestwell
//
// Example requests:
//
//	# Health check
//	curl http://localhost:8080/v1/concierge/health
//
//	# Route a message deterministically
//	curl -X POST http://localhost:8080/v1/concierge/chat \
//	  -H "Content-Type: application/json" \
//	  -d '{"user_id": "u-1", "message": "Help me furnish a lounge."}'
//
//	# Route a message through the agent (requires OPENAI_API_KEY)
//	curl -X POST http://localhost:8080/v1/concierge/agent/chat \
//	  -H "Content-Type: application/json" \
//	  -d '{"user_id": "u-1", "message": "Quote me 10 desks."}'
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AleutianAI/nestwell/services/concierge"
	"github.com/AleutianAI/nestwell/services/config"
	"github.com/AleutianAI/nestwell/services/llm"
	"github.com/AleutianAI/nestwell/services/memory"
	"github.com/AleutianAI/nestwell/services/observability"
	"github.com/AleutianAI/nestwell/services/tools"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/sync/errgroup"
)

func main() {
	port := flag.Int("port", 0, "Port to listen on (overrides config)")
	configPath := flag.String("config", "", "Path to a YAML config file")
	debug := flag.Bool("debug", false, "Enable debug mode")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	if err := run(*port, *configPath, *debug); err != nil {
		slog.Error("Server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(portFlag int, configPath string, debug bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if portFlag != 0 {
		cfg.Server.Port = portFlag
	}

	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing. Setup installs the global propagators so otelgin can
	// extract inbound W3C trace context.
	tracer, shutdownTracing, err := observability.Setup(ctx, cfg.Tracing.Exporter, cfg.Tracing.Endpoint)
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Warn("Tracer shutdown failed", slog.String("error", err.Error()))
		}
	}()

	// Interaction store.
	var store *memory.Store
	if cfg.Memory.InMemory {
		store, err = memory.OpenInMemory()
	} else {
		store, err = memory.Open(cfg.Memory.Dir)
	}
	if err != nil {
		return fmt.Errorf("opening interaction store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("Interaction store close failed", slog.String("error", err.Error()))
		}
	}()

	toolset, err := buildToolset(cfg, store)
	if err != nil {
		return err
	}

	// The agent path needs model credentials; without them the service
	// still runs with only the deterministic router.
	var client llm.Client
	if openai, err := llm.NewOpenAIClient(); err != nil {
		slog.Info("Agent path disabled", slog.String("reason", err.Error()))
	} else {
		client = openai
	}

	svc := concierge.NewService(concierge.ServiceConfig{
		Strategy:           cfg.Router.Strategy,
		SupportGoodwillUSD: cfg.Policy.SupportGoodwillUSD,
		Temperature:        cfg.LLM.Temperature,
	}, toolset, tracer, client)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("nestwell-concierge"))
	if debug {
		router.Use(gin.Logger())
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	limiter := concierge.RateLimitMiddleware(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	concierge.RegisterRoutes(v1, concierge.NewHandlers(svc), limiter)

	printBanner(cfg.Server.Port, svc.AgentEnabled(), cfg.Router.Strategy)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Starting NestWell concierge server", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down NestWell concierge server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildToolset constructs the deterministic business collaborators.
func buildToolset(cfg *config.Config, store *memory.Store) (concierge.Toolset, error) {
	catalog, err := tools.NewCatalog()
	if err != nil {
		return concierge.Toolset{}, fmt.Errorf("loading catalog: %w", err)
	}
	kb, err := tools.NewKB()
	if err != nil {
		return concierge.Toolset{}, fmt.Errorf("loading knowledge base: %w", err)
	}
	return concierge.Toolset{
		Catalog:  catalog,
		CRM:      tools.NewCRM(),
		Helpdesk: tools.NewHelpdesk(cfg.Policy.GoodwillMaxUSD),
		Orders:   tools.NewOrders(),
		Calendar: tools.NewCalendar(),
		KB:       kb,
		Memory:   store,
	}, nil
}

func printBanner(port int, agentEnabled bool, strategy string) {
	agentStatus := "DISABLED (set OPENAI_API_KEY to enable)"
	if agentEnabled {
		agentStatus = "ENABLED (OpenAI connected)"
	}

	banner := `
╔═══════════════════════════════════════════════════════════════════╗
║                    NESTWELL CONCIERGE SERVER                      ║
╠═══════════════════════════════════════════════════════════════════╣
║                                                                   ║
║  Intent routing across marketing / sales / support / kb.          ║
║  Strategy:   %-50s   ║
║  Agent Path: %-50s   ║
║                                                                   ║
║  Quick Start:                                                     ║
║  ┌─────────────────────────────────────────────────────────────┐  ║
║  │ # Health check                                              │  ║
║  │ curl http://localhost:%-5d/v1/concierge/health             │  ║
║  │                                                             │  ║
║  │ # Route a message                                           │  ║
║  │ curl -X POST http://localhost:%-5d/v1/concierge/chat \     │  ║
║  │   -H "Content-Type: application/json" \                     │  ║
║  │   -d '{"user_id":"u-1","message":"Quote me 10 desks."}'     │  ║
║  └─────────────────────────────────────────────────────────────┘  ║
║                                                                   ║
║  Endpoints: /chat, /agent/chat, /health, /ready, /metrics         ║
║                                                                   ║
║  Press Ctrl+C to stop                                             ║
╚═══════════════════════════════════════════════════════════════════╝
`
	fmt.Printf(banner, strategy, agentStatus, port, port)
}
