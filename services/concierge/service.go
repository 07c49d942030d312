// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package concierge

import (
	"context"
	"log/slog"
	"time"

	"github.com/AleutianAI/nestwell/services/llm"
	"github.com/AleutianAI/nestwell/services/observability"
)

// Strategy names accepted by NewService. They match the router.strategy
// configuration values.
const (
	StrategyRules = "rules"
	StrategyGraph = "graph"
)

// Service is the concierge facade the HTTP layer talks to.
//
// Description:
//
//	Owns the selected routing strategy and, when a language-model client
//	is available, the tool-calling loop. The deterministic router is
//	always present; the agent path is optional and absent deployments
//	simply do not expose the agent endpoint.
//
// Thread Safety: Safe for concurrent use.
type Service struct {
	router   Router
	strategy string
	ts       Toolset
	tracer   observability.Tracer
	loop     *ToolLoop
}

// ServiceConfig carries the knobs NewService needs.
type ServiceConfig struct {
	// Strategy is StrategyRules or StrategyGraph. Anything else falls
	// back to rules with a warning.
	Strategy string

	// SupportGoodwillUSD is the credit requested for delayed orders.
	SupportGoodwillUSD float64

	// Temperature is the sampling temperature for tool-calling rounds.
	Temperature float32
}

// NewService wires the routing strategy and, when client is non-nil, the
// tool loop.
func NewService(cfg ServiceConfig, ts Toolset, tracer observability.Tracer, client llm.Client) *Service {
	s := &Service{strategy: cfg.Strategy, ts: ts, tracer: tracer}

	switch cfg.Strategy {
	case StrategyGraph:
		s.router = NewGraphRouter(ts, cfg.SupportGoodwillUSD, tracer)
	case StrategyRules:
		s.router = NewOrchestrator(ts, cfg.SupportGoodwillUSD, tracer)
	default:
		slog.Warn("unknown router strategy, using rules", "strategy", cfg.Strategy)
		s.strategy = StrategyRules
		s.router = NewOrchestrator(ts, cfg.SupportGoodwillUSD, tracer)
	}

	if client != nil {
		s.loop = NewToolLoop(client, tracer, cfg.Temperature)
	}
	return s
}

// AgentEnabled reports whether the tool-calling agent path is wired.
func (s *Service) AgentEnabled() bool { return s.loop != nil }

// HandleMessage routes one message through the configured strategy.
func (s *Service) HandleMessage(ctx context.Context, userID, message string) (RouteOutcome, error) {
	start := time.Now()
	domain := Classify(message)

	outcome, err := s.router.Handle(ctx, userID, message)
	if err != nil {
		return RouteOutcome{}, err
	}

	messagesRouted.WithLabelValues(string(domain), s.strategy).Inc()
	routeDuration.WithLabelValues(string(domain)).Observe(time.Since(start).Seconds())
	return outcome, nil
}

// AgentMessage routes one message through the model-driven tool loop.
//
// Description:
//
//	Classifies the message to scope the tool descriptor set, builds a
//	registry bound to the user, runs the loop, then derives outcome
//	tags from the call log and appends an interaction record. Callers
//	must check AgentEnabled first; calling without a loop panics by
//	design of the route registration, which never exposes the endpoint.
func (s *Service) AgentMessage(ctx context.Context, userID, message string, traits Traits) (RouteOutcome, []CallLogEntry, error) {
	ctx, span := s.tracer.StartSpan(ctx, "agent_chat", map[string]string{
		"user_id": userID,
	})
	defer span.End()

	domain := Classify(message)
	registry := BuildRegistry(userID, traits, s.ts)

	reply, callLog, err := s.loop.Run(ctx, domain, message, registry, "")
	if err != nil {
		return RouteOutcome{}, nil, err
	}

	tags := tagsFromCallLog(callLog)
	if len(callLog) > 0 && s.ts.Memory != nil {
		event := map[string]any{
			"intent":   "agent_" + string(domain),
			"message":  message,
			"call_log": callLog,
		}
		if err := s.ts.Memory.AddInteraction(ctx, userID, event); err != nil {
			slog.Error("interaction append failed", "user_id", userID, "error", err)
		}
	}

	messagesRouted.WithLabelValues(string(domain), "agent").Inc()
	return RouteOutcome{Reply: reply, OutcomeTags: tags, TraceID: span.TraceID()}, callLog, nil
}

// callTags maps successful tool calls to the outcome tags they imply.
var callTags = map[string]string{
	"recommend_bundle":   "high_intent_engagement",
	"create_lead":        "lead_created",
	"create_opportunity": "opportunity_created",
	"book_meeting":       "meeting_booked",
	"issue_goodwill":     "goodwill_credit",
	"create_case":        "case_with_context",
	"kb_answer":          "kb_response",
}

// tagsFromCallLog derives deduplicated outcome tags in call order. Failed
// calls contribute nothing: a tag asserts the action happened.
func tagsFromCallLog(callLog []CallLogEntry) []string {
	var tags []string
	seen := make(map[string]bool)
	for _, entry := range callLog {
		if entry.Err != "" {
			continue
		}
		tag, ok := callTags[entry.Tool]
		if !ok || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}
