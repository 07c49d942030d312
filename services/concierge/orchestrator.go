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

	"github.com/AleutianAI/nestwell/services/observability"
)

// Orchestrator is the rule-based routing strategy: classify once, then
// dispatch straight to the matching domain handler.
//
// Thread Safety: Safe for concurrent use.
type Orchestrator struct {
	handlers *domainHandlers
	tracer   observability.Tracer
}

// NewOrchestrator wires the rule-based router.
func NewOrchestrator(ts Toolset, supportGoodwillUSD float64, tracer observability.Tracer) *Orchestrator {
	return &Orchestrator{
		handlers: &domainHandlers{ts: ts, supportGoodwillUSD: supportGoodwillUSD},
		tracer:   tracer,
	}
}

// Handle classifies the message and runs the matching domain handler
// inside an "orchestrator" span.
func (o *Orchestrator) Handle(ctx context.Context, userID, message string) (RouteOutcome, error) {
	ctx, span := o.tracer.StartSpan(ctx, "orchestrator", map[string]string{
		"user_id": userID,
		"message": message,
	})
	defer span.End()

	domain := Classify(message)
	reply, tags := o.handlers.handle(ctx, domain, userID, message)
	return RouteOutcome{Reply: reply, OutcomeTags: tags, TraceID: span.TraceID()}, nil
}
