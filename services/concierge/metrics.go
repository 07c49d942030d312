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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Package-level Prometheus metrics for message routing.
// Auto-registered via promauto so no explicit registry wiring is needed.
var (
	// messagesRouted counts handled messages.
	//
	// Labels:
	//   - domain: "marketing", "sales", "support", "kb"
	//   - strategy: "rules" or "graph"
	messagesRouted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nestwell",
			Subsystem: "concierge",
			Name:      "messages_routed_total",
			Help:      "Total messages routed, by domain and strategy.",
		},
		[]string{"domain", "strategy"},
	)

	// routeDuration measures end-to-end handling time per message.
	//
	// Labels:
	//   - domain: "marketing", "sales", "support", "kb"
	routeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nestwell",
			Subsystem: "concierge",
			Name:      "route_duration_seconds",
			Help:      "End-to-end message handling duration in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"domain"},
	)

	// toolInvocations counts tool-loop invocations by outcome.
	//
	// Labels:
	//   - tool: registry tool name (or the unregistered name the model proposed)
	//   - status: "success", "error", or "unknown_tool"
	toolInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nestwell",
			Subsystem: "concierge",
			Name:      "tool_invocations_total",
			Help:      "Total tool-loop invocations by tool and status.",
		},
		[]string{"tool", "status"},
	)
)
