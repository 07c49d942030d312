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
	"fmt"

	"github.com/AleutianAI/nestwell/services/observability"
)

// graphState is the mutable state threaded through one graph traversal.
type graphState struct {
	userID  string
	message string
	intent  Domain
	reply   string
	tags    []string
}

// nodeName identifies a state in the routing graph.
type nodeName string

const (
	nodeClassify  nodeName = "classify"
	nodeMarketing nodeName = "marketing"
	nodeSales     nodeName = "sales"
	nodeSupport   nodeName = "support"
	nodeKB        nodeName = "kb"

	// nodeEnd is the terminal pseudo-state every domain node points at.
	nodeEnd nodeName = "end"
)

// graphNode runs one state's work and returns the next state.
type graphNode func(ctx context.Context, st *graphState) nodeName

// GraphRouter is the state-machine routing strategy.
//
// Description:
//
//	The graph has a single entry state, classify, which computes the
//	same intent label as the rule-based Orchestrator and transitions
//	unconditionally to the matching domain state. Domain states perform
//	their side effects through the shared domainHandlers and are
//	terminal. The explicit node table makes the decision structure
//	inspectable: extending it means adding a node plus one transition,
//	which is why this is the preferred strategy once more domains or
//	branching exist.
//
//	Output parity with the Orchestrator is a hard requirement. Both
//	strategies reach the identical handler code, so the replies and tag
//	sets cannot drift apart.
//
// Thread Safety: Safe for concurrent use; traversal state is per call.
type GraphRouter struct {
	handlers *domainHandlers
	tracer   observability.Tracer
	nodes    map[nodeName]graphNode
}

// NewGraphRouter wires the state-machine router.
func NewGraphRouter(ts Toolset, supportGoodwillUSD float64, tracer observability.Tracer) *GraphRouter {
	g := &GraphRouter{
		handlers: &domainHandlers{ts: ts, supportGoodwillUSD: supportGoodwillUSD},
		tracer:   tracer,
	}
	g.nodes = map[nodeName]graphNode{
		nodeClassify:  g.classifyNode,
		nodeMarketing: g.domainNode(DomainMarketing),
		nodeSales:     g.domainNode(DomainSales),
		nodeSupport:   g.domainNode(DomainSupport),
		nodeKB:        g.domainNode(DomainKB),
	}
	return g
}

// Handle traverses the graph from classify to a terminal state.
func (g *GraphRouter) Handle(ctx context.Context, userID, message string) (RouteOutcome, error) {
	ctx, span := g.tracer.StartSpan(ctx, "planner_graph", map[string]string{
		"user_id": userID,
		"message": message,
	})
	defer span.End()

	st := &graphState{userID: userID, message: message}
	current := nodeClassify
	for current != nodeEnd {
		node, ok := g.nodes[current]
		if !ok {
			return RouteOutcome{}, fmt.Errorf("routing graph: no node %q", current)
		}
		current = node(ctx, st)
	}
	return RouteOutcome{Reply: st.reply, OutcomeTags: st.tags, TraceID: span.TraceID()}, nil
}

func (g *GraphRouter) classifyNode(ctx context.Context, st *graphState) nodeName {
	st.intent = Classify(st.message)
	switch st.intent {
	case DomainMarketing:
		return nodeMarketing
	case DomainSales:
		return nodeSales
	case DomainSupport:
		return nodeSupport
	default:
		return nodeKB
	}
}

// domainNode builds a terminal node that delegates to the shared handler
// for one domain.
func (g *GraphRouter) domainNode(domain Domain) graphNode {
	return func(ctx context.Context, st *graphState) nodeName {
		st.reply, st.tags = g.handlers.handle(ctx, domain, st.userID, st.message)
		return nodeEnd
	}
}
