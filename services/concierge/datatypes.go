// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package concierge implements the NestWell agent routing and
// tool-execution engine: intent classification into business domains
// (marketing, sales, support, knowledge base), two interchangeable routing
// strategies over one contract, a domain-scoped tool registry, and the
// LLM tool-calling loop that lets a model chain registry calls and
// synthesize a final answer.
package concierge

import (
	"context"

	"github.com/AleutianAI/nestwell/services/tools"
)

// Domain is a fixed business category that determines which tools and
// prompts apply to a message.
type Domain string

// The four routable domains. DomainKB is both the explicit knowledge-base
// domain and the fallback for unmatched messages.
const (
	DomainMarketing Domain = "marketing"
	DomainSales     Domain = "sales"
	DomainSupport   Domain = "support"
	DomainKB        Domain = "kb"
)

// Traits is the per-user trait set bound into the tool registry. Tool
// collaborators receive it through closures, never through model-supplied
// arguments.
type Traits map[string]string

// RouteOutcome is the terminal artifact of handling one message.
type RouteOutcome struct {
	// Reply is the user-facing text.
	Reply string `json:"reply"`

	// OutcomeTags describe what the handling accomplished, in emission
	// order (e.g. lead_created, meeting_booked).
	OutcomeTags []string `json:"outcome_tags"`

	// TraceID correlates this outcome with out-of-band interaction logs.
	TraceID string `json:"trace_id"`
}

// Router is the single contract both routing strategies implement.
//
// Description:
//
//	Handle classifies the message, performs the domain's side effects,
//	and returns the outcome. The rule-based Orchestrator and the
//	GraphRouter MUST produce byte-identical replies and tag sets for the
//	same input and collaborator responses; they are two implementations
//	of one contract, not two products.
//
// Thread Safety: Implementations must be safe for concurrent use.
type Router interface {
	Handle(ctx context.Context, userID, message string) (RouteOutcome, error)
}

// CallLogEntry records one attempted tool invocation during a tool-calling
// round-trip, including failures.
type CallLogEntry struct {
	// Tool is the tool name the model asked for.
	Tool string `json:"tool"`

	// Result is the value the registry returned. Nil when Err is set.
	Result any `json:"result,omitempty"`

	// Err is the error marker or message. "unknown_tool" when the name
	// had no registry entry.
	Err string `json:"error,omitempty"`
}

// =============================================================================
// Collaborator Contracts
// =============================================================================
//
// The concierge owns only the interfaces; concrete implementations live in
// services/tools and services/memory. Result shapes are collaborator-owned.

// Catalog recommends bundles and prices quotes.
type Catalog interface {
	RecommendBundle(need string) []tools.BundleItem
	PriceQuote(request string) tools.Quote
}

// CRM creates leads and opportunities.
type CRM interface {
	CreateLead(ctx context.Context, userID string, leadContext map[string]any) (string, error)
	CreateOpportunity(ctx context.Context, userID string, quote tools.Quote) (tools.Opportunity, error)
}

// Helpdesk issues goodwill credits and opens cases.
type Helpdesk interface {
	IssueGoodwill(ctx context.Context, userID string, amount float64) (tools.Credit, error)
	CreateCase(ctx context.Context, userID, summary string, details any) (tools.Case, error)
}

// Orders looks up order status.
type Orders interface {
	Lookup(ctx context.Context, query string) (tools.OrderStatus, error)
}

// Calendar books meetings.
type Calendar interface {
	BookMeeting(ctx context.Context, userID string, durationMin int) (tools.Meeting, error)
}

// KB answers knowledge-base questions with a cited source.
type KB interface {
	Answer(question string) string
}

// InteractionStore is the append-only durable interaction log.
type InteractionStore interface {
	AddInteraction(ctx context.Context, userID string, event map[string]any) error
}

// Toolset bundles the concrete collaborators a router needs.
type Toolset struct {
	Catalog  Catalog
	CRM      CRM
	Helpdesk Helpdesk
	Orders   Orders
	Calendar Calendar
	KB       KB
	Memory   InteractionStore
}
