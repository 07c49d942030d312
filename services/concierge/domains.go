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
	"log/slog"
	"strconv"
	"strings"
)

// domainHandlers holds the shared per-domain handling logic used by both
// routing strategies.
//
// Description:
//
//	Each handler performs the domain's side effects against the bound
//	collaborators and returns (reply, tags). Keeping the handlers in one
//	place is what makes the byte-identical-output guarantee between the
//	Orchestrator and GraphRouter cheap to uphold: the strategies only
//	differ in how they reach a handler, never in what the handler does.
//
//	Interaction logging is best effort. A failed append is logged and
//	swallowed; the user still gets their reply.
//
// Thread Safety: Safe for concurrent use as long as the Toolset
// collaborators are.
type domainHandlers struct {
	ts Toolset

	// supportGoodwillUSD is the credit the support flow requests for a
	// delayed order. The helpdesk may clamp it further.
	supportGoodwillUSD float64
}

func (h *domainHandlers) handle(ctx context.Context, domain Domain, userID, message string) (string, []string) {
	switch domain {
	case DomainMarketing:
		return h.marketing(ctx, userID, message)
	case DomainSales:
		return h.sales(ctx, userID, message)
	case DomainSupport:
		return h.support(ctx, userID, message)
	default:
		return h.knowledgeBase(ctx, userID, message)
	}
}

func (h *domainHandlers) marketing(ctx context.Context, userID, message string) (string, []string) {
	items := h.ts.Catalog.RecommendBundle(strings.ToLower(message))
	leadID, err := h.ts.CRM.CreateLead(ctx, userID, map[string]any{"message": message, "bundle": items})
	if err != nil {
		slog.Error("lead creation failed", "user_id", userID, "error", err)
		leadID = "N/A"
	}
	h.logInteraction(ctx, userID, map[string]any{
		"intent":  "marketing_consult",
		"bundle":  items,
		"lead_id": leadID,
	})

	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	reply := fmt.Sprintf("Bundle rec: %s. Created Lead %s. Schedule a call?", strings.Join(names, ", "), leadID)
	return reply, []string{"high_intent_engagement", "lead_created"}
}

func (h *domainHandlers) sales(ctx context.Context, userID, message string) (string, []string) {
	quote := h.ts.Catalog.PriceQuote(message)
	if _, err := h.ts.CRM.CreateOpportunity(ctx, userID, quote); err != nil {
		slog.Error("opportunity creation failed", "user_id", userID, "error", err)
	}
	meeting, err := h.ts.Calendar.BookMeeting(ctx, userID, 30)
	if err != nil {
		slog.Error("meeting booking failed", "user_id", userID, "error", err)
	}
	h.logInteraction(ctx, userID, map[string]any{
		"intent":  "sales_assist",
		"quote":   quote,
		"meeting": meeting,
	})

	reply := fmt.Sprintf("Quote ready: %s. Booked 30 min: %s (%s).", quote.Summary, meeting.When, meeting.Link)
	return reply, []string{"opportunity_created", "meeting_booked"}
}

func (h *domainHandlers) support(ctx context.Context, userID, message string) (string, []string) {
	status, err := h.ts.Orders.Lookup(ctx, message)
	if err != nil {
		slog.Error("order lookup failed", "user_id", userID, "error", err)
		return "Order N/A on track. Anything else?", nil
	}
	if !status.Delayed {
		// On-track orders get no side effects and no tags, so a bare
		// status check never inflates engagement metrics.
		return fmt.Sprintf("Order %s on track. Anything else?", status.OrderID), nil
	}

	credit, err := h.ts.Helpdesk.IssueGoodwill(ctx, userID, h.supportGoodwillUSD)
	if err != nil {
		slog.Error("goodwill issuance failed", "user_id", userID, "error", err)
	}
	kase, err := h.ts.Helpdesk.CreateCase(ctx, userID, fmt.Sprintf("Delay on %s", status.OrderID), status)
	if err != nil {
		slog.Error("case creation failed", "user_id", userID, "error", err)
	}
	h.logInteraction(ctx, userID, map[string]any{
		"intent": "cs_resolution",
		"order":  status,
		"credit": credit,
		"case":   kase,
	})

	amount := strconv.FormatFloat(credit.Amount, 'f', -1, 64)
	reply := fmt.Sprintf("Order %s delayed; expedited + $%s credit. Case %s opened.", status.OrderID, amount, kase.ID)
	return reply, []string{"resolved_autonomously", "goodwill_credit", "case_with_context"}
}

func (h *domainHandlers) knowledgeBase(ctx context.Context, userID, message string) (string, []string) {
	answer := h.ts.KB.Answer(message)
	h.logInteraction(ctx, userID, map[string]any{
		"intent": "kb_answer",
		"q":      message,
		"a":      answer,
	})
	return answer, []string{"kb_response"}
}

func (h *domainHandlers) logInteraction(ctx context.Context, userID string, event map[string]any) {
	if h.ts.Memory == nil {
		return
	}
	if err := h.ts.Memory.AddInteraction(ctx, userID, event); err != nil {
		slog.Error("interaction append failed", "user_id", userID, "error", err)
	}
}
