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
	"errors"
	"sync"

	"github.com/AleutianAI/nestwell/services/llm"
	"github.com/AleutianAI/nestwell/services/tools"
)

// Deterministic collaborator fakes. Router parity tests require identical
// collaborator responses across strategies, which rules out the real CRM
// and calendar (unique IDs, wall clock).

type fakeCatalog struct{}

func (fakeCatalog) RecommendBundle(need string) []tools.BundleItem {
	return []tools.BundleItem{
		{SKU: "NW-CH-001", Name: "Alder Task Chair", Price: 189},
		{SKU: "NW-DK-001", Name: "Aspen Oak Desk", Price: 249},
	}
}

func (fakeCatalog) PriceQuote(request string) tools.Quote {
	return tools.Quote{
		Items:   []tools.QuoteLine{{SKU: "NW-CH-001", Qty: 10, Unit: 170.1}},
		Total:   1701,
		Summary: "10x Alder Task Chair @ $189 → total $1701.00",
	}
}

type fakeCRM struct {
	leadErr error
}

func (f *fakeCRM) CreateLead(ctx context.Context, userID string, leadContext map[string]any) (string, error) {
	if f.leadErr != nil {
		return "", f.leadErr
	}
	return "L0000001", nil
}

func (f *fakeCRM) CreateOpportunity(ctx context.Context, userID string, quote tools.Quote) (tools.Opportunity, error) {
	return tools.Opportunity{ID: "O1234567", Amount: quote.Total}, nil
}

type fakeHelpdesk struct{}

func (fakeHelpdesk) IssueGoodwill(ctx context.Context, userID string, amount float64) (tools.Credit, error) {
	return tools.Credit{Amount: amount, Currency: "USD"}, nil
}

func (fakeHelpdesk) CreateCase(ctx context.Context, userID, summary string, details any) (tools.Case, error) {
	return tools.Case{ID: "C00042", Summary: summary, Details: details}, nil
}

type fakeOrders struct {
	err error
}

func (f *fakeOrders) Lookup(ctx context.Context, query string) (tools.OrderStatus, error) {
	if f.err != nil {
		return tools.OrderStatus{}, f.err
	}
	status := tools.OrderStatus{OrderID: "NW12345", ETADays: 2}
	if containsAny(query, []string{"delayed", "late"}) {
		status.Delayed = true
		status.ETADays = 5
	}
	return status, nil
}

type fakeCalendar struct{}

func (fakeCalendar) BookMeeting(ctx context.Context, userID string, durationMin int) (tools.Meeting, error) {
	return tools.Meeting{When: "2026-03-02 13:00 UTC", Link: "https://meet.example.com/nestwell-demo"}, nil
}

type fakeKB struct{}

func (fakeKB) Answer(question string) string {
	return "Returns accepted within 30 days. (source: policy.md)"
}

// memStore is an in-process InteractionStore that records appended events.
type memStore struct {
	mu     sync.Mutex
	events []map[string]any
	err    error
}

func (m *memStore) AddInteraction(ctx context.Context, userID string, event map[string]any) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := map[string]any{"user_id": userID}
	for k, v := range event {
		copied[k] = v
	}
	m.events = append(m.events, copied)
	return nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func testToolset(store *memStore) Toolset {
	return Toolset{
		Catalog:  fakeCatalog{},
		CRM:      &fakeCRM{},
		Helpdesk: fakeHelpdesk{},
		Orders:   &fakeOrders{},
		Calendar: fakeCalendar{},
		KB:       fakeKB{},
		Memory:   store,
	}
}

// fakeLLM scripts one tool round-trip and one synthesis round-trip, and
// captures what the loop sent.
type fakeLLM struct {
	toolResult *llm.ChatWithToolsResult
	toolErr    error
	chatReply  string
	chatErr    error

	gotTools    []llm.ToolDef
	gotChatMsgs []llm.ChatMessage
}

var errScriptedLLM = errors.New("scripted llm failure")

func (f *fakeLLM) Chat(ctx context.Context, messages []llm.ChatMessage, params llm.GenerationParams) (string, error) {
	f.gotChatMsgs = messages
	if f.chatErr != nil {
		return "", f.chatErr
	}
	return f.chatReply, nil
}

func (f *fakeLLM) ChatWithTools(ctx context.Context, messages []llm.ChatMessage, params llm.GenerationParams, defs []llm.ToolDef) (*llm.ChatWithToolsResult, error) {
	f.gotTools = defs
	if f.toolErr != nil {
		return nil, f.toolErr
	}
	return f.toolResult, nil
}
