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
	"encoding/json"
	"errors"
	"testing"

	"github.com/AleutianAI/nestwell/services/tools"
	"github.com/stretchr/testify/require"
)

func testRegistry(store *memStore) Registry {
	return BuildRegistry("u-1", Traits{"segment": "startup"}, testToolset(store))
}

// Every descriptor any domain can publish must resolve in the registry.
func TestBuildRegistry_CoversAllSchemas(t *testing.T) {
	registry := testRegistry(&memStore{})
	for _, domain := range []Domain{DomainMarketing, DomainSales, DomainSupport, DomainKB} {
		for _, def := range SchemasFor(domain) {
			_, ok := registry[def.Function.Name]
			require.True(t, ok, "schema %s has no registry entry", def.Function.Name)
		}
	}
}

func TestRegistry_Invoke(t *testing.T) {
	registry := testRegistry(&memStore{})
	ctx := context.Background()

	tests := []struct {
		name string
		tool string
		args string
		want any
	}{
		{
			name: "kb answer",
			tool: "kb_answer",
			args: `{"question":"return policy?"}`,
			want: "Returns accepted within 30 days. (source: policy.md)",
		},
		{
			name: "lead creation",
			tool: "create_lead",
			args: `{"note":"wants lounge setup"}`,
			want: "L0000001",
		},
		{
			name: "goodwill amount passes through",
			tool: "issue_goodwill",
			args: `{"amount":15}`,
			want: tools.Credit{Amount: 15, Currency: "USD"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := registry.Invoke(ctx, tt.tool, json.RawMessage(tt.args))
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry_UnknownTool(t *testing.T) {
	registry := testRegistry(&memStore{})
	_, err := registry.Invoke(context.Background(), "send_invoice", json.RawMessage(`{}`))
	require.ErrorIs(t, err, ErrUnknownTool)
}

// Arguments that do not match the declared shape fail closed before the
// collaborator is reached.
func TestRegistry_RejectsMalformedArguments(t *testing.T) {
	registry := testRegistry(&memStore{})
	ctx := context.Background()

	tests := []struct {
		name string
		tool string
		args string
	}{
		{name: "wrong type", tool: "issue_goodwill", args: `{"amount":"twenty"}`},
		{name: "unknown field", tool: "kb_answer", args: `{"question":"hi","verbose":true}`},
		{name: "not json", tool: "create_case", args: `summary=broken`},
		{name: "trailing data", tool: "kb_answer", args: `{"question":"hi"}{"question":"again"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := registry.Invoke(ctx, tt.tool, json.RawMessage(tt.args))
			var invErr *ToolInvocationError
			require.ErrorAs(t, err, &invErr)
			require.Equal(t, tt.tool, invErr.Tool)
		})
	}
}

// book_meeting declares no parameters; empty and absent argument payloads
// must both work.
func TestRegistry_BookMeetingAcceptsEmptyArgs(t *testing.T) {
	registry := testRegistry(&memStore{})

	for _, raw := range []string{"", "{}"} {
		got, err := registry.Invoke(context.Background(), "book_meeting", json.RawMessage(raw))
		require.NoError(t, err)
		meeting, ok := got.(tools.Meeting)
		require.True(t, ok)
		require.Equal(t, "2026-03-02 13:00 UTC", meeting.When)
	}
}

func TestRegistry_CollaboratorErrorWrapped(t *testing.T) {
	ts := testToolset(&memStore{})
	ts.CRM = &fakeCRM{leadErr: errors.New("crm offline")}
	registry := BuildRegistry("u-1", nil, ts)

	_, err := registry.Invoke(context.Background(), "create_lead", json.RawMessage(`{"note":"x"}`))
	var invErr *ToolInvocationError
	require.ErrorAs(t, err, &invErr)
	require.Equal(t, "create_lead", invErr.Tool)
	require.Contains(t, err.Error(), "crm offline")
}
