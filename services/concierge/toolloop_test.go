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
	"testing"

	"github.com/AleutianAI/nestwell/services/llm"
	"github.com/AleutianAI/nestwell/services/observability"
	"github.com/stretchr/testify/require"
)

func newTestLoop(client llm.Client) *ToolLoop {
	return NewToolLoop(client, observability.NewNoopTracer(), 0.2)
}

// A plain-text first response is returned verbatim with no call log and
// no second round-trip.
func TestToolLoop_NoToolCalls(t *testing.T) {
	client := &fakeLLM{
		toolResult: &llm.ChatWithToolsResult{Content: "Happy to help!", StopReason: "end"},
	}
	loop := newTestLoop(client)

	reply, callLog, err := loop.Run(context.Background(), DomainKB, "hello", testRegistry(&memStore{}), "")
	require.NoError(t, err)
	require.Equal(t, "Happy to help!", reply)
	require.Empty(t, callLog)
	require.Nil(t, client.gotChatMsgs, "synthesis round-trip should not happen")
}

func TestToolLoop_ExecutesCallsInModelOrder(t *testing.T) {
	client := &fakeLLM{
		toolResult: &llm.ChatWithToolsResult{
			StopReason: "tool_use",
			ToolCalls: []llm.ToolCallResponse{
				{ID: "call_1", Name: "recommend_bundle", Arguments: json.RawMessage(`{"need":"lounge"}`)},
				{ID: "call_2", Name: "create_lead", Arguments: json.RawMessage(`{"note":"lounge buyer"}`)},
			},
		},
		chatReply: "Picked a bundle and opened a lead.",
	}
	loop := newTestLoop(client)

	reply, callLog, err := loop.Run(context.Background(), DomainMarketing, "furnish a lounge", testRegistry(&memStore{}), "")
	require.NoError(t, err)
	require.Equal(t, "Picked a bundle and opened a lead.", reply)

	require.Len(t, callLog, 2)
	require.Equal(t, "recommend_bundle", callLog[0].Tool)
	require.Empty(t, callLog[0].Err)
	require.Equal(t, "create_lead", callLog[1].Tool)
	require.Equal(t, "L0000001", callLog[1].Result)

	// The synthesis conversation carries, per call, an assistant echo
	// followed by the tool result keyed to the call id.
	msgs := client.gotChatMsgs
	require.Len(t, msgs, 6)
	require.Equal(t, "system", msgs[0].Role)
	require.Equal(t, "user", msgs[1].Role)
	require.Equal(t, "assistant", msgs[2].Role)
	require.Equal(t, "call_1", msgs[2].ToolCalls[0].ID)
	require.Equal(t, "tool", msgs[3].Role)
	require.Equal(t, "call_1", msgs[3].ToolCallID)
	require.Equal(t, "assistant", msgs[4].Role)
	require.Equal(t, "tool", msgs[5].Role)
	require.Equal(t, "call_2", msgs[5].ToolCallID)
}

// An unregistered tool name is recorded and skipped; the loop still
// completes and later calls still execute.
func TestToolLoop_UnknownToolIsRecoverable(t *testing.T) {
	client := &fakeLLM{
		toolResult: &llm.ChatWithToolsResult{
			StopReason: "tool_use",
			ToolCalls: []llm.ToolCallResponse{
				{ID: "call_1", Name: "send_invoice", Arguments: json.RawMessage(`{}`)},
				{ID: "call_2", Name: "kb_answer", Arguments: json.RawMessage(`{"question":"returns?"}`)},
			},
		},
		chatReply: "Here is what I found.",
	}
	loop := newTestLoop(client)

	_, callLog, err := loop.Run(context.Background(), DomainKB, "invoice me", testRegistry(&memStore{}), "")
	require.NoError(t, err)

	require.Len(t, callLog, 2)
	require.Equal(t, "send_invoice", callLog[0].Tool)
	require.Equal(t, "unknown_tool", callLog[0].Err)
	require.Nil(t, callLog[0].Result)
	require.Empty(t, callLog[1].Err)

	// The model sees the error marker, not a fabricated result.
	require.Contains(t, client.gotChatMsgs[3].Content, "unknown_tool")
}

// A failing tool is recorded with its error text, which is fed back to
// the model for the synthesis round.
func TestToolLoop_ToolFailureFedBack(t *testing.T) {
	client := &fakeLLM{
		toolResult: &llm.ChatWithToolsResult{
			StopReason: "tool_use",
			ToolCalls: []llm.ToolCallResponse{
				{ID: "call_1", Name: "issue_goodwill", Arguments: json.RawMessage(`{"amount":"lots"}`)},
			},
		},
		chatReply: "Sorry, I could not issue the credit.",
	}
	loop := newTestLoop(client)

	reply, callLog, err := loop.Run(context.Background(), DomainSupport, "credit me", testRegistry(&memStore{}), "")
	require.NoError(t, err)
	require.Equal(t, "Sorry, I could not issue the credit.", reply)

	require.Len(t, callLog, 1)
	require.Contains(t, callLog[0].Err, "issue_goodwill")
	require.Contains(t, client.gotChatMsgs[3].Content, "issue_goodwill")
}

func TestToolLoop_ModelFailureIsFatal(t *testing.T) {
	loop := newTestLoop(&fakeLLM{toolErr: errScriptedLLM})

	_, _, err := loop.Run(context.Background(), DomainKB, "hello", testRegistry(&memStore{}), "")
	var lmErr *LanguageModelError
	require.ErrorAs(t, err, &lmErr)
	require.ErrorIs(t, err, errScriptedLLM)
}

func TestToolLoop_SynthesisFailureIsFatal(t *testing.T) {
	client := &fakeLLM{
		toolResult: &llm.ChatWithToolsResult{
			StopReason: "tool_use",
			ToolCalls: []llm.ToolCallResponse{
				{ID: "call_1", Name: "kb_answer", Arguments: json.RawMessage(`{"question":"hi"}`)},
			},
		},
		chatErr: errScriptedLLM,
	}
	loop := newTestLoop(client)

	_, _, err := loop.Run(context.Background(), DomainKB, "hello", testRegistry(&memStore{}), "")
	var lmErr *LanguageModelError
	require.ErrorAs(t, err, &lmErr)
}

// The domain scopes which descriptors the model is offered.
func TestToolLoop_OffersDomainScopedSchemas(t *testing.T) {
	client := &fakeLLM{toolResult: &llm.ChatWithToolsResult{Content: "ok", StopReason: "end"}}
	loop := newTestLoop(client)

	_, _, err := loop.Run(context.Background(), DomainSupport, "order help", testRegistry(&memStore{}), "")
	require.NoError(t, err)

	names := make([]string, len(client.gotTools))
	for i, def := range client.gotTools {
		names[i] = def.Function.Name
	}
	require.Equal(t, []string{"lookup_order", "issue_goodwill", "create_case", "kb_answer"}, names)
}

func TestTagsFromCallLog(t *testing.T) {
	callLog := []CallLogEntry{
		{Tool: "recommend_bundle", Result: "ok"},
		{Tool: "send_invoice", Err: "unknown_tool"},
		{Tool: "create_lead", Result: "L0000001"},
		{Tool: "create_lead", Result: "L0000002"},
		{Tool: "issue_goodwill", Err: "tool issue_goodwill: boom"},
	}
	require.Equal(t, []string{"high_intent_engagement", "lead_created"}, tagsFromCallLog(callLog))
}
