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
	"log/slog"

	"github.com/AleutianAI/nestwell/services/llm"
	"github.com/AleutianAI/nestwell/services/observability"
)

// systemBase anchors every tool-calling conversation. Domain handlers may
// append an extra system line below it.
const systemBase = "You are a helpful assistant operating inside a specific business domain.\n" +
	"You can choose and call functions to achieve the user's goal. Prefer taking real actions over generic text.\n" +
	"Respond concisely. After calling tools, synthesize a human-friendly final answer."

// ToolLoop drives the model's tool-calling conversation for one message.
//
// Description:
//
//	One loop instance is shared across requests; per-request state lives
//	entirely in Run's locals. Temperature is fixed at construction and
//	applied to both round-trips.
//
// Thread Safety: Safe for concurrent use; the llm.Client contract
// requires the same.
type ToolLoop struct {
	client      llm.Client
	tracer      observability.Tracer
	temperature float32
}

// NewToolLoop wires a tool loop over a model client and tracer.
func NewToolLoop(client llm.Client, tracer observability.Tracer, temperature float32) *ToolLoop {
	return &ToolLoop{client: client, tracer: tracer, temperature: temperature}
}

// Run performs at most two model round-trips and returns the final reply
// plus the ordered tool call log.
//
// Description:
//
//	Round one offers the domain's tool descriptors and lets the model
//	decide. If it answers in plain text the reply is returned verbatim
//	with an empty call log. Otherwise every proposed call is executed in
//	the model's order; each result (or failure) is appended back into
//	the conversation and recorded in the call log, then a second
//	round-trip without tools synthesizes the user-facing answer.
//
//	Failure handling is deliberately uneven. An unknown tool name is a
//	model slip: it is recorded with the unknown_tool marker and skipped,
//	and the loop proceeds. A tool that fails is real signal: the failure
//	text is fed back so the synthesis step can acknowledge it. A model
//	transport failure is fatal and surfaces as *LanguageModelError with
//	no partial reply.
//
// Inputs:
//   - ctx: Request context; spans started here parent the tool spans.
//   - domain: Selects the tool descriptor set.
//   - userMessage: The user's raw message.
//   - registry: Executable tool bindings for this user.
//   - extraSystem: Optional domain guidance appended to the base prompt.
//
// Outputs:
//   - string: Final user-facing reply.
//   - []CallLogEntry: Ordered attempted invocations, including failures.
//   - error: *LanguageModelError on model failure, nil otherwise.
func (l *ToolLoop) Run(
	ctx context.Context,
	domain Domain,
	userMessage string,
	registry Registry,
	extraSystem string,
) (string, []CallLogEntry, error) {
	system := systemBase
	if extraSystem != "" {
		system += "\n" + extraSystem
	}
	messages := []llm.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: userMessage},
	}
	params := llm.GenerationParams{Temperature: llm.Float32Ptr(l.temperature)}

	ctx, span := l.tracer.StartSpan(ctx, "tool_loop", map[string]string{"domain": string(domain)})
	defer span.End()

	result, err := l.client.ChatWithTools(ctx, messages, params, SchemasFor(domain))
	if err != nil {
		return "", nil, &LanguageModelError{Err: err}
	}
	if len(result.ToolCalls) == 0 {
		return result.Content, nil, nil
	}

	callLog := make([]CallLogEntry, 0, len(result.ToolCalls))
	for _, tc := range result.ToolCalls {
		entry, toolMsgContent := l.invokeOne(ctx, registry, tc)
		callLog = append(callLog, entry)

		// Echo the model's call, then attach the outcome, so the
		// synthesis round sees the full exchange.
		messages = append(messages,
			llm.ChatMessage{Role: "assistant", ToolCalls: []llm.ToolCallResponse{tc}},
			llm.ChatMessage{Role: "tool", ToolCallID: tc.ID, Content: toolMsgContent},
		)
	}

	final, err := l.client.Chat(ctx, messages, params)
	if err != nil {
		return "", nil, &LanguageModelError{Err: err}
	}
	return final, callLog, nil
}

// invokeOne executes a single proposed call and renders its outcome both
// for the call log and for the tool message fed back to the model.
func (l *ToolLoop) invokeOne(
	ctx context.Context,
	registry Registry,
	tc llm.ToolCallResponse,
) (CallLogEntry, string) {
	ctx, span := l.tracer.StartSpan(ctx, "tool."+tc.Name, map[string]string{"tool": tc.Name})
	defer span.End()

	result, err := registry.Invoke(ctx, tc.Name, json.RawMessage(tc.ArgumentsString()))
	if err == ErrUnknownTool {
		slog.Warn("model proposed unregistered tool", "tool", tc.Name)
		toolInvocations.WithLabelValues(tc.Name, unknownToolMarker).Inc()
		return CallLogEntry{Tool: tc.Name, Err: unknownToolMarker},
			toolMessageJSON(map[string]string{"error": unknownToolMarker})
	}
	if err != nil {
		slog.Warn("tool invocation failed", "tool", tc.Name, "error", err)
		toolInvocations.WithLabelValues(tc.Name, "error").Inc()
		return CallLogEntry{Tool: tc.Name, Err: err.Error()},
			toolMessageJSON(map[string]string{"error": err.Error()})
	}
	toolInvocations.WithLabelValues(tc.Name, "success").Inc()
	return CallLogEntry{Tool: tc.Name, Result: result}, toolMessageJSON(result)
}

// toolMessageJSON renders a tool result for the conversation. Marshal
// failures degrade to an error payload instead of aborting the loop.
func toolMessageJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return `{"error":"unserializable tool result"}`
	}
	return string(raw)
}
