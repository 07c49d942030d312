// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package llm provides a provider-agnostic chat client for the NestWell
// concierge. The only backend shipped today is the OpenAI Chat Completions
// API over raw net/http; the Client interface keeps the concierge loop
// independent of the wire format so additional providers can be added
// without touching callers.
//
// Thread Safety:
//
//	All implementations of Client must be safe for concurrent use.
package llm

import "context"

// Client is the language-model contract consumed by the concierge tool loop.
//
// Description:
//
//	Chat sends a plain conversation and returns the assistant's text.
//	ChatWithTools additionally advertises tool definitions and returns any
//	tool calls the model proposed. Both methods accept a growing shared
//	conversation so the loop can issue two successive calls: one to decide
//	actions, one to synthesize the user-facing answer.
//
// Thread Safety: Implementations must be safe for concurrent use.
type Client interface {
	// Chat sends messages and returns the assistant's response text.
	Chat(ctx context.Context, messages []ChatMessage, params GenerationParams) (string, error)

	// ChatWithTools sends messages plus tool definitions and returns the
	// model's text content and/or proposed tool calls.
	ChatWithTools(ctx context.Context, messages []ChatMessage,
		params GenerationParams, tools []ToolDef) (*ChatWithToolsResult, error)
}

// GenerationParams holds optional generation parameters.
//
// Description:
//
//	Nil pointer fields are omitted from the request so the provider's
//	defaults apply. The concierge pins Temperature low (0.2) for
//	determinism-leaning behavior.
type GenerationParams struct {
	// Temperature controls randomness. Nil omits the field.
	Temperature *float32

	// MaxTokens limits the response length. Nil omits the field.
	MaxTokens *int

	// ModelOverride selects a model for this request only. Empty uses the
	// client's configured model.
	ModelOverride string
}

// Float32Ptr returns a pointer to v. Convenience for GenerationParams.
func Float32Ptr(v float32) *float32 { return &v }
