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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AleutianAI/nestwell/services/llm"
	"github.com/AleutianAI/nestwell/services/observability"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, client llm.Client, limiter gin.HandlerFunc) (*gin.Engine, *memStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := &memStore{}
	svc := NewService(ServiceConfig{
		Strategy:           StrategyRules,
		SupportGoodwillUSD: 20,
		Temperature:        0.2,
	}, testToolset(store), observability.NewNoopTracer(), client)

	router := gin.New()
	RegisterRoutes(router.Group("/v1"), NewHandlers(svc), limiter)
	return router, store
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestHandleChat_HappyPath(t *testing.T) {
	router, store := newTestServer(t, nil, nil)

	w := postJSON(router, "/v1/concierge/chat", `{"user_id":"u-1","message":"Help me furnish a lounge."}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "Bundle rec: Alder Task Chair, Aspen Oak Desk. Created Lead L0000001. Schedule a call?", resp.Reply)
	require.Equal(t, []string{"high_intent_engagement", "lead_created"}, resp.OutcomeTags)
	require.NotEmpty(t, resp.TraceID)
	require.Empty(t, resp.CallLog)
	require.Equal(t, 1, store.count())
}

func TestHandleChat_Validation(t *testing.T) {
	router, _ := newTestServer(t, nil, nil)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing user_id", body: `{"message":"hi"}`},
		{name: "missing message", body: `{"user_id":"u-1"}`},
		{name: "empty body", body: ``},
		{name: "not json", body: `user_id=u-1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(router, "/v1/concierge/chat", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.Equal(t, "INVALID_REQUEST", resp.Code)
		})
	}
}

func TestHandleChat_RateLimited(t *testing.T) {
	router, _ := newTestServer(t, nil, RateLimitMiddleware(1, 1))

	w := postJSON(router, "/v1/concierge/chat", `{"user_id":"u-1","message":"hi"}`)
	require.Equal(t, http.StatusOK, w.Code)

	// Burst of one: the immediate second request must be rejected.
	w = postJSON(router, "/v1/concierge/chat", `{"user_id":"u-1","message":"hi"}`)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestHandleAgentChat_NotRegisteredWithoutClient(t *testing.T) {
	router, _ := newTestServer(t, nil, nil)

	w := postJSON(router, "/v1/concierge/agent/chat", `{"user_id":"u-1","message":"hi"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleAgentChat_HappyPath(t *testing.T) {
	client := &fakeLLM{
		toolResult: &llm.ChatWithToolsResult{
			StopReason: "tool_use",
			ToolCalls: []llm.ToolCallResponse{
				{ID: "call_1", Name: "recommend_bundle", Arguments: json.RawMessage(`{"need":"lounge"}`)},
			},
		},
		chatReply: "I picked a lounge bundle for you.",
	}
	router, store := newTestServer(t, client, nil)

	w := postJSON(router, "/v1/concierge/agent/chat", `{"user_id":"u-1","message":"Help me furnish a lounge."}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "I picked a lounge bundle for you.", resp.Reply)
	require.Equal(t, []string{"high_intent_engagement"}, resp.OutcomeTags)
	require.Len(t, resp.CallLog, 1)
	require.Equal(t, 1, store.count())
}

func TestHandleAgentChat_ModelFailureIs502(t *testing.T) {
	router, _ := newTestServer(t, &fakeLLM{toolErr: errScriptedLLM}, nil)

	w := postJSON(router, "/v1/concierge/agent/chat", `{"user_id":"u-1","message":"hi"}`)
	require.Equal(t, http.StatusBadGateway, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "LLM_FAILED", resp.Code)
}

func TestHandleHealth_Idempotent(t *testing.T) {
	router, _ := newTestServer(t, nil, nil)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/concierge/health", nil)
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	}
}

func TestHandleReady(t *testing.T) {
	router, _ := newTestServer(t, nil, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/concierge/ready", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "ready", body["status"])
	require.Equal(t, "rules", body["strategy"])
	require.Equal(t, false, body["agent_enabled"])
}
