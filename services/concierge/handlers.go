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
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ErrorResponse is the uniform error body for all concierge endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ChatRequest is the body for POST /v1/concierge/chat and
// POST /v1/concierge/agent/chat.
type ChatRequest struct {
	// UserID identifies the end user the message belongs to.
	UserID string `json:"user_id" binding:"required"`

	// Message is the user's free-form text.
	Message string `json:"message" binding:"required"`

	// Channel is the originating surface (web, email, chat). Recorded
	// on the session span; defaults to "web".
	Channel string `json:"channel"`

	// Traits are optional per-user traits bound into tool calls on the
	// agent path. Ignored by the deterministic router.
	Traits map[string]string `json:"traits"`
}

// ChatResponse is the terminal artifact returned to the caller.
type ChatResponse struct {
	Reply       string         `json:"reply"`
	OutcomeTags []string       `json:"outcome_tags"`
	TraceID     string         `json:"trace_id"`
	CallLog     []CallLogEntry `json:"call_log,omitempty"`
}

// Handlers exposes the concierge service over gin.
//
// Thread Safety: Safe for concurrent use.
type Handlers struct {
	svc *Service
}

// NewHandlers builds the HTTP handler set.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

// getOrCreateRequestID returns the inbound X-Request-ID or mints one.
func getOrCreateRequestID(c *gin.Context) string {
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	return uuid.NewString()
}

// HandleChat handles POST /v1/concierge/chat.
//
// Description:
//
//	Routes one message through the configured deterministic strategy.
//	A "chat_session" root span is opened here so the router's span and
//	every tool span underneath share one trace; the returned trace_id
//	is the caller's correlation handle.
//
// Response:
//
//	200 OK: ChatResponse
//	400 Bad Request: Missing user_id or message
//	500 Internal Server Error: Routing failure
//
// Thread Safety: This method is safe for concurrent use.
func (h *Handlers) HandleChat(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleChat")

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "user_id and message are required",
			Code:  "INVALID_REQUEST",
		})
		return
	}
	if req.Channel == "" {
		req.Channel = "web"
	}

	ctx, span := h.svc.tracer.StartSpan(c.Request.Context(), "chat_session", map[string]string{
		"channel": req.Channel,
		"user_id": req.UserID,
	})
	defer span.End()

	outcome, err := h.svc.HandleMessage(ctx, req.UserID, req.Message)
	if err != nil {
		logger.Error("routing failed", "user_id", req.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "message handling failed",
			Code:  "ROUTING_FAILED",
		})
		return
	}

	logger.Info("message routed",
		"user_id", req.UserID,
		"channel", req.Channel,
		"tags", outcome.OutcomeTags,
		"trace_id", outcome.TraceID,
	)
	c.JSON(http.StatusOK, ChatResponse{
		Reply:       outcome.Reply,
		OutcomeTags: outcome.OutcomeTags,
		TraceID:     outcome.TraceID,
	})
}

// HandleAgentChat handles POST /v1/concierge/agent/chat.
//
// Description:
//
//	Routes one message through the model-driven tool loop instead of
//	the deterministic strategy. Registered only when a language-model
//	client was configured, so reaching this handler implies the loop
//	exists. Tool failures are reflected in the call log, not in the
//	HTTP status; only a model transport failure is a 502.
//
// Response:
//
//	200 OK: ChatResponse with call_log
//	400 Bad Request: Missing user_id or message
//	502 Bad Gateway: Language-model service failure
//
// Thread Safety: This method is safe for concurrent use.
func (h *Handlers) HandleAgentChat(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleAgentChat")

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "user_id and message are required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	outcome, callLog, err := h.svc.AgentMessage(c.Request.Context(), req.UserID, req.Message, Traits(req.Traits))
	if err != nil {
		var lmErr *LanguageModelError
		if errors.As(err, &lmErr) {
			logger.Error("language model failure", "user_id", req.UserID, "error", err)
			c.JSON(http.StatusBadGateway, ErrorResponse{
				Error: "language model unavailable",
				Code:  "LLM_FAILED",
			})
			return
		}
		logger.Error("agent handling failed", "user_id", req.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "message handling failed",
			Code:  "AGENT_FAILED",
		})
		return
	}

	logger.Info("agent message handled",
		"user_id", req.UserID,
		"tool_calls", len(callLog),
		"tags", outcome.OutcomeTags,
	)
	c.JSON(http.StatusOK, ChatResponse{
		Reply:       outcome.Reply,
		OutcomeTags: outcome.OutcomeTags,
		TraceID:     outcome.TraceID,
		CallLog:     callLog,
	})
}

// HandleHealth handles GET /v1/concierge/health. Liveness only; always ok.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleReady handles GET /v1/concierge/ready.
//
// Description:
//
//	Ready means the router exists and every collaborator the routing
//	table can reach is wired. The agent loop is optional and does not
//	gate readiness.
func (h *Handlers) HandleReady(c *gin.Context) {
	ts := h.svc.ts
	if h.svc.router == nil || ts.Catalog == nil || ts.CRM == nil || ts.Helpdesk == nil ||
		ts.Orders == nil || ts.Calendar == nil || ts.KB == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "collaborators not wired",
			Code:  "NOT_READY",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        "ready",
		"strategy":      h.svc.strategy,
		"agent_enabled": h.svc.AgentEnabled(),
	})
}
