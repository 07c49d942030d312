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
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all concierge routes with the router.
//
// Description:
//
//	Registers the /v1/concierge/* endpoints with the given Gin router
//	group. The agent endpoint appears only when the service was built
//	with a language-model client, so a deployment without credentials
//	serves 404 there rather than a runtime failure.
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	handlers - The handlers instance
//	chatLimiter - Rate-limit middleware for the chat endpoints. Can be nil.
//
// Endpoints:
//
//	POST /v1/concierge/chat - Route a message deterministically
//	POST /v1/concierge/agent/chat - Route a message via the tool loop
//	GET  /v1/concierge/health - Liveness check
//	GET  /v1/concierge/ready - Readiness check
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers, chatLimiter gin.HandlerFunc) {
	concierge := rg.Group("/concierge")
	{
		chat := concierge.Group("")
		if chatLimiter != nil {
			chat.Use(chatLimiter)
		}
		chat.POST("/chat", handlers.HandleChat)
		if handlers.svc.AgentEnabled() {
			chat.POST("/agent/chat", handlers.HandleAgentChat)
		}

		// Health checks
		concierge.GET("/health", handlers.HandleHealth)
		concierge.GET("/ready", handlers.HandleReady)
	}
}
