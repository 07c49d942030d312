// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tools

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// CRM creates leads and opportunities.
//
// Description:
//
//	In-memory stand-in for a CRM backend. Identifiers follow the demo
//	conventions: leads are "L" + 7 uppercase alphanumerics, opportunities
//	are "O" + 7 digits. IDs are derived from fresh UUIDs so concurrent
//	requests never collide.
//
// Thread Safety: CRM is stateless and safe for concurrent use.
type CRM struct{}

// NewCRM creates a CRM collaborator.
func NewCRM() *CRM { return &CRM{} }

// CreateLead records a marketing lead and returns its identifier.
func (c *CRM) CreateLead(ctx context.Context, userID string, leadContext map[string]any) (string, error) {
	_ = ctx

	id := "L" + leadSuffix()
	slog.Debug("CRM lead created",
		slog.String("lead_id", id),
		slog.String("user_id", userID),
		slog.Int("context_keys", len(leadContext)),
	)
	return id, nil
}

// CreateOpportunity records a sales opportunity for a quote.
func (c *CRM) CreateOpportunity(ctx context.Context, userID string, quote Quote) (Opportunity, error) {
	_ = ctx

	opp := Opportunity{
		ID:     "O" + digitSuffix(),
		Amount: quote.Total,
	}
	slog.Debug("CRM opportunity created",
		slog.String("opportunity_id", opp.ID),
		slog.String("user_id", userID),
		slog.Float64("amount", opp.Amount),
	)
	return opp, nil
}

// leadSuffix returns 7 uppercase alphanumeric characters from a fresh UUID.
func leadSuffix() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return raw[:7]
}

// digitSuffix returns 7 decimal digits derived from a fresh UUID.
func digitSuffix() string {
	u := uuid.New()
	var b strings.Builder
	for i := 0; b.Len() < 7 && i < len(u); i++ {
		b.WriteByte('0' + u[i]%10)
	}
	return b.String()
}
