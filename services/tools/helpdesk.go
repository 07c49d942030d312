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
	"fmt"
	"hash/fnv"
	"log/slog"
)

// Helpdesk issues goodwill credits and opens support cases.
//
// Description:
//
//	Goodwill credits are clamped to the configured policy maximum; the
//	clamp is silent and never an error. Case identifiers are a stable hash
//	of user + summary, matching the demo convention "C" + 5 digits.
//
// Thread Safety: Helpdesk is immutable after construction; safe for
// concurrent use.
type Helpdesk struct {
	goodwillMax float64
}

// NewHelpdesk creates a Helpdesk with the given goodwill cap in USD.
func NewHelpdesk(goodwillMax float64) *Helpdesk {
	return &Helpdesk{goodwillMax: goodwillMax}
}

// IssueGoodwill issues a goodwill credit, clamped to the policy maximum.
func (h *Helpdesk) IssueGoodwill(ctx context.Context, userID string, amount float64) (Credit, error) {
	_ = ctx

	amt := amount
	if amt > h.goodwillMax {
		slog.Info("goodwill amount clamped to policy cap",
			slog.String("user_id", userID),
			slog.Float64("requested", amount),
			slog.Float64("cap", h.goodwillMax),
		)
		amt = h.goodwillMax
	}
	return Credit{Amount: amt, Currency: "USD"}, nil
}

// CreateCase opens a support case with a summary and structured details.
func (h *Helpdesk) CreateCase(ctx context.Context, userID, summary string, details any) (Case, error) {
	_ = ctx

	hash := fnv.New32a()
	hash.Write([]byte(userID + summary))
	c := Case{
		ID:      fmt.Sprintf("C%05d", hash.Sum32()%100000),
		Summary: summary,
		Details: details,
	}
	slog.Debug("helpdesk case created",
		slog.String("case_id", c.ID),
		slog.String("user_id", userID),
	)
	return c, nil
}
