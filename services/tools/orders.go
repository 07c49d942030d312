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
	"strings"
)

// Orders looks up order status from a free-form query.
//
// Description:
//
//	Deterministic stand-in for an order-management backend. An order is
//	considered delayed when the query itself says so ("delayed" or "late").
//	The order identifier is a stable hash of the query, "NW" + 5 digits,
//	so repeated lookups of the same message agree.
//
// Thread Safety: Orders is stateless and safe for concurrent use.
type Orders struct{}

// NewOrders creates an Orders collaborator.
func NewOrders() *Orders { return &Orders{} }

// Lookup resolves a query to an order status.
func (o *Orders) Lookup(ctx context.Context, query string) (OrderStatus, error) {
	_ = ctx

	q := strings.ToLower(query)
	delayed := strings.Contains(q, "delayed") || strings.Contains(q, "late")

	h := fnv.New32a()
	h.Write([]byte(query))

	eta := 2
	if delayed {
		eta = 5
	}
	return OrderStatus{
		OrderID: fmt.Sprintf("NW%05d", 10000+h.Sum32()%90000),
		Delayed: delayed,
		ETADays: eta,
	}, nil
}
