// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tools contains the NestWell business-tool collaborators: catalog
// pricing and bundling, CRM lead/opportunity creation, helpdesk case and
// goodwill credit issuance, order lookup, calendar booking, and
// knowledge-base retrieval.
//
// Every collaborator here is a deterministic in-memory implementation with
// the result shapes the concierge core consumes. Swapping one for a real
// backend only requires honoring the same method set.
package tools

// BundleItem is one product in a recommended bundle.
type BundleItem struct {
	SKU   string  `json:"sku"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// QuoteLine is one line item of a price quote.
type QuoteLine struct {
	SKU  string  `json:"sku"`
	Qty  int     `json:"qty"`
	Unit float64 `json:"unit"`
}

// Quote is the result of a catalog price quote.
type Quote struct {
	Items   []QuoteLine `json:"items"`
	Total   float64     `json:"total"`
	Summary string      `json:"summary"`
}

// Opportunity is a CRM opportunity created from a quote.
type Opportunity struct {
	ID     string  `json:"id"`
	Amount float64 `json:"amount"`
}

// Credit is a goodwill credit issued by the helpdesk.
//
// Amount is always clamped to the configured policy maximum; issuing more
// than the cap silently clamps, it never rejects.
type Credit struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Case is a helpdesk case.
type Case struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
	Details any    `json:"details"`
}

// OrderStatus is the result of an order lookup.
type OrderStatus struct {
	OrderID string `json:"order_id"`
	Delayed bool   `json:"delayed"`
	ETADays int    `json:"eta_days"`
}

// Meeting is a booked calendar slot.
type Meeting struct {
	When string `json:"when"`
	Link string `json:"link"`
}
