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

import "strings"

// Keyword predicates, checked in order. First match wins; kb is the
// fallthrough for everything unmatched. Both routing strategies call
// Classify so the decision table lives in exactly one place.
var (
	marketingKeywords = []string{"lounge", "recommend", "bundle"}
	salesKeywords     = []string{"price", "quote", "units"}
	supportKeywords   = []string{"order", "delayed", "cancel", "return"}
)

// Classify maps a free-form message to its business domain using
// case-insensitive substring tests.
//
// Thread Safety: This function is safe for concurrent use.
func Classify(message string) Domain {
	m := strings.ToLower(message)
	switch {
	case containsAny(m, marketingKeywords):
		return DomainMarketing
	case containsAny(m, salesKeywords):
		return DomainSales
	case containsAny(m, supportKeywords):
		return DomainSupport
	default:
		return DomainKB
	}
}

func containsAny(m string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(m, k) {
			return true
		}
	}
	return false
}
