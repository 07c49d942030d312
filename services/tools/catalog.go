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
	_ "embed"
	"fmt"
	"hash/fnv"
	"strings"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Embedded Catalog Seed
// =============================================================================

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// bundleTags is the ordered list of product categories considered for a
// bundle recommendation. At most three categories make it into a bundle.
var bundleTags = []string{"chair", "desk", "sofa", "pillow", "lamp"}

// bundleQtyDiscount applies when a quote reaches ten units.
const bundleQtyDiscount = 0.9

// catalogItem is one product in the catalog seed file.
type catalogItem struct {
	SKU   string   `yaml:"sku"`
	Name  string   `yaml:"name"`
	Price float64  `yaml:"price"`
	Tags  []string `yaml:"tags"`
}

type catalogFile struct {
	Items []catalogItem `yaml:"items"`
}

// Catalog recommends bundles and prices quotes over a fixed product list.
//
// Description:
//
//	The product list is loaded once at construction from the embedded YAML
//	seed. Selection is deterministic: bundle slots are filled with the
//	first catalog item carrying each bundle tag, and quote items are picked
//	by a stable hash of the request text. No randomness, so identical
//	inputs always produce identical output.
//
// Thread Safety: Catalog is immutable after construction; safe for
// concurrent use.
type Catalog struct {
	items []catalogItem
}

// NewCatalog loads the embedded catalog seed.
func NewCatalog() (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(defaultCatalogYAML, &f); err != nil {
		return nil, fmt.Errorf("catalog: parsing embedded seed: %w", err)
	}
	if len(f.Items) == 0 {
		return nil, fmt.Errorf("catalog: embedded seed has no items")
	}
	return &Catalog{items: f.Items}, nil
}

// RecommendBundle returns up to three products matching the user's need.
//
// Description:
//
//	Walks the fixed bundle tag order and picks the first catalog item
//	carrying each tag. The need text is currently advisory only; the
//	catalog is small enough that tag coverage matters more than matching
//	free-form text.
func (c *Catalog) RecommendBundle(need string) []BundleItem {
	_ = need

	var items []BundleItem
	for _, tag := range bundleTags {
		for _, p := range c.items {
			if hasTag(p, tag) {
				items = append(items, BundleItem{SKU: p.SKU, Name: p.Name, Price: p.Price})
				break
			}
		}
		if len(items) == 3 {
			break
		}
	}
	return items
}

// PriceQuote builds a quote from a free-form request.
//
// Description:
//
//	Quantity is 10 when the request mentions "10", otherwise 5. The quoted
//	product is chosen by a stable hash of the request text so repeated
//	identical requests quote the same SKU. Quantities of ten or more get
//	the volume discount.
func (c *Catalog) PriceQuote(request string) Quote {
	qty := 5
	if strings.Contains(request, "10") {
		qty = 10
	}

	pick := c.items[stableIndex(request, len(c.items))]
	unit := pick.Price
	total := unit * float64(qty)
	if qty >= 10 {
		total *= bundleQtyDiscount
	}

	return Quote{
		Items:   []QuoteLine{{SKU: pick.SKU, Qty: qty, Unit: unit}},
		Total:   total,
		Summary: fmt.Sprintf("%dx %s @ $%.0f → total $%.2f", qty, pick.Name, unit, total),
	}
}

func hasTag(p catalogItem, tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// stableIndex maps text to an index in [0, n) using FNV-1a.
func stableIndex(text string, n int) int {
	h := fnv.New32a()
	h.Write([]byte(text))
	return int(h.Sum32() % uint32(n))
}
