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
	"math"
	"strings"
	"unicode"
)

// =============================================================================
// BM25 Index
// =============================================================================

// BM25 tuning constants. Standard values recommended by Robertson et al.
const (
	// bm25K1 controls term frequency saturation. Higher = slower saturation.
	// Range [1.2, 2.0] is typical. 1.5 is a robust middle ground.
	bm25K1 = 1.5

	// bm25B controls document length normalization.
	// 0 = no normalization, 1 = full normalization. 0.75 is the standard default.
	bm25B = 0.75
)

// bm25Doc holds the tokenized representation of one corpus document.
type bm25Doc struct {
	// tf maps each term to its frequency within this document.
	tf map[string]int

	// len is the total number of terms in this document.
	len int
}

// bm25Index is a pre-built inverted index over a small document corpus.
//
// Description:
//
//	Implements Okapi BM25 ranking. At query time it produces a score per
//	document proportional to how well the document matches the query
//	terms, weighted by term rarity across the corpus (IDF, Lucene-style
//	add-one smoothing). For the knowledge base's handful of seed
//	documents this beats plain substring matching without needing an
//	embedding model or a network vector store.
//
// Thread Safety: bm25Index is immutable after construction via
// buildBM25Index. Safe for concurrent use.
type bm25Index struct {
	docs   []bm25Doc
	idf    map[string]float64
	avgLen float64
}

// buildBM25Index constructs an index from raw document texts.
func buildBM25Index(texts []string) *bm25Index {
	if len(texts) == 0 {
		return &bm25Index{idf: make(map[string]float64)}
	}

	docs := make([]bm25Doc, 0, len(texts))
	totalLen := 0

	// df[term] = number of documents containing term.
	df := make(map[string]int)

	for _, text := range texts {
		doc := buildDoc(text)
		docs = append(docs, doc)
		totalLen += doc.len
		for term := range doc.tf {
			df[term]++
		}
	}

	n := len(docs)

	// IDF formula: log((N + 1) / (df + 1)) + 1. The +1 in numerator and
	// denominator is Lucene-style smoothing; the trailing +1 keeps IDF >= 1.
	idf := make(map[string]float64, len(df))
	for term, docFreq := range df {
		idf[term] = math.Log(float64(n+1)/float64(docFreq+1)) + 1.0
	}

	return &bm25Index{
		docs:   docs,
		idf:    idf,
		avgLen: float64(totalLen) / float64(n),
	}
}

// Best returns the index of the highest-scoring document for the query.
//
// Description:
//
//	Ties and all-zero scores resolve to the lowest document index, so a
//	query with no overlapping terms still yields a deterministic answer.
//
// Thread Safety: Safe for concurrent use. Does not modify the index.
func (idx *bm25Index) Best(query string) int {
	best, bestScore := 0, -1.0
	for i := range idx.docs {
		if s := idx.score(i, query); s > bestScore {
			best, bestScore = i, s
		}
	}
	return best
}

// score computes the BM25 score of one document against the query:
//
//	Σ_t idf(t) × tf(t)×(k1+1) / (tf(t) + k1×(1 - b + b×dl/avgdl))
func (idx *bm25Index) score(docIdx int, query string) float64 {
	doc := idx.docs[docIdx]
	norm := bm25K1 * (1 - bm25B + bm25B*float64(doc.len)/idx.avgLen)

	score := 0.0
	for _, term := range tokenize(query) {
		tf := doc.tf[term]
		if tf == 0 {
			continue
		}
		score += idx.idf[term] * float64(tf) * (bm25K1 + 1) / (float64(tf) + norm)
	}
	return score
}

func buildDoc(text string) bm25Doc {
	terms := tokenize(text)
	tf := make(map[string]int, len(terms))
	for _, term := range terms {
		tf[term]++
	}
	return bm25Doc{tf: tf, len: len(terms)}
}

// tokenize lowercases and splits on any non-letter/non-digit rune.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
