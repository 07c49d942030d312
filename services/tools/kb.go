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

	"gopkg.in/yaml.v3"
)

//go:embed kb.yaml
var defaultKBYAML []byte

// kbDoc is one knowledge-base document with its citable source.
type kbDoc struct {
	Text   string `yaml:"text"`
	Source string `yaml:"source"`
}

type kbFile struct {
	Docs []kbDoc `yaml:"docs"`
}

// KB answers questions from a small document corpus.
//
// Description:
//
//	Retrieval is BM25 over the embedded seed documents, with no embedding
//	model and no network vector store. The corpus is four policy documents;
//	IDF weighting over that corpus is enough to separate "return" from
//	"shipping" from "warranty" queries. Answers always cite the source
//	document.
//
// Thread Safety: KB is immutable after construction; safe for concurrent use.
type KB struct {
	docs  []kbDoc
	index *bm25Index
}

// NewKB loads the embedded knowledge-base seed and builds the BM25 index.
func NewKB() (*KB, error) {
	var f kbFile
	if err := yaml.Unmarshal(defaultKBYAML, &f); err != nil {
		return nil, fmt.Errorf("kb: parsing embedded seed: %w", err)
	}
	if len(f.Docs) == 0 {
		return nil, fmt.Errorf("kb: embedded seed has no documents")
	}

	texts := make([]string, len(f.Docs))
	for i, d := range f.Docs {
		texts[i] = d.Text
	}

	return &KB{docs: f.Docs, index: buildBM25Index(texts)}, nil
}

// Answer returns the best-matching document text with a cited source.
func (k *KB) Answer(question string) string {
	doc := k.docs[k.index.Best(question)]
	return fmt.Sprintf("%s (source: %s)", doc.Text, doc.Source)
}
