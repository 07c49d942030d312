// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package memory persists the append-only interaction log in BadgerDB.
//
// Description:
//
//	Interactions are the durable record of every completed concierge
//	request. BadgerDB is embedded (no network call, no availability
//	dependency) and each interaction is written in its own transaction,
//	so concurrent appends never interleave partial records. Records are
//	never mutated or deleted by the concierge.
//
// Storage layout:
//
//	interaction/v1/{user_id}/{unix_nanos}-{suffix}  →  JSON-encoded Interaction
//
// The key embeds a wall-clock sequence plus a random suffix so two appends
// in the same nanosecond still get distinct keys.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	dgbadger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// interactionKeyPrefix is prepended to every interaction key.
// Versioned (v1) to allow future format changes without collision.
const interactionKeyPrefix = "interaction/v1/"

// Interaction is one appended record.
//
// Thread Safety: Interaction is a value type; safe for concurrent read access.
type Interaction struct {
	// UserID identifies the user the interaction belongs to.
	UserID string `json:"user_id"`

	// Intent is the classified intent label (marketing_consult,
	// sales_assist, cs_resolution, kb_answer).
	Intent string `json:"intent"`

	// At is the append timestamp, UTC.
	At time.Time `json:"at"`

	// Event carries the domain-specific fields (bundle, quote, case, ...).
	Event map[string]any `json:"event,omitempty"`
}

// Store is the BadgerDB-backed interaction log.
//
// Thread Safety: Store is safe for concurrent use; BadgerDB provides
// transaction isolation for each append.
type Store struct {
	db *dgbadger.DB
}

// Open opens (or creates) an interaction store at dir.
func Open(dir string) (*Store, error) {
	opts := dgbadger.DefaultOptions(dir).WithLogger(nil)
	db, err := dgbadger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("memory: opening badger at %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a store that lives only for the process lifetime.
// Used by tests and by deployments that opt out of durability.
func OpenInMemory() (*Store, error) {
	opts := dgbadger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := dgbadger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("memory: opening in-memory badger: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database. Safe to call once.
func (s *Store) Close() error {
	return s.db.Close()
}

// AddInteraction appends one interaction record.
//
// Description:
//
//	The event map is stored as-is alongside user id, timestamp, and the
//	intent extracted from event["intent"]. The write is a single-key
//	transaction: it either lands completely or not at all, which is the
//	atomicity guarantee the concierge relies on under concurrent requests.
//
// Thread Safety: This method is safe for concurrent use.
func (s *Store) AddInteraction(ctx context.Context, userID string, event map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	intent, _ := event["intent"].(string)
	rec := Interaction{
		UserID: userID,
		Intent: intent,
		At:     time.Now().UTC(),
		Event:  event,
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("memory: encoding interaction: %w", err)
	}

	key := fmt.Sprintf("%s%s/%020d-%s",
		interactionKeyPrefix, userID, rec.At.UnixNano(), uuid.NewString()[:8])

	err = s.db.Update(func(txn *dgbadger.Txn) error {
		return txn.Set([]byte(key), payload)
	})
	if err != nil {
		return fmt.Errorf("memory: appending interaction: %w", err)
	}
	return nil
}

// ForEach visits every interaction in key order.
//
// Description:
//
//	Key order groups records by user and, within a user, by append time.
//	The callback may return an error to stop iteration early; that error
//	is returned to the caller.
//
// Thread Safety: This method is safe for concurrent use; it runs inside a
// read-only transaction and sees a consistent snapshot.
func (s *Store) ForEach(ctx context.Context, fn func(Interaction) error) error {
	return s.db.View(func(txn *dgbadger.Txn) error {
		opts := dgbadger.DefaultIteratorOptions
		opts.Prefix = []byte(interactionKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var rec Interaction
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return fmt.Errorf("memory: decoding interaction: %w", err)
			}
			if err := fn(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListByUser returns all interactions for one user in append order.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]Interaction, error) {
	var out []Interaction
	prefix := []byte(interactionKeyPrefix + userID + "/")

	err := s.db.View(func(txn *dgbadger.Txn) error {
		opts := dgbadger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var rec Interaction
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return fmt.Errorf("memory: decoding interaction: %w", err)
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
