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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// ToolFunc executes one tool against model-supplied JSON arguments.
type ToolFunc func(ctx context.Context, args json.RawMessage) (any, error)

// Registry maps tool names to executable bindings for one request.
type Registry map[string]ToolFunc

// Invoke executes the named tool.
//
// Description:
//
//	An unregistered name returns ErrUnknownTool, which the tool loop
//	recovers from. Argument or collaborator failures come back as
//	*ToolInvocationError and are fed to the model rather than aborting
//	the request.
func (r Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (any, error) {
	fn, ok := r[name]
	if !ok {
		return nil, ErrUnknownTool
	}
	return fn(ctx, args)
}

// =============================================================================
// Argument Shapes
// =============================================================================
//
// One struct per tool, mirroring the JSON Schema published by SchemasFor.
// Decoding is strict: unknown fields and type mismatches fail closed.

type bundleArgs struct {
	Need string `json:"need"`
}

type leadArgs struct {
	Note string `json:"note"`
}

type quoteArgs struct {
	Request string `json:"request"`
}

type opportunityArgs struct {
	Note string `json:"note"`
}

type meetingArgs struct{}

type orderArgs struct {
	Query string `json:"query"`
}

type goodwillArgs struct {
	Amount float64 `json:"amount"`
}

type caseArgs struct {
	Summary string `json:"summary"`
}

type kbArgs struct {
	Question string `json:"question"`
}

// decodeArgs strictly decodes raw into dst for the named tool.
//
// Description:
//
//	An empty payload decodes as the zero value, which zero-parameter
//	tools like book_meeting rely on. Anything that does not match the
//	declared shape (wrong types, unknown fields, trailing data) fails
//	closed with *ToolInvocationError. The tool's collaborator is never
//	reached with arguments it did not declare.
func decodeArgs(tool string, raw json.RawMessage, dst any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &ToolInvocationError{Tool: tool, Err: fmt.Errorf("decoding arguments: %w", err)}
	}
	if dec.More() {
		return &ToolInvocationError{Tool: tool, Err: fmt.Errorf("trailing data after arguments")}
	}
	return nil
}

// BuildRegistry binds the full tool surface for one user.
//
// Description:
//
//	userID and traits are captured in closures at build time; the model
//	supplies only the arguments each tool declares. Construction never
//	fails; individual invocations can. The registry always covers every
//	name SchemasFor can publish, for any domain, so a correct model
//	proposal never misses.
//
// Thread Safety: The returned Registry is safe for concurrent use as long
// as the Toolset collaborators are.
func BuildRegistry(userID string, traits Traits, ts Toolset) Registry {
	leadContext := func(note string) map[string]any {
		lc := map[string]any{"note": note}
		for k, v := range traits {
			lc[k] = v
		}
		return lc
	}

	return Registry{
		"recommend_bundle": func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args bundleArgs
			if err := decodeArgs("recommend_bundle", raw, &args); err != nil {
				return nil, err
			}
			return ts.Catalog.RecommendBundle(args.Need), nil
		},
		"create_lead": func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args leadArgs
			if err := decodeArgs("create_lead", raw, &args); err != nil {
				return nil, err
			}
			id, err := ts.CRM.CreateLead(ctx, userID, leadContext(args.Note))
			if err != nil {
				return nil, &ToolInvocationError{Tool: "create_lead", Err: err}
			}
			return id, nil
		},
		"price_quote": func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args quoteArgs
			if err := decodeArgs("price_quote", raw, &args); err != nil {
				return nil, err
			}
			return ts.Catalog.PriceQuote(args.Request), nil
		},
		"create_opportunity": func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args opportunityArgs
			if err := decodeArgs("create_opportunity", raw, &args); err != nil {
				return nil, err
			}
			opp, err := ts.CRM.CreateOpportunity(ctx, userID, ts.Catalog.PriceQuote(args.Note))
			if err != nil {
				return nil, &ToolInvocationError{Tool: "create_opportunity", Err: err}
			}
			return opp, nil
		},
		"book_meeting": func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args meetingArgs
			if err := decodeArgs("book_meeting", raw, &args); err != nil {
				return nil, err
			}
			meeting, err := ts.Calendar.BookMeeting(ctx, userID, 30)
			if err != nil {
				return nil, &ToolInvocationError{Tool: "book_meeting", Err: err}
			}
			return meeting, nil
		},
		"lookup_order": func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args orderArgs
			if err := decodeArgs("lookup_order", raw, &args); err != nil {
				return nil, err
			}
			status, err := ts.Orders.Lookup(ctx, args.Query)
			if err != nil {
				return nil, &ToolInvocationError{Tool: "lookup_order", Err: err}
			}
			return status, nil
		},
		"issue_goodwill": func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args goodwillArgs
			if err := decodeArgs("issue_goodwill", raw, &args); err != nil {
				return nil, err
			}
			credit, err := ts.Helpdesk.IssueGoodwill(ctx, userID, args.Amount)
			if err != nil {
				return nil, &ToolInvocationError{Tool: "issue_goodwill", Err: err}
			}
			return credit, nil
		},
		"create_case": func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args caseArgs
			if err := decodeArgs("create_case", raw, &args); err != nil {
				return nil, err
			}
			c, err := ts.Helpdesk.CreateCase(ctx, userID, args.Summary, traits)
			if err != nil {
				return nil, &ToolInvocationError{Tool: "create_case", Err: err}
			}
			return c, nil
		},
		"kb_answer": func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args kbArgs
			if err := decodeArgs("kb_answer", raw, &args); err != nil {
				return nil, err
			}
			return ts.KB.Answer(args.Question), nil
		},
	}
}
