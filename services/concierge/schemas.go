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

import "github.com/AleutianAI/nestwell/services/llm"

// SchemasFor returns the ordered tool descriptors visible to the model for
// a domain.
//
// Description:
//
//	Each domain has a fixed, hand-curated descriptor set; an unrecognized
//	domain (including DomainKB) gets only the domain-agnostic
//	knowledge-base descriptor, which every domain also carries last.
//	Descriptors are rebuilt per call; they are cheap, and regenerating
//	them guarantees the set always reflects the requested domain.
//
//	Invariant: every name returned here MUST have a corresponding entry in
//	BuildRegistry's output, or invocation fails with unknown_tool. Adding
//	a tool requires touching both.
//
// Thread Safety: This function is safe for concurrent use.
func SchemasFor(domain Domain) []llm.ToolDef {
	common := []llm.ToolDef{
		funcDef("kb_answer", "Answer a knowledge-base question.",
			objectSchema([]string{"question"},
				param("question", "string", "The question to answer."))),
	}

	switch domain {
	case DomainMarketing:
		return append([]llm.ToolDef{
			funcDef("recommend_bundle", "Recommend a product bundle for the user's need.",
				objectSchema([]string{"need"},
					param("need", "string", "What the user is furnishing."))),
			funcDef("create_lead", "Create a CRM lead with context.",
				objectSchema([]string{"note"},
					param("note", "string", "Context note for the lead."))),
		}, common...)
	case DomainSales:
		return append([]llm.ToolDef{
			funcDef("price_quote", "Create a price quote from a free-form request.",
				objectSchema([]string{"request"},
					param("request", "string", "The quote request text."))),
			funcDef("create_opportunity", "Create a CRM opportunity for this user/message.",
				objectSchema([]string{"note"},
					param("note", "string", "Context note for the opportunity."))),
			funcDef("book_meeting", "Book a 30-minute meeting.",
				objectSchema(nil)),
		}, common...)
	case DomainSupport:
		return append([]llm.ToolDef{
			funcDef("lookup_order", "Lookup an order status from a user query.",
				objectSchema([]string{"query"},
					param("query", "string", "The user's order query."))),
			funcDef("issue_goodwill", "Issue a goodwill credit (respecting policy caps).",
				objectSchema([]string{"amount"},
					param("amount", "number", "Requested credit amount in USD."))),
			funcDef("create_case", "Create a helpdesk case with a brief summary.",
				objectSchema([]string{"summary"},
					param("summary", "string", "One-line case summary."))),
		}, common...)
	default:
		return common
	}
}

// namedParam pairs a parameter name with its definition.
type namedParam struct {
	name string
	def  llm.ToolParamDef
}

func param(name, typ, desc string) namedParam {
	return namedParam{name: name, def: llm.ToolParamDef{Type: typ, Description: desc}}
}

// objectSchema builds a JSON Schema object with the given required names
// and properties. A zero-parameter tool gets a bare object schema.
func objectSchema(required []string, ps ...namedParam) llm.ToolParameters {
	out := llm.ToolParameters{Type: "object", Required: required}
	if len(ps) > 0 {
		out.Properties = make(map[string]llm.ToolParamDef, len(ps))
		for _, p := range ps {
			out.Properties[p.name] = p.def
		}
	}
	return out
}

func funcDef(name, description string, parameters llm.ToolParameters) llm.ToolDef {
	return llm.ToolDef{
		Type: "function",
		Function: llm.ToolFunction{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}
}
