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
	"errors"
	"fmt"
)

// unknownToolMarker is the call-log error marker for a tool name with no
// registry entry. Never surfaced to the end user as failure text.
const unknownToolMarker = "unknown_tool"

// ErrUnknownTool reports a proposed tool name with no registry entry.
// Recovered locally by the tool loop; the loop proceeds.
var ErrUnknownTool = errors.New(unknownToolMarker)

// ToolInvocationError reports a registry entry failure: either the
// model-supplied arguments did not match the tool's declared parameter
// shape, or the underlying collaborator failed.
//
// Description:
//
//	Not masked. The tool loop records it in the call log as the call's
//	result and feeds it back to the model verbatim so the synthesis step
//	can acknowledge the failure in the user-facing reply.
type ToolInvocationError struct {
	// Tool is the tool whose invocation failed.
	Tool string

	// Err is the underlying cause.
	Err error
}

func (e *ToolInvocationError) Error() string {
	return fmt.Sprintf("tool %s: %v", e.Tool, e.Err)
}

func (e *ToolInvocationError) Unwrap() error { return e.Err }

// LanguageModelError reports a failure contacting or parsing the model
// service's response. Fatal to the whole request; no partial reply is
// returned.
type LanguageModelError struct {
	Err error
}

func (e *LanguageModelError) Error() string {
	return fmt.Sprintf("language model: %v", e.Err)
}

func (e *LanguageModelError) Unwrap() error { return e.Err }
