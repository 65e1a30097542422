// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import "errors"

// Error taxonomy for the pipeline.
//
// Only ErrUnreadableDocument (for the source document) and
// ErrNoExtractableUnits abort a run. Everything else is absorbed into a
// degraded verdict so the caller always receives one verdict-shaped record
// per statement/reference combination.
var (
	// ErrUnreadableDocument means a PDF has no extractable text layer.
	// Fatal for that document; there is no OCR fallback in the core.
	ErrUnreadableDocument = errors.New("document has no extractable text layer")

	// ErrNoExtractableUnits means parsing succeeded but extraction found
	// nothing to validate. Fatal for the run.
	ErrNoExtractableUnits = errors.New("no extractable statements found")

	// ErrReferenceNotFound marks a cited id with no corresponding
	// supplied document. Non-fatal; surfaces as a degraded verdict.
	ErrReferenceNotFound = errors.New("cited reference has no supplied document")

	// ErrModelResponse marks an unusable generative-model response
	// (malformed JSON, unknown label). Non-fatal per pair.
	ErrModelResponse = errors.New("unusable model response")
)

// MatchingMethod values recorded on verdicts. Healthy verdicts carry
// MethodTokenOverlap; everything else is a degradation marker.
const (
	MethodTokenOverlap    = "token_overlap"
	MethodUnverifiedQuote = "unverified_quote"
	MethodLabelFailure    = "label_validation_failure"
	MethodTimeout         = "timeout"
	MethodRetryExhausted  = "retry_exhausted"
	MethodModelError      = "model_error"
	MethodRefNotFound     = "reference_not_found"
	MethodRefUnreadable   = "reference_unreadable"
	MethodNoCitation      = "no_citation"
)
