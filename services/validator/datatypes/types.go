// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes defines the shared data model for the verification
// pipeline: parsed documents, extracted units, validation units, resolved
// references, and verdicts.
//
// All entities here are created and consumed within a single pipeline run.
// Nothing in this package persists state or holds connections; every type
// is a plain value handed from one stage to the next.
package datatypes

import "time"

// Mode selects the extraction strategy for a source document.
type Mode string

const (
	// ModeNarrative extracts citation-bearing sentences plus a trailing
	// reference list (research papers, brochures with prose).
	ModeNarrative Mode = "narrative"

	// ModeTable extracts row-oriented tables whose first column names an
	// entity and whose cells carry superscript citation markers
	// (compatibility tables, drug property grids).
	ModeTable Mode = "table"
)

// Valid reports whether m is a recognized extraction mode.
func (m Mode) Valid() bool {
	return m == ModeNarrative || m == ModeTable
}

// Page is one page of a parsed document: assembled text plus the
// layout-preserving lines the table detector works from.
type Page struct {
	// Number is 1-based.
	Number int

	// Text is the assembled reading-order text of the page.
	Text string

	// Lines preserves the horizontal layout of the page (multi-space gaps
	// intact) so grid-like arrangements can be recovered.
	Lines []string
}

// TableCandidate is a grid-like arrangement of aligned text runs detected
// on a single page. Rows[0] is treated as the header row.
type TableCandidate struct {
	PageNumber int
	Rows       [][]TableCell
}

// TableCell is one cell of a TableCandidate with its superscript citation
// markers separated from the visible text.
type TableCell struct {
	// Text is the cell content with citation markers stripped.
	Text string

	// Markers holds the cell's citation markers in order of appearance,
	// already split on commas and with ranges expanded ("1,3-5" becomes
	// "1","3","4","5").
	Markers []string
}

// ParsedDocument is the parser's output for one PDF: an ordered page list
// and the table candidates found on those pages.
type ParsedDocument struct {
	Pages  []Page
	Tables []TableCandidate
}

// FullText concatenates all page text with page markers, matching the
// windowing format the adjudication prompt expects.
func (d *ParsedDocument) FullText() string {
	var b []byte
	for _, p := range d.Pages {
		b = append(b, []byte("\n[PAGE ")...)
		b = appendInt(b, p.Number)
		b = append(b, []byte("]\n")...)
		b = append(b, p.Text...)
		b = append(b, '\n')
	}
	return string(b)
}

func appendInt(b []byte, n int) []byte {
	if n == 0 {
		return append(b, '0')
	}
	var digits [20]byte
	i := len(digits)
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return append(b, digits[i:]...)
}

// TableSchemaTag classifies a detected table into one of the two supported
// layout variants. The tag is decided once per table and applied to all of
// its rows.
type TableSchemaTag string

const (
	// SchemaMatrix is the entity + numeric range + marked columns layout.
	SchemaMatrix TableSchemaTag = "matrix"

	// SchemaInstruction is the entity + free-text statement + single
	// column label layout.
	SchemaInstruction TableSchemaTag = "instruction"
)

// Well-known RawFields keys on an ExtractedUnit.
const (
	FieldStatement = "statement"
	FieldRange     = "range"
	FieldColumns   = "columns"
	FieldColumn    = "column"
)

// ExtractedUnit is one detected sentence or table row, before
// normalization. Never mutated after creation.
type ExtractedUnit struct {
	PageNumber int

	// Entity is the row entity (table path) or nearest heading
	// (narrative path); may be empty.
	Entity string

	// RawFields carries strategy-specific fields keyed by the Field*
	// constants above.
	RawFields map[string]string

	// CitationMarkers are the unit's markers in order of appearance.
	CitationMarkers []string

	// EntityMarkers are markers attached to the entity cell specifically;
	// they take precedence over statement-level markers under the
	// instruction schema.
	EntityMarkers []string

	// Uncited is set when extraction found no citation marker at all. The
	// unit is still adjudicated, against every supplied reference.
	Uncited bool

	// Schema is attached by the schema detector on the table path; empty
	// for narrative units.
	Schema TableSchemaTag

	// SchemaAmbiguous flags that neither schema predicate matched cleanly
	// and the matrix default was applied.
	SchemaAmbiguous bool
}

// ValidationUnit is the canonical, citation-resolved statement produced by
// normalization, ready for adjudication.
//
// Invariant: Statement is non-empty, and ReferenceIDs is non-empty unless
// Uncited is set.
type ValidationUnit struct {
	Statement    string
	ReferenceIDs []string
	SourcePage   int

	// ReferenceText is the matched entry from the source document's
	// reference list, when one exists for the unit's first id.
	ReferenceText string

	Uncited         bool
	SchemaAmbiguous bool
}

// ReferenceDocument is one caller-supplied reference, parsed and read-only
// to the core.
type ReferenceDocument struct {
	// Identity is the caller's label for the document, usually a
	// filename. Used in Verdict.MatchedPaper.
	Identity string

	Parsed *ParsedDocument
}

// ResolvedReference binds one cited reference id to a supplied document,
// or records that no document could be found for it.
type ResolvedReference struct {
	// ID is the citation id as it appeared in the source ("1", "12").
	ID string

	// Doc is nil when the id did not resolve.
	Doc *ReferenceDocument

	// Method records how the binding was made. Empty when unresolved.
	Method string
}

// Resolution methods, in decreasing confidence order.
const (
	ResolveIdentity      = "identity"
	ResolveAuthorYear    = "author_year"
	ResolveLeadingNumber = "leading_number"
	ResolvePosition      = "position"
)

// Verdict is one adjudication outcome for a (statement, reference
// document) pair. Verdicts are never merged or averaged across reference
// documents.
type Verdict struct {
	Statement string `json:"statement"`

	// ReferenceNo is the statement's full citation id list, comma-joined
	// ("1,2"); every fanned-out verdict of a multi-citation statement
	// carries the same list. MatchedPaper names the one document this
	// verdict was adjudicated against.
	ReferenceNo  string       `json:"reference_no"`
	Reference    string       `json:"reference"`
	MatchedPaper string       `json:"matched_paper"`
	Label        VerdictLabel `json:"validation_result"`
	Evidence     string       `json:"matched_evidence"`
	PageLocation string       `json:"page_location"`
	Confidence   float64      `json:"confidence_score"`

	// MatchingMethod is the audit trail for how the verdict was reached:
	// a healthy value like "token_overlap", or a degradation marker such
	// as "timeout" or "reference_not_found".
	MatchingMethod string `json:"matching_method"`

	Summary string `json:"analysis_summary"`
}

// RunReport summarizes one pipeline invocation.
type RunReport struct {
	RunID      string        `json:"run_id"`
	Mode       Mode          `json:"mode"`
	Statements int           `json:"statements"`
	References int           `json:"references"`
	Verdicts   []Verdict     `json:"verdicts"`
	Duration   time.Duration `json:"duration_ns"`
}
