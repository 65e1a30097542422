// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package extract

import (
	"github.com/AleutianAI/AleutianVerify/services/validator/datatypes"
	"github.com/AleutianAI/AleutianVerify/services/validator/pdfdoc"
)

// instructionTextLen is the minimum cell length treated as free text
// rather than a short label. Compatibility-table labels run well under
// this; instruction sentences well over it.
const instructionTextLen = 40

// SchemaPredicate inspects a table's first data row and either claims a
// schema variant or passes.
//
// Predicates are evaluated in order; the first claim wins. Keeping them
// as an explicit ordered list makes the priority auditable and testable
// in isolation, and lets callers reorder it: whether a table satisfying
// both the instruction and matrix conditions should be instruction-first
// is a documented heuristic, not a guarantee.
type SchemaPredicate struct {
	Name  string
	Match func(header, firstRow []datatypes.TableCell) (datatypes.TableSchemaTag, bool)
}

// InstructionPredicate claims the instruction schema when any non-entity
// cell holds long free text carrying its own citation marker.
func InstructionPredicate() SchemaPredicate {
	return SchemaPredicate{
		Name: "instruction",
		Match: func(header, firstRow []datatypes.TableCell) (datatypes.TableSchemaTag, bool) {
			for _, cell := range firstRow[1:] {
				if len(cell.Text) >= instructionTextLen && len(cell.Markers) > 0 {
					return datatypes.SchemaInstruction, true
				}
			}
			return "", false
		},
	}
}

// MatrixPredicate claims the matrix schema when the row exposes a numeric
// range field or discrete mark glyphs across multiple columns.
func MatrixPredicate() SchemaPredicate {
	return SchemaPredicate{
		Name: "matrix",
		Match: func(header, firstRow []datatypes.TableCell) (datatypes.TableSchemaTag, bool) {
			marks := 0
			for _, cell := range firstRow[1:] {
				if isRangeCell(cell.Text) {
					return datatypes.SchemaMatrix, true
				}
				if IsMarkGlyph(cell.Text) {
					marks++
				}
			}
			if marks >= 2 {
				return datatypes.SchemaMatrix, true
			}
			return "", false
		},
	}
}

func isRangeCell(text string) bool {
	return pdfdoc.IsNumericRange(text)
}

// Detector classifies a table into a schema variant.
//
// Detection is evaluated once per table from its first data row and
// applied to all rows; there is no per-row re-detection. A table neither
// predicate claims defaults to matrix and is flagged ambiguous.
type Detector struct {
	predicates []SchemaPredicate
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithPredicates replaces the default predicate order.
func WithPredicates(preds ...SchemaPredicate) DetectorOption {
	return func(d *Detector) {
		if len(preds) > 0 {
			d.predicates = preds
		}
	}
}

// NewDetector creates a Detector with the default order: instruction
// before matrix.
func NewDetector(opts ...DetectorOption) *Detector {
	d := &Detector{
		predicates: []SchemaPredicate{InstructionPredicate(), MatrixPredicate()},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect classifies the table. The second return value reports whether
// the matrix default was applied because no predicate claimed the table.
func (d *Detector) Detect(table datatypes.TableCandidate) (datatypes.TableSchemaTag, bool) {
	if len(table.Rows) < 2 {
		return datatypes.SchemaMatrix, true
	}
	header, firstRow := table.Rows[0], table.Rows[1]
	for _, p := range d.predicates {
		if tag, ok := p.Match(header, firstRow); ok {
			return tag, false
		}
	}
	return datatypes.SchemaMatrix, true
}
