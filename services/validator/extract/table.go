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
	"strings"

	"github.com/AleutianAI/AleutianVerify/services/validator/datatypes"
)

// markGlyphs are the discrete cell marks used by matrix-style
// compatibility tables (a filled circle or diamond meaning "applies").
var markGlyphs = map[string]bool{
	"●": true, "•": true, "◆": true, "♦": true,
	"✓": true, "x": true, "X": true,
}

// IsMarkGlyph reports whether a cell's text is a discrete table mark
// rather than content.
func IsMarkGlyph(s string) bool {
	return markGlyphs[strings.TrimSpace(s)]
}

// TableExtractor emits one ExtractedUnit per data row of every detected
// table whose first column names an entity.
//
// The header row supplies column labels. For matrix tables only the
// columns whose cell carries a mark glyph contribute their label; for
// instruction tables the free-text cell becomes the statement and the
// header label of that cell's column is kept. Schema classification is
// done by the Detector (schema.go) once per table, from its first data
// row, and applied to all rows.
type TableExtractor struct {
	detector *Detector
}

// NewTableExtractor creates a TableExtractor using the given schema
// detector; nil gets the default predicate order.
func NewTableExtractor(d *Detector) *TableExtractor {
	if d == nil {
		d = NewDetector()
	}
	return &TableExtractor{detector: d}
}

// Extract converts every table candidate in doc into row units.
func (e *TableExtractor) Extract(doc *datatypes.ParsedDocument) ([]datatypes.ExtractedUnit, ReferenceList) {
	refs := CollectReferences(doc.FullText())

	var units []datatypes.ExtractedUnit
	for _, table := range doc.Tables {
		units = append(units, e.extractTable(table)...)
	}
	return units, refs
}

func (e *TableExtractor) extractTable(table datatypes.TableCandidate) []datatypes.ExtractedUnit {
	if len(table.Rows) < 2 {
		return nil
	}
	header := table.Rows[0]
	schema, ambiguous := e.detector.Detect(table)

	var units []datatypes.ExtractedUnit
	for _, row := range table.Rows[1:] {
		unit, ok := e.extractRow(header, row, table.PageNumber, schema, ambiguous)
		if ok {
			units = append(units, unit)
		}
	}
	return units
}

func (e *TableExtractor) extractRow(header, row []datatypes.TableCell, page int, schema datatypes.TableSchemaTag, ambiguous bool) (datatypes.ExtractedUnit, bool) {
	entity := row[0]
	if entity.Text == "" {
		return datatypes.ExtractedUnit{}, false
	}

	unit := datatypes.ExtractedUnit{
		PageNumber:      page,
		Entity:          entity.Text,
		RawFields:       map[string]string{},
		EntityMarkers:   entity.Markers,
		Schema:          schema,
		SchemaAmbiguous: ambiguous,
	}

	var columns []string
	var rowMarkers []string
	rowMarkers = appendUnique(rowMarkers, entity.Markers)

	for i := 1; i < len(row); i++ {
		cell := row[i]
		rowMarkers = appendUnique(rowMarkers, cell.Markers)

		switch {
		case cell.Text == "":
			// Blank cell: marker-only cells still contributed above.
		case IsMarkGlyph(cell.Text):
			if label := headerLabel(header, i); label != "" {
				columns = append(columns, label)
			}
		case isRangeCell(cell.Text):
			unit.RawFields[datatypes.FieldRange] = cell.Text
		case schema == datatypes.SchemaInstruction && len(cell.Text) >= instructionTextLen:
			unit.RawFields[datatypes.FieldStatement] = cell.Text
			unit.RawFields[datatypes.FieldColumn] = headerLabel(header, i)
		default:
			if label := headerLabel(header, i); label != "" {
				columns = append(columns, label)
			}
		}
	}

	if len(columns) > 0 {
		unit.RawFields[datatypes.FieldColumns] = strings.Join(columns, ". ")
	}
	unit.CitationMarkers = rowMarkers
	unit.Uncited = len(rowMarkers) == 0
	return unit, true
}

func headerLabel(header []datatypes.TableCell, i int) string {
	if i >= len(header) {
		return ""
	}
	return header[i].Text
}

func appendUnique(dst []string, src []string) []string {
	for _, s := range src {
		dup := false
		for _, have := range dst {
			if have == s {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, s)
		}
	}
	return dst
}
