// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pdfdoc

import (
	"regexp"
	"strings"

	"github.com/AleutianAI/AleutianVerify/services/validator/datatypes"
)

// columnGap splits a layout-preserved line into cells. Two or more
// consecutive spaces only ever appear where the PDF had a column gap,
// because assemble() is not applied to the raw lines.
var columnGap = regexp.MustCompile(`\s{2,}|\t+`)

// minTableRows is the smallest run of aligned lines treated as a table:
// a header row plus at least one data row.
const minTableRows = 2

// minTableCols is the minimum column count for a grid candidate.
const minTableCols = 2

// DetectTables finds grid-like arrangements in a page's layout lines.
//
// A table candidate is a maximal run of consecutive lines that each split
// into at least minTableCols cells on multi-space gaps, where the column
// counts agree within one (ragged last columns are common in extracted
// grids). The first row of each run is the header row.
func DetectTables(lines []string, pageNumber int) []datatypes.TableCandidate {
	var tables []datatypes.TableCandidate
	var run [][]string

	flush := func() {
		if len(run) >= minTableRows {
			tables = append(tables, buildCandidate(run, pageNumber))
		}
		run = nil
	}

	for _, line := range lines {
		cells := splitColumns(line)
		if len(cells) < minTableCols {
			flush()
			continue
		}
		if len(run) > 0 && !compatibleWidth(len(run[len(run)-1]), len(cells)) {
			flush()
		}
		run = append(run, cells)
	}
	flush()

	return tables
}

func splitColumns(line string) []string {
	parts := columnGap.Split(strings.TrimSpace(line), -1)
	cells := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			cells = append(cells, p)
		}
	}
	return cells
}

func compatibleWidth(a, b int) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= 1
}

func buildCandidate(run [][]string, pageNumber int) datatypes.TableCandidate {
	width := 0
	for _, row := range run {
		if len(row) > width {
			width = len(row)
		}
	}

	cand := datatypes.TableCandidate{PageNumber: pageNumber}
	for _, row := range run {
		cells := make([]datatypes.TableCell, width)
		for i := 0; i < width; i++ {
			if i < len(row) {
				text, markers := SplitCell(row[i])
				cells[i] = datatypes.TableCell{Text: text, Markers: markers}
			}
		}
		cand.Rows = append(cand.Rows, cells)
	}
	return cand
}
