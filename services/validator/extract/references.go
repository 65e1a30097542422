// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package extract turns parsed pages into discrete citation-bearing
// records. Two interchangeable strategies exist: the narrative extractor
// for prose documents with a trailing reference list, and the table
// extractor for row-oriented compatibility grids. Both emit
// datatypes.ExtractedUnit values and never call out of process.
package extract

import (
	"regexp"
	"strings"

	"github.com/AleutianAI/AleutianVerify/services/validator/pdfdoc"
)

// referencesHeading locates the start of the reference list. The heading
// itself is case-insensitive; everything after it belongs to the list
// until a footer pattern appears.
var referencesHeading = regexp.MustCompile(`(?is)references\s*(.*)`)

// footerCutoff stops reference collection at boilerplate that trails the
// list in marketing material.
var footerCutoff = regexp.MustCompile(`(?i)(©|copyright|all rights reserved|trademarks? of)`)

// referenceEntry captures "N. text" / "N) text" entries, each running
// until the next numbered entry.
var referenceEntry = regexp.MustCompile(`(?s)(\d{1,3})[.)]\s+(.*?)(?=\s+\d{1,3}[.)]\s+|$)`)

// ReferenceList is the parsed trailing reference section of a source
// document: numeral → reference text, plus the numerals in list order.
type ReferenceList struct {
	Entries map[string]string
	Order   []string
}

// Lookup returns the reference text for id, or "".
func (r ReferenceList) Lookup(id string) string {
	if r.Entries == nil {
		return ""
	}
	return r.Entries[id]
}

// CollectReferences parses the document's reference section from its full
// text. Returns an empty list when no "References" heading exists; the
// pipeline treats that as a document with only positional resolution
// available.
func CollectReferences(fullText string) ReferenceList {
	list := ReferenceList{Entries: map[string]string{}}

	m := referencesHeading.FindStringSubmatch(pdfdoc.FoldSuperscripts(fullText))
	if m == nil {
		return list
	}
	section := m[1]
	if cut := footerCutoff.FindStringIndex(section); cut != nil {
		section = section[:cut[0]]
	}

	for _, entry := range referenceEntry.FindAllStringSubmatch(section, -1) {
		id := entry[1]
		text := strings.Join(strings.Fields(entry[2]), " ")
		if text == "" {
			continue
		}
		if _, dup := list.Entries[id]; dup {
			continue
		}
		list.Entries[id] = text
		list.Order = append(list.Order, id)
	}
	return list
}
