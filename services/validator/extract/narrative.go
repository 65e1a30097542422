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
	"regexp"
	"strings"

	"github.com/AleutianAI/AleutianVerify/services/validator/datatypes"
	"github.com/AleutianAI/AleutianVerify/services/validator/pdfdoc"
)

// sentenceEnd splits prose into sentences at terminal punctuation
// followed by whitespace. Citation markers ride on the sentence they
// terminate ("...risk.1,2 Next sentence"), so the split must happen after
// any trailing digits.
var sentenceEnd = regexp.MustCompile(`(?:[.!?])(?:\d{1,3}(?:\s*[,–-]\s*\d{1,3})*)?\s+`)

// inlineCitation captures a citation marker sequence attached to the tail
// of a sentence, after terminal punctuation: "risk.1,2" or "pain?3-5".
var inlineCitation = regexp.MustCompile(`([.!?])\s*(\d{1,3}(?:\s*[,–-]\s*\d{1,3})*)\s*$`)

// minSentenceWords filters headings and fragments out of the uncited
// statement set. Cited sentences are kept regardless of length.
const minSentenceWords = 4

// NarrativeExtractor finds citation-bearing sentences in parsed pages and
// the trailing reference list that maps numerals to reference text.
//
// One ExtractedUnit is emitted per in-text citation occurrence. Sentences
// without any marker are also extracted but flagged uncited: the caller
// may not know in advance which reference applies, so these still fan out
// against every supplied reference document.
type NarrativeExtractor struct {
	// IncludeUncited controls whether marker-free sentences are emitted.
	// Defaults to true via NewNarrativeExtractor.
	IncludeUncited bool
}

// NewNarrativeExtractor creates a NarrativeExtractor with defaults.
func NewNarrativeExtractor() *NarrativeExtractor {
	return &NarrativeExtractor{IncludeUncited: true}
}

// Extract returns one unit per citation occurrence plus the document's
// reference list.
func (e *NarrativeExtractor) Extract(doc *datatypes.ParsedDocument) ([]datatypes.ExtractedUnit, ReferenceList) {
	refs := CollectReferences(doc.FullText())

	var units []datatypes.ExtractedUnit
	inReferences := false

	for _, page := range doc.Pages {
		text := pdfdoc.FoldSuperscripts(page.Text)

		for _, sentence := range splitSentences(text) {
			lower := strings.ToLower(sentence)

			// Stop emitting statements once the reference list starts;
			// its numbered entries would otherwise parse as citations.
			if strings.HasPrefix(lower, "references") {
				inReferences = true
			}
			if inReferences || isReferenceEntry(sentence, refs) {
				continue
			}

			statement, markers := stripCitation(sentence)
			if len(markers) == 0 {
				if !e.IncludeUncited || len(strings.Fields(statement)) < minSentenceWords {
					continue
				}
				units = append(units, datatypes.ExtractedUnit{
					PageNumber: page.Number,
					RawFields:  map[string]string{datatypes.FieldStatement: statement},
					Uncited:    true,
				})
				continue
			}

			units = append(units, datatypes.ExtractedUnit{
				PageNumber:      page.Number,
				RawFields:       map[string]string{datatypes.FieldStatement: statement},
				CitationMarkers: markers,
			})
		}
	}

	return units, refs
}

// splitSentences cuts page text into sentence-sized statements. Newlines
// inside a sentence are treated as spaces; text after the last terminal
// punctuation is kept as a final statement.
func splitSentences(text string) []string {
	joined := strings.Join(strings.Fields(text), " ")
	if joined == "" {
		return nil
	}

	var sentences []string
	last := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(joined, -1) {
		// Keep the terminal punctuation and markers with the sentence.
		s := strings.TrimSpace(joined[last:loc[1]])
		if s != "" {
			sentences = append(sentences, s)
		}
		last = loc[1]
	}
	if tail := strings.TrimSpace(joined[last:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

// stripCitation removes the sentence's trailing citation markers and
// returns them split and range-expanded.
func stripCitation(sentence string) (string, []string) {
	m := inlineCitation.FindStringSubmatchIndex(sentence)
	if m == nil {
		return strings.TrimSpace(sentence), nil
	}
	markers := pdfdoc.SplitMarkers(sentence[m[4]:m[5]])
	statement := strings.TrimSpace(sentence[:m[3]])
	return statement, markers
}

var numberedLine = regexp.MustCompile(`^(\d{1,3})[.)]\s+`)

// isReferenceEntry filters sentences that are actually lines of the
// reference list leaking into page prose ("1. Smith J, et al. ...").
func isReferenceEntry(sentence string, refs ReferenceList) bool {
	m := numberedLine.FindStringSubmatch(sentence)
	if m == nil {
		return false
	}
	return refs.Lookup(m[1]) != ""
}
