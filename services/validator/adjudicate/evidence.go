// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package adjudicate

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/AleutianAI/AleutianVerify/services/validator/datatypes"
)

// overlapThreshold is the minimum token-overlap ratio for a quoted
// evidence string to count as located in the reference document.
const overlapThreshold = 0.5

// evidenceLocation is the deterministic verification result for one
// quoted evidence string against a reference document.
type evidenceLocation struct {
	// Ratio is the fraction of evidence tokens present in the best page,
	// in [0,1].
	Ratio float64

	// Page is the 1-based page with the highest overlap; 0 when the
	// evidence matched nothing.
	Page int

	// Verified is Ratio >= overlapThreshold.
	Verified bool
}

// locateEvidence verifies a quoted evidence string against the parsed
// reference pages by normalized token overlap.
//
// Verification is deterministic: the same evidence and document always
// produce the same ratio and page. Ties go to the earlier page.
func locateEvidence(evidence string, doc *datatypes.ParsedDocument) evidenceLocation {
	tokens := tokenize(evidence)
	if len(tokens) == 0 || doc == nil {
		return evidenceLocation{}
	}

	best := evidenceLocation{}
	for _, page := range doc.Pages {
		pageTokens := tokenSet(page.Text)
		hit := 0
		for _, t := range tokens {
			if pageTokens[t] {
				hit++
			}
		}
		ratio := float64(hit) / float64(len(tokens))
		if ratio > best.Ratio {
			best.Ratio = ratio
			best.Page = page.Number
		}
	}
	best.Verified = best.Ratio >= overlapThreshold
	return best
}

// pageLabel renders a located page for the verdict's page_location field.
func pageLabel(page int) string {
	return fmt.Sprintf("page %d", page)
}

// tokenize lowercases and strips punctuation, returning the word tokens
// of s in order. Single-character tokens are dropped; they carry no
// matching signal and inflate overlap on stray letters.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) > 1 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func tokenSet(s string) map[string]bool {
	set := map[string]bool{}
	for _, t := range tokenize(s) {
		set[t] = true
	}
	return set
}

// clamp01 bounds a confidence score to [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
