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
	"strconv"
	"strings"
)

// Superscript digit glyphs and their ASCII forms. PDF text layers emit
// citation markers either as true superscript codepoints or as plain
// digits butted against the preceding token; both must survive parsing.
var superscriptRunes = map[rune]rune{
	'⁰': '0', '¹': '1', '²': '2', '³': '3', '⁴': '4',
	'⁵': '5', '⁶': '6', '⁷': '7', '⁸': '8', '⁹': '9',
	'⁻': '-', '⁽': '(', '⁾': ')',
}

// FoldSuperscripts rewrites superscript digit glyphs as ASCII so a single
// marker grammar can handle both encodings. Non-superscript runes pass
// through unchanged.
func FoldSuperscripts(s string) string {
	if !strings.ContainsFunc(s, func(r rune) bool { _, ok := superscriptRunes[r]; return ok }) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if folded, ok := superscriptRunes[r]; ok {
			b.WriteRune(folded)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// trailingMarker matches a citation marker sequence at the end of a text
// run: "risk.1", "amikacin1,2", "pain3-5". The marker must follow a word
// character or sentence punctuation so bare numbers ("3.5-5.5") in data
// cells are not mistaken for citations.
var trailingMarker = regexp.MustCompile(`([a-zA-Z)\].!?%])\s*((?:\d{1,3})(?:\s*[,–-]\s*\d{1,3})*)\s*$`)

// numericRange matches measurement ranges like "3.5-5.5" or "10–20".
// Used to keep range cells out of the marker grammar and by the schema
// detector to recognize the matrix layout.
var numericRange = regexp.MustCompile(`^\d+(?:\.\d+)?\s*[–-]\s*\d+(?:\.\d+)?$`)

// IsNumericRange reports whether s is a bare numeric range value.
func IsNumericRange(s string) bool {
	return numericRange.MatchString(strings.TrimSpace(s))
}

// SplitCell separates a cell's visible text from its citation markers.
//
// "amikacin¹,²" yields ("amikacin", ["1","2"]); "Local site pain" yields
// ("Local site pain", nil). Range values are never treated as markers.
func SplitCell(raw string) (text string, markers []string) {
	s := strings.TrimSpace(FoldSuperscripts(raw))
	if s == "" || IsNumericRange(s) {
		return s, nil
	}
	m := trailingMarker.FindStringSubmatchIndex(s)
	if m == nil {
		return s, nil
	}
	markerText := s[m[4]:m[5]]
	text = strings.TrimSpace(s[:m[3]])
	return text, SplitMarkers(markerText)
}

// SplitMarkers splits a raw marker sequence into individual citation ids,
// expanding ranges: "1,3-5" becomes ["1","3","4","5"]. Order of first
// appearance is preserved and duplicates are dropped.
func SplitMarkers(raw string) []string {
	raw = FoldSuperscripts(raw)
	raw = strings.ReplaceAll(raw, "–", "-")

	var out []string
	seen := make(map[string]bool)
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if lo, hi, ok := parseRange(part); ok {
			for n := lo; n <= hi; n++ {
				add(strconv.Itoa(n))
			}
			continue
		}
		// A dashed part that failed to parse is a malformed or
		// implausibly wide range, not a citation id.
		if strings.Contains(part, "-") {
			continue
		}
		add(part)
	}
	return out
}

func parseRange(part string) (lo, hi int, ok bool) {
	i := strings.IndexByte(part, '-')
	if i <= 0 || i == len(part)-1 {
		return 0, 0, false
	}
	lo, err1 := strconv.Atoi(strings.TrimSpace(part[:i]))
	hi, err2 := strconv.Atoi(strings.TrimSpace(part[i+1:]))
	if err1 != nil || err2 != nil || hi < lo || hi-lo > 50 {
		return 0, 0, false
	}
	return lo, hi, true
}
