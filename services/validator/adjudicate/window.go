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
	"sort"
	"strconv"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/AleutianAI/AleutianVerify/services/validator/datatypes"
)

const (
	// maxContextChars caps the reference content inlined into one prompt.
	maxContextChars = 24000

	windowChunkSize    = 4000
	windowChunkOverlap = 200
)

// ParsePageReference parses a page hint like "5", "5-7" or "5,7,9" into
// a sorted page list. Unparseable input yields nil, meaning the whole
// document.
func ParsePageReference(ref string) []int {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}

	seen := map[int]bool{}
	var pages []int
	add := func(n int) {
		if n > 0 && !seen[n] {
			seen[n] = true
			pages = append(pages, n)
		}
	}

	for _, part := range strings.Split(ref, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, found := strings.Cut(part, "-")
		if !found {
			if n, err := strconv.Atoi(part); err == nil {
				add(n)
			}
			continue
		}
		a, errA := strconv.Atoi(strings.TrimSpace(lo))
		b, errB := strconv.Atoi(strings.TrimSpace(hi))
		if errA != nil || errB != nil || b < a {
			continue
		}
		for n := a; n <= b; n++ {
			add(n)
		}
	}
	sort.Ints(pages)
	return pages
}

// windower selects the reference content that goes into a prompt.
//
// When the whole document fits the context budget it is sent verbatim,
// page markers intact. Oversized documents are split into overlapping
// chunks and the chunks most lexically similar to the statement are
// kept, in document order, until the budget fills. Page hints bypass
// ranking entirely: cited pages are authoritative.
type windower struct {
	splitter textsplitter.RecursiveCharacter
}

func newWindower() *windower {
	s := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(windowChunkSize),
		textsplitter.WithChunkOverlap(windowChunkOverlap),
	)
	return &windower{splitter: s}
}

// Select returns the prompt content for doc, focused on pages when a
// page hint was given.
func (w *windower) Select(doc *datatypes.ParsedDocument, statement string, pages []int) string {
	if doc == nil {
		return ""
	}
	if len(pages) > 0 {
		if text := pageWindow(doc, pages); text != "" {
			return text
		}
	}

	full := doc.FullText()
	if len(full) <= maxContextChars {
		return full
	}
	return w.rankedWindow(full, statement)
}

func pageWindow(doc *datatypes.ParsedDocument, pages []int) string {
	want := map[int]bool{}
	for _, p := range pages {
		want[p] = true
	}
	var b strings.Builder
	for _, page := range doc.Pages {
		if !want[page.Number] {
			continue
		}
		b.WriteString("\n[PAGE ")
		b.WriteString(strconv.Itoa(page.Number))
		b.WriteString("]\n")
		b.WriteString(page.Text)
		b.WriteString("\n")
	}
	return b.String()
}

func (w *windower) rankedWindow(full, statement string) string {
	chunks, err := w.splitter.SplitText(full)
	if err != nil || len(chunks) == 0 {
		if len(full) > maxContextChars {
			return full[:maxContextChars]
		}
		return full
	}

	stmtTokens := tokenize(statement)
	type scored struct {
		index int
		score float64
	}
	ranked := make([]scored, len(chunks))
	for i, chunk := range chunks {
		set := tokenSet(chunk)
		hit := 0
		for _, t := range stmtTokens {
			if set[t] {
				hit++
			}
		}
		score := 0.0
		if len(stmtTokens) > 0 {
			score = float64(hit) / float64(len(stmtTokens))
		}
		ranked[i] = scored{index: i, score: score}
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].score > ranked[b].score })

	budget := 0
	keep := map[int]bool{}
	for _, r := range ranked {
		if budget+len(chunks[r.index]) > maxContextChars {
			continue
		}
		keep[r.index] = true
		budget += len(chunks[r.index])
	}

	// Reassemble in document order so the model reads coherent prose.
	var parts []string
	for i, chunk := range chunks {
		if keep[i] {
			parts = append(parts, chunk)
		}
	}
	return strings.Join(parts, "\n...\n")
}
