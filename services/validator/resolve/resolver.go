// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package resolve maps cited reference ids onto supplied reference
// documents. Matching runs in strictly decreasing confidence: exact
// identity, author+year tokens in the filename, leading filename
// number, then position. Positional assignment is the last resort
// because it silently misbinds whenever the upload order differs from
// the citation order.
package resolve

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/AleutianAI/AleutianVerify/services/validator/datatypes"
	"github.com/AleutianAI/AleutianVerify/services/validator/extract"
)

// publicationYear finds a plausible four-digit year in reference text.
var publicationYear = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// alphaWord finds author-name candidates: alphabetic tokens of three or
// more characters. The first such token in a reference entry is almost
// always the lead author's surname.
var alphaWord = regexp.MustCompile(`\b[a-zA-Z]{3,}\b`)

// filenameSplit separates a filename's leading number from the rest.
var filenameSplit = regexp.MustCompile(`[.\s_-]`)

// Table is the run-wide resolution result: reference id → document.
// Ids that resolved to nothing are absent; callers decide what an
// unresolved citation means downstream.
type Table map[string]datatypes.ResolvedReference

// Lookup returns the resolution for id.
func (t Table) Lookup(id string) (datatypes.ResolvedReference, bool) {
	r, ok := t[id]
	return r, ok
}

// Resolver binds citation ids to reference documents.
type Resolver struct {
	log *slog.Logger
}

// NewResolver creates a Resolver. A nil logger gets slog.Default().
func NewResolver(log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{log: log}
}

// Resolve builds the resolution table for one run.
//
// The positional fallback maps the Nth distinct cited id, in order of
// first appearance across units, to the Nth supplied document — but only
// for ids the content-based layers left unresolved, and only while a
// document at that position exists. Every distinct id appears in the
// returned order slice whether or not it resolved.
func (r *Resolver) Resolve(units []datatypes.ValidationUnit, docs []datatypes.ReferenceDocument, refs extract.ReferenceList) (Table, []string) {
	order := distinctIDs(units)
	table := make(Table, len(order))

	for _, id := range order {
		if doc, method, ok := r.matchContent(id, refs.Lookup(id), docs); ok {
			table[id] = datatypes.ResolvedReference{ID: id, Doc: doc, Method: method}
			r.log.Debug("reference resolved", "id", id, "method", method, "doc", doc.Identity)
		}
	}

	for pos, id := range order {
		if _, done := table[id]; done || pos >= len(docs) {
			continue
		}
		table[id] = datatypes.ResolvedReference{
			ID:     id,
			Doc:    &docs[pos],
			Method: datatypes.ResolvePosition,
		}
		r.log.Debug("reference resolved by position", "id", id, "position", pos, "doc", docs[pos].Identity)
	}

	for _, id := range order {
		if _, ok := table[id]; !ok {
			r.log.Warn("reference unresolved", "id", id)
		}
	}
	return table, order
}

// matchContent runs the identity, author+year and leading-number layers.
func (r *Resolver) matchContent(id, refText string, docs []datatypes.ReferenceDocument) (*datatypes.ReferenceDocument, string, bool) {
	for i := range docs {
		if docs[i].Identity == id {
			return &docs[i], datatypes.ResolveIdentity, true
		}
	}

	if author, year, ok := authorYear(refText); ok {
		for i := range docs {
			name := strings.ToLower(stem(docs[i].Identity))
			if strings.Contains(name, author) && strings.Contains(name, year) {
				return &docs[i], datatypes.ResolveAuthorYear, true
			}
		}
	}

	for i := range docs {
		if leadingNumber(docs[i].Identity) == id {
			return &docs[i], datatypes.ResolveLeadingNumber, true
		}
	}

	return nil, "", false
}

// authorYear extracts the lead-author token and publication year from a
// reference entry's text.
func authorYear(refText string) (author, year string, ok bool) {
	text := strings.ToLower(strings.TrimSpace(refText))
	if text == "" {
		return "", "", false
	}
	year = publicationYear.FindString(text)
	if year == "" {
		return "", "", false
	}
	author = alphaWord.FindString(text)
	if author == "" {
		return "", "", false
	}
	return author, year, true
}

// leadingNumber returns the filename's leading numeric token, or "".
func leadingNumber(identity string) string {
	first := filenameSplit.Split(strings.TrimSpace(identity), 2)[0]
	if first == "" {
		return ""
	}
	for _, c := range first {
		if c < '0' || c > '9' {
			return ""
		}
	}
	return first
}

func stem(identity string) string {
	if i := strings.LastIndex(identity, "."); i > 0 {
		return identity[:i]
	}
	return identity
}

// distinctIDs returns every cited id once, in order of first appearance.
func distinctIDs(units []datatypes.ValidationUnit) []string {
	seen := map[string]bool{}
	var order []string
	for _, u := range units {
		for _, id := range u.ReferenceIDs {
			if !seen[id] {
				seen[id] = true
				order = append(order, id)
			}
		}
	}
	return order
}
