// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package normalize flattens extracted units into self-contained,
// adjudicable statements. Table rows lose their grid context once they
// leave the extractor, so the row's entity, value range and column
// labels are folded into a single sentence-like string here.
package normalize

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/AleutianAI/AleutianVerify/services/validator/datatypes"
	"github.com/AleutianAI/AleutianVerify/services/validator/extract"
	"github.com/AleutianAI/AleutianVerify/services/validator/pdfdoc"
)

// trailingRefs matches reference numerals that were folded into the end
// of a statement's text instead of arriving as cell markers ("... 1,2-4").
var trailingRefs = regexp.MustCompile(`[\s,]+([\d,\x{2013}-]+)\s*$`)

// Normalizer converts ExtractedUnits into ValidationUnits.
//
// Templates per schema:
//
//	matrix:      "{entity}. {range}. {col1}. {col2}."
//	instruction: "{entity}. {statement}. {column}."
//	narrative:   "{heading}. {statement}" (heading optional)
//
// Marker precedence for table rows: entity-cell markers win over markers
// collected from value cells; value-cell markers are used only when the
// entity cell carries none.
type Normalizer struct {
	log *slog.Logger

	// Heading, when set, is prepended to narrative statements that do
	// not already carry one (typically the source document's title).
	Heading string
}

// NewNormalizer creates a Normalizer. A nil logger gets slog.Default().
func NewNormalizer(log *slog.Logger) *Normalizer {
	if log == nil {
		log = slog.Default()
	}
	return &Normalizer{log: log}
}

// Normalize flattens units in order, resolving each unit's reference ids
// against the document's reference list. Units whose ids have no entry
// keep the id; the resolver decides what an unmatched id means.
func (n *Normalizer) Normalize(units []datatypes.ExtractedUnit, refs extract.ReferenceList) []datatypes.ValidationUnit {
	out := make([]datatypes.ValidationUnit, 0, len(units))
	for _, u := range units {
		v := n.normalizeUnit(u, refs)
		if v.Statement == "" {
			n.log.Debug("dropping empty unit", "page", u.PageNumber, "entity", u.Entity)
			continue
		}
		out = append(out, v)
	}
	return out
}

func (n *Normalizer) normalizeUnit(u datatypes.ExtractedUnit, refs extract.ReferenceList) datatypes.ValidationUnit {
	var statement string
	switch {
	case u.Entity != "":
		statement = n.flattenRow(u)
	default:
		statement = n.narrativeStatement(u)
	}

	ids := markerPrecedence(u)

	// Recover numerals that rode in on the statement text itself. Only
	// attempted when no marker survived extraction, so genuine dosage
	// numbers inside cited statements are never stripped.
	if len(ids) == 0 {
		if m := trailingRefs.FindStringSubmatchIndex(statement); m != nil {
			recovered := pdfdoc.SplitMarkers(statement[m[2]:m[3]])
			if len(recovered) > 0 {
				ids = recovered
				statement = strings.TrimSpace(statement[:m[0]])
			}
		}
	}

	return datatypes.ValidationUnit{
		Statement:       statement,
		ReferenceIDs:    dedupe(ids),
		SourcePage:      u.PageNumber,
		ReferenceText:   firstReferenceText(ids, refs),
		Uncited:         len(ids) == 0,
		SchemaAmbiguous: u.SchemaAmbiguous,
	}
}

// flattenRow applies the schema template to a table row.
func (n *Normalizer) flattenRow(u datatypes.ExtractedUnit) string {
	parts := []string{u.Entity}

	if u.Schema == datatypes.SchemaInstruction {
		if s := u.RawFields[datatypes.FieldStatement]; s != "" {
			parts = append(parts, s)
		}
		if c := u.RawFields[datatypes.FieldColumn]; c != "" {
			parts = append(parts, c)
		}
	} else {
		if r := u.RawFields[datatypes.FieldRange]; r != "" {
			parts = append(parts, r)
		}
		if cols := u.RawFields[datatypes.FieldColumns]; cols != "" {
			for _, col := range strings.Split(cols, ".") {
				if col = strings.TrimSpace(col); col != "" {
					parts = append(parts, col)
				}
			}
		}
	}

	for i, p := range parts {
		parts[i] = strings.TrimSuffix(strings.TrimSpace(p), ".")
	}
	return strings.Join(parts, ". ") + "."
}

func (n *Normalizer) narrativeStatement(u datatypes.ExtractedUnit) string {
	statement := strings.TrimSpace(u.RawFields[datatypes.FieldStatement])
	if n.Heading == "" || statement == "" {
		if statement == "" {
			return n.Heading
		}
		return statement
	}
	return n.Heading + ". " + statement
}

// markerPrecedence picks the unit's reference ids: entity-cell markers
// first, then the row-wide set.
func markerPrecedence(u datatypes.ExtractedUnit) []string {
	if len(u.EntityMarkers) > 0 {
		return u.EntityMarkers
	}
	return u.CitationMarkers
}

func dedupe(ids []string) []string {
	if len(ids) < 2 {
		return ids
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func firstReferenceText(ids []string, refs extract.ReferenceList) string {
	for _, id := range ids {
		if text := refs.Lookup(id); text != "" {
			return text
		}
	}
	return ""
}
