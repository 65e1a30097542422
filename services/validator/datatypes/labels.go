// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import "strings"

// VerdictLabel is the closed adjudication taxonomy.
//
// A model response carrying any other label is downgraded to LabelNotFound
// by the verdict engine; the taxonomy itself never grows at runtime.
type VerdictLabel string

const (
	LabelSupported          VerdictLabel = "Supported"
	LabelStronglySupported  VerdictLabel = "Strongly Supported"
	LabelPartiallySupported VerdictLabel = "Partially Supported"
	LabelContradicted       VerdictLabel = "Contradicted"
	LabelNotFound           VerdictLabel = "Not Found"
)

// AllLabels lists the closed taxonomy in certainty order.
func AllLabels() []VerdictLabel {
	return []VerdictLabel{
		LabelStronglySupported,
		LabelSupported,
		LabelPartiallySupported,
		LabelContradicted,
		LabelNotFound,
	}
}

// ParseLabel maps free-form model output onto the closed taxonomy.
//
// Matching is case-insensitive and tolerant of surrounding whitespace and
// underscore/hyphen separators ("strongly_supported", "not-found"). The
// second return value reports whether the input named a known label.
func ParseLabel(s string) (VerdictLabel, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", " ", "-", " ").Replace(norm)
	norm = strings.Join(strings.Fields(norm), " ")

	switch norm {
	case "supported":
		return LabelSupported, true
	case "strongly supported":
		return LabelStronglySupported, true
	case "partially supported", "partial support":
		return LabelPartiallySupported, true
	case "contradicted":
		return LabelContradicted, true
	case "not found", "not mentioned":
		return LabelNotFound, true
	}
	return LabelNotFound, false
}

// Weight returns the label's certainty weight used in confidence scoring.
//
// Strong findings (strong support or contradiction) carry full weight;
// partial support is discounted; an absence finding carries the least.
func (l VerdictLabel) Weight() float64 {
	switch l {
	case LabelStronglySupported, LabelContradicted:
		return 1.0
	case LabelSupported:
		return 0.9
	case LabelPartiallySupported:
		return 0.7
	case LabelNotFound:
		return 0.4
	default:
		return 0.0
	}
}
