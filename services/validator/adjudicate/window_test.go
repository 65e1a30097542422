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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AleutianAI/AleutianVerify/services/validator/datatypes"
)

func TestParsePageReference(t *testing.T) {
	tests := []struct {
		in   string
		want []int
	}{
		{"5", []int{5}},
		{"5-7", []int{5, 6, 7}},
		{"5,7,9", []int{5, 7, 9}},
		{"5, 7-9", []int{5, 7, 8, 9}},
		{"7,5", []int{5, 7}},
		{"3,3,3", []int{3}},
		{"9-5", nil},
		{"p. 12", nil},
		{"", nil},
		{"0", nil},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ParsePageReference(tc.in), "input %q", tc.in)
	}
}

func TestWindowPageHintBypassesRanking(t *testing.T) {
	doc := &datatypes.ParsedDocument{
		Pages: []datatypes.Page{
			{Number: 1, Text: "introduction text"},
			{Number: 2, Text: "stability results"},
			{Number: 3, Text: "references"},
		},
	}

	out := newWindower().Select(doc, "anything", []int{2})
	assert.Contains(t, out, "[PAGE 2]")
	assert.Contains(t, out, "stability results")
	assert.NotContains(t, out, "introduction text")
}

func TestWindowHintOutOfRangeFallsBack(t *testing.T) {
	doc := &datatypes.ParsedDocument{
		Pages: []datatypes.Page{{Number: 1, Text: "only page"}},
	}
	out := newWindower().Select(doc, "x", []int{42})
	assert.Contains(t, out, "only page", "a miss on the hinted page must not return an empty window")
}

func TestWindowSmallDocVerbatim(t *testing.T) {
	doc := &datatypes.ParsedDocument{
		Pages: []datatypes.Page{{Number: 1, Text: "short body"}},
	}
	out := newWindower().Select(doc, "x", nil)
	assert.Equal(t, doc.FullText(), out)
}

func TestWindowOversizedDocKeepsRelevantChunks(t *testing.T) {
	filler := strings.Repeat("unrelated pharmacology background. ", 40)
	var b strings.Builder
	for b.Len() < maxContextChars+windowChunkSize {
		b.WriteString(filler)
		b.WriteString("\n\n")
	}
	b.WriteString("\n\namikacin retains potency in saline for twenty four hours\n\n")
	b.WriteString(filler)

	doc := &datatypes.ParsedDocument{Pages: []datatypes.Page{{Number: 1, Text: b.String()}}}
	out := newWindower().Select(doc, "amikacin potency saline hours", nil)

	assert.LessOrEqual(t, len(out), maxContextChars+len("\n...\n")*8)
	assert.Contains(t, out, "amikacin retains potency")
}

func TestWindowNilDoc(t *testing.T) {
	assert.Empty(t, newWindower().Select(nil, "x", nil))
}

func TestNormalizeConfidenceFloorsDegraded(t *testing.T) {
	verdicts := []datatypes.Verdict{
		{MatchingMethod: datatypes.MethodTokenOverlap, Confidence: 1.7},
		{MatchingMethod: datatypes.MethodUnverifiedQuote, Confidence: -0.2},
		{MatchingMethod: datatypes.MethodTimeout, Confidence: 0.9},
		{MatchingMethod: datatypes.MethodRefNotFound, Confidence: 0.5},
	}
	NormalizeConfidence(verdicts)

	assert.Equal(t, 1.0, verdicts[0].Confidence)
	assert.Equal(t, 0.0, verdicts[1].Confidence)
	assert.Equal(t, 0.0, verdicts[2].Confidence, "degraded verdicts keep no model score")
	assert.Equal(t, 0.0, verdicts[3].Confidence)
}
