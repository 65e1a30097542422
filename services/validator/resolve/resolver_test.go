// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianVerify/services/validator/datatypes"
	"github.com/AleutianAI/AleutianVerify/services/validator/extract"
)

func unitsCiting(ids ...string) []datatypes.ValidationUnit {
	units := make([]datatypes.ValidationUnit, len(ids))
	for i, id := range ids {
		units[i] = datatypes.ValidationUnit{Statement: "s", ReferenceIDs: []string{id}}
	}
	return units
}

func docsNamed(names ...string) []datatypes.ReferenceDocument {
	docs := make([]datatypes.ReferenceDocument, len(names))
	for i, n := range names {
		docs[i] = datatypes.ReferenceDocument{Identity: n}
	}
	return docs
}

func TestResolveIdentityMatch(t *testing.T) {
	docs := docsNamed("1", "2")
	table, order := NewResolver(nil).Resolve(unitsCiting("2"), docs, extract.ReferenceList{})

	require.Equal(t, []string{"2"}, order)
	r, ok := table.Lookup("2")
	require.True(t, ok)
	assert.Equal(t, datatypes.ResolveIdentity, r.Method)
	assert.Equal(t, "2", r.Doc.Identity)
}

func TestResolveAuthorYearMatch(t *testing.T) {
	docs := docsNamed("Smith_2019_fever_study.pdf", "unrelated.pdf")
	refs := extract.ReferenceList{Entries: map[string]string{
		"1": "Smith J. Fever reduction in children. 2019.",
	}}
	table, _ := NewResolver(nil).Resolve(unitsCiting("1"), docs, refs)

	r, ok := table.Lookup("1")
	require.True(t, ok)
	assert.Equal(t, datatypes.ResolveAuthorYear, r.Method)
	assert.Equal(t, "Smith_2019_fever_study.pdf", r.Doc.Identity)
}

func TestResolveLeadingNumberMatch(t *testing.T) {
	docs := docsNamed("3. Brown dosing guidance.pdf", "7_other.pdf")
	table, _ := NewResolver(nil).Resolve(unitsCiting("3"), docs, extract.ReferenceList{})

	r, ok := table.Lookup("3")
	require.True(t, ok)
	assert.Equal(t, datatypes.ResolveLeadingNumber, r.Method)
	assert.Equal(t, "3. Brown dosing guidance.pdf", r.Doc.Identity)
}

func TestResolvePositionalFallback(t *testing.T) {
	// Nothing matches by content: ids bind to documents by first
	// appearance order.
	docs := docsNamed("alpha.pdf", "beta.pdf")
	units := []datatypes.ValidationUnit{
		{ReferenceIDs: []string{"12", "34"}},
		{ReferenceIDs: []string{"12"}}, // repeat must not shift positions
	}
	table, order := NewResolver(nil).Resolve(units, docs, extract.ReferenceList{})

	require.Equal(t, []string{"12", "34"}, order)
	r1, _ := table.Lookup("12")
	r2, _ := table.Lookup("34")
	assert.Equal(t, datatypes.ResolvePosition, r1.Method)
	assert.Equal(t, "alpha.pdf", r1.Doc.Identity)
	assert.Equal(t, "beta.pdf", r2.Doc.Identity)
}

func TestResolveContentBeatsPosition(t *testing.T) {
	docs := docsNamed("9. positional_decoy.pdf")
	table, _ := NewResolver(nil).Resolve(unitsCiting("9"), docs, extract.ReferenceList{})

	r, ok := table.Lookup("9")
	require.True(t, ok)
	assert.Equal(t, datatypes.ResolveLeadingNumber, r.Method,
		"content layers must run before position")
}

func TestResolveUnresolvedRetained(t *testing.T) {
	table, order := NewResolver(nil).Resolve(unitsCiting("5", "6"), docsNamed("x.pdf"), extract.ReferenceList{})

	require.Equal(t, []string{"5", "6"}, order)
	// "5" falls back to position 0; "6" has no document at position 1.
	_, ok := table.Lookup("5")
	assert.True(t, ok)
	_, ok = table.Lookup("6")
	assert.False(t, ok, "unresolved ids stay out of the table but in the order slice")
}

func TestResolveNoDocuments(t *testing.T) {
	table, order := NewResolver(nil).Resolve(unitsCiting("1"), nil, extract.ReferenceList{})
	assert.Empty(t, table)
	assert.Equal(t, []string{"1"}, order)
}
