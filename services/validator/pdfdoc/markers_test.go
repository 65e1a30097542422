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
	"reflect"
	"testing"
)

func TestFoldSuperscripts(t *testing.T) {
	cases := []struct{ in, want string }{
		{"amikacin¹²", "amikacin12"},
		{"risk¹,³", "risk1,3"},
		{"pH⁽⁷⁾", "pH(7)"},
		{"x⁻¹", "x-1"},
		{"plain text", "plain text"},
	}
	for _, c := range cases {
		if got := FoldSuperscripts(c.in); got != c.want {
			t.Errorf("FoldSuperscripts(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSplitCell(t *testing.T) {
	cases := []struct {
		in      string
		text    string
		markers []string
	}{
		{"amikacin1,2", "amikacin", []string{"1", "2"}},
		{"ceftriaxone3-5", "ceftriaxone", []string{"3", "4", "5"}},
		{"plain drug", "plain drug", nil},
		// Numeric ranges are values, never citation markers.
		{"3.5-5.5", "3.5-5.5", nil},
		{"4-6", "4-6", nil},
	}
	for _, c := range cases {
		text, markers := SplitCell(c.in)
		if text != c.text || !reflect.DeepEqual(markers, c.markers) {
			t.Errorf("SplitCell(%q) = (%q, %v), want (%q, %v)", c.in, text, markers, c.text, c.markers)
		}
	}
}

func TestSplitMarkers(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"1", []string{"1"}},
		{"1,2", []string{"1", "2"}},
		{"1, 3-5", []string{"1", "3", "4", "5"}},
		{"2,2,2", []string{"2"}},
		{"7–9", []string{"7", "8", "9"}}, // en dash
		{"", nil},
	}
	for _, c := range cases {
		if got := SplitMarkers(c.in); !reflect.DeepEqual(got, c.want) {
			t.Errorf("SplitMarkers(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestSplitMarkersRejectsHugeRanges(t *testing.T) {
	got := SplitMarkers("1-999")
	if len(got) != 0 {
		t.Errorf("SplitMarkers(1-999) expanded to %d ids, want none", len(got))
	}
}

func TestIsNumericRange(t *testing.T) {
	yes := []string{"3.5-5.5", "4-6", "7.0 - 9.0"}
	no := []string{"1,2", "amikacin", "pH"}
	for _, s := range yes {
		if !IsNumericRange(s) {
			t.Errorf("IsNumericRange(%q) = false, want true", s)
		}
	}
	for _, s := range no {
		if IsNumericRange(s) {
			t.Errorf("IsNumericRange(%q) = true, want false", s)
		}
	}
}
