// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePageHints(t *testing.T) {
	hints, err := parsePageHints([]string{"3=5-7", "12 = 4"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"3": "5-7", "12": "4"}, hints)
}

func TestParsePageHintsEmpty(t *testing.T) {
	hints, err := parsePageHints(nil)
	require.NoError(t, err)
	assert.Nil(t, hints)
}

func TestParsePageHintsRejectsMalformed(t *testing.T) {
	for _, bad := range []string{"3", "=5", "3=", "="} {
		_, err := parsePageHints([]string{bad})
		assert.Error(t, err, "input %q", bad)
	}
}

func TestExpandRefArgSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ref.pdf")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	paths, err := expandRefArg(path)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, paths)
}

func TestExpandRefArgDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.pdf", "b.PDF", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	paths, err := expandRefArg(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.pdf"),
		filepath.Join(dir, "b.PDF"),
	}, paths, "only PDF entries, case-insensitive, no recursion")
}

func TestExpandRefArgEmptyDirectory(t *testing.T) {
	_, err := expandRefArg(t.TempDir())
	assert.Error(t, err)
}

func TestExpandRefArgMissing(t *testing.T) {
	_, err := expandRefArg(filepath.Join(t.TempDir(), "nope.pdf"))
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly10!", truncate("exactly10!", 10))
	assert.Equal(t, "a long s...", truncate("a long statement here", 11))
}
