// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile_Basic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")

	if err := AtomicWriteFile(path, []byte("hello, world!"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(content) != "hello, world!" {
		t.Errorf("Content mismatch: got %q", string(content))
	}
}

func TestAtomicWriteFile_OverwritesAndLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	require.NoError(t, AtomicWriteFile(path, []byte("initial"), 0600))
	require.NoError(t, AtomicWriteFile(path, []byte("updated"), 0600))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "updated", string(content))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must be renamed or removed")
}

func TestAtomicWriteFile_CreatesOwnerOnlyParents(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on windows")
	}
	parent := filepath.Join(t.TempDir(), "shopdesk")
	path := filepath.Join(parent, "deep", "file")

	require.NoError(t, AtomicWriteFile(path, []byte("x"), 0600))

	info, err := os.Stat(parent)
	require.NoError(t, err)
	assert.Zero(t, info.Mode().Perm()&0077)

	info, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

// =============================================================================
// STRING TESTS
// =============================================================================

func TestTruncateRunes(t *testing.T) {
	testCases := []struct {
		input    string
		max      int
		expected string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 6, "hello…"},
		{"héllo wörld", 4, "hél…"},
		{"abc", 1, "a"},
		{"abc", 0, ""},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, TruncateRunes(tc.input, tc.max), "input %q max %d", tc.input, tc.max)
	}
}

func TestTruncateWidth(t *testing.T) {
	assert.Equal(t, "hello", TruncateWidth("hello", 5))
	assert.Equal(t, "hello w…", TruncateWidth("hello world", 8))
	assert.Equal(t, "日本…", TruncateWidth("日本語テキスト", 5))
	assert.Equal(t, "", TruncateWidth("anything", 0))
	assert.LessOrEqual(t, StringWidth(TruncateWidth("日本語", 1)), 1)
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab   ", PadRight("ab", 5))
	assert.Equal(t, "abcd…", PadRight("abcdefgh", 5))
	assert.Equal(t, 6, StringWidth(PadRight("日本", 6)))
	assert.Equal(t, 5, StringWidth(PadRight("日本語", 5)))
}

func TestRuneLen(t *testing.T) {
	assert.Equal(t, 5, RuneLen("héllo"))
	assert.Equal(t, 0, RuneLen(""))
}

// =============================================================================
// CONVERSION TESTS
// =============================================================================

func TestFormatCents(t *testing.T) {
	testCases := []struct {
		cents    int64
		expected string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{1999, "19.99"},
		{123456, "1,234.56"},
		{100000000, "1,000,000.00"},
		{-250, "-2.50"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, FormatCents(tc.cents))
	}
}

func TestParseCents(t *testing.T) {
	valid := map[string]int64{
		"12":       1200,
		"12.5":     1250,
		"12.05":    1205,
		"1,234.56": 123456,
		".99":      99,
		"-1.50":    -150,
		" 3 ":      300,
	}
	for in, want := range valid {
		got, err := ParseCents(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "abc", "1.234", "1.-5"} {
		_, err := ParseCents(in)
		assert.Error(t, err, in)
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "0:00", FormatClock(-time.Second))
	assert.Equal(t, "0:09", FormatClock(9*time.Second))
	assert.Equal(t, "2:05", FormatClock(125*time.Second))
	assert.Equal(t, "15:00", FormatClock(15*time.Minute))
}

func TestParseInt64(t *testing.T) {
	v, err := ParseInt64(" 42\n")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	_, err = ParseInt64("forty-two")
	assert.Error(t, err)
}
