// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifiesEachKind(t *testing.T) {
	buf := []byte("[General]\n# a comment\n; also a comment\n\nkey = value\nbare line\n")
	toks := Tokenize(buf)

	require.Equal(t, KindSection, toks[0].Kind)
	require.Equal(t, "[General]", toks[0].Marker)
	require.Equal(t, 1, toks[0].Cursor)

	require.Equal(t, KindComment, toks[1].Kind)
	require.Equal(t, KindComment, toks[2].Kind)
	require.Equal(t, KindBlank, toks[3].Kind)

	require.Equal(t, KindKeyValue, toks[4].Kind)
	require.Equal(t, "key", toks[4].Key)
	require.Equal(t, "value", toks[4].Value)

	require.Equal(t, KindBareString, toks[5].Kind)
	require.Equal(t, "bare line", toks[5].Text)
}

func TestConsecutiveBlankLinesCollapse(t *testing.T) {
	buf := []byte("a = 1\n\n\n\nb = 2\n")
	toks := Tokenize(buf)
	require.Len(t, toks, 3)
	require.Equal(t, KindKeyValue, toks[0].Kind)
	require.Equal(t, KindBlank, toks[1].Kind)
	require.Equal(t, KindKeyValue, toks[2].Kind)
}

func TestKeyValueSplitsAtFirstEquals(t *testing.T) {
	toks := Tokenize([]byte("a = b = c\n"))
	require.Equal(t, "a", toks[0].Key)
	require.Equal(t, "b = c", toks[0].Value)
}

func TestDoubleQuotedValueExpandsEscapedNewline(t *testing.T) {
	toks := Tokenize([]byte(`note = "line one\nline two"` + "\n"))
	require.Equal(t, "line one\nline two", toks[0].Value)
}

func TestSingleQuotedValueTakenVerbatim(t *testing.T) {
	toks := Tokenize([]byte(`note = 'a\nb'` + "\n"))
	require.Equal(t, `a\nb`, toks[0].Value)
}

func TestMalformedLineBecomesBareString(t *testing.T) {
	toks := Tokenize([]byte("[unterminated\n"))
	require.Equal(t, KindBareString, toks[0].Kind)
	require.Equal(t, "[unterminated", toks[0].Text)
}

func TestCursorIncrementsPerTokenIncludingIgnored(t *testing.T) {
	buf := []byte("# c1\n[General]\nkey = value\n")
	toks := Tokenize(buf)
	require.Equal(t, 1, toks[0].Cursor)
	require.Equal(t, 2, toks[1].Cursor)
	require.Equal(t, 3, toks[2].Cursor)
}

func TestEmptyInputProducesNoTokens(t *testing.T) {
	require.Empty(t, Tokenize(nil))
	require.Empty(t, Tokenize([]byte{}))
}

func TestCRLFTolerated(t *testing.T) {
	toks := Tokenize([]byte("key = value\r\n"))
	require.Equal(t, KindKeyValue, toks[0].Kind)
	require.Equal(t, "value", toks[0].Value)
}
