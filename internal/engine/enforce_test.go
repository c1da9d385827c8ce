package engine_test

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eng "github.com/reoring/wirejson/internal/engine"
)

type sliceSource struct {
	toks []eng.Token
	i    int
}

func (s *sliceSource) NextToken() (eng.Token, error) {
	if s.i >= len(s.toks) {
		return eng.Token{}, io.EOF
	}
	t := s.toks[s.i]
	s.i++
	return t, nil
}

func (s *sliceSource) Location() int64 {
	if s.i == 0 {
		return 0
	}
	return s.toks[s.i-1].Offset
}

func obj(keys ...string) []eng.Token {
	out := []eng.Token{{Kind: eng.KindBeginObject}}
	for i, k := range keys {
		out = append(out, eng.Token{Kind: eng.KindKey, String: k}, eng.Token{Kind: eng.KindNumber, Number: "1", Offset: int64(10 * (i + 1))})
	}
	return append(out, eng.Token{Kind: eng.KindEndObject, Offset: int64(10*len(keys) + 5)})
}

func drain(src eng.TokenSource) error {
	for {
		if _, err := src.NextToken(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func TestWrapWithEnforcement_DisabledIsIdentity(t *testing.T) {
	inner := &sliceSource{toks: obj("a")}
	assert.Same(t, eng.TokenSource(inner), eng.WrapWithEnforcement(inner, eng.EnforceOptions{}))
}

func TestWrapWithEnforcement_Duplicates(t *testing.T) {
	t.Run("error", func(t *testing.T) {
		src := eng.WrapWithEnforcement(&sliceSource{toks: obj("a", "b", "a")}, eng.EnforceOptions{OnDuplicate: eng.DupError})
		err := drain(src)
		var ie eng.IssueError
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, "duplicate_key", ie.Code)
		assert.Equal(t, "/a", ie.Path)
	})
	t.Run("warn", func(t *testing.T) {
		var got []eng.SimpleIssue
		src := eng.WrapWithEnforcement(&sliceSource{toks: obj("a", "a")}, eng.EnforceOptions{
			OnDuplicate: eng.DupWarn,
			IssueSink:   func(si eng.SimpleIssue) { got = append(got, si) },
		})
		require.NoError(t, drain(src))
		require.Len(t, got, 1)
		assert.Equal(t, "duplicate_key", got[0].Code)
	})
	t.Run("sibling objects do not share keys", func(t *testing.T) {
		toks := []eng.Token{{Kind: eng.KindBeginArray}}
		toks = append(toks, obj("a")...)
		toks = append(toks, obj("a")...)
		toks = append(toks, eng.Token{Kind: eng.KindEndArray})
		src := eng.WrapWithEnforcement(&sliceSource{toks: toks}, eng.EnforceOptions{OnDuplicate: eng.DupError})
		assert.NoError(t, drain(src))
	})
}

func TestWrapWithEnforcement_MaxDepth(t *testing.T) {
	toks := []eng.Token{
		{Kind: eng.KindBeginObject},
		{Kind: eng.KindKey, String: "x/y"},
		{Kind: eng.KindBeginArray},
		{Kind: eng.KindBeginArray},
		{Kind: eng.KindEndArray},
		{Kind: eng.KindEndArray},
		{Kind: eng.KindEndObject},
	}
	src := eng.WrapWithEnforcement(&sliceSource{toks: toks}, eng.EnforceOptions{MaxDepth: 2})
	var ie eng.IssueError
	require.ErrorAs(t, drain(src), &ie)
	assert.Equal(t, "parse_error", ie.Code)
	assert.Equal(t, "/x~1y/0", ie.Path)

	src = eng.WrapWithEnforcement(&sliceSource{toks: toks}, eng.EnforceOptions{MaxDepth: 3})
	assert.NoError(t, drain(src))
}

func TestWrapWithEnforcement_MaxBytes(t *testing.T) {
	src := eng.WrapWithEnforcement(&sliceSource{toks: obj("a", "b", "c")}, eng.EnforceOptions{MaxBytes: 25})
	var ie eng.IssueError
	require.ErrorAs(t, drain(src), &ie)
	assert.Equal(t, "truncated", ie.Code)
	assert.Equal(t, "/c", ie.Path)
}

func TestJoinPointer(t *testing.T) {
	assert.Equal(t, "/a~0b~1c", eng.JoinPointer("", "a~b/c"))
	assert.Equal(t, "/", eng.PointerOrRoot(""))
	assert.Equal(t, "/x", eng.PointerOrRoot("/x"))
}

func TestKeyTracker(t *testing.T) {
	// {"k":"v","arr":["s",{"n":"m"}]}
	var k eng.KeyTracker
	k.Open(true)
	assert.True(t, k.IsKey())  // "k"
	assert.False(t, k.IsKey()) // "v"
	assert.True(t, k.IsKey())  // "arr"
	k.Open(false)
	assert.False(t, k.IsKey()) // "s"
	k.Open(true)
	assert.True(t, k.IsKey())  // "n"
	assert.False(t, k.IsKey()) // "m"
	k.Close()
	k.Close()
	k.Close()
	assert.False(t, k.IsKey(), "top-level strings are values")
}
