package json_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.h4codec.dev/h4/json"
	"go.h4codec.dev/h4/stringtest"
)

func parseString(t *testing.T, s string, opts ...json.Option) (*json.Node, error) {
	t.Helper()

	return json.Parse(json.NewBufferSource([]byte(s)), opts...)
}

func stringify(t *testing.T, n *json.Node, opts ...json.Option) string {
	t.Helper()

	dst := json.NewBufferDestination()
	require.NoError(t, json.Stringify(n, dst, opts...))

	return string(dst.Bytes())
}

func TestParseScalars(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input    string
		wantKind json.Kind
	}{
		"true":    {input: "true", wantKind: json.KindBoolean},
		"false":   {input: "false", wantKind: json.KindBoolean},
		"null":    {input: "null", wantKind: json.KindNull},
		"number":  {input: "42", wantKind: json.KindNumber},
		"string":  {input: `"hi"`, wantKind: json.KindString},
		"array":   {input: "[1,2]", wantKind: json.KindArray},
		"object":  {input: `{"a":1}`, wantKind: json.KindObject},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			node, err := parseString(t, tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.wantKind, node.Kind)
		})
	}
}

func TestDuplicateKeyRejected(t *testing.T) {
	t.Parallel()

	_, err := parseString(t, `{"a":1,"a":2}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, json.ErrDuplicateKey)
}

func TestTrailingCommaRejected(t *testing.T) {
	t.Parallel()

	_, err := parseString(t, `[1,2,]`)
	require.Error(t, err)

	_, err = parseString(t, `{"a":1,}`)
	require.Error(t, err)
}

func TestNumberLexemePreserved(t *testing.T) {
	t.Parallel()

	node, err := parseString(t, "1.0e2")
	require.NoError(t, err)

	lexeme, ok := node.Lexeme()
	require.True(t, ok)
	assert.Equal(t, "1.0e2", lexeme)

	v, err := node.Float64()
	require.NoError(t, err)
	assert.Equal(t, 100.0, v)

	assert.Equal(t, "1.0e2", stringify(t, node))
}

func TestSurrogatePairDecoded(t *testing.T) {
	t.Parallel()

	node, err := parseString(t, "\"\\uD83D\\uDE00\"")
	require.NoError(t, err)

	s, ok := node.Str()
	require.True(t, ok)
	assert.Equal(t, "😀", s)

	assert.Equal(t, `"\ud83d\ude00"`, stringify(t, node, json.WithASCIIEscape(true)))
	assert.Equal(t, "\"😀\"", stringify(t, node, json.WithASCIIEscape(false)))
}

func TestObjectInsertionOrderPreserved(t *testing.T) {
	t.Parallel()

	node, err := parseString(t, `{"b":1,"a":2}`)
	require.NoError(t, err)

	members, ok := node.Members()
	require.True(t, ok)
	require.Len(t, members, 2)
	assert.Equal(t, "b", members[0].Key)
	assert.Equal(t, "a", members[1].Key)

	assert.Equal(t, `{"b":1,"a":2}`, stringify(t, node))
}

func TestPrettyPrint(t *testing.T) {
	t.Parallel()

	node, err := parseString(t, `{"a":[1,2]}`)
	require.NoError(t, err)

	got := stringify(t, node, json.WithIndent(2))
	want := stringtest.JoinLF(
		"{",
		"  \"a\": [",
		"    1,",
		"    2",
		"  ]",
		"}",
	)
	assert.Equal(t, want, got)
}

func TestTopLevelScalarAllowed(t *testing.T) {
	t.Parallel()

	node, err := parseString(t, `"just a string"`)
	require.NoError(t, err)

	s, ok := node.Str()
	require.True(t, ok)
	assert.Equal(t, "just a string", s)
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		`{"a":1,"b":[true,false,null],"c":"hi"}`,
		"[1,2,3]",
		`"abc"`,
	}

	for _, in := range inputs {
		node, err := parseString(t, in)
		require.NoError(t, err)

		out := stringify(t, node)

		node2, err := parseString(t, out)
		require.NoError(t, err)
		assert.Equal(t, stringify(t, node2), out)
	}
}
