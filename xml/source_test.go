package xml_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.h4codec.dev/h4/xml"
)

func drain(t *testing.T, src xml.ISource) string {
	t.Helper()

	var out []rune

	for src.More() {
		r, ok := src.Current()
		require.True(t, ok)

		out = append(out, r)
		require.NoError(t, src.Next())
	}

	return string(out)
}

func TestBufferSourceDecodesUTF8(t *testing.T) {
	t.Parallel()

	src, err := xml.NewBufferSource([]byte("<r>café</r>"))
	require.NoError(t, err)
	assert.Equal(t, "<r>café</r>", drain(t, src))
}

func TestBufferSourceStripsUTF8BOM(t *testing.T) {
	t.Parallel()

	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("<r/>")...)

	src, err := xml.NewBufferSource(input)
	require.NoError(t, err)
	assert.Equal(t, "<r/>", drain(t, src))
}

func TestBufferSourceDecodesUTF16LEWithBOM(t *testing.T) {
	t.Parallel()

	text := "<r/>"
	buf := []byte{0xFF, 0xFE}

	for _, r := range text {
		buf = append(buf, byte(r), 0)
	}

	src, err := xml.NewBufferSource(buf)
	require.NoError(t, err)
	assert.Equal(t, text, drain(t, src))
}

func TestBufferSourceNormalizesCRLFAndCR(t *testing.T) {
	t.Parallel()

	src, err := xml.NewBufferSource([]byte("<r>A\r\nB\rC</r>"))
	require.NoError(t, err)
	assert.Equal(t, "<r>A\nB\nC</r>", drain(t, src))
}

func TestBufferSourceBackupRewindsPosition(t *testing.T) {
	t.Parallel()

	src, err := xml.NewBufferSource([]byte("abcdef"))
	require.NoError(t, err)

	require.NoError(t, src.Next())
	require.NoError(t, src.Next())
	require.NoError(t, src.Next())

	src.Backup(2)
	r, ok := src.Current()
	require.True(t, ok)
	assert.Equal(t, 'b', r)
}

func TestMatchConsumesAtomically(t *testing.T) {
	t.Parallel()

	src, err := xml.NewBufferSource([]byte("<?xml?>"))
	require.NoError(t, err)

	assert.True(t, xml.Match(src, []rune("<?xml")))
	assert.Equal(t, int64(5), src.Position())

	assert.False(t, xml.Match(src, []rune("nope")))
	assert.Equal(t, int64(5), src.Position())
}

func TestBufferDestinationAddRune(t *testing.T) {
	t.Parallel()

	dst := xml.NewBufferDestination()
	require.NoError(t, dst.AddRune('é'))
	require.NoError(t, dst.Add([]byte("lan")))
	assert.Equal(t, "élan", string(dst.Bytes()))
}
