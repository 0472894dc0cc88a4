package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	input := []byte("the quick brown fox jumps over the lazy dog, repeatedly, many times over")
	compressed := Compress(input)
	out, err := Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, input, out)
}

func TestCompressStoresEveryByteAsLiteral(t *testing.T) {
	input := []byte{1, 2, 3, 4, 5}
	out := Compress(input)
	// 4-byte length prefix, then one all-literal flag byte (0xFF) followed by
	// the 5 input bytes verbatim.
	assert.Equal(t, []byte{5, 0, 0, 0, 0xFF, 1, 2, 3, 4, 5}, out)
}

func TestDecompressEmptyInput(t *testing.T) {
	_, err := Decompress(nil)
	assert.ErrorIs(t, err, ErrShortInput)
}

func TestDecompressBackReference(t *testing.T) {
	// "AB" literal, then a 3-byte back-reference whose bufferOffset (4078)
	// makes the decoder's ptr math land back on offset 0: output becomes
	// "AB" + "ABA" = "ABABA".
	var compressed []byte
	compressed = append(compressed, 5, 0, 0, 0) // decompressed size = 5
	compressed = append(compressed, 0b00000011) // bits 0-1 literal, bit 2 backref
	compressed = append(compressed, 'A', 'B')
	lo := byte(0xEE)
	hi := byte(0xF0) // nBytes = 3 + (hi&0x0F) = 3
	compressed = append(compressed, lo, hi)
	out, err := Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, []byte("ABABA"), out)
}

func TestDecompressTruncatedBackReference(t *testing.T) {
	compressed := []byte{2, 0, 0, 0, 0x00, 0xFF}
	_, err := Decompress(compressed)
	assert.ErrorIs(t, err, ErrShortInput)
}
