package scnpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestU16LE(t *testing.T) {
	data := []byte{0x34, 0x12, 0xFF}
	v, err := u16LE(data, 0)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), v)

	_, err = u16LE(data, 2)
	assert.ErrorIs(t, err, ErrParseBounds)
}

func TestU32LE(t *testing.T) {
	data := []byte{0x78, 0x56, 0x34, 0x12}
	v, err := u32LE(data, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x12345678), v)

	_, err = u32LE(data, 1)
	assert.ErrorIs(t, err, ErrParseBounds)
}

func TestReadBytes(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	out, err := readBytes(data, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 3}, out)

	// returned slice is a copy, not an alias of the source.
	out[0] = 0xFF
	assert.Equal(t, byte(2), data[1])

	_, err = readBytes(data, 3, 5)
	assert.ErrorIs(t, err, ErrParseBounds)
}

func TestAppendLE(t *testing.T) {
	assert.Equal(t, []byte{0x34, 0x12}, appendU16LE(nil, 0x1234))
	assert.Equal(t, []byte{0x78, 0x56, 0x34, 0x12}, appendU32LE(nil, 0x12345678))
}
