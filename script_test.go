package scnpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario A, made internally consistent: the spec's literal header bytes
// and "5-byte total input, opcode at address 4" facts don't agree for an
// H=8 header (there would be no room left for a 5-byte file), so this
// fixture uses H=4 -- the value that actually satisfies both the opcode
// placement and the total length the scenario describes.
func TestScenarioA_SingleByteRoundTrip(t *testing.T) {
	data := []byte{0x04, 0x00, 0x00, 0x00, 0x05}
	script, err := Parse(data, CCFC)
	require.NoError(t, err)
	require.Len(t, script.Opcodes, 1)
	assert.IsType(t, &SingleByteOp{}, script.Opcodes[0])
	assert.Equal(t, uint32(4), script.Opcodes[0].Address())

	out, err := script.Emit()
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

// Scenario E: a Custom77 tip whose skip_bytes window, once the parser's
// bookkeeping (including its own 4-byte header) is unwound, fits exactly
// two of its three following 5-byte opcodes.
func TestScenarioE_TipSkipWindow(t *testing.T) {
	var data []byte
	data = append(data, 0x04, 0x00, 0x00, 0x00) // header, H=4
	data = append(data, 0x77, 0x01, 0x0C, 0x00) // tip: condition 1, skip_bytes 0x0C
	for i := 0; i < 3; i++ {
		data = append(data, 0x56, 0, 0, 0, 0) // Basic4 under CCFC (size 5)
	}

	script, err := Parse(data, CCFC)
	require.NoError(t, err)
	require.Len(t, script.Opcodes, 4)

	tip, ok := script.Opcodes[0].(*TipOp)
	require.True(t, ok)
	assert.Equal(t, uint16(2), tip.Skip)

	out, err := script.Emit()
	require.NoError(t, err)
	// The tip's trailing u16 is patched to 4 + 5 + 5 = 14 = 0x000E.
	assert.Equal(t, byte(0x0E), out[6])
	assert.Equal(t, byte(0x00), out[7])
}

// Scenario F: an unrecognized opcode byte is a fatal parse error, with the
// partially-built script (header only) still returned alongside it.
func TestScenarioF_UnknownOpcodeByte(t *testing.T) {
	data := make([]byte, 13)
	data[0] = 0x0C // H = 12
	data[12] = 0xAB

	script, err := Parse(data, CCFC)
	assert.ErrorIs(t, err, ErrParseOpcode)
	require.NotNil(t, script)
	assert.Empty(t, script.Opcodes)
	assert.Equal(t, data[0:12], script.Header)
}

func TestParseEndOfScriptHeuristicAndRoundTrip(t *testing.T) {
	data := []byte{
		0x04, 0x00, 0x00, 0x00, // header, H=4
		0x00,                   // single-byte
		0x21, 0, 0, 0, 0, 0, 0, // Basic6
		0x05, // terminator: fewer than 0x30 bytes remain
	}
	script, err := Parse(data, CCFC)
	require.NoError(t, err)
	require.Len(t, script.Opcodes, 3)

	var lastAddr uint32
	for i, op := range script.Opcodes {
		if i > 0 {
			assert.Greater(t, op.Address(), lastAddr)
		}
		lastAddr = op.Address()
	}

	out, err := script.Emit()
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestParseTipUnderflowIsFatal(t *testing.T) {
	data := []byte{
		0x04, 0x00, 0x00, 0x00,
		0x77, 0x00, 0x01, 0x00, // skip_bytes = 1, underflows the -3 bookkeeping
	}
	_, err := Parse(data, CCFC)
	assert.ErrorIs(t, err, ErrTipUnderflow)
}
