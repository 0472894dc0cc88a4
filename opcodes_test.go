package scnpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleByteOpEmit(t *testing.T) {
	o := NewSingleByteOp(10, 0x05)
	assert.Equal(t, 1, o.Size())
	b, err := o.Emit()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x05}, b)
}

func TestBasicOpEmit(t *testing.T) {
	o := NewBasicOp(0, 0x21, []byte{1, 2, 3, 4, 5, 6})
	assert.Equal(t, 7, o.Size())
	b, err := o.Emit()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x21, 1, 2, 3, 4, 5, 6}, b)
}

func TestDirectJumpOpEmit(t *testing.T) {
	o := NewDirectJumpOp(0, 0x01, 0x12345678)
	assert.Equal(t, 5, o.Size())
	b, err := o.Emit()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x78, 0x56, 0x34, 0x12}, b)
}

func TestLongJumpOpEmit(t *testing.T) {
	o := NewLongJumpOp(0, 0x33, 0x0002, 0xABCD)
	assert.Equal(t, 5, o.Size())
	b, err := o.Emit()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x33, 0x02, 0x00, 0xCD, 0xAB}, b)
}

func TestJumpOpEmit(t *testing.T) {
	o := NewJumpOp(0, 0x40, []byte{0xAA, 0xBB}, 0x00000010)
	assert.Equal(t, 7, o.Size())
	b, err := o.Emit()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x40, 0xAA, 0xBB, 0x10, 0x00, 0x00, 0x00}, b)
}

func TestSwitchOpEmit(t *testing.T) {
	arms := []SwitchArm{{Index: 0, Target: 100}, {Index: 1, Target: 200}}
	o := NewSwitchOp(0, 0x33, 7, arms)
	assert.Equal(t, 1+2+2+6*2, o.Size())
	b, err := o.Emit()
	require.NoError(t, err)
	assert.Equal(t, byte(0x33), b[0])
	assert.Equal(t, []byte{0x07, 0x00}, b[1:3])
	assert.Equal(t, []byte{0x02, 0x00}, b[3:5])
}

func TestStringOpPrefersTranslation(t *testing.T) {
	tl := "hi"
	o := NewStringOp(0, 0x45, [4]byte{}, "hello", &tl, nil)
	sz := o.Size()
	b, err := o.Emit()
	require.NoError(t, err)
	assert.Equal(t, sz, len(b))
	// Without a translation, size tracks the longer original string instead.
	o2 := NewStringOp(0, 0x45, [4]byte{}, "hello", nil, nil)
	assert.Greater(t, o2.Size(), sz)
}

func TestString47OpSizeFromArg2Presence(t *testing.T) {
	// arg1 == 0x000D is the bare announcement form: no Arg2.
	bare := NewString47Op(0, 0x47, 0x000D, nil, "x", nil, nil)

	arg2 := uint16(5)
	announced := NewString47Op(0, 0x47, 0x0001, &arg2, "x", nil, nil)
	// The announcement-plus-text form carries the extra 2-byte Arg2 field.
	assert.Equal(t, announced.Size(), bare.Size()+2)
}

func TestChoiceOpEmit(t *testing.T) {
	ch := NewChoice([6]byte{}, 0, "choice one", nil, nil)
	o := NewChoiceOp(0, 0x31, [2]byte{}, [3]byte{}, []Choice{ch})
	b, err := o.Emit()
	require.NoError(t, err)
	assert.Equal(t, o.Size(), len(b))
	assert.Equal(t, byte(1), b[3]) // choice count
}

func TestVoiceOpPadding(t *testing.T) {
	unpadded := NewVoiceOp(0, 0x44, 1, 2, false)
	assert.Equal(t, 5, unpadded.Size())
	padded := NewVoiceOp(0, 0x44, 1, 0xFFFF, true)
	assert.Equal(t, 6, padded.Size())
	b, err := padded.Emit()
	require.NoError(t, err)
	assert.Equal(t, byte(0x00), b[5])
}

func TestTipOpEmit(t *testing.T) {
	o := NewTipOp(0, 0x77, 0x01, 0x0010, 2)
	b, err := o.Emit()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x77, 0x01, 0x10, 0x00}, b)
}

func TestInsertOpPatchesTipSkipBytes(t *testing.T) {
	tip := NewTipOp(0, 0x77, 0x00, 0x0000, 2)
	a := NewBasicOp(4, 0x03, []byte{0, 0})
	b := NewBasicOp(7, 0x03, []byte{0, 0})
	ins := NewInsertOp([]Opcode{tip, a, b})

	assert.Equal(t, uint32(0), ins.Address())
	assert.Equal(t, 4+3+3, ins.Size())

	out, err := ins.Emit()
	require.NoError(t, err)
	// The tip's trailing u16 is patched to 4 + size(a) + size(b).
	got := uint16(out[2]) | uint16(out[3])<<8
	assert.Equal(t, uint16(4+3+3), got)
}

func TestInsertOpSetActualAddressDistributesAcrossContents(t *testing.T) {
	a := NewSingleByteOp(0, 0x05)
	b := NewBasicOp(0, 0x03, []byte{0, 0})
	ins := NewInsertOp([]Opcode{a, b})
	ins.SetActualAddress(100)
	assert.Equal(t, uint32(100), a.ActualAddress())
	assert.Equal(t, uint32(101), b.ActualAddress())
}
