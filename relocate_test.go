package scnpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u32At(b []byte, offset int) uint32 {
	v, err := u32LE(b, offset)
	if err != nil {
		panic(err)
	}
	return v
}

// Scenario B: a DirectJump targets a sibling opcode by its original address.
// Growing an unrelated opcode ahead of that sibling (by lengthening a
// translation) shifts the sibling's actual address; relocation must still
// find it because identity is the original address, never position.
func TestScenarioB_DirectJumpFollowsGrowingSibling(t *testing.T) {
	jump := NewDirectJumpOp(0, 0x01, 16) // targets term's original address
	str := NewStringOp(5, 0x45, [4]byte{}, "short", nil, nil)
	term := NewSingleByteOp(16, 0x05)
	script := &Script{Opcodes: []Opcode{jump, str, term}}

	out, err := script.Emit()
	require.NoError(t, err)
	assert.Equal(t, term.ActualAddress(), u32At(out, 1))

	longer := "a substantially longer replacement string that pushes term forward"
	str.Translation = &longer
	out, err = script.Emit()
	require.NoError(t, err)
	assert.Greater(t, term.ActualAddress(), uint32(16))
	assert.Equal(t, term.ActualAddress(), u32At(out, 1))
}

// Scenario C: a ChoiceOp's per-choice target is rewritten the same way, and
// a fall-through choice (target == 0) is never rewritten.
func TestScenarioC_ChoiceTargetsFollowSiblingGrowth(t *testing.T) {
	str := NewStringOp(0, 0x45, [4]byte{}, "hi", nil, nil)
	choiceOp := NewChoiceOp(100, 0x31, [2]byte{}, [3]byte{}, []Choice{
		NewChoice([6]byte{}, 0, "original choice", nil, nil),
		NewChoice([6]byte{}, 0, "fall through", nil, nil),
	})
	term := NewSingleByteOp(200, 0x05)
	choiceOp.Choices[0].Target = 0 // fall-through, never rewritten
	choiceOp.Choices[1].Target = 200
	script := &Script{Opcodes: []Opcode{str, choiceOp, term}}

	longer := "a much longer translated first line of dialogue"
	str.Translation = &longer
	out, err := script.Emit()
	require.NoError(t, err)

	// Re-decode the emitted choice op's second choice target directly:
	// choiceOp starts right after str's new size.
	choiceStart := int(str.ActualAddress()) + str.Size()
	// op(1) prehdr(2) count(1) hdr(3) -> choice1 header(6) + target(4) + text
	choice1Start := choiceStart + 1 + 2 + 1 + 3
	assert.Equal(t, uint32(0), u32At(out, choice1Start+6))

	n, err := choiceOp.Choices[0].size()
	require.NoError(t, err)
	choice2Start := choice1Start + n
	assert.Equal(t, term.ActualAddress(), u32At(out, choice2Start+6))
}

// Scenario D: a SwitchOp's arms keep declared order (never resorted by
// index) and each arm's target is independently rewritten.
func TestScenarioD_SwitchArmsPreserveOrderAndRetarget(t *testing.T) {
	str := NewStringOp(0, 0x45, [4]byte{}, "hi", nil, nil)
	termA := NewSingleByteOp(100, 0x05)
	termB := NewSingleByteOp(200, 0x02)
	sw := NewSwitchOp(50, 0x33, 1, []SwitchArm{
		{Index: 2, Target: 200},
		{Index: 0, Target: 100},
	})
	script := &Script{Opcodes: []Opcode{str, sw, termA, termB}}

	longer := "padding this dialogue out considerably longer than before"
	str.Translation = &longer

	out, err := script.Emit()
	require.NoError(t, err)

	swStart := int(str.ActualAddress()) + str.Size()
	arm0Start := swStart + 1 + 2 + 2
	assert.Equal(t, uint16(2), uint16(out[arm0Start])|uint16(out[arm0Start+1])<<8)
	assert.Equal(t, termB.ActualAddress(), u32At(out, arm0Start+2))

	arm1Start := arm0Start + 6
	assert.Equal(t, uint16(0), uint16(out[arm1Start])|uint16(out[arm1Start+1])<<8)
	assert.Equal(t, termA.ActualAddress(), u32At(out, arm1Start+2))
}

func TestRelocateDuplicateSwitchArmIsFatal(t *testing.T) {
	term := NewSingleByteOp(10, 0x05)
	sw := NewSwitchOp(0, 0x33, 0, []SwitchArm{
		{Index: 1, Target: 10},
		{Index: 1, Target: 10},
	})
	script := &Script{Opcodes: []Opcode{sw, term}}
	_, err := script.Emit()
	assert.ErrorIs(t, err, ErrDuplicateSwitchArm)
}

func TestRelocateMissingTargetIsFatal(t *testing.T) {
	jump := NewDirectJumpOp(0, 0x01, 999) // no sibling ever has this address
	script := &Script{Opcodes: []Opcode{jump}}
	_, err := script.Emit()
	assert.ErrorIs(t, err, ErrRelocTargetMissing)
}

func TestRelocateIdentityWhenNothingChanges(t *testing.T) {
	jump := NewDirectJumpOp(0, 0x01, 5)
	term := NewSingleByteOp(5, 0x05)
	script := &Script{Opcodes: []Opcode{jump, term}}
	out, err := script.Emit()
	require.NoError(t, err)
	assert.Equal(t, uint32(5), u32At(out, 1))
}
