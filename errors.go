package scnpack

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Every concrete occurrence wraps one of these with
// fmt.Errorf("...: %w", ...) so callers can errors.Is against the kind while
// still getting address/byte context in the message.
var (
	ErrParseBounds        = errors.New("read past end of buffer")
	ErrParseOpcode        = errors.New("unknown opcode byte")
	ErrParseHeader        = errors.New("could not extract header slice")
	ErrQuirkRequired      = errors.New("opcode byte requires a quirk selection")
	ErrTipUnderflow       = errors.New("tip skip_bytes underflowed")
	ErrRelocTargetMissing = errors.New("jump/switch/choice target has no matching sibling address")
	ErrDuplicateSwitchArm = errors.New("switch opcode has duplicate arm index")
)

// boundsError reports a read of n bytes at offset against a buffer of size
// total.
func boundsError(offset, n, total int) error {
	return fmt.Errorf("%w: offset %d, want %d bytes, have %d", ErrParseBounds, offset, n, total)
}

func opcodeError(address uint32, b byte) error {
	return fmt.Errorf("%w: byte 0x%02X at address 0x%08X", ErrParseOpcode, b, address)
}

func quirkRequiredError(address uint32, b byte) error {
	return fmt.Errorf("%w: byte 0x%02X at address 0x%08X", ErrQuirkRequired, b, address)
}

func tipUnderflowError(address uint32) error {
	return fmt.Errorf("%w: tip at address 0x%08X", ErrTipUnderflow, address)
}

func relocTargetError(sourceAddress uint32, target uint32) error {
	return fmt.Errorf("%w: opcode at 0x%08X targets 0x%08X", ErrRelocTargetMissing, sourceAddress, target)
}

func duplicateSwitchArmError(sourceAddress uint32, index uint16) error {
	return fmt.Errorf("%w: switch at 0x%08X, index %d", ErrDuplicateSwitchArm, sourceAddress, index)
}
