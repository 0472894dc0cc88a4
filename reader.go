package scnpack

// ReadOpcode dispatches on input[address] (plus quirks, for the handful of
// overloaded bytes) and returns the fully-parsed Opcode; its Size is the
// number of bytes it consumed. An address outside input is an ErrParseBounds
// error.
func ReadOpcode(address uint32, input []byte, quirks Quirks) (Opcode, error) {
	addr := int(address)
	if addr < 0 || addr >= len(input) {
		return nil, boundsError(addr, 1, len(input))
	}
	op := input[addr]
	q := quirks.Resolved()

	switch op {
	case 0x00, 0x05, 0x1B, 0x1C, 0x2A, 0x2B, 0x2E, 0x33, 0x37, 0x59, 0x5A, 0x5F, 0x70, 0x87, 0x8D, 0xFF:
		return readSingleByte(address, op), nil
	case 0x01, 0x03:
		return readDirectJump(address, op, input)
	case 0x02, 0x04:
		return readLongJump(address, op, input)
	case 0x06, 0x07, 0x08, 0x09, 0x0A, 0x0B:
		return readJump(address, op, input, 4)
	case 0x0C, 0x0D:
		return readJump(address, op, input, 2)
	case 0x0E:
		return readSwitch(address, op, input)
	case 0x0F:
		switch {
		case q.HasAny(SG):
			return readSingleByte(address, op), nil
		case q.HasAny(XBox):
			return readBasic(address, op, input, 8)
		default:
			return nil, quirkRequiredError(address, op)
		}
	case 0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17, 0x18, 0x1A, 0x22, 0x25,
		0x2D, 0x39, 0x3A, 0x49, 0x4B, 0x4F, 0x6A, 0x6E, 0x72, 0x75, 0x80, 0x83, 0x8B:
		return readBasic(address, op, input, 4)
	case 0x19, 0x42:
		return readBasic(address, op, input, 8)
	case 0x1D, 0x20, 0x21, 0x24, 0x4C, 0x51, 0x71, 0x74, 0x81, 0x8F:
		return readBasic(address, op, input, 6)
	case 0x1E, 0x30, 0x34, 0x68, 0x8E:
		return readBasic(address, op, input, 10)
	case 0x1F:
		return readBasic(address, op, input, 12)
	case 0x23:
		if q.HasAny(CCFC | Phantom) {
			return readBasic(address, op, input, 8)
		}
		return readBasic(address, op, input, 6)
	case 0x2C, 0x2F, 0x3B, 0x3C, 0x48, 0x4A, 0x53, 0x66, 0x69, 0x6B, 0x82, 0x84, 0x8A:
		return readBasic(address, op, input, 2)
	case 0x31, 0x32:
		return readChoice(address, op, input)
	case 0x36:
		return readBasic(address, op, input, 3)
	case 0x43:
		if q.HasAny(CCFC | XBox | XBoxRoot | SG2) {
			return readBasic(address, op, input, 4)
		}
		return readBasic(address, op, input, 2)
	case 0x44:
		return readVoice(address, op, input)
	case 0x45, 0x85, 0x86:
		return readStringOp(address, op, input, 4)
	case 0x47:
		if q.HasAny(CCFC | XBox | XBoxRoot | SG2) {
			return readString47(address, op, input)
		}
		return readStringOp2(address, op, input)
	case 0x55:
		return readString55(address, op, input)
	case 0x56:
		if q.HasAny(Phantom) {
			return readBasic(address, op, input, 2)
		}
		return readBasic(address, op, input, 4)
	case 0x6C:
		return readBasic(address, op, input, 16)
	case 0x77:
		return readTip(address, op, input)
	case 0x7A:
		switch {
		case q.HasAny(SG2):
			return readBasic(address, op, input, 6)
		case q.HasAny(XBoxRoot):
			return readBasic(address, op, input, 10)
		default:
			return nil, quirkRequiredError(address, op)
		}
	case 0x7B:
		if q.HasAny(XBoxRoot) {
			return readStringOp(address, op, input, 4)
		}
		return readBasic(address, op, input, 4)
	case 0x8C:
		if q.HasAny(Phantom) {
			return readBasic(address, op, input, 4)
		}
		return readBasic(address, op, input, 12)
	case 0x90:
		return readStringOp2(address, op, input)
	default:
		return nil, opcodeError(address, op)
	}
}

func readSingleByte(address uint32, op byte) *SingleByteOp {
	return &SingleByteOp{base: base{address: address, actualAddress: address, op: op}}
}

func readBasic(address uint32, op byte, input []byte, n int) (*BasicOp, error) {
	operands, err := readBytes(input, int(address)+1, n)
	if err != nil {
		return nil, err
	}
	return &BasicOp{base: base{address: address, actualAddress: address, op: op}, Operands: operands}, nil
}

func readDirectJump(address uint32, op byte, input []byte) (*DirectJumpOp, error) {
	target, err := u32LE(input, int(address)+1)
	if err != nil {
		return nil, err
	}
	return &DirectJumpOp{base: base{address: address, actualAddress: address, op: op}, Target: target}, nil
}

func readLongJump(address uint32, op byte, input []byte) (*LongJumpOp, error) {
	scriptIdx, err := u16LE(input, int(address)+1)
	if err != nil {
		return nil, err
	}
	target, err := u16LE(input, int(address)+3)
	if err != nil {
		return nil, err
	}
	return &LongJumpOp{base: base{address: address, actualAddress: address, op: op}, ScriptIndex: scriptIdx, Target: target}, nil
}

func readJump(address uint32, op byte, input []byte, headerLen int) (*JumpOp, error) {
	header, err := readBytes(input, int(address)+1, headerLen)
	if err != nil {
		return nil, err
	}
	target, err := u32LE(input, int(address)+1+headerLen)
	if err != nil {
		return nil, err
	}
	return &JumpOp{base: base{address: address, actualAddress: address, op: op}, Header: header, Target: target}, nil
}

func readSwitch(address uint32, op byte, input []byte) (*SwitchOp, error) {
	comparison, err := u16LE(input, int(address)+1)
	if err != nil {
		return nil, err
	}
	count, err := u16LE(input, int(address)+3)
	if err != nil {
		return nil, err
	}
	arms := make([]SwitchArm, 0, count)
	cursor := int(address) + 5
	for i := 0; i < int(count); i++ {
		index, err := u16LE(input, cursor)
		if err != nil {
			return nil, err
		}
		target, err := u32LE(input, cursor+2)
		if err != nil {
			return nil, err
		}
		arms = append(arms, SwitchArm{Index: index, Target: target})
		cursor += 6
	}
	return &SwitchOp{
		base:       base{address: address, actualAddress: address, op: op},
		Comparison: comparison,
		Arms:       arms,
	}, nil
}

func readVoice(address uint32, op byte, input []byte) (*VoiceOp, error) {
	arg1, err := u16LE(input, int(address)+1)
	if err != nil {
		return nil, err
	}
	arg2, err := u16LE(input, int(address)+3)
	if err != nil {
		return nil, err
	}
	padded := arg2 == 0xFFFF
	return &VoiceOp{base: base{address: address, actualAddress: address, op: op}, Arg1: arg1, Arg2: arg2, Padded: padded}, nil
}

func readStringOp(address uint32, op byte, input []byte, headerLen int) (*StringOp, error) {
	headerBytes, err := readBytes(input, int(address)+1, headerLen)
	if err != nil {
		return nil, err
	}
	var header [4]byte
	copy(header[:], headerBytes)
	_, unicode, err := ReadSJISCString(input, int(address)+1+headerLen)
	if err != nil {
		return nil, err
	}
	return &StringOp{
		base:        base{address: address, actualAddress: address, op: op},
		Header:      header,
		textPayload: textPayload{Unicode: unicode},
	}, nil
}

func readStringOp2(address uint32, op byte, input []byte) (*StringOp2, error) {
	headerBytes, err := readBytes(input, int(address)+1, 2)
	if err != nil {
		return nil, err
	}
	var header [2]byte
	copy(header[:], headerBytes)
	_, unicode, err := ReadSJISCString(input, int(address)+1+2)
	if err != nil {
		return nil, err
	}
	return &StringOp2{
		base:        base{address: address, actualAddress: address, op: op},
		Header:      header,
		textPayload: textPayload{Unicode: unicode},
	}, nil
}

func readString47(address uint32, op byte, input []byte) (*String47Op, error) {
	arg1, err := u16LE(input, int(address)+1)
	if err != nil {
		return nil, err
	}
	// arg1 == 0x000D is the bare "announcement" (speaker) form: no Arg2
	// before the string, and the string starts right after arg1. Any other
	// arg1 is the "announcement + text" form, with Arg2 occupying the two
	// bytes between arg1 and the string.
	stringOffset := 2
	var arg2 *uint16
	if arg1 != 0x000D {
		stringOffset = 4
		v, err := u16LE(input, int(address)+3)
		if err != nil {
			return nil, err
		}
		arg2 = &v
	}
	_, unicode, err := ReadSJISCString(input, int(address)+1+stringOffset)
	if err != nil {
		return nil, err
	}
	return &String47Op{
		base:        base{address: address, actualAddress: address, op: op},
		Arg1:        arg1,
		Arg2:        arg2,
		textPayload: textPayload{Unicode: unicode},
	}, nil
}

func readString55(address uint32, op byte, input []byte) (*String55Op, error) {
	arg1, err := u16LE(input, int(address)+1)
	if err != nil {
		return nil, err
	}
	padding1, err := readBytes(input, int(address)+3, 3)
	if err != nil {
		return nil, err
	}
	arg2, err := u16LE(input, int(address)+6)
	if err != nil {
		return nil, err
	}
	padding2, err := readBytes(input, int(address)+8, 2)
	if err != nil {
		return nil, err
	}
	_, unicode, err := ReadSJISCString(input, int(address)+1+9)
	if err != nil {
		return nil, err
	}
	op55 := &String55Op{
		base:        base{address: address, actualAddress: address, op: op},
		Arg1:        arg1,
		Arg2:        arg2,
		textPayload: textPayload{Unicode: unicode},
	}
	copy(op55.Padding1[:], padding1)
	copy(op55.Padding2[:], padding2)
	return op55, nil
}

func readChoice(address uint32, op byte, input []byte) (*ChoiceOp, error) {
	preHeaderBytes, err := readBytes(input, int(address)+1, 2)
	if err != nil {
		return nil, err
	}
	var preHeader [2]byte
	copy(preHeader[:], preHeaderBytes)

	nChoicesByte, err := readBytes(input, int(address)+3, 1)
	if err != nil {
		return nil, err
	}
	nChoices := int(nChoicesByte[0])

	headerBytes, err := readBytes(input, int(address)+4, 3)
	if err != nil {
		return nil, err
	}
	var header [3]byte
	copy(header[:], headerBytes)

	choices := make([]Choice, 0, nChoices)
	cursor := int(address) + 7
	for i := 0; i < nChoices; i++ {
		chHeaderBytes, err := readBytes(input, cursor, 6)
		if err != nil {
			return nil, err
		}
		var chHeader [6]byte
		copy(chHeader[:], chHeaderBytes)
		target, err := u32LE(input, cursor+6)
		if err != nil {
			return nil, err
		}
		_, unicode, err := ReadSJISCString(input, cursor+10)
		if err != nil {
			return nil, err
		}
		choice := Choice{Header: chHeader, Target: target, textPayload: textPayload{Unicode: unicode}}
		n, err := choice.size()
		if err != nil {
			return nil, err
		}
		choices = append(choices, choice)
		cursor += n
	}

	return &ChoiceOp{
		base:      base{address: address, actualAddress: address, op: op},
		PreHeader: preHeader,
		Header:    header,
		Choices:   choices,
	}, nil
}

func readTip(address uint32, op byte, input []byte) (*TipOp, error) {
	condByte, err := readBytes(input, int(address)+1, 1)
	if err != nil {
		return nil, err
	}
	skipBytes, err := u16LE(input, int(address)+2)
	if err != nil {
		return nil, err
	}
	return &TipOp{
		base:      base{address: address, actualAddress: address, op: op},
		Condition: condByte[0],
		SkipBytes: skipBytes,
	}, nil
}
