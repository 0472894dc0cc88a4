package scnpack

// This file exposes one constructor per concrete Opcode variant for
// consumers outside this package (the editable-form document and the test
// suite) that need to rebuild an opcode from already-decoded fields rather
// than parsing bytes. Address and ActualAddress start out equal, matching
// the reader's own parse-time invariant; ActualAddress is only ever
// overwritten again by Script.Emit.

func NewSingleByteOp(address uint32, op byte) *SingleByteOp {
	return &SingleByteOp{base: base{address: address, actualAddress: address, op: op}}
}

func NewBasicOp(address uint32, op byte, operands []byte) *BasicOp {
	return &BasicOp{base: base{address: address, actualAddress: address, op: op}, Operands: operands}
}

func NewDirectJumpOp(address uint32, op byte, target uint32) *DirectJumpOp {
	return &DirectJumpOp{base: base{address: address, actualAddress: address, op: op}, Target: target}
}

func NewLongJumpOp(address uint32, op byte, scriptIndex, target uint16) *LongJumpOp {
	return &LongJumpOp{base: base{address: address, actualAddress: address, op: op}, ScriptIndex: scriptIndex, Target: target}
}

func NewJumpOp(address uint32, op byte, header []byte, target uint32) *JumpOp {
	return &JumpOp{base: base{address: address, actualAddress: address, op: op}, Header: header, Target: target}
}

func NewSwitchOp(address uint32, op byte, comparison uint16, arms []SwitchArm) *SwitchOp {
	return &SwitchOp{base: base{address: address, actualAddress: address, op: op}, Comparison: comparison, Arms: arms}
}

func NewStringOp(address uint32, op byte, header [4]byte, unicode string, translation, notes *string) *StringOp {
	return &StringOp{
		base:        base{address: address, actualAddress: address, op: op},
		Header:      header,
		textPayload: textPayload{Unicode: unicode, Translation: translation, Notes: notes},
	}
}

func NewStringOp2(address uint32, op byte, header [2]byte, unicode string, translation, notes *string) *StringOp2 {
	return &StringOp2{
		base:        base{address: address, actualAddress: address, op: op},
		Header:      header,
		textPayload: textPayload{Unicode: unicode, Translation: translation, Notes: notes},
	}
}

func NewString47Op(address uint32, op byte, arg1 uint16, arg2 *uint16, unicode string, translation, notes *string) *String47Op {
	return &String47Op{
		base:        base{address: address, actualAddress: address, op: op},
		Arg1:        arg1,
		Arg2:        arg2,
		textPayload: textPayload{Unicode: unicode, Translation: translation, Notes: notes},
	}
}

func NewString55Op(address uint32, op byte, arg1 uint16, padding1 [3]byte, arg2 uint16, padding2 [2]byte, unicode string, translation, notes *string) *String55Op {
	return &String55Op{
		base:        base{address: address, actualAddress: address, op: op},
		Arg1:        arg1,
		Padding1:    padding1,
		Arg2:        arg2,
		Padding2:    padding2,
		textPayload: textPayload{Unicode: unicode, Translation: translation, Notes: notes},
	}
}

func NewChoice(header [6]byte, target uint32, unicode string, translation, notes *string) Choice {
	return Choice{Header: header, Target: target, textPayload: textPayload{Unicode: unicode, Translation: translation, Notes: notes}}
}

func NewChoiceOp(address uint32, op byte, preHeader [2]byte, header [3]byte, choices []Choice) *ChoiceOp {
	return &ChoiceOp{base: base{address: address, actualAddress: address, op: op}, PreHeader: preHeader, Header: header, Choices: choices}
}

func NewVoiceOp(address uint32, op byte, arg1, arg2 uint16, padded bool) *VoiceOp {
	return &VoiceOp{base: base{address: address, actualAddress: address, op: op}, Arg1: arg1, Arg2: arg2, Padded: padded}
}

func NewTipOp(address uint32, op byte, condition byte, skipBytes, skip uint16) *TipOp {
	return &TipOp{base: base{address: address, actualAddress: address, op: op}, Condition: condition, SkipBytes: skipBytes, Skip: skip}
}

func NewInsertOp(contents []Opcode) *InsertOp {
	return &InsertOp{Contents: contents}
}
