package scnpack

// Opcode is the closed sum type over every recognized instruction shape. It
// is implemented by exactly the concrete structs in this file; dispatch goes
// through ReadOpcode (reader.go), never through a method table on an
// interface value pretending to be a class hierarchy.
type Opcode interface {
	// Address is this opcode's offset in the source byte stream. It is the
	// stable relocation identity and is never mutated after parse.
	Address() uint32
	// OpcodeByte is the leading discriminator byte.
	OpcodeByte() byte
	// Size is the exact number of bytes this opcode's current payload
	// occupies, on disk (as parsed) or on next emit (as edited) -- the two
	// coincide unless a string-bearing opcode's Translation differs in
	// byte length from its Unicode.
	Size() int
	// ActualAddress is this opcode's offset in the most recent emit.
	ActualAddress() uint32
	SetActualAddress(uint32)
	// Emit renders this opcode's current payload to bytes. Jump/switch/choice
	// targets must already have been rewritten to actual addresses by the
	// relocation engine before Emit is called.
	Emit() ([]byte, error)
}

// base carries the two identity fields every concrete variant embeds.
type base struct {
	address       uint32
	actualAddress uint32
	op            byte
}

func (b *base) Address() uint32           { return b.address }
func (b *base) OpcodeByte() byte          { return b.op }
func (b *base) ActualAddress() uint32     { return b.actualAddress }
func (b *base) SetActualAddress(a uint32) { b.actualAddress = a }

// SingleByteOp is a bare one-byte instruction.
type SingleByteOp struct{ base }

func (o *SingleByteOp) Size() int { return 1 }
func (o *SingleByteOp) Emit() ([]byte, error) {
	return []byte{o.op}, nil
}

// BasicOp is the opcode byte plus N raw operand bytes, for every fixed-width
// N in {2,3,4,6,8,10,12,16} that carries no jump target or string.
type BasicOp struct {
	base
	Operands []byte
}

func (o *BasicOp) Size() int { return 1 + len(o.Operands) }
func (o *BasicOp) Emit() ([]byte, error) {
	out := make([]byte, 0, o.Size())
	out = append(out, o.op)
	out = append(out, o.Operands...)
	return out, nil
}

// DirectJumpOp is the opcode byte plus an absolute u32 target address.
type DirectJumpOp struct {
	base
	Target uint32
}

func (o *DirectJumpOp) Size() int { return 5 }
func (o *DirectJumpOp) Emit() ([]byte, error) {
	out := []byte{o.op}
	return appendU32LE(out, o.Target), nil
}

// LongJumpOp is the opcode byte, a u16 script index, and a u16 intra-script
// target address.
type LongJumpOp struct {
	base
	ScriptIndex uint16
	Target      uint16
}

func (o *LongJumpOp) Size() int { return 5 }
func (o *LongJumpOp) Emit() ([]byte, error) {
	out := []byte{o.op}
	out = appendU16LE(out, o.ScriptIndex)
	out = appendU16LE(out, o.Target)
	return out, nil
}

// JumpOp is the opcode byte, a fixed-size header (2 or 4 bytes), and an
// absolute u32 target address.
type JumpOp struct {
	base
	Header []byte
	Target uint32
}

func (o *JumpOp) Size() int { return 1 + len(o.Header) + 4 }
func (o *JumpOp) Emit() ([]byte, error) {
	out := []byte{o.op}
	out = append(out, o.Header...)
	out = appendU32LE(out, o.Target)
	return out, nil
}

// SwitchArm is one (index, target) arm of a SwitchOp. Arms are emitted in
// declared order, never reordered by index.
type SwitchArm struct {
	Index  uint16
	Target uint32
}

// SwitchOp is the opcode byte, a u16 comparison value, a u16 arm count, and
// that many arms.
type SwitchOp struct {
	base
	Comparison uint16
	Arms       []SwitchArm
}

func (o *SwitchOp) Size() int { return 1 + 2 + 2 + 6*len(o.Arms) }
func (o *SwitchOp) Emit() ([]byte, error) {
	out := []byte{o.op}
	out = appendU16LE(out, o.Comparison)
	out = appendU16LE(out, uint16(len(o.Arms)))
	for _, arm := range o.Arms {
		out = appendU16LE(out, arm.Index)
		out = appendU32LE(out, arm.Target)
	}
	return out, nil
}

// textPayload is embedded by every string-bearing opcode. Size and Emit
// prefer Translation over Unicode whenever Translation is set, so Size stays
// a pure function of whichever payload will actually be emitted -- this must
// never be cached across edits, since pass 1 of relocation depends on it
// matching what pass 2's Emit produces.
type textPayload struct {
	Unicode     string
	Translation *string
	Notes       *string
}

func (t *textPayload) payload() string {
	if t.Translation != nil {
		return *t.Translation
	}
	return t.Unicode
}

func (t *textPayload) sjisLen() (int, error) {
	b, err := EncodeSJIS(t.payload())
	if err != nil {
		return 0, err
	}
	return len(b) + 1, nil // +1 for the terminating NUL
}

func (t *textPayload) emitSJIS() ([]byte, error) {
	b, err := EncodeSJIS(t.payload())
	if err != nil {
		return nil, err
	}
	return append(b, 0x00), nil
}

// StringOp is a plain NUL-terminated-string opcode: opcode byte, a 4-byte
// header, then the Shift-JIS string (opcode bytes 0x45, 0x85, 0x86, and 0x7B
// under the XBoxRoot quirk).
type StringOp struct {
	base
	Header [4]byte
	textPayload
}

func (o *StringOp) Size() int {
	n, _ := o.sjisLen()
	return 1 + 4 + n
}
func (o *StringOp) Emit() ([]byte, error) {
	out := []byte{o.op}
	out = append(out, o.Header[:]...)
	s, err := o.emitSJIS()
	if err != nil {
		return nil, err
	}
	return append(out, s...), nil
}

// StringOp2 is a NUL-terminated-string opcode with a shorter 2-byte header
// (opcode byte 0x90, and the plain-text shape of opcode byte 0x47 when no
// speaker quirk applies).
type StringOp2 struct {
	base
	Header [2]byte
	textPayload
}

func (o *StringOp2) Size() int {
	n, _ := o.sjisLen()
	return 1 + 2 + n
}
func (o *StringOp2) Emit() ([]byte, error) {
	out := []byte{o.op}
	out = append(out, o.Header[:]...)
	s, err := o.emitSJIS()
	if err != nil {
		return nil, err
	}
	return append(out, s...), nil
}

// String47Op is the speaker/free-text shape of opcode byte 0x47 under the
// CCFC/XBox/XBoxRoot/SG2 quirks. Arg1 == 0x000D is the bare "announcement"
// (speaker) form, with no Arg2 before the string; any other Arg1 is the
// "announcement + text" form, with Arg2 filling the two bytes before it.
type String47Op struct {
	base
	Arg1 uint16
	Arg2 *uint16
	textPayload
}

func (o *String47Op) Size() int {
	n, _ := o.sjisLen()
	sz := 1 + 2 + n
	if o.Arg2 != nil {
		sz += 2
	}
	return sz
}
func (o *String47Op) Emit() ([]byte, error) {
	out := []byte{o.op}
	out = appendU16LE(out, o.Arg1)
	if o.Arg2 != nil {
		out = appendU16LE(out, *o.Arg2)
	}
	s, err := o.emitSJIS()
	if err != nil {
		return nil, err
	}
	return append(out, s...), nil
}

// String55Op is opcode byte 0x55: a u16 arg1, 3 padding bytes, a u16 arg2,
// 2 more padding bytes, then the Shift-JIS string. The padding is
// layout-only; this repository round-trips it byte for byte but assigns it
// no decoded meaning.
type String55Op struct {
	base
	Arg1     uint16
	Padding1 [3]byte
	Arg2     uint16
	Padding2 [2]byte
	textPayload
}

func (o *String55Op) Size() int {
	n, _ := o.sjisLen()
	return 1 + 9 + n
}
func (o *String55Op) Emit() ([]byte, error) {
	out := []byte{o.op}
	out = appendU16LE(out, o.Arg1)
	out = append(out, o.Padding1[:]...)
	out = appendU16LE(out, o.Arg2)
	out = append(out, o.Padding2[:]...)
	s, err := o.emitSJIS()
	if err != nil {
		return nil, err
	}
	return append(out, s...), nil
}

// Choice is one entry of a ChoiceOp: a 6-byte header, a u32 jump target
// (0 means "fall through", never rewritten by relocation), and a
// NUL-terminated Shift-JIS string.
type Choice struct {
	Header [6]byte
	Target uint32
	textPayload
}

func (c *Choice) size() (int, error) {
	n, err := c.sjisLen()
	if err != nil {
		return 0, err
	}
	return 6 + 4 + n, nil
}

func (c *Choice) emit() ([]byte, error) {
	out := append([]byte{}, c.Header[:]...)
	out = appendU32LE(out, c.Target)
	s, err := c.emitSJIS()
	if err != nil {
		return nil, err
	}
	return append(out, s...), nil
}

// ChoiceOp is the opcode byte, a 2-byte pre-header, a u8 choice count, a
// 3-byte header, and that many Choice entries (opcode bytes 0x31 and 0x32).
type ChoiceOp struct {
	base
	PreHeader [2]byte
	Header    [3]byte
	Choices   []Choice
}

func (o *ChoiceOp) Size() int {
	sz := 1 + 2 + 1 + 3
	for i := range o.Choices {
		n, _ := o.Choices[i].size()
		sz += n
	}
	return sz
}
func (o *ChoiceOp) Emit() ([]byte, error) {
	out := []byte{o.op}
	out = append(out, o.PreHeader[:]...)
	out = append(out, byte(len(o.Choices)))
	out = append(out, o.Header[:]...)
	for i := range o.Choices {
		c, err := o.Choices[i].emit()
		if err != nil {
			return nil, err
		}
		out = append(out, c...)
	}
	return out, nil
}

// VoiceOp is the opcode-0x44 voice-cue instruction: a u16 arg1, then a u16
// arg2, with one trailing padding byte appended when arg2 == 0xFFFF (6 bytes
// total instead of 5).
type VoiceOp struct {
	base
	Arg1   uint16
	Arg2   uint16
	Padded bool
}

func (o *VoiceOp) Size() int {
	if o.Padded {
		return 6
	}
	return 5
}
func (o *VoiceOp) Emit() ([]byte, error) {
	out := []byte{o.op}
	out = appendU16LE(out, o.Arg1)
	out = appendU16LE(out, o.Arg2)
	if o.Padded {
		out = append(out, 0x00)
	}
	return out, nil
}

// TipOp is the Custom77 "tip" pseudo-opcode: a conditional that, when
// disabled at runtime, skips a byte-window of successor opcodes. On disk it
// is 4 bytes: (op, condition, skip_bytes u16). Skip is not stored on disk;
// it is computed by the assembler (the count of successor opcodes that fit
// entirely inside the original skip_bytes window). When Skip > 0 the emit
// path recomputes skip_bytes from it; when Skip == 0 the stored SkipBytes is
// emitted unchanged.
type TipOp struct {
	base
	Condition byte
	SkipBytes uint16
	Skip      uint16
}

func (o *TipOp) Size() int { return 4 }
func (o *TipOp) Emit() ([]byte, error) {
	out := []byte{o.op, o.Condition}
	return appendU16LE(out, o.SkipBytes), nil
}

// InsertOp is a virtual container for translator-added code on the editable
// form side. It is never parsed from binary, only constructed in an edited
// document and emitted: its address/actual-address defer to its first
// content opcode, and its size is the sum of its contents' sizes.
type InsertOp struct {
	Contents []Opcode
}

func (o *InsertOp) Address() uint32 {
	if len(o.Contents) == 0 {
		return 0
	}
	return o.Contents[0].Address()
}
func (o *InsertOp) OpcodeByte() byte { return 0 }
func (o *InsertOp) Size() int {
	sz := 0
	for _, c := range o.Contents {
		sz += c.Size()
	}
	return sz
}
func (o *InsertOp) ActualAddress() uint32 {
	if len(o.Contents) == 0 {
		return 0
	}
	return o.Contents[0].ActualAddress()
}
func (o *InsertOp) SetActualAddress(a uint32) {
	cursor := a
	for _, c := range o.Contents {
		c.SetActualAddress(cursor)
		cursor += uint32(c.Size())
	}
}
func (o *InsertOp) Emit() ([]byte, error) {
	var out []byte
	for i, c := range o.Contents {
		b, err := c.Emit()
		if err != nil {
			return nil, err
		}
		if tip, ok := c.(*TipOp); ok && tip.Skip > 0 {
			b = patchTipSkipBytes(tip, o.Contents[i+1:], b)
		}
		out = append(out, b...)
	}
	return out, nil
}

// patchTipSkipBytes overwrites the trailing two bytes of a TipOp's own
// 4-byte emit with 4 + sum(size of its next Skip successors), per the
// on-disk "skip-byte window is measured from the byte after the tip's
// header" rule.
func patchTipSkipBytes(tip *TipOp, successors []Opcode, emitted []byte) []byte {
	offset := uint16(4)
	for i := 0; i < int(tip.Skip) && i < len(successors); i++ {
		offset += uint16(successors[i].Size())
	}
	putU16LE(emitted[2:4], offset)
	return emitted
}
