package scnpack

import "github.com/charmbracelet/log"

// Script is a parsed scenario entry: an opaque header block, the ordered
// opcode stream, and an opaque footer block of whatever trailing bytes the
// assembler could not consume as opcodes.
type Script struct {
	Header  []byte
	Opcodes []Opcode
	Footer  []byte
}

// tipTracker accumulates the "number of successor opcodes that fit entirely
// inside a tip's original byte window" count described in the parser's tip
// accounting step, for one in-flight TipOp.
type tipTracker struct {
	tip       *TipOp
	index     int // position of tip in the opcodes slice being built
	remaining uint16
	skip      uint16
}

// Parse walks data into a Script under the given quirk selection. It
// implements the three-condition end-of-script heuristic and the tip
// skip-window bookkeeping verbatim from the component design: each of the
// three end conditions is independently significant (which one governs the
// original game runtime is unresolved), so all three are checked every
// iteration rather than picking one.
func Parse(data []byte, quirks Quirks) (*Script, error) {
	headerLen, err := u32LE(data, 0)
	if err != nil {
		return &Script{}, err
	}
	header, err := readBytes(data, 0, int(headerLen))
	if err != nil {
		return &Script{}, err
	}

	script := &Script{Header: header}
	address := headerLen
	var trackers []*tipTracker
	var lastOpByte byte
	endSeen := false

	for int(address) < len(data) && !endSeen {
		op, err := ReadOpcode(address, data, quirks)
		if err != nil {
			return script, err
		}

		opByte := op.OpcodeByte()
		if opByte == 0x05 {
			remaining := len(data) - int(address)
			nextIsTerminator := int(address)+1 < len(data) && (data[address+1] == 0x00 || data[address+1] == 0x05)
			if nextIsTerminator {
				log.Debug("end of script: next byte is 0x00 or 0x05", "address", address)
				endSeen = true
			}
			if lastOpByte == 0x02 {
				log.Debug("end of script: previous opcode was 0x02", "address", address)
				endSeen = true
			}
			if remaining < 0x30 {
				log.Debug("end of script: fewer than 0x30 bytes remain", "address", address)
				endSeen = true
			}
		}

		address += uint32(op.Size())

		if tip, ok := op.(*TipOp); ok {
			if tip.SkipBytes < 3 {
				return script, tipUnderflowError(tip.Address())
			}
			trackers = append(trackers, &tipTracker{
				tip:       tip,
				index:     len(script.Opcodes),
				remaining: tip.SkipBytes - 3,
			})
		}

		var stillTracking []*tipTracker
		for _, t := range trackers {
			sz := uint16(op.Size())
			if t.remaining >= sz {
				t.remaining -= sz
				t.skip++
				stillTracking = append(stillTracking, t)
			} else {
				t.tip.Skip = t.skip
			}
		}
		trackers = stillTracking

		lastOpByte = opByte
		script.Opcodes = append(script.Opcodes, op)
	}

	// Any tip still open at end-of-script has consumed every remaining
	// successor within its declared window.
	for _, t := range trackers {
		t.tip.Skip = t.skip
	}

	if len(script.Opcodes) > 0 {
		last := script.Opcodes[len(script.Opcodes)-1]
		footerStart := int(last.Address()) + last.Size()
		script.Footer = append([]byte{}, data[footerStart:]...)
	} else {
		script.Footer = append([]byte{}, data[headerLen:]...)
	}

	return script, nil
}
