// Package archive implements the outer sn.bin container: the LZSS codec
// wrapping the whole file, and the directory of (offset, size) records that
// indexes the concatenated scripts inside it. Both are treated by the core
// opcode codec as opaque collaborators; this package is their home.
package archive

// window is the LZSS back-reference sliding window, matching the 0x1000
// distance range the format's two-byte token encodes.
const window = 0x1000

// Decompress reverses the sn.bin container's LZSS framing: a 4-byte
// little-endian original-length prefix, then repeating (flag byte, up to 8
// tokens) groups. A flag bit of 1 selects a literal byte; 0 selects a 2-byte
// back-reference token. Ported algorithmically unchanged from the reference
// decompressor (itself a port of Treeki's splz77 decompressor), including its
// bit packing: the low nibble of the second token byte is the match length
// minus 3, and the remaining 12 bits (all of the first byte, plus the high
// nibble of the second) are the back-reference distance within the window.
func Decompress(input []byte) ([]byte, error) {
	if len(input) < 4 {
		return nil, errShortInput(len(input))
	}
	size := int(uint32(input[0]) | uint32(input[1])<<8 | uint32(input[2])<<16 | uint32(input[3])<<24)

	output := make([]byte, size)
	inputPtr := 4
	offset := 0

	for offset < size {
		if inputPtr >= len(input) {
			break
		}
		flags := input[inputPtr]
		inputPtr++

		for i := 0; i < 8 && offset < size; i++ {
			if inputPtr >= len(input) {
				break
			}

			if flags&1 == 1 {
				output[offset] = input[inputPtr]
				inputPtr++
				offset++
			} else {
				if inputPtr+2 > len(input) {
					return nil, errShortInput(len(input))
				}
				lo, hi := input[inputPtr], input[inputPtr+1]
				inputPtr += 2

				nBytes := 3 + int(hi&0x0F)
				bufferOffset := int(hi&0xF0)<<4 | int(lo)
				ptr := offset - ((offset - 18 - bufferOffset) & (window - 1))

				for j := 0; j < nBytes && offset < size; j++ {
					if ptr >= 0 && ptr < len(output) {
						output[offset] = output[ptr]
					}
					offset++
					ptr++
				}
			}
			flags >>= 1
		}
	}

	return output, nil
}

// Compress implements the reference tool's own non-optimizing LZSS encoder:
// every byte is stored as a literal, eight at a time behind an all-ones flag
// byte. It never emits a back-reference, so it always grows the input rather
// than shrinking it -- this is a textbook "store everything" LZSS encoder,
// matching the reference tool exactly, and is an explicit scope boundary
// (round-tripping through decomp/recomp is what's exercised here, not
// compression ratio).
func Compress(input []byte) []byte {
	out := make([]byte, 0, 4+len(input)+len(input)/8+1)
	size := uint32(len(input))
	out = append(out, byte(size), byte(size>>8), byte(size>>16), byte(size>>24))

	for i := 0; i < len(input); i += 8 {
		end := i + 8
		if end > len(input) {
			end = len(input)
		}
		out = append(out, 0xFF)
		out = append(out, input[i:end]...)
	}
	return out
}
