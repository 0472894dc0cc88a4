package scnpack

import (
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// maxCStringScan bounds how far ReadSJISCString will scan looking for a NUL
// terminator before giving up, mirroring the reference decoder's hard cap
// against runaway scans on corrupt input.
const maxCStringScan = 1024

// ReadSJISCString scans data starting at offset for a NUL-terminated
// Shift-JIS string. It returns the raw bytes including the trailing NUL, and
// the decoded UTF-8 string (without the NUL).
func ReadSJISCString(data []byte, offset int) (raw []byte, decoded string, err error) {
	if offset < 0 || offset > len(data) {
		return nil, "", boundsError(offset, 0, len(data))
	}
	limit := len(data)
	if limit-offset > maxCStringScan {
		limit = offset + maxCStringScan
	}
	end := -1
	for i := offset; i < limit; i++ {
		if data[i] == 0x00 {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, "", boundsError(offset, maxCStringScan, len(data))
	}
	raw, err = readBytes(data, offset, end-offset+1)
	if err != nil {
		return nil, "", err
	}
	decoded, _, err = transform.String(japanese.ShiftJIS.NewDecoder(), string(raw[:len(raw)-1]))
	if err != nil {
		return nil, "", err
	}
	return raw, decoded, nil
}

// italicTable maps a rune to its italic Shift-JIS code point bytes. The
// upstream italic_map.json data file is not part of this repository's
// retrieval material; this is a small representative subset that maps a few
// ASCII letters and digits, the space, and some ASCII punctuation to their
// full-width Shift-JIS forms. A rune missing from the table
// falls through to plain Shift-JIS encoding of that rune, which is exactly
// the behavior the format defines for an italic-table miss, so an
// incomplete table degrades gracefully.
var italicTable = map[rune][]byte{
	'A': {0x82, 0x60}, 'B': {0x82, 0x61}, 'C': {0x82, 0x62},
	'a': {0x82, 0x81}, 'b': {0x82, 0x82}, 'c': {0x82, 0x83},
	'0': {0x82, 0x4F}, '1': {0x82, 0x50}, '2': {0x82, 0x51},
	' ': {0x81, 0x40},
	'!': {0x81, 0x49}, '?': {0x81, 0x48},
	'.': {0x81, 0x44}, ',': {0x81, 0x43},
}

func plainSJISBytes(r rune) ([]byte, error) {
	out, _, err := transform.Bytes(japanese.ShiftJIS.NewEncoder(), []byte(string(r)))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// EncodeSJIS encodes a translator-facing UTF-8 string to Shift-JIS bytes
// with italic tokenisation: '*' toggles italic mode, "\*" is a literal
// asterisk, '\' before any other character is kept as a literal backslash, and
// "<dquote/>"/"<bslash/>" are template escapes for '"' and '\'. No trailing
// NUL is appended; callers append it once at the point of use (mirroring the
// per-opcode emit contract, which always appends exactly one NUL).
func EncodeSJIS(s string) ([]byte, error) {
	s = strings.ReplaceAll(s, "<dquote/>", "\"")
	s = strings.ReplaceAll(s, "<bslash/>", "\\")

	var out []byte
	italic := false
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\\' && i+1 < len(runes) && runes[i+1] == '*':
			i++
			b, err := sjisRune(runes[i], italic)
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		case r == '*':
			italic = !italic
		default:
			b, err := sjisRune(r, italic)
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		}
	}
	return out, nil
}

func sjisRune(r rune, italic bool) ([]byte, error) {
	if italic {
		if b, ok := italicTable[r]; ok {
			return b, nil
		}
	}
	return plainSJISBytes(r)
}
