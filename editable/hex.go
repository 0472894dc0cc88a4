package editable

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// hexU8/hexU16/hexU32 render as "0x"-prefixed fixed-width hex strings on
// write and parse the same shape back on read, per the editable form's
// numeric-field contract (2/4/8 hex digits for u8/u16/u32).
type hexU8 uint8
type hexU16 uint16
type hexU32 uint32

func (h hexU8) MarshalYAML() (interface{}, error)  { return fmt.Sprintf("0x%02X", uint8(h)), nil }
func (h hexU16) MarshalYAML() (interface{}, error) { return fmt.Sprintf("0x%04X", uint16(h)), nil }
func (h hexU32) MarshalYAML() (interface{}, error) { return fmt.Sprintf("0x%08X", uint32(h)), nil }

func (h *hexU8) UnmarshalYAML(value *yaml.Node) error {
	v, err := decodeHex(value, 8)
	*h = hexU8(v)
	return err
}

func (h *hexU16) UnmarshalYAML(value *yaml.Node) error {
	v, err := decodeHex(value, 16)
	*h = hexU16(v)
	return err
}

func (h *hexU32) UnmarshalYAML(value *yaml.Node) error {
	v, err := decodeHex(value, 32)
	*h = hexU32(v)
	return err
}

func decodeHex(value *yaml.Node, bits int) (uint64, error) {
	var s string
	if err := value.Decode(&s); err != nil {
		return 0, err
	}
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	s = strings.TrimPrefix(s, "0X")
	v, err := strconv.ParseUint(s, 16, bits)
	if err != nil {
		return 0, fmt.Errorf("editable: not a hex scalar %q: %w", value.Value, err)
	}
	return v, nil
}

// hexBytes renders as a bracketed hex-list string, e.g. "[ 0x01, 0x02 ]",
// per the editable form's byte-array contract.
type hexBytes []byte

func (h hexBytes) MarshalYAML() (interface{}, error) {
	if len(h) == 0 {
		return "[ ]", nil
	}
	parts := make([]string, len(h))
	for i, b := range h {
		parts[i] = fmt.Sprintf("0x%02X", b)
	}
	return "[ " + strings.Join(parts, ", ") + " ]", nil
}

func (h *hexBytes) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	s = strings.TrimSpace(s)
	if s == "" {
		*h = hexBytes{}
		return nil
	}
	fields := strings.Split(s, ",")
	out := make(hexBytes, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		f = strings.TrimPrefix(f, "0x")
		f = strings.TrimPrefix(f, "0X")
		v, err := strconv.ParseUint(f, 16, 8)
		if err != nil {
			return fmt.Errorf("editable: not a hex byte list %q: %w", value.Value, err)
		}
		out = append(out, byte(v))
	}
	*h = out
	return nil
}
