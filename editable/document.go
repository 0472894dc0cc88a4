// Package editable implements the decoded script's on-disk structured form
// (the distilled spec's YAML document): a named record per opcode variant,
// hex-formatted scalars and byte arrays, and address-is-identity /
// actual-address-and-size-are-recomputed round-tripping. It is a boundary
// component: the core opcode codec treats it as an opaque structured store.
package editable

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"scnpack"
)

// Document mirrors a Script: an opaque header/footer byte block and the
// ordered opcode list, each rendered as a named, hex-formatted record.
type Document struct {
	Header  hexBytes       `yaml:"header"`
	Opcodes []opcodeRecord `yaml:"opcodes"`
	Footer  hexBytes       `yaml:"footer"`
}

type armRecord struct {
	Index  hexU16 `yaml:"index"`
	Target hexU32 `yaml:"target"`
}

type choiceRecord struct {
	Header      hexBytes `yaml:"header"`
	Target      hexU32   `yaml:"target"`
	Unicode     string   `yaml:"unicode"`
	Translation *string  `yaml:"translation,omitempty"`
	Notes       *string  `yaml:"notes,omitempty"`
}

// opcodeRecord is the flat union of every variant's fields. Exactly one
// variant's field subset is populated per record, selected by Kind; unused
// fields are omitted on write via `omitempty`. A flat record (rather than a
// YAML-level tagged union, which gopkg.in/yaml.v3 has no native support for)
// keeps the marshaling straightforward while still producing the named,
// field-complete-per-kind documents the contract calls for.
type opcodeRecord struct {
	Kind string `yaml:"kind"`

	Address *hexU32 `yaml:"address,omitempty"`
	Opcode  *hexU8  `yaml:"opcode,omitempty"`

	Operands *hexBytes `yaml:"operands,omitempty"`

	Target      *hexU32 `yaml:"target,omitempty"`
	LongTarget  *hexU16 `yaml:"long_target,omitempty"`
	ScriptIndex *hexU16 `yaml:"script_index,omitempty"`

	Header *hexBytes `yaml:"header,omitempty"`

	Comparison *hexU16     `yaml:"comparison,omitempty"`
	Arms       []armRecord `yaml:"arms,omitempty"`

	Unicode     *string `yaml:"unicode,omitempty"`
	Translation *string `yaml:"translation,omitempty"`
	Notes       *string `yaml:"notes,omitempty"`

	Arg1 *hexU16 `yaml:"arg1,omitempty"`
	Arg2 *hexU16 `yaml:"arg2,omitempty"`

	Padding1 *hexBytes `yaml:"padding1,omitempty"`
	Padding2 *hexBytes `yaml:"padding2,omitempty"`

	PreHeader *hexBytes      `yaml:"pre_header,omitempty"`
	Choices   []choiceRecord `yaml:"choices,omitempty"`

	Padded *bool `yaml:"padded,omitempty"`

	Condition *hexU8  `yaml:"condition,omitempty"`
	Skip      *hexU16 `yaml:"skip,omitempty"`

	Contents []opcodeRecord `yaml:"contents,omitempty"`
}

func hU8(v byte) *hexU8    { h := hexU8(v); return &h }
func hU16(v uint16) *hexU16 { h := hexU16(v); return &h }
func hU32(v uint32) *hexU32 { h := hexU32(v); return &h }
func hBytes(v []byte) *hexBytes {
	h := hexBytes(append([]byte{}, v...))
	return &h
}

// FromScript converts an in-memory Script to its editable Document form.
func FromScript(s *scnpack.Script) (*Document, error) {
	doc := &Document{Header: hexBytes(s.Header), Footer: hexBytes(s.Footer)}
	doc.Opcodes = make([]opcodeRecord, len(s.Opcodes))
	for i, op := range s.Opcodes {
		rec, err := opcodeToRecord(op)
		if err != nil {
			return nil, err
		}
		doc.Opcodes[i] = rec
	}
	return doc, nil
}

// ToScript converts a Document back into an in-memory Script. ActualAddress
// fields come out equal to Address, matching the state of a script that has
// just been parsed (or edited) but not yet emitted.
func (d *Document) ToScript() (*scnpack.Script, error) {
	opcodes := make([]scnpack.Opcode, len(d.Opcodes))
	for i, rec := range d.Opcodes {
		op, err := recordToOpcode(rec)
		if err != nil {
			return nil, err
		}
		opcodes[i] = op
	}
	return &scnpack.Script{Header: []byte(d.Header), Opcodes: opcodes, Footer: []byte(d.Footer)}, nil
}

// Marshal renders a Script as its editable YAML document form.
func Marshal(s *scnpack.Script) ([]byte, error) {
	doc, err := FromScript(s)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

// Unmarshal parses an editable YAML document back into a Script.
func Unmarshal(data []byte) (*scnpack.Script, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("editable: %w", err)
	}
	return doc.ToScript()
}

func opcodeToRecord(op scnpack.Opcode) (opcodeRecord, error) {
	switch o := op.(type) {
	case *scnpack.SingleByteOp:
		return opcodeRecord{Kind: "single_byte", Address: hU32(o.Address()), Opcode: hU8(o.OpcodeByte())}, nil

	case *scnpack.BasicOp:
		return opcodeRecord{Kind: "basic", Address: hU32(o.Address()), Opcode: hU8(o.OpcodeByte()), Operands: hBytes(o.Operands)}, nil

	case *scnpack.DirectJumpOp:
		return opcodeRecord{Kind: "direct_jump", Address: hU32(o.Address()), Opcode: hU8(o.OpcodeByte()), Target: hU32(o.Target)}, nil

	case *scnpack.LongJumpOp:
		return opcodeRecord{
			Kind: "long_jump", Address: hU32(o.Address()), Opcode: hU8(o.OpcodeByte()),
			ScriptIndex: hU16(o.ScriptIndex), LongTarget: hU16(o.Target),
		}, nil

	case *scnpack.JumpOp:
		return opcodeRecord{Kind: "jump", Address: hU32(o.Address()), Opcode: hU8(o.OpcodeByte()), Header: hBytes(o.Header), Target: hU32(o.Target)}, nil

	case *scnpack.SwitchOp:
		arms := make([]armRecord, len(o.Arms))
		for i, a := range o.Arms {
			arms[i] = armRecord{Index: hexU16(a.Index), Target: hexU32(a.Target)}
		}
		return opcodeRecord{Kind: "switch", Address: hU32(o.Address()), Opcode: hU8(o.OpcodeByte()), Comparison: hU16(o.Comparison), Arms: arms}, nil

	case *scnpack.StringOp:
		return opcodeRecord{
			Kind: "string", Address: hU32(o.Address()), Opcode: hU8(o.OpcodeByte()),
			Header: hBytes(o.Header[:]), Unicode: &o.Unicode, Translation: o.Translation, Notes: o.Notes,
		}, nil

	case *scnpack.StringOp2:
		return opcodeRecord{
			Kind: "string2", Address: hU32(o.Address()), Opcode: hU8(o.OpcodeByte()),
			Header: hBytes(o.Header[:]), Unicode: &o.Unicode, Translation: o.Translation, Notes: o.Notes,
		}, nil

	case *scnpack.String47Op:
		rec := opcodeRecord{
			Kind: "string47", Address: hU32(o.Address()), Opcode: hU8(o.OpcodeByte()),
			Arg1: hU16(o.Arg1), Unicode: &o.Unicode, Translation: o.Translation, Notes: o.Notes,
		}
		if o.Arg2 != nil {
			rec.Arg2 = hU16(*o.Arg2)
		}
		return rec, nil

	case *scnpack.String55Op:
		return opcodeRecord{
			Kind: "string55", Address: hU32(o.Address()), Opcode: hU8(o.OpcodeByte()),
			Arg1: hU16(o.Arg1), Padding1: hBytes(o.Padding1[:]), Arg2: hU16(o.Arg2), Padding2: hBytes(o.Padding2[:]),
			Unicode: &o.Unicode, Translation: o.Translation, Notes: o.Notes,
		}, nil

	case *scnpack.ChoiceOp:
		choices := make([]choiceRecord, len(o.Choices))
		for i, c := range o.Choices {
			choices[i] = choiceRecord{Header: hexBytes(c.Header[:]), Target: hexU32(c.Target), Unicode: c.Unicode, Translation: c.Translation, Notes: c.Notes}
		}
		return opcodeRecord{
			Kind: "choice", Address: hU32(o.Address()), Opcode: hU8(o.OpcodeByte()),
			PreHeader: hBytes(o.PreHeader[:]), Header: hBytes(o.Header[:]), Choices: choices,
		}, nil

	case *scnpack.VoiceOp:
		return opcodeRecord{
			Kind: "voice", Address: hU32(o.Address()), Opcode: hU8(o.OpcodeByte()),
			Arg1: hU16(o.Arg1), Arg2: hU16(o.Arg2), Padded: &o.Padded,
		}, nil

	case *scnpack.TipOp:
		return opcodeRecord{
			Kind: "tip", Address: hU32(o.Address()), Opcode: hU8(o.OpcodeByte()),
			Condition: hU8(o.Condition), Skip: hU16(o.Skip),
		}, nil

	case *scnpack.InsertOp:
		contents := make([]opcodeRecord, len(o.Contents))
		for i, c := range o.Contents {
			rec, err := opcodeToRecord(c)
			if err != nil {
				return opcodeRecord{}, err
			}
			contents[i] = rec
		}
		return opcodeRecord{Kind: "insert", Contents: contents}, nil

	default:
		return opcodeRecord{}, fmt.Errorf("editable: unrecognized opcode type %T", op)
	}
}

func recordToOpcode(r opcodeRecord) (scnpack.Opcode, error) {
	switch r.Kind {
	case "single_byte":
		return scnpack.NewSingleByteOp(uint32(*r.Address), byte(*r.Opcode)), nil

	case "basic":
		return scnpack.NewBasicOp(uint32(*r.Address), byte(*r.Opcode), []byte(*r.Operands)), nil

	case "direct_jump":
		return scnpack.NewDirectJumpOp(uint32(*r.Address), byte(*r.Opcode), uint32(*r.Target)), nil

	case "long_jump":
		return scnpack.NewLongJumpOp(uint32(*r.Address), byte(*r.Opcode), uint16(*r.ScriptIndex), uint16(*r.LongTarget)), nil

	case "jump":
		return scnpack.NewJumpOp(uint32(*r.Address), byte(*r.Opcode), []byte(*r.Header), uint32(*r.Target)), nil

	case "switch":
		arms := make([]scnpack.SwitchArm, len(r.Arms))
		for i, a := range r.Arms {
			arms[i] = scnpack.SwitchArm{Index: uint16(a.Index), Target: uint32(a.Target)}
		}
		return scnpack.NewSwitchOp(uint32(*r.Address), byte(*r.Opcode), uint16(*r.Comparison), arms), nil

	case "string":
		var header [4]byte
		copy(header[:], []byte(*r.Header))
		return scnpack.NewStringOp(uint32(*r.Address), byte(*r.Opcode), header, derefStr(r.Unicode), r.Translation, r.Notes), nil

	case "string2":
		var header [2]byte
		copy(header[:], []byte(*r.Header))
		return scnpack.NewStringOp2(uint32(*r.Address), byte(*r.Opcode), header, derefStr(r.Unicode), r.Translation, r.Notes), nil

	case "string47":
		var arg2 *uint16
		if r.Arg2 != nil {
			v := uint16(*r.Arg2)
			arg2 = &v
		}
		return scnpack.NewString47Op(uint32(*r.Address), byte(*r.Opcode), uint16(*r.Arg1), arg2, derefStr(r.Unicode), r.Translation, r.Notes), nil

	case "string55":
		var padding1 [3]byte
		copy(padding1[:], []byte(*r.Padding1))
		var padding2 [2]byte
		copy(padding2[:], []byte(*r.Padding2))
		return scnpack.NewString55Op(
			uint32(*r.Address), byte(*r.Opcode), uint16(*r.Arg1), padding1, uint16(*r.Arg2), padding2,
			derefStr(r.Unicode), r.Translation, r.Notes,
		), nil

	case "choice":
		var preHeader [2]byte
		copy(preHeader[:], []byte(*r.PreHeader))
		var header [3]byte
		copy(header[:], []byte(*r.Header))
		choices := make([]scnpack.Choice, len(r.Choices))
		for i, c := range r.Choices {
			var chHeader [6]byte
			copy(chHeader[:], []byte(c.Header))
			choices[i] = scnpack.NewChoice(chHeader, uint32(c.Target), c.Unicode, c.Translation, c.Notes)
		}
		return scnpack.NewChoiceOp(uint32(*r.Address), byte(*r.Opcode), preHeader, header, choices), nil

	case "voice":
		padded := r.Padded != nil && *r.Padded
		return scnpack.NewVoiceOp(uint32(*r.Address), byte(*r.Opcode), uint16(*r.Arg1), uint16(*r.Arg2), padded), nil

	case "tip":
		skip := uint16(0)
		if r.Skip != nil {
			skip = uint16(*r.Skip)
		}
		return scnpack.NewTipOp(uint32(*r.Address), byte(*r.Opcode), byte(*r.Condition), 0, skip), nil

	case "insert":
		contents := make([]scnpack.Opcode, len(r.Contents))
		for i, c := range r.Contents {
			op, err := recordToOpcode(c)
			if err != nil {
				return nil, err
			}
			contents[i] = op
		}
		return scnpack.NewInsertOp(contents), nil

	default:
		return nil, fmt.Errorf("editable: unrecognized opcode kind %q", r.Kind)
	}
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
