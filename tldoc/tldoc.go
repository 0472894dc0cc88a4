// Package tldoc implements the translator-facing plaintext "TL document"
// format: a forward transform that extracts every text-bearing opcode's
// original/translation/notes into a line-oriented document, a reverse
// transform that patches a script's opcodes back from an edited document,
// and the line-wrapping helper translators run over their own output.
package tldoc

import (
	"fmt"
	"strconv"
	"strings"

	"scnpack"
)

const (
	choiceEnd = "---~~~---"
	lineEnd   = "---===---"
)

// isTextOpcodeByte restricts both transforms to the five opcode bytes that
// carry translator-facing text: free-text/speaker, two textbox-display
// shapes, and choice/menu-choice.
func isTextOpcodeByte(b byte) bool {
	switch b {
	case 0x47, 0x45, 0x86, 0x31, 0x32:
		return true
	default:
		return false
	}
}

// Transform walks a script's opcodes in order and renders every text-bearing
// one as a block in the TL document grammar. A bare 0x47 speaker/charname
// announcement (String47Op with no Arg2) is buffered rather than emitted on
// its own: it becomes the `[speaker @ ...]` line of the next non-choice text
// block. Choice blocks do not take the pending speaker.
func Transform(script *scnpack.Script) string {
	var lines []string

	var speakerAddress uint32
	var speakerUnicode, speakerTranslation string
	haveSpeaker := false

	flushSpeaker := func() {
		if haveSpeaker {
			lines = append(lines, fmt.Sprintf("[speaker @ 0x%08X]: %s (%s)", speakerAddress, speakerTranslation, speakerUnicode))
			haveSpeaker = false
		}
	}

	for _, op := range script.Opcodes {
		if !isTextOpcodeByte(op.OpcodeByte()) {
			continue
		}

		switch o := op.(type) {
		case *scnpack.String47Op:
			if o.Arg2 == nil {
				speakerAddress = o.Address()
				speakerUnicode = o.Unicode
				speakerTranslation = derefOr(o.Translation)
				haveSpeaker = true
				continue
			}
			flushSpeaker()
			lines = append(lines,
				fmt.Sprintf("[original text @ 0x%08X]: %s", o.Address(), o.Unicode),
				"[translation]: "+derefOr(o.Translation),
				"[notes]: "+derefOr(o.Notes),
			)

		case *scnpack.StringOp2:
			flushSpeaker()
			lines = append(lines,
				fmt.Sprintf("[original text @ 0x%08X]: %s", o.Address(), o.Unicode),
				"[translation]: "+derefOr(o.Translation),
				"[notes]: "+derefOr(o.Notes),
			)

		case *scnpack.StringOp:
			flushSpeaker()
			lines = append(lines,
				fmt.Sprintf("[original text @ 0x%08X]: %s", o.Address(), o.Unicode),
				"[translation]: "+derefOr(o.Translation),
				"[notes]: "+derefOr(o.Notes),
			)

		case *scnpack.ChoiceOp:
			lines = append(lines, fmt.Sprintf("[choices @ 0x%08X]", o.Address()))
			for _, ch := range o.Choices {
				lines = append(lines,
					"[choice original text]: "+ch.Unicode,
					"[choice translation]: "+derefOr(ch.Translation),
					"[choice notes]: "+derefOr(ch.Notes),
					choiceEnd,
				)
			}

		default:
			continue
		}

		lines = append(lines, lineEnd, "")
	}

	return strings.Join(lines, "\n")
}

func derefOr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtrOrNil(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	v := s
	return &v
}

type choiceLine struct {
	translation string
	notes       string
}

type docLine struct {
	speakerAddress      uint32
	speakerTranslation  string
	address             uint32
	translation         string
	notes               string
	choices             []choiceLine
}

type lineState int

const (
	stateNone lineState = iota
	stateTranslation
	stateNotes
	stateChoiceTranslation
	stateChoiceNotes
)

// ReverseTransform re-parses a TL document and patches script's opcodes in
// place, looked up by address in a map restricted to the same five text
// opcode bytes -- the same identity key the relocation engine uses.
// Continuation lines (anything that doesn't match a marker) append, joined
// by "\n", to whichever field was most recently opened; a field whose
// accumulated, trimmed text ends up empty clears the corresponding opcode
// field instead of setting it.
func ReverseTransform(script *scnpack.Script, tlDoc string) error {
	byAddress := map[uint32]scnpack.Opcode{}
	for _, op := range script.Opcodes {
		if isTextOpcodeByte(op.OpcodeByte()) {
			byAddress[op.Address()] = op
		}
	}

	var doclines []docLine
	curr := docLine{}
	state := stateNone

	speakerPrefix := "[speaker @ 0x"
	originalPrefix := "[original text @ 0x"
	choicesPrefix := "[choices @ 0x"
	choiceTLPrefix := "[choice translation]:"
	choiceNotesPrefix := "[choice notes]:"
	translationPrefix := "[translation]:"
	notesPrefix := "[notes]:"

	for _, line := range strings.Split(tlDoc, "\n") {
		switch {
		case strings.HasPrefix(line, speakerPrefix):
			addr, text, err := parseTLDocLine(line, len(speakerPrefix), true)
			if err != nil {
				return err
			}
			curr.speakerAddress = addr
			curr.speakerTranslation = text

		case strings.HasPrefix(line, originalPrefix):
			addr, _, err := parseTLDocLine(line, len(originalPrefix), false)
			if err != nil {
				return err
			}
			curr.address = addr

		case strings.HasPrefix(line, choicesPrefix):
			addr, _, err := parseTLDocLine(line, len(choicesPrefix), false)
			if err != nil {
				return err
			}
			curr.address = addr

		case strings.HasPrefix(line, choiceTLPrefix):
			text := strings.TrimSpace(line[len(choiceTLPrefix):])
			curr.choices = append(curr.choices, choiceLine{translation: text})
			state = stateChoiceTranslation

		case strings.HasPrefix(line, choiceNotesPrefix):
			text := strings.TrimSpace(line[len(choiceNotesPrefix):])
			if len(curr.choices) == 0 {
				return fmt.Errorf("tldoc: [choice notes] with no preceding [choice translation]")
			}
			curr.choices[len(curr.choices)-1].notes = text
			state = stateChoiceNotes

		case strings.HasPrefix(line, translationPrefix):
			text := strings.TrimSpace(line[len(translationPrefix):])
			curr.translation = text
			state = stateTranslation

		case strings.HasPrefix(line, notesPrefix):
			state = stateNotes
			text := strings.TrimSpace(line[len(notesPrefix):])
			curr.notes = text

		case line == lineEnd:
			state = stateNone
			doclines = append(doclines, curr)
			curr = docLine{}

		case line == choiceEnd:
			state = stateNone

		default:
			switch state {
			case stateNone:
				continue
			case stateTranslation:
				curr.translation += "\n" + line
			case stateNotes:
				curr.notes += "\n" + line
			case stateChoiceTranslation:
				i := len(curr.choices) - 1
				curr.choices[i].translation += "\n" + line
			case stateChoiceNotes:
				i := len(curr.choices) - 1
				curr.choices[i].notes += "\n" + line
			}
		}
	}

	for _, dl := range doclines {
		if dl.speakerAddress != 0 {
			if sp, ok := byAddress[dl.speakerAddress].(*scnpack.String47Op); ok {
				sp.Translation = strPtrOrNil(dl.speakerTranslation)
			}
		}

		op, ok := byAddress[dl.address]
		if !ok {
			continue
		}
		applyText(op, dl.translation, dl.notes)

		if c, ok := op.(*scnpack.ChoiceOp); ok {
			for i := range c.Choices {
				if i >= len(dl.choices) {
					break
				}
				c.Choices[i].Translation = strPtrOrNil(dl.choices[i].translation)
				c.Choices[i].Notes = strPtrOrNil(dl.choices[i].notes)
			}
		}
	}

	return nil
}

func applyText(op scnpack.Opcode, translation, notes string) {
	tl := strPtrOrNil(translation)
	nt := strPtrOrNil(notes)
	switch o := op.(type) {
	case *scnpack.String47Op:
		o.Translation, o.Notes = tl, nt
	case *scnpack.StringOp:
		o.Translation, o.Notes = tl, nt
	case *scnpack.StringOp2:
		o.Translation, o.Notes = tl, nt
	}
}

// parseTLDocLine parses one `[marker @ 0xAAAAAAAA]: <text>` line, matching
// the reference tool's parse_tl_doc_line exactly: scan from prefixSize for
// the closing ']', parse the hex address, skip "]:" and one optional space,
// then -- for a speaker line -- take the text up to the opening '(' of its
// trailing "(<original>)" echo, or for any other line, the rest of the line.
func parseTLDocLine(line string, prefixSize int, isSpeaker bool) (uint32, string, error) {
	runes := []rune(line)
	if prefixSize > len(runes) {
		return 0, "", fmt.Errorf("tldoc: line too short: %q", line)
	}
	curr := prefixSize
	for curr < len(runes) && runes[curr] != ']' {
		curr++
	}
	if curr >= len(runes) {
		return 0, "", fmt.Errorf("tldoc: unterminated address in %q", line)
	}
	data := strings.TrimSpace(string(runes[prefixSize:curr]))
	addr, err := strconv.ParseUint(data, 16, 32)
	if err != nil {
		return 0, "", fmt.Errorf("tldoc: bad address %q: %w", data, err)
	}

	curr++ // skip ']'
	if curr >= len(runes) {
		return uint32(addr), "", nil
	}
	if runes[curr] == ':' {
		curr++
	}
	if curr < len(runes) && runes[curr] == ' ' {
		curr++
	}
	if !isSpeaker {
		return uint32(addr), string(runes[curr:]), nil
	}
	end := curr
	for end < len(runes) && runes[end] != '(' {
		end++
	}
	return uint32(addr), strings.TrimSpace(string(runes[curr:end])), nil
}

// FixString word-wraps input to roughly 60 display columns by inserting a
// literal "%N" marker at the word boundary where the running length would
// otherwise wrap past that width, ported unchanged from the reference
// tool's own fix_string.
func FixString(input string) string {
	words := strings.Split(input, " ")
	if len(words) == 0 {
		return input
	}
	output := words[0]
	for _, word := range words[1:] {
		newLen := (len(output) + len(word)) % 60
		currLen := len(output) % 60
		var sep string
		if newLen-currLen < 0 {
			sep = "%N"
		} else {
			sep = " "
		}
		output += sep + word
	}
	return strings.TrimSpace(output)
}

// FixLine applies FixString to the translator-editable payload of one TL
// document line, leaving marker lines that aren't translator prose
// (original-text/speaker/choices headers) and lines already containing a
// manual "%N" break untouched.
func FixLine(line string) string {
	if strings.Contains(line, "%N") {
		return line
	}

	for _, prefix := range []string{"[translation]:", "[notes]:", "[choice translation]:", "[choice notes]:"} {
		if strings.HasPrefix(line, prefix) {
			payload := strings.TrimSpace(line[len(prefix):])
			if payload == "" {
				return line
			}
			return prefix + " " + FixString(payload)
		}
	}

	for _, prefix := range []string{"[original text @ 0x", "[speaker @ 0x", "[choices @ 0x", "[choice original text]:", lineEnd, choiceEnd} {
		if strings.HasPrefix(line, prefix) {
			return line
		}
	}

	if strings.TrimSpace(line) == "" {
		return line
	}
	return FixString(line)
}
