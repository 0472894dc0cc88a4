package scnpack

// Emit re-serializes the script, rewriting every jump/switch-arm/choice
// target so it addresses the same logical sibling instruction it did at
// parse time, even though translated text and tip edits may have moved that
// sibling to a different byte offset. Relocation identity is the original
// Address field, never position -- this is what makes the algorithm robust
// to edits that don't reorder the opcode list.
func (s *Script) Emit() ([]byte, error) {
	addrToActual := map[uint32]uint32{}

	// Pass 1: assign every opcode's actual_address in emission order and
	// record original-address -> actual-address for every opcode (including
	// InsertOp contents, which distribute across their own sub-range of the
	// cursor).
	cursor := uint32(len(s.Header))
	for _, op := range s.Opcodes {
		op.SetActualAddress(cursor)
		cursor += uint32(op.Size())
		recordActualAddresses(op, addrToActual)
	}

	output := make([]byte, 0, len(s.Header)+int(cursor))
	output = append(output, s.Header...)

	// Pass 2: rewrite targets using the completed map, then emit.
	for i, op := range s.Opcodes {
		rewritten, err := rewriteTargets(op, addrToActual)
		if err != nil {
			return nil, err
		}
		b, err := rewritten.Emit()
		if err != nil {
			return nil, err
		}
		if tip, ok := rewritten.(*TipOp); ok && tip.Skip > 0 {
			b = patchTipSkipBytes(tip, s.Opcodes[i+1:], b)
		}
		output = append(output, b...)
	}

	output = append(output, s.Footer...)
	return output, nil
}

func recordActualAddresses(op Opcode, addrToActual map[uint32]uint32) {
	if ins, ok := op.(*InsertOp); ok {
		for _, c := range ins.Contents {
			recordActualAddresses(c, addrToActual)
		}
		return
	}
	addrToActual[op.Address()] = op.ActualAddress()
}

// rewriteTargets returns a shallow clone of op with any jump/switch-arm/
// choice target replaced by the actual address of the sibling opcode that
// originally lived at that address. Opcodes that carry no target are
// returned unchanged (no clone needed, since pass 2 never mutates them).
func rewriteTargets(op Opcode, addrToActual map[uint32]uint32) (Opcode, error) {
	switch o := op.(type) {
	case *DirectJumpOp:
		target, err := resolveTarget(o.Address(), o.Target, addrToActual)
		if err != nil {
			return nil, err
		}
		clone := *o
		clone.Target = target
		return &clone, nil

	case *JumpOp:
		target, err := resolveTarget(o.Address(), o.Target, addrToActual)
		if err != nil {
			return nil, err
		}
		clone := *o
		clone.Target = target
		return &clone, nil

	case *LongJumpOp:
		target, err := resolveTarget(o.Address(), uint32(o.Target), addrToActual)
		if err != nil {
			return nil, err
		}
		clone := *o
		clone.Target = uint16(target)
		return &clone, nil

	case *SwitchOp:
		clone := *o
		clone.Arms = make([]SwitchArm, len(o.Arms))
		seen := map[uint16]bool{}
		for i, arm := range o.Arms {
			if seen[arm.Index] {
				return nil, duplicateSwitchArmError(o.Address(), arm.Index)
			}
			seen[arm.Index] = true
			target, err := resolveTarget(o.Address(), arm.Target, addrToActual)
			if err != nil {
				return nil, err
			}
			clone.Arms[i] = SwitchArm{Index: arm.Index, Target: target}
		}
		return &clone, nil

	case *ChoiceOp:
		clone := *o
		clone.Choices = make([]Choice, len(o.Choices))
		for i, ch := range o.Choices {
			chClone := ch
			if ch.Target != 0 {
				target, err := resolveTarget(o.Address(), ch.Target, addrToActual)
				if err != nil {
					return nil, err
				}
				chClone.Target = target
			}
			clone.Choices[i] = chClone
		}
		return &clone, nil

	case *InsertOp:
		clone := &InsertOp{Contents: make([]Opcode, len(o.Contents))}
		for i, c := range o.Contents {
			rewritten, err := rewriteTargets(c, addrToActual)
			if err != nil {
				return nil, err
			}
			clone.Contents[i] = rewritten
		}
		return clone, nil

	default:
		return op, nil
	}
}

func resolveTarget(sourceAddress uint32, target uint32, addrToActual map[uint32]uint32) (uint32, error) {
	actual, ok := addrToActual[target]
	if !ok {
		return 0, relocTargetError(sourceAddress, target)
	}
	return actual, nil
}
