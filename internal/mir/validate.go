package mir

import (
	"errors"
	"fmt"

	"shadec/internal/types"
)

// Validate checks MIR module invariants.
// Returns error if any invariant is violated.
func Validate(m *Module) error {
	if m == nil {
		return nil
	}
	var errs []error
	for i := range m.Globals {
		if m.Globals[i].Type == types.KindVoid || m.Globals[i].Type == types.KindError {
			errs = append(errs, fmt.Errorf("global %s: invalid type %s", m.Globals[i].Name, m.Globals[i].Type))
		}
	}
	for _, f := range m.Funcs {
		if f == nil {
			continue
		}
		if err := validateFunc(m, f); err != nil {
			errs = append(errs, fmt.Errorf("function %s: %w", f.Name, err))
		}
	}
	return errors.Join(errs...)
}

func validateFunc(m *Module, f *Func) error {
	var errs []error
	if f.Entry < 0 || int(f.Entry) >= len(f.Blocks) {
		errs = append(errs, fmt.Errorf("entry bb%d does not exist", f.Entry))
	}
	if err := validateBlocks(f); err != nil {
		errs = append(errs, err)
	}
	if err := validatePlaces(m, f); err != nil {
		errs = append(errs, err)
	}
	if err := validateReturns(f); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// validateBlocks checks terminators and their targets.
func validateBlocks(f *Func) error {
	var errs []error
	blockExists := func(id BlockID) bool {
		return id >= 0 && int(id) < len(f.Blocks)
	}
	for i := range f.Blocks {
		bb := &f.Blocks[i]
		if bb.ID != BlockID(i) {
			errs = append(errs, fmt.Errorf("bb%d: id mismatch (%d)", i, bb.ID))
		}
		if bb.Term.Kind == TermNone {
			errs = append(errs, fmt.Errorf("bb%d: unterminated block", i))
			continue
		}
		for _, target := range bb.Term.Successors() {
			if !blockExists(target) {
				errs = append(errs, fmt.Errorf("bb%d: target bb%d does not exist", i, target))
			}
		}
		if bb.Term.Kind == TermSwitch {
			seen := make(map[int64]bool, len(bb.Term.Switch.Cases))
			for _, c := range bb.Term.Switch.Cases {
				if seen[c.Value] {
					errs = append(errs, fmt.Errorf("bb%d: switch has duplicate case %d", i, c.Value))
				}
				seen[c.Value] = true
			}
			if bb.Term.Switch.Value.Type != types.KindInt {
				errs = append(errs, fmt.Errorf("bb%d: switch on %s", i, bb.Term.Switch.Value.Type))
			}
		}
		if bb.Term.Kind == TermIf && bb.Term.If.Cond.Type != types.KindBool {
			errs = append(errs, fmt.Errorf("bb%d: branch on %s", i, bb.Term.If.Cond.Type))
		}
	}
	return errors.Join(errs...)
}

// validatePlaces checks that every place refers to an existing local or global.
func validatePlaces(m *Module, f *Func) error {
	var errs []error
	checkPlace := func(where string, p Place) {
		switch p.Kind {
		case PlaceLocal:
			if p.Local < 0 || int(p.Local) >= len(f.Locals) {
				errs = append(errs, fmt.Errorf("%s: local L%d does not exist", where, p.Local))
			}
		case PlaceGlobal:
			if p.Global < 0 || int(p.Global) >= len(m.Globals) {
				errs = append(errs, fmt.Errorf("%s: global G%d does not exist", where, p.Global))
			}
		}
	}
	checkOperand := func(where string, op Operand) {
		if op.Kind == OperandCopy {
			checkPlace(where, op.Place)
		}
	}
	for _, p := range f.Params {
		checkPlace("params", LocalPlace(p))
	}
	for i := range f.Blocks {
		bb := &f.Blocks[i]
		for j := range bb.Instrs {
			ins := &bb.Instrs[j]
			where := fmt.Sprintf("bb%d[%d]", i, j)
			switch ins.Kind {
			case InstrAssign:
				checkPlace(where, ins.Assign.Dst)
				for _, op := range rvalueOperands(&ins.Assign.Src) {
					checkOperand(where, op)
				}
			case InstrCall:
				if ins.Call.HasDst {
					checkPlace(where, ins.Call.Dst)
				}
				if _, ok := m.Funcs[ins.Call.Callee]; !ok {
					errs = append(errs, fmt.Errorf("%s: callee %d does not exist", where, ins.Call.Callee))
				}
				for _, op := range ins.Call.Args {
					checkOperand(where, op)
				}
			}
		}
		term := &bb.Term
		where := fmt.Sprintf("bb%d", i)
		switch term.Kind {
		case TermReturn:
			if term.Return.HasValue {
				checkOperand(where, term.Return.Value)
			}
		case TermIf:
			checkOperand(where, term.If.Cond)
		case TermSwitch:
			checkOperand(where, term.Switch.Value)
		}
	}
	return errors.Join(errs...)
}

func rvalueOperands(rv *RValue) []Operand {
	switch rv.Kind {
	case RValueUse:
		return []Operand{rv.Use}
	case RValueUnaryOp:
		return []Operand{rv.Unary.Operand}
	case RValueBinaryOp:
		return []Operand{rv.Binary.Left, rv.Binary.Right}
	case RValueExtract:
		return []Operand{rv.Extract.Vector, rv.Extract.Index}
	case RValueInsert:
		return []Operand{rv.Insert.Vector, rv.Insert.Index, rv.Insert.Value}
	case RValueShuffle:
		return []Operand{rv.Shuffle.Vector}
	case RValueSplat:
		return []Operand{rv.Splat.Value}
	default:
		return nil
	}
}

// validateReturns checks that return values match the function result.
func validateReturns(f *Func) error {
	var errs []error
	for i := range f.Blocks {
		term := &f.Blocks[i].Term
		if term.Kind != TermReturn {
			continue
		}
		switch {
		case f.Result == types.KindVoid && term.Return.HasValue && term.Return.Value.Type != types.KindVoid:
			errs = append(errs, fmt.Errorf("bb%d: void function returns %s", i, term.Return.Value.Type))
		case f.Result != types.KindVoid && !term.Return.HasValue:
			errs = append(errs, fmt.Errorf("bb%d: missing return value", i))
		case f.Result != types.KindVoid && term.Return.Value.Type != f.Result:
			errs = append(errs, fmt.Errorf("bb%d: return type %s, want %s", i, term.Return.Value.Type, f.Result))
		}
	}
	return errors.Join(errs...)
}
