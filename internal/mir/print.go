package mir

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// DumpOptions configures MIR module dumping.
type DumpOptions struct {
	// Spans appends source offsets to locals and globals.
	Spans bool
}

// DumpModule writes a human-readable representation of a MIR module.
// Functions appear in declaration order.
func DumpModule(w io.Writer, m *Module, opts DumpOptions) error {
	if w == nil || m == nil {
		return nil
	}
	var sb strings.Builder

	if len(m.Globals) > 0 {
		fmt.Fprintf(&sb, "globals=%d\n", len(m.Globals))
		for i := range m.Globals {
			g := &m.Globals[i]
			fmt.Fprintf(&sb, "  G%d: %s name=%s init=%s", i, g.Type, orUnderscore(g.Name), formatOperand(ZeroConst(g.Type)))
			if opts.Spans {
				fmt.Fprintf(&sb, " @%d..%d", g.Span.Start, g.Span.End)
			}
			sb.WriteByte('\n')
		}
	}

	funcs := make([]*Func, 0, len(m.Funcs))
	for _, f := range m.Funcs {
		if f != nil {
			funcs = append(funcs, f)
		}
	}
	slices.SortFunc(funcs, func(a, b *Func) int { return int(a.ID) - int(b.ID) })

	fmt.Fprintf(&sb, "funcs=%d\n", len(funcs))
	for _, f := range funcs {
		dumpFunc(&sb, f, opts)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func dumpFunc(sb *strings.Builder, f *Func, opts DumpOptions) {
	params := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		params = append(params, fmt.Sprintf("L%d", p))
	}
	fmt.Fprintf(sb, "\nfn %s(%s) -> %s:\n", f.Name, strings.Join(params, ", "), f.Result)

	sb.WriteString("  locals:\n")
	for i := range f.Locals {
		loc := &f.Locals[i]
		fmt.Fprintf(sb, "    L%d: %s", i, loc.Type)
		if flags := formatLocalFlags(loc.Flags); flags != "" {
			sb.WriteString(" " + flags)
		}
		sb.WriteString(" name=" + orUnderscore(loc.Name))
		if opts.Spans && loc.Span.End > 0 {
			fmt.Fprintf(sb, " @%d..%d", loc.Span.Start, loc.Span.End)
		}
		sb.WriteByte('\n')
	}

	for i := range f.Blocks {
		bb := &f.Blocks[i]
		fmt.Fprintf(sb, "  bb%d:\n", bb.ID)
		for j := range bb.Instrs {
			fmt.Fprintf(sb, "    %s\n", formatInstr(&bb.Instrs[j]))
		}
		fmt.Fprintf(sb, "    %s\n", formatTerm(&bb.Term))
	}
}

func orUnderscore(name string) string {
	if name == "" {
		return "_"
	}
	return name
}

func formatLocalFlags(f LocalFlags) string {
	var parts []string
	if f&LocalFlagParam != 0 {
		parts = append(parts, "param")
	}
	if f&LocalFlagTemp != 0 {
		parts = append(parts, "temp")
	}
	if len(parts) == 0 {
		return ""
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func formatInstr(ins *Instr) string {
	switch ins.Kind {
	case InstrAssign:
		return fmt.Sprintf("%s = %s", formatPlace(ins.Assign.Dst), formatRValue(&ins.Assign.Src))
	case InstrCall:
		dst := ""
		if ins.Call.HasDst {
			dst = formatPlace(ins.Call.Dst) + " = "
		}
		return fmt.Sprintf("%scall %s(%s)", dst, ins.Call.Name, formatOperands(ins.Call.Args))
	default:
		return "<instr?>"
	}
}

func formatPlace(p Place) string {
	if p.Kind == PlaceGlobal {
		return fmt.Sprintf("G%d", p.Global)
	}
	return fmt.Sprintf("L%d", p.Local)
}

func formatOperands(ops []Operand) string {
	parts := make([]string, 0, len(ops))
	for _, op := range ops {
		parts = append(parts, formatOperand(op))
	}
	return strings.Join(parts, ", ")
}

func formatOperand(op Operand) string {
	if op.Kind == OperandCopy {
		return "copy " + formatPlace(op.Place)
	}
	switch op.Const.Kind {
	case ConstInt:
		return strconv.FormatInt(op.Const.IntValue, 10)
	case ConstFloat:
		return formatFloat(op.Const.FloatValue)
	case ConstBool:
		return strconv.FormatBool(op.Const.BoolValue)
	case ConstZero:
		return "zeroinit " + op.Type.String()
	case ConstVoid:
		return "()"
	default:
		return "<const?>"
	}
}

// formatFloat always keeps a decimal point so 1.0 does not read as an int.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if strings.ContainsAny(s, ".eIN") {
		return s
	}
	return s + ".0"
}

func formatRValue(rv *RValue) string {
	switch rv.Kind {
	case RValueUse:
		return formatOperand(rv.Use)
	case RValueUnaryOp:
		return fmt.Sprintf("%s %s", rv.Unary.Op, formatOperand(rv.Unary.Operand))
	case RValueBinaryOp:
		return fmt.Sprintf("%s %s %s", formatOperand(rv.Binary.Left), rv.Binary.Op, formatOperand(rv.Binary.Right))
	case RValueExtract:
		return fmt.Sprintf("extract %s, %s", formatOperand(rv.Extract.Vector), formatOperand(rv.Extract.Index))
	case RValueInsert:
		return fmt.Sprintf("insert %s, %s, %s",
			formatOperand(rv.Insert.Vector),
			formatOperand(rv.Insert.Index),
			formatOperand(rv.Insert.Value),
		)
	case RValueShuffle:
		lanes := make([]string, 0, len(rv.Shuffle.Lanes))
		for _, lane := range rv.Shuffle.Lanes {
			lanes = append(lanes, strconv.Itoa(lane))
		}
		return fmt.Sprintf("shuffle %s [%s]", formatOperand(rv.Shuffle.Vector), strings.Join(lanes, " "))
	case RValueSplat:
		return fmt.Sprintf("splat<%s> %s", rv.Splat.Type, formatOperand(rv.Splat.Value))
	default:
		return "<rvalue?>"
	}
}

func formatTerm(t *Terminator) string {
	switch t.Kind {
	case TermReturn:
		if t.Return.HasValue {
			return "return " + formatOperand(t.Return.Value)
		}
		return "return"
	case TermGoto:
		return fmt.Sprintf("goto bb%d", t.Goto.Target)
	case TermIf:
		return fmt.Sprintf("if %s then bb%d else bb%d", formatOperand(t.If.Cond), t.If.Then, t.If.Else)
	case TermSwitch:
		cases := make([]string, 0, len(t.Switch.Cases))
		for _, c := range t.Switch.Cases {
			cases = append(cases, fmt.Sprintf("%d -> bb%d", c.Value, c.Target))
		}
		return fmt.Sprintf("switch %s [%s] default bb%d", formatOperand(t.Switch.Value), strings.Join(cases, ", "), t.Switch.Default)
	case TermUnreachable:
		return "unreachable"
	default:
		return "<unterminated>"
	}
}
