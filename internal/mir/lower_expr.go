package mir

import (
	"fmt"

	"shadec/internal/ast"
	"shadec/internal/types"
)

// lowerExpr emits the instructions computing expr and returns its value.
func (l *funcLowerer) lowerExpr(id ast.ExprID) (Operand, error) {
	expr := l.builder.Exprs.Get(id)
	if expr == nil {
		return Operand{}, fmt.Errorf("mir: expression %d not found", id)
	}
	switch expr.Kind {
	case ast.ExprIntLit:
		lit, _ := l.builder.Exprs.Literal(id)
		return intConst(lit.Int), nil
	case ast.ExprFloatLit:
		lit, _ := l.builder.Exprs.Literal(id)
		return floatConst(lit.Float), nil
	case ast.ExprBoolLit:
		lit, _ := l.builder.Exprs.Literal(id)
		return boolConst(lit.Bool), nil
	case ast.ExprEmpty:
		return voidOperand(), nil
	case ast.ExprIdent:
		return l.lowerIdent(id)
	case ast.ExprBinary:
		return l.lowerBinary(id)
	case ast.ExprUnary:
		return l.lowerUnary(id)
	case ast.ExprPostfix:
		return l.lowerPostfix(id)
	case ast.ExprIndex:
		return l.lowerIndex(id)
	case ast.ExprField:
		return l.lowerSwizzle(id)
	case ast.ExprCall:
		return l.lowerCall(id)
	default:
		return Operand{}, fmt.Errorf("mir: cannot lower %s expression %d", expr.Kind, id)
	}
}

func (l *funcLowerer) lookupIdent(id ast.ExprID) (storage, error) {
	data, ok := l.builder.Exprs.Ident(id)
	if !ok {
		return storage{}, fmt.Errorf("mir: expression %d is not an identifier", id)
	}
	st, found := l.scopes.Lookup(data.Name)
	if !found {
		return storage{}, fmt.Errorf("mir: no storage for %q", l.builder.Name(data.Name))
	}
	return st, nil
}

func (l *funcLowerer) lowerIdent(id ast.ExprID) (Operand, error) {
	st, err := l.lookupIdent(id)
	if err != nil {
		return Operand{}, err
	}
	if st.Class == StorageFunc {
		return Operand{}, fmt.Errorf("mir: function used as a value")
	}
	return copyOf(st.Place, st.Type), nil
}

func (l *funcLowerer) lowerIndex(id ast.ExprID) (Operand, error) {
	data, _ := l.builder.Exprs.Index(id)
	ty, err := l.exprType(id)
	if err != nil {
		return Operand{}, err
	}
	base, err := l.lowerExpr(data.Target)
	if err != nil {
		return Operand{}, err
	}
	idx, err := l.lowerExpr(data.Index)
	if err != nil {
		return Operand{}, err
	}
	return l.temp(ty, RValue{Kind: RValueExtract, Extract: ExtractOp{Vector: base, Index: idx}}), nil
}

// lowerSwizzle reads one lane with extract, several with shuffle.
func (l *funcLowerer) lowerSwizzle(id ast.ExprID) (Operand, error) {
	data, _ := l.builder.Exprs.Field(id)
	ty, err := l.exprType(id)
	if err != nil {
		return Operand{}, err
	}
	base, err := l.lowerExpr(data.Target)
	if err != nil {
		return Operand{}, err
	}
	lanes := types.SwizzleLanes(l.builder.Name(data.Field))
	if len(lanes) == 1 {
		return l.extract(base, lanes[0]), nil
	}
	return l.temp(ty, RValue{Kind: RValueShuffle, Shuffle: ShuffleOp{Vector: base, Lanes: lanes}}), nil
}

func (l *funcLowerer) lowerCall(id ast.ExprID) (Operand, error) {
	data, _ := l.builder.Exprs.Call(id)
	st, found := l.scopes.Lookup(data.Callee)
	if !found || st.Class != StorageFunc {
		return Operand{}, fmt.Errorf("mir: call to unknown function %q", l.builder.Name(data.Callee))
	}
	callee := l.out.Funcs[st.Func]
	args := make([]Operand, 0, len(data.Args))
	for _, arg := range data.Args {
		op, err := l.lowerExpr(arg)
		if err != nil {
			return Operand{}, err
		}
		args = append(args, op)
	}
	call := CallInstr{Callee: st.Func, Name: callee.Name, Args: args}
	if callee.Result == types.KindVoid {
		l.emit(&Instr{Kind: InstrCall, Call: call})
		return voidOperand(), nil
	}
	dst := l.addLocal(ast.NoItemID, callee.Result, LocalFlagTemp, fmt.Sprintf("tmp%d", l.nextTemp), l.builder.Exprs.Get(id).Span)
	l.nextTemp++
	call.HasDst = true
	call.Dst = LocalPlace(dst)
	l.emit(&Instr{Kind: InstrCall, Call: call})
	return copyOf(LocalPlace(dst), callee.Result), nil
}

// extract reads lane i of a vector (float) or column i of a matrix (vecN).
func (l *funcLowerer) extract(v Operand, i int) Operand {
	return l.temp(v.Type.LaneType(), RValue{Kind: RValueExtract, Extract: ExtractOp{Vector: v, Index: intConst(int64(i))}})
}

func (l *funcLowerer) insert(v Operand, i int, value Operand) Operand {
	return l.temp(v.Type, RValue{Kind: RValueInsert, Insert: InsertOp{Vector: v, Index: intConst(int64(i)), Value: value}})
}
