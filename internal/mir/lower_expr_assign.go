package mir

import (
	"fmt"

	"shadec/internal/ast"
	"shadec/internal/types"
)

func (l *funcLowerer) lowerAssign(id ast.ExprID, data *ast.ExprBinaryData) (Operand, error) {
	ty, err := l.exprType(id)
	if err != nil {
		return Operand{}, err
	}
	value, err := l.lowerExpr(data.Right)
	if err != nil {
		return Operand{}, err
	}
	if data.Op != ast.ExprBinaryAssign {
		// составное присваивание: прочитать текущие компоненты, посчитать, записать
		cur, err := l.lowerExpr(data.Left)
		if err != nil {
			return Operand{}, err
		}
		value = l.arith(data.Op, cur, value, ty)
	}
	if err := l.storeInto(data.Left, value); err != nil {
		return Operand{}, err
	}
	return value, nil
}

// storeInto writes value to the storage denoted by target. Index and swizzle
// targets rebuild the enclosing vector lane by lane and store it recursively.
func (l *funcLowerer) storeInto(target ast.ExprID, value Operand) error {
	expr := l.builder.Exprs.Get(target)
	if expr == nil {
		return fmt.Errorf("mir: expression %d not found", target)
	}
	switch expr.Kind {
	case ast.ExprIdent:
		st, err := l.lookupIdent(target)
		if err != nil {
			return err
		}
		if st.Class == StorageFunc {
			return fmt.Errorf("mir: cannot assign to function")
		}
		l.assign(st.Place, RValue{Kind: RValueUse, Use: value})
		return nil

	case ast.ExprIndex:
		data, _ := l.builder.Exprs.Index(target)
		base, err := l.lowerExpr(data.Target)
		if err != nil {
			return err
		}
		idx, err := l.lowerExpr(data.Index)
		if err != nil {
			return err
		}
		updated := l.temp(base.Type, RValue{Kind: RValueInsert, Insert: InsertOp{Vector: base, Index: idx, Value: value}})
		return l.storeInto(data.Target, updated)

	case ast.ExprField:
		data, _ := l.builder.Exprs.Field(target)
		base, err := l.lowerExpr(data.Target)
		if err != nil {
			return err
		}
		lanes := types.SwizzleLanes(l.builder.Name(data.Field))
		updated := base
		if len(lanes) == 1 {
			updated = l.insert(updated, lanes[0], value)
		} else {
			// компонента i значения уходит в компоненту field[i] цели
			for i, lane := range lanes {
				updated = l.insert(updated, lane, l.extract(value, i))
			}
		}
		return l.storeInto(data.Target, updated)

	default:
		return fmt.Errorf("mir: %s expression %d is not assignable", expr.Kind, target)
	}
}
