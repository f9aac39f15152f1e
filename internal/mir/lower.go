package mir

import (
	"fmt"

	"fortio.org/safecast"

	"shadec/internal/ast"
	"shadec/internal/sema"
	"shadec/internal/source"
	"shadec/internal/symbols"
	"shadec/internal/trace"
	"shadec/internal/types"
)

// StorageClass tells where a name lives at run time.
type StorageClass uint8

const (
	StorageGlobal StorageClass = iota + 1
	StorageLocal
	StorageFunc
)

// storage is the lowering-time payload of a scope entry.
type storage struct {
	Item  ast.ItemID
	Class StorageClass
	Place Place
	Type  types.Kind
	Func  FuncID
}

type Options struct {
	Tracer trace.Tracer
}

// Lower converts a checked file into a MIR module. It must only run on files
// the checker accepted; any inconsistency found here is an internal error.
func Lower(b *ast.Builder, fileID ast.FileID, semaRes *sema.Result, opts Options) (*Module, error) {
	out := &Module{
		Funcs:      make(map[FuncID]*Func),
		FuncByItem: make(map[ast.ItemID]FuncID),
	}
	if b == nil {
		return out, nil
	}
	file := b.Files.Get(fileID)
	if file == nil {
		return nil, fmt.Errorf("mir: file %d not found", fileID)
	}
	if semaRes == nil {
		return nil, fmt.Errorf("mir: missing semantic result")
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	span := trace.Begin(tracer, trace.ScopePass, "mir_lower", 0)
	defer span.End("")

	scopes := symbols.NewStack[storage]()
	scopes.Enter(symbols.ScopeGlobal)
	defer scopes.Exit()

	// первый проход: глобалы и заготовки функций, чтобы работали ссылки вперёд
	type pending struct {
		item ast.ItemID
		fn   *ast.FnItem
		f    *Func
	}
	var fns []pending
	for _, itemID := range file.Items {
		item := b.Items.Get(itemID)
		if item == nil {
			continue
		}
		name, _ := b.Items.DeclName(itemID)
		switch item.Kind {
		case ast.ItemVar:
			v, _ := b.Items.Var(itemID)
			raw, err := safecast.Conv[int32](len(out.Globals))
			if err != nil {
				panic(fmt.Errorf("mir: global id overflow: %w", err))
			}
			gid := GlobalID(raw)
			out.Globals = append(out.Globals, Global{Item: itemID, Type: v.Type, Name: b.Name(v.Name), Span: item.Span})
			if err := scopes.Insert(name, storage{Item: itemID, Class: StorageGlobal, Place: GlobalPlace(gid), Type: v.Type}); err != nil {
				return nil, fmt.Errorf("mir: global %q: %w", b.Name(name), err)
			}
		case ast.ItemFn:
			fn, _ := b.Items.Fn(itemID)
			raw, err := safecast.Conv[int32](len(fns))
			if err != nil {
				panic(fmt.Errorf("mir: func id overflow: %w", err))
			}
			f := &Func{
				ID:     FuncID(raw),
				Item:   itemID,
				Name:   b.Name(fn.Name),
				Span:   item.Span,
				Result: fn.ReturnType,
				Entry:  NoBlockID,
			}
			out.Funcs[f.ID] = f
			out.FuncByItem[itemID] = f.ID
			fns = append(fns, pending{item: itemID, fn: fn, f: f})
			if err := scopes.Insert(name, storage{Item: itemID, Class: StorageFunc, Func: f.ID, Type: fn.ReturnType}); err != nil {
				return nil, fmt.Errorf("mir: function %q: %w", f.Name, err)
			}
		}
	}

	for _, p := range fns {
		fl := &funcLowerer{
			builder:  b,
			sema:     semaRes,
			out:      out,
			scopes:   scopes,
			f:        p.f,
			tracer:   tracer,
			parent:   span.ID(),
			nextTemp: 1,
		}
		if err := fl.lowerFunc(p.fn); err != nil {
			return nil, fmt.Errorf("%s: %w", p.f.Name, err)
		}
	}
	span.WithExtra("funcs", fmt.Sprint(len(fns)))
	return out, nil
}

type loopCtx struct {
	breakTarget    BlockID
	continueTarget BlockID // NoBlockID for switch
}

type funcLowerer struct {
	builder *ast.Builder
	sema    *sema.Result
	out     *Module
	scopes  *symbols.Stack[storage]
	tracer  trace.Tracer
	parent  uint64

	f         *Func
	cur       BlockID
	loopStack []loopCtx
	nextTemp  int
}

func (l *funcLowerer) lowerFunc(fn *ast.FnItem) error {
	span := trace.Begin(l.tracer, trace.ScopeItem, "lower_fn", l.parent).WithExtra("name", l.f.Name)
	defer span.End("")

	depth := l.scopes.Depth()
	l.scopes.Enter(symbols.ScopeFunction)

	entry := l.newBlock()
	l.f.Entry = entry
	l.cur = entry

	// входящие значения параметров сохраняются в собственные слоты до тела
	for _, param := range fn.Params {
		v, ok := l.builder.Items.Var(param)
		if !ok {
			return fmt.Errorf("mir: parameter item %d is not a variable", param)
		}
		item := l.builder.Items.Get(param)
		name := l.builder.Name(v.Name)
		incoming := l.addLocal(ast.NoItemID, v.Type, LocalFlagParam, name, item.Span)
		l.f.Params = append(l.f.Params, incoming)
		slot, err := l.declareLocal(param)
		if err != nil {
			return err
		}
		l.assign(LocalPlace(slot), RValue{Kind: RValueUse, Use: copyOf(LocalPlace(incoming), v.Type)})
	}

	if err := l.lowerBlock(fn.Body, false); err != nil {
		return err
	}
	l.scopes.Exit()
	if l.scopes.Depth() != depth {
		return fmt.Errorf("mir: unbalanced scopes in %s", l.f.Name)
	}

	// неявный выход из функции
	if !l.curBlock().Terminated() {
		if l.f.Result == types.KindVoid {
			l.setTerm(&Terminator{Kind: TermReturn})
		} else {
			l.setTerm(&Terminator{Kind: TermUnreachable})
		}
	}
	for i := range l.f.Blocks {
		if l.f.Blocks[i].Term.Kind == TermNone {
			l.f.Blocks[i].Term.Kind = TermUnreachable
		}
	}
	span.WithExtra("blocks", fmt.Sprint(len(l.f.Blocks)))
	return nil
}

func (l *funcLowerer) curBlock() *Block {
	idx := int(l.cur)
	if idx < 0 || idx >= len(l.f.Blocks) {
		return nil
	}
	return &l.f.Blocks[idx]
}

func (l *funcLowerer) newBlock() BlockID {
	raw, err := safecast.Conv[int32](len(l.f.Blocks))
	if err != nil {
		panic(fmt.Errorf("mir: block id overflow: %w", err))
	}
	id := BlockID(raw)
	l.f.Blocks = append(l.f.Blocks, Block{ID: id, Term: Terminator{Kind: TermNone}})
	return id
}

func (l *funcLowerer) startBlock(id BlockID) {
	l.cur = id
}

// setTerm never overwrites an existing terminator.
func (l *funcLowerer) setTerm(t *Terminator) {
	b := l.curBlock()
	if b == nil || b.Terminated() || t == nil {
		return
	}
	b.Term = *t
}

func (l *funcLowerer) gotoBlock(target BlockID) {
	l.setTerm(&Terminator{Kind: TermGoto, Goto: GotoTerm{Target: target}})
}

func (l *funcLowerer) emit(ins *Instr) {
	b := l.curBlock()
	if b == nil || b.Terminated() || ins == nil {
		return
	}
	b.Instrs = append(b.Instrs, *ins)
}

func (l *funcLowerer) assign(dst Place, src RValue) {
	l.emit(&Instr{Kind: InstrAssign, Assign: AssignInstr{Dst: dst, Src: src}})
}

func (l *funcLowerer) addLocal(item ast.ItemID, ty types.Kind, flags LocalFlags, name string, span source.Span) LocalID {
	raw, err := safecast.Conv[int32](len(l.f.Locals))
	if err != nil {
		panic(fmt.Errorf("mir: local id overflow: %w", err))
	}
	l.f.Locals = append(l.f.Locals, Local{Item: item, Type: ty, Flags: flags, Name: name, Span: span})
	return LocalID(raw)
}

// declareLocal allocates a slot for a variable item and binds it in the top frame.
func (l *funcLowerer) declareLocal(itemID ast.ItemID) (LocalID, error) {
	v, ok := l.builder.Items.Var(itemID)
	if !ok {
		return NoLocalID, fmt.Errorf("mir: item %d is not a variable", itemID)
	}
	if l.scopes.Depth() <= 1 {
		// глубина 1 это глобальная область, локальным там не место
		return NoLocalID, fmt.Errorf("mir: local %q declared at global depth", l.builder.Name(v.Name))
	}
	item := l.builder.Items.Get(itemID)
	id := l.addLocal(itemID, v.Type, 0, l.builder.Name(v.Name), item.Span)
	err := l.scopes.Insert(v.Name, storage{Item: itemID, Class: StorageLocal, Place: LocalPlace(id), Type: v.Type})
	if err != nil {
		return NoLocalID, fmt.Errorf("mir: local %q: %w", l.builder.Name(v.Name), err)
	}
	return id, nil
}

// temp stores rv into a fresh temporary and returns a copy of it.
func (l *funcLowerer) temp(ty types.Kind, rv RValue) Operand {
	id := l.addLocal(ast.NoItemID, ty, LocalFlagTemp, fmt.Sprintf("tmp%d", l.nextTemp), source.Span{})
	l.nextTemp++
	l.assign(LocalPlace(id), rv)
	return copyOf(LocalPlace(id), ty)
}

func (l *funcLowerer) exprType(id ast.ExprID) (types.Kind, error) {
	ty, ok := l.sema.ExprTypes[id]
	if !ok || ty == types.KindInvalid {
		return types.KindInvalid, fmt.Errorf("mir: expression %d has no type", id)
	}
	if ty == types.KindError {
		return ty, fmt.Errorf("mir: expression %d is ill-typed", id)
	}
	return ty, nil
}

func copyOf(p Place, ty types.Kind) Operand {
	return Operand{Kind: OperandCopy, Type: ty, Place: p}
}

func intConst(v int64) Operand {
	return Operand{Kind: OperandConst, Type: types.KindInt, Const: Const{Kind: ConstInt, IntValue: v}}
}

func floatConst(v float64) Operand {
	return Operand{Kind: OperandConst, Type: types.KindFloat, Const: Const{Kind: ConstFloat, FloatValue: v}}
}

func boolConst(v bool) Operand {
	return Operand{Kind: OperandConst, Type: types.KindBool, Const: Const{Kind: ConstBool, BoolValue: v}}
}

func voidOperand() Operand {
	return Operand{Kind: OperandConst, Type: types.KindVoid, Const: Const{Kind: ConstVoid}}
}

// ZeroConst is the initial value of a global of type ty.
func ZeroConst(ty types.Kind) Operand {
	return Operand{Kind: OperandConst, Type: ty, Const: Const{Kind: ConstZero}}
}
