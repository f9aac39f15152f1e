package mir

import (
	"shadec/internal/ast"
	"shadec/internal/source"
	"shadec/internal/types"
)

type Func struct {
	ID   FuncID
	Item ast.ItemID
	Name string
	Span source.Span

	Result types.Kind
	// Params are the locals receiving incoming arguments, in declaration order.
	Params []LocalID

	Locals []Local
	Blocks []Block
	Entry  BlockID
}
