package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// Входной AST (внешний парсер)
	AstInfo               Code = 1000
	AstMalformedDocument  Code = 1001
	AstMalformedNode      Code = 1002
	AstUnknownKind        Code = 1003
	AstUnknownType        Code = 1004
	AstUnknownOperator    Code = 1005
	AstUnsupportedVersion Code = 1006

	// Семантические
	SemaInfo                 Code = 3000
	SemaDeclarationConflict  Code = 3001
	SemaNoDeclarationFound   Code = 3002
	SemaIncompatibleOperand  Code = 3003
	SemaIncompatibleOperands Code = 3004
	SemaTestNotBoolean       Code = 3005
	SemaBreakOutsideLoop     Code = 3006
	SemaContinueOutsideLoop  Code = 3007
	SemaReturnMismatch       Code = 3008
	SemaReturnMissing        Code = 3009
	SemaInaccessibleSwizzle  Code = 3010
	SemaInvalidSwizzle       Code = 3011
	SemaSwizzleOutOfBound    Code = 3012
	SemaOversizedVector      Code = 3013
	SemaNotAFunction         Code = 3014
	SemaNotAVariable         Code = 3015
	SemaArgCountMismatch     Code = 3016
	SemaArgTypeMismatch      Code = 3017
	SemaNotAssignable        Code = 3018
	SemaNotIndexable         Code = 3019
	SemaIndexNotInteger      Code = 3020
	SemaVoidVariable         Code = 3021
	SemaSwitchNotInteger     Code = 3022
	SemaCaseNotConstant      Code = 3023
	SemaDuplicateCase        Code = 3024

	IOLoadFileError Code = 4001
	IOCacheError    Code = 4002

	// Понижение в IR
	LowInfo          Code = 5000
	LowInternalError Code = 5001

	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:              "Unknown error",
	AstInfo:                  "AST information",
	AstMalformedDocument:     "Malformed AST document",
	AstMalformedNode:         "Malformed AST node",
	AstUnknownKind:           "Unknown node kind",
	AstUnknownType:           "Unknown type name",
	AstUnknownOperator:       "Unknown operator",
	AstUnsupportedVersion:    "Unsupported AST format version",
	SemaInfo:                 "Semantic information",
	SemaDeclarationConflict:  "Declaration conflicts with previous declaration",
	SemaNoDeclarationFound:   "No declaration found",
	SemaIncompatibleOperand:  "Incompatible operand",
	SemaIncompatibleOperands: "Incompatible operands",
	SemaTestNotBoolean:       "Test expression must be bool",
	SemaBreakOutsideLoop:     "break is only allowed inside a loop or switch",
	SemaContinueOutsideLoop:  "continue is only allowed inside a loop",
	SemaReturnMismatch:       "Return type mismatch",
	SemaReturnMissing:        "Missing return in function",
	SemaInaccessibleSwizzle:  "Swizzle on a non-vector type",
	SemaInvalidSwizzle:       "Invalid swizzle selector",
	SemaSwizzleOutOfBound:    "Swizzle selector out of bound",
	SemaOversizedVector:      "Swizzle selector is longer than the vector",
	SemaNotAFunction:         "Called name is not a function",
	SemaNotAVariable:         "Name is not a variable",
	SemaArgCountMismatch:     "Wrong number of arguments",
	SemaArgTypeMismatch:      "Argument type mismatch",
	SemaNotAssignable:        "Expression is not assignable",
	SemaNotIndexable:         "Expression is not indexable",
	SemaIndexNotInteger:      "Index must be int",
	SemaVoidVariable:         "Variable declared void",
	SemaSwitchNotInteger:     "Switch value must be int",
	SemaCaseNotConstant:      "Case label must be an integer constant",
	SemaDuplicateCase:        "Duplicate case label",
	IOLoadFileError:          "I/O load file error",
	IOCacheError:             "Diagnostics cache error",
	LowInfo:                  "Lowering information",
	LowInternalError:         "Internal lowering error",
	ObsInfo:                  "Observability information",
	ObsTimings:               "Pipeline timings",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("AST%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("LOW%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	if desc, ok := codeDescription[c]; ok {
		return desc
	}
	return codeDescription[UnknownCode]
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
