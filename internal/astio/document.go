// Package astio reads and writes AST documents produced by external parsers.
// A document is either JSON (.ast.json) or msgpack (.astpack); both use the
// same field names.
package astio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// FormatVersion is the only document version this package understands.
const FormatVersion = 1

type Format uint8

const (
	FormatJSON Format = iota
	FormatMsgpack
)

func (f Format) String() string {
	if f == FormatMsgpack {
		return "msgpack"
	}
	return "json"
}

// Pos is a half-open byte range in the source the AST was parsed from.
type Pos struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

// Document is the top-level container of one translation unit.
type Document struct {
	Version int     `json:"version"`
	Path    string  `json:"path"`
	Source  string  `json:"source,omitempty"`
	Span    Pos     `json:"span"`
	Decls   []*Node `json:"decls"`
}

// Node is any declaration, statement or expression; Kind selects which
// fields are meaningful.
//
//	decls:  var{name,type}  fn{name,type,params,body}
//	stmts:  block{decls,stmts} decl{item} expr{expr} if{cond,then,else}
//	        for{init,cond,step,body} while{cond,body} break continue
//	        return{expr} switch{expr,cases}
//	exprs:  int float bool{lit} ident{name} binary{op,left,right}
//	        unary/postfix{op,operand} index{target,index}
//	        field{target,name} call{name,args} empty error
type Node struct {
	Kind     string `json:"kind"`
	Span     Pos    `json:"span"`
	Name     string `json:"name,omitempty"`
	NameSpan *Pos   `json:"name_span,omitempty"`
	Type     string `json:"type,omitempty"`
	Op       string `json:"op,omitempty"`
	Lit      string `json:"lit,omitempty"`

	Params []*Node `json:"params,omitempty"`
	Decls  []*Node `json:"decls,omitempty"`
	Stmts  []*Node `json:"stmts,omitempty"`
	Args   []*Node `json:"args,omitempty"`
	Cases  []*Case `json:"cases,omitempty"`

	Body    *Node `json:"body,omitempty"`
	Item    *Node `json:"item,omitempty"`
	Expr    *Node `json:"expr,omitempty"`
	Cond    *Node `json:"cond,omitempty"`
	Then    *Node `json:"then,omitempty"`
	Else    *Node `json:"else,omitempty"`
	Init    *Node `json:"init,omitempty"`
	Step    *Node `json:"step,omitempty"`
	Left    *Node `json:"left,omitempty"`
	Right   *Node `json:"right,omitempty"`
	Operand *Node `json:"operand,omitempty"`
	Target  *Node `json:"target,omitempty"`
	Index   *Node `json:"index,omitempty"`
}

// Case is one switch arm; a nil Label is the default arm.
type Case struct {
	Span  Pos     `json:"span"`
	Label *Node   `json:"label,omitempty"`
	Body  []*Node `json:"body,omitempty"`
}

// FormatForPath picks the encoding by file extension.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".astpack", ".mp", ".msgpack":
		return FormatMsgpack
	default:
		return FormatJSON
	}
}

func Unmarshal(data []byte, f Format) (*Document, error) {
	doc := &Document{}
	switch f {
	case FormatMsgpack:
		dec := msgpack.NewDecoder(bytes.NewReader(data))
		dec.SetCustomStructTag("json")
		if err := dec.Decode(doc); err != nil {
			return nil, fmt.Errorf("astio: decode msgpack: %w", err)
		}
	default:
		if err := json.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("astio: decode json: %w", err)
		}
	}
	return doc, nil
}

func Marshal(doc *Document, f Format) ([]byte, error) {
	switch f {
	case FormatMsgpack:
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetCustomStructTag("json")
		enc.SetOmitEmpty(true)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("astio: encode msgpack: %w", err)
		}
		return buf.Bytes(), nil
	default:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("astio: encode json: %w", err)
		}
		return append(data, '\n'), nil
	}
}

// ReadFile loads a document, choosing the decoder by extension.
func ReadFile(path string) (*Document, []byte, error) {
	// #nosec G304 -- path comes from the command line
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("astio: %w", err)
	}
	doc, err := Unmarshal(data, FormatForPath(path))
	if err != nil {
		return nil, data, fmt.Errorf("%s: %w", path, err)
	}
	return doc, data, nil
}

// WriteFile stores doc at path in the format implied by its extension.
func WriteFile(path string, doc *Document) error {
	data, err := Marshal(doc, FormatForPath(path))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
