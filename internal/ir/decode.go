package ir

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"fortio.org/safecast"
)

// The JSON document layout is the interchange contract with the front end.
// One document carries one module; places are structured base+projection
// records, locals are referenced by name.

type jsonModule struct {
	Functions map[string]*jsonFunc `json:"functions"`
}

type jsonFunc struct {
	Params []string    `json:"params"`
	Return string      `json:"return"`
	Locals []jsonLocal `json:"locals"`
	Entry  int         `json:"entry"`
	Blocks []jsonBlock `json:"blocks"`
}

type jsonLocal struct {
	Name  string   `json:"name"`
	Flags []string `json:"flags"`
}

type jsonBlock struct {
	Stmts []jsonStmt `json:"stmts"`
	Term  *jsonTerm  `json:"term"`
}

type jsonProj struct {
	Field string `json:"field,omitempty"`
	Index *int   `json:"index,omitempty"`
	Deref bool   `json:"deref,omitempty"`
}

type jsonPlace struct {
	Base string     `json:"base"`
	Proj []jsonProj `json:"proj,omitempty"`
}

type jsonOperand struct {
	Const *string    `json:"const,omitempty"`
	Copy  *jsonPlace `json:"copy,omitempty"`
	Move  *jsonPlace `json:"move,omitempty"`
}

type jsonStmt struct {
	Op    string       `json:"op"`
	Dest  *jsonPlace   `json:"dest,omitempty"`
	Src   *jsonOperand `json:"src,omitempty"`
	Of    *jsonPlace   `json:"of,omitempty"`
	Kind  string       `json:"kind,omitempty"`
	From  *jsonPlace   `json:"from,omitempty"`
	Place *jsonPlace   `json:"place,omitempty"`
}

type jsonTerm struct {
	Op     string       `json:"op"`
	Target int          `json:"target,omitempty"`
	Cond   *jsonOperand `json:"cond,omitempty"`
	Then   int          `json:"then,omitempty"`
	Else   int          `json:"else,omitempty"`
}

// LoadModule reads and decodes a module document from disk.
func LoadModule(path string) (*Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck // read-only handle

	m, err := DecodeModule(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// DecodeModule decodes a module document from r.
func DecodeModule(r io.Reader) (*Module, error) {
	var doc jsonModule
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode module: %w", err)
	}
	out := &Module{Funcs: make(map[string]*Func, len(doc.Functions))}
	for name, jf := range doc.Functions {
		fn, err := decodeFunc(name, jf)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", name, err)
		}
		out.Funcs[name] = fn
	}
	return out, nil
}

func decodeFunc(name string, jf *jsonFunc) (*Func, error) {
	if jf == nil {
		return nil, fmt.Errorf("empty function body")
	}
	entry, err := safecast.Conv[int32](jf.Entry)
	if err != nil {
		return nil, fmt.Errorf("entry block: %w", err)
	}
	fn := &Func{
		Name:   name,
		Locals: make([]Local, 0, len(jf.Locals)),
		Entry:  BlockID(entry),
	}
	byName := make(map[string]LocalID, len(jf.Locals))
	for i, jl := range jf.Locals {
		if jl.Name == "" {
			return nil, fmt.Errorf("local %d: missing name", i)
		}
		if _, dup := byName[jl.Name]; dup {
			return nil, fmt.Errorf("local %q declared twice", jl.Name)
		}
		flags, err := decodeFlags(jl.Flags)
		if err != nil {
			return nil, fmt.Errorf("local %q: %w", jl.Name, err)
		}
		id, err := safecast.Conv[int32](i)
		if err != nil {
			return nil, fmt.Errorf("local %q: %w", jl.Name, err)
		}
		byName[jl.Name] = LocalID(id)
		fn.Locals = append(fn.Locals, Local{Name: jl.Name, Flags: flags})
	}
	resolve := func(jp *jsonPlace) (Place, error) {
		if jp == nil {
			return Place{Base: NoLocalID}, fmt.Errorf("missing place")
		}
		id, ok := byName[jp.Base]
		if !ok {
			return Place{Base: NoLocalID}, fmt.Errorf("unknown local %q", jp.Base)
		}
		p := Place{Base: id}
		for _, pr := range jp.Proj {
			switch {
			case pr.Deref:
				p.Proj = append(p.Proj, Proj{Kind: ProjDeref})
			case pr.Index != nil:
				p.Proj = append(p.Proj, Proj{Kind: ProjIndex, Index: *pr.Index})
			case pr.Field != "":
				p.Proj = append(p.Proj, Proj{Kind: ProjField, Field: pr.Field})
			default:
				return Place{Base: NoLocalID}, fmt.Errorf("empty projection on %q", jp.Base)
			}
		}
		return p, nil
	}
	for _, prm := range jf.Params {
		p, err := resolve(&jsonPlace{Base: prm})
		if err != nil {
			return nil, fmt.Errorf("param: %w", err)
		}
		fn.Params = append(fn.Params, p)
	}
	if jf.Return != "" {
		p, err := resolve(&jsonPlace{Base: jf.Return})
		if err != nil {
			return nil, fmt.Errorf("return place: %w", err)
		}
		fn.ReturnPlace = p
	} else {
		fn.ReturnPlace = Place{Base: NoLocalID}
	}
	for bi, jb := range jf.Blocks {
		bb := Block{ID: BlockID(bi)}
		for si, js := range jb.Stmts {
			st, err := decodeStmt(js, resolve)
			if err != nil {
				return nil, fmt.Errorf("bb%d[%d]: %w", bi, si, err)
			}
			bb.Stmts = append(bb.Stmts, st)
		}
		term, err := decodeTerm(jb.Term, resolve)
		if err != nil {
			return nil, fmt.Errorf("bb%d: %w", bi, err)
		}
		bb.Term = term
		fn.Blocks = append(fn.Blocks, bb)
	}
	return fn, nil
}

func decodeFlags(flags []string) (LocalFlags, error) {
	var out LocalFlags
	for _, f := range flags {
		switch f {
		case "copy":
			out |= LocalFlagCopy
		case "own":
			out |= LocalFlagOwn
		case "ref":
			out |= LocalFlagRef
		case "refmut":
			out |= LocalFlagRefMut
		default:
			return 0, fmt.Errorf("unknown flag %q", f)
		}
	}
	return out, nil
}

func decodeOperand(jo *jsonOperand, resolve func(*jsonPlace) (Place, error)) (Operand, error) {
	if jo == nil {
		return Operand{}, fmt.Errorf("missing operand")
	}
	switch {
	case jo.Const != nil:
		return Operand{Kind: OperandConst, Const: *jo.Const}, nil
	case jo.Copy != nil:
		p, err := resolve(jo.Copy)
		if err != nil {
			return Operand{}, err
		}
		return Operand{Kind: OperandCopy, Place: p}, nil
	case jo.Move != nil:
		p, err := resolve(jo.Move)
		if err != nil {
			return Operand{}, err
		}
		return Operand{Kind: OperandMove, Place: p}, nil
	default:
		return Operand{}, fmt.Errorf("operand needs const, copy or move")
	}
}

func decodeStmt(js jsonStmt, resolve func(*jsonPlace) (Place, error)) (Stmt, error) {
	switch js.Op {
	case "assign":
		dest, err := resolve(js.Dest)
		if err != nil {
			return Stmt{}, fmt.Errorf("assign dest: %w", err)
		}
		src, err := decodeOperand(js.Src, resolve)
		if err != nil {
			return Stmt{}, fmt.Errorf("assign src: %w", err)
		}
		return Stmt{Kind: StmtAssign, Assign: AssignStmt{Dest: dest, Src: src}}, nil
	case "borrow":
		dest, err := resolve(js.Dest)
		if err != nil {
			return Stmt{}, fmt.Errorf("borrow dest: %w", err)
		}
		of, err := resolve(js.Of)
		if err != nil {
			return Stmt{}, fmt.Errorf("borrow of: %w", err)
		}
		kind := BorrowShared
		switch js.Kind {
		case "", "shared":
		case "unique":
			kind = BorrowUnique
		default:
			return Stmt{}, fmt.Errorf("unknown borrow kind %q", js.Kind)
		}
		return Stmt{Kind: StmtBorrow, Borrow: BorrowStmt{Dest: dest, Of: of, Kind: kind}}, nil
	case "move":
		dest, err := resolve(js.Dest)
		if err != nil {
			return Stmt{}, fmt.Errorf("move dest: %w", err)
		}
		from, err := resolve(js.From)
		if err != nil {
			return Stmt{}, fmt.Errorf("move from: %w", err)
		}
		return Stmt{Kind: StmtMove, Move: MoveStmt{Dest: dest, From: from}}, nil
	case "drop":
		p, err := resolve(js.Place)
		if err != nil {
			return Stmt{}, fmt.Errorf("drop: %w", err)
		}
		return Stmt{Kind: StmtDrop, Drop: DropStmt{Place: p}}, nil
	case "use":
		src, err := decodeOperand(js.Src, resolve)
		if err != nil {
			return Stmt{}, fmt.Errorf("use: %w", err)
		}
		return Stmt{Kind: StmtUse, Use: UseStmt{Src: src}}, nil
	case "nop":
		return Stmt{Kind: StmtNop}, nil
	default:
		return Stmt{}, fmt.Errorf("unknown statement op %q", js.Op)
	}
}

func decodeTerm(jt *jsonTerm, resolve func(*jsonPlace) (Place, error)) (Terminator, error) {
	if jt == nil {
		return Terminator{}, fmt.Errorf("missing terminator")
	}
	switch jt.Op {
	case "goto":
		target, err := safecast.Conv[int32](jt.Target)
		if err != nil {
			return Terminator{}, fmt.Errorf("goto target: %w", err)
		}
		return Terminator{Kind: TermGoto, Goto: GotoTerm{Target: BlockID(target)}}, nil
	case "branch":
		cond, err := decodeOperand(jt.Cond, resolve)
		if err != nil {
			return Terminator{}, fmt.Errorf("branch cond: %w", err)
		}
		then, err := safecast.Conv[int32](jt.Then)
		if err != nil {
			return Terminator{}, fmt.Errorf("branch then: %w", err)
		}
		els, err := safecast.Conv[int32](jt.Else)
		if err != nil {
			return Terminator{}, fmt.Errorf("branch else: %w", err)
		}
		return Terminator{
			Kind:   TermBranch,
			Branch: BranchTerm{Cond: cond, Then: BlockID(then), Else: BlockID(els)},
		}, nil
	case "return":
		return Terminator{Kind: TermReturn}, nil
	case "unreachable":
		return Terminator{Kind: TermUnreachable}, nil
	default:
		return Terminator{}, fmt.Errorf("unknown terminator op %q", jt.Op)
	}
}
