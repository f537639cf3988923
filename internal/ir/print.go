package ir

import (
	"fmt"
	"io"
	"strings"
)

// DumpModule writes a human-readable, deterministic representation of a
// module. Used by the dump subcommand and golden comparisons in tests.
func DumpModule(w io.Writer, m *Module) error {
	if w == nil || m == nil {
		return nil
	}
	names := m.Names()
	fmt.Fprintf(w, "funcs=%d\n", len(names))
	for _, name := range names {
		if err := DumpFunc(w, m.Funcs[name]); err != nil {
			return err
		}
	}
	return nil
}

// DumpFunc writes one function body.
func DumpFunc(w io.Writer, f *Func) error {
	if w == nil || f == nil {
		return nil
	}
	fmt.Fprintf(w, "\nfn %s:\n", f.Name)

	if len(f.Params) > 0 {
		parts := make([]string, 0, len(f.Params))
		for _, p := range f.Params {
			parts = append(parts, f.PlacePath(p))
		}
		fmt.Fprintf(w, "  params: %s\n", strings.Join(parts, ", "))
	}
	fmt.Fprintf(w, "  locals:\n")
	for i := range f.Locals {
		l := f.Locals[i]
		name := l.Name
		if name == "" {
			name = "_"
		}
		flags := formatLocalFlags(l.Flags)
		if flags != "" {
			fmt.Fprintf(w, "    L%d: %s %s\n", i, name, flags)
		} else {
			fmt.Fprintf(w, "    L%d: %s\n", i, name)
		}
	}

	for i := range f.Blocks {
		bb := &f.Blocks[i]
		fmt.Fprintf(w, "  bb%d:\n", i)
		for j := range bb.Stmts {
			fmt.Fprintf(w, "    %s\n", formatStmt(f, &bb.Stmts[j]))
		}
		fmt.Fprintf(w, "    %s\n", formatTerm(f, bb.Term))
	}
	return nil
}

func formatLocalFlags(flags LocalFlags) string {
	var parts []string
	if flags&LocalFlagCopy != 0 {
		parts = append(parts, "copy")
	}
	if flags&LocalFlagOwn != 0 {
		parts = append(parts, "own")
	}
	if flags&LocalFlagRef != 0 {
		parts = append(parts, "ref")
	}
	if flags&LocalFlagRefMut != 0 {
		parts = append(parts, "refmut")
	}
	if len(parts) == 0 {
		return ""
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func formatOperand(f *Func, op Operand) string {
	switch op.Kind {
	case OperandConst:
		return fmt.Sprintf("const %q", op.Const)
	case OperandCopy:
		return "copy " + f.PlacePath(op.Place)
	case OperandMove:
		return "move " + f.PlacePath(op.Place)
	}
	return "?"
}

func formatStmt(f *Func, st *Stmt) string {
	switch st.Kind {
	case StmtAssign:
		return fmt.Sprintf("%s = %s", f.PlacePath(st.Assign.Dest), formatOperand(f, st.Assign.Src))
	case StmtBorrow:
		return fmt.Sprintf("%s = &%s %s", f.PlacePath(st.Borrow.Dest), st.Borrow.Kind, f.PlacePath(st.Borrow.Of))
	case StmtMove:
		return fmt.Sprintf("%s = move %s", f.PlacePath(st.Move.Dest), f.PlacePath(st.Move.From))
	case StmtDrop:
		return "drop " + f.PlacePath(st.Drop.Place)
	case StmtUse:
		return "use " + formatOperand(f, st.Use.Src)
	case StmtNop:
		return "nop"
	}
	return "?"
}

func formatTerm(f *Func, t Terminator) string {
	switch t.Kind {
	case TermGoto:
		return fmt.Sprintf("goto bb%d", t.Goto.Target)
	case TermBranch:
		return fmt.Sprintf("branch %s ? bb%d : bb%d", formatOperand(f, t.Branch.Cond), t.Branch.Then, t.Branch.Else)
	case TermReturn:
		return "return"
	case TermUnreachable:
		return "unreachable"
	}
	return "<no terminator>"
}
