package ir

type FuncID int32
type BlockID int32
type LocalID int32

const (
	NoFuncID  FuncID  = -1
	NoBlockID BlockID = -1
	NoLocalID LocalID = -1
)

// LocalFlags categorizes a local for the ownership analysis.
type LocalFlags uint8

const (
	// LocalFlagCopy marks value types that duplicate on read and never move.
	LocalFlagCopy LocalFlags = 1 << iota
	// LocalFlagOwn marks heap-backed or user-declared owning types.
	LocalFlagOwn
	// LocalFlagRef marks shared reference bindings.
	LocalFlagRef
	// LocalFlagRefMut marks unique reference bindings.
	LocalFlagRefMut
)

// IsCopy reports whether reads of the local leave its move state untouched.
func (f LocalFlags) IsCopy() bool { return f&LocalFlagCopy != 0 }

// IsRef reports whether the local holds a reference of either kind.
func (f LocalFlags) IsRef() bool { return f&(LocalFlagRef|LocalFlagRefMut) != 0 }

// Local is a named storage slot within a function frame.
type Local struct {
	Name  string
	Flags LocalFlags
}
