package symbols

import (
	"gofort/internal/source"
	"gofort/internal/types"
)

// SymbolKind classifies the storage class of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	// SymbolObject is an ordinary data object.
	SymbolObject
	// SymbolProcPointer is a procedure pointer; it occupies storage.
	SymbolProcPointer
	// SymbolProcedure is a plain procedure; it occupies no storage.
	SymbolProcedure
	// SymbolGeneric is a generic interface, possibly shadowing a specific.
	SymbolGeneric
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolObject:
		return "object"
	case SymbolProcPointer:
		return "procedure pointer"
	case SymbolProcedure:
		return "procedure"
	case SymbolGeneric:
		return "generic"
	default:
		return "invalid"
	}
}

// SymbolFlags encode attributes that affect sizing.
type SymbolFlags uint16

const (
	FlagAllocatable SymbolFlags = 1 << iota
	FlagPointer
	FlagAssumedShape
	FlagPolymorphic
	FlagUnlimitedPoly
)

// Symbol describes a named storage entity. Size and Offset are assigned by
// the layout pass; everything else comes from upstream resolution.
type Symbol struct {
	Name  source.StringID
	Kind  SymbolKind
	Scope ScopeID
	Span  source.Span
	Flags SymbolFlags
	Type  types.TypeID
	Shape types.Shape

	// Specific is the shadowed specific procedure of a generic interface.
	Specific SymbolID

	// Common is the block the symbol belongs to, NoCommonID otherwise.
	// The layout pass writes it when EQUIVALENCE adopts a symbol into a block.
	Common CommonID

	Size   int64
	Offset int64
}

// IsDescriptor reports whether the symbol's storage is a runtime descriptor
// rather than the object's own data.
func (s *Symbol) IsDescriptor() bool {
	return s.Flags&(FlagAllocatable|FlagPointer|FlagAssumedShape|FlagPolymorphic|FlagUnlimitedPoly) != 0
}

// Rank reports the number of array dimensions.
func (s *Symbol) Rank() int { return len(s.Shape) }
