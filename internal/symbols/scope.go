package symbols

import (
	"gofort/internal/source"
	"gofort/internal/types"
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid ScopeKind = iota
	ScopeGlobal
	ScopeModule
	ScopeMainProgram
	ScopeSubprogram
	ScopeBlockConstruct
	ScopeDerivedType
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "global"
	case ScopeModule:
		return "module"
	case ScopeMainProgram:
		return "main program"
	case ScopeSubprogram:
		return "subprogram"
	case ScopeBlockConstruct:
		return "block construct"
	case ScopeDerivedType:
		return "derived type"
	default:
		return "invalid"
	}
}

// LayoutState tracks a scope's progress through the layout pass.
type LayoutState uint8

const (
	// LayoutPending means the scope has not been laid out yet.
	LayoutPending LayoutState = iota
	// LayoutInProgress guards against reentrant processing of a scope.
	LayoutInProgress
	// LayoutDone means Size and Align are final.
	LayoutDone
)

// Scope models a lexical scope with a parent-child hierarchy. Symbols and
// CommonBlocks preserve declaration order, which is significant for layout.
type Scope struct {
	Kind     ScopeKind
	Parent   ScopeID
	Span     source.Span
	Symbols  []SymbolID
	Children []ScopeID

	Equivalences []EquivalenceSet
	CommonBlocks []CommonID

	// Derived links a ScopeDerivedType to its definition.
	Derived types.DerivedID
	// HasKindParams marks a kind-parameterized derived type awaiting
	// instantiation; such scopes are skipped by layout.
	HasKindParams bool

	Size  int64
	Align int64
	State LayoutState
}
