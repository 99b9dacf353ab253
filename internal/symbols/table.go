package symbols

import (
	"gofort/internal/source"
	"gofort/internal/types"
)

// Table bundles the arenas that together describe a resolved program:
// scopes, symbols, COMMON blocks, interned names and types.
type Table struct {
	Strings *source.Interner
	Types   *types.Interner
	Scopes  *Scopes
	Symbols *Symbols
	Commons *Commons

	// DerivedScopes links each derived-type definition to its defining
	// scope, so layout can size derived objects on demand.
	DerivedScopes map[types.DerivedID]ScopeID
}

// NewTable creates an empty table with fresh arenas.
func NewTable() *Table {
	return &Table{
		Strings:       source.NewInterner(),
		Types:         types.NewInterner(),
		Scopes:        NewScopes(0),
		Symbols:       NewSymbols(0),
		Commons:       NewCommons(0),
		DerivedScopes: make(map[types.DerivedID]ScopeID),
	}
}

// SymbolName returns the spelling of a symbol's name, or "" if unknown.
func (t *Table) SymbolName(id SymbolID) string {
	sym := t.Symbols.Get(id)
	if sym == nil {
		return ""
	}
	name, _ := t.Strings.Lookup(sym.Name)
	return name
}

// CommonName returns the spelling of a block's name; blank COMMON yields "".
func (t *Table) CommonName(id CommonID) string {
	block := t.Commons.Get(id)
	if block == nil {
		return ""
	}
	name, _ := t.Strings.Lookup(block.Name)
	return name
}
