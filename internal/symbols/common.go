package symbols

import (
	"gofort/internal/source"
)

// CommonBlock is a named region of storage shared across program units.
// Members preserve declaration order; blank COMMON has Name == NoStringID.
type CommonBlock struct {
	Name    source.StringID
	Span    source.Span
	Members []SymbolID

	Size  int64
	Align int64
}
