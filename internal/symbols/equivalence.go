package symbols

import (
	"gofort/internal/source"
)

// EquivalenceObject references a symbol, or an element / substring of one,
// inside an EQUIVALENCE set.
type EquivalenceObject struct {
	Symbol SymbolID
	// Subscripts are constant subscripts for an array element reference,
	// one per dimension, in declaration order.
	Subscripts []int64
	// SubstringStart is the 1-based substring start, 0 when absent.
	SubstringStart int64
	Span           source.Span
}

// EquivalenceSet is a group of objects that must share their first storage
// unit. Sets are unordered; layout results do not depend on member order
// beyond tie-breaks documented in the resolver.
type EquivalenceSet []EquivalenceObject
