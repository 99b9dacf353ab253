package layout

import (
	"gofort/internal/symbols"
	"gofort/internal/types"
)

// alignOverride is an optional alignment forced by the active policy.
type alignOverride struct {
	value int64
	ok    bool
}

func noOverride() alignOverride { return alignOverride{} }

// placeSymbol assigns the next offset in the current cursor to a symbol,
// inserting alignment padding first. Symbols without storage (procedures,
// zero-sized objects) are skipped. Returns the padding inserted, so callers
// can surface alignment-driven layout surprises.
func (p *pass) placeSymbol(id symbols.SymbolID, override alignOverride) int64 {
	sym := p.symbol(id)
	if sym == nil {
		return 0
	}
	if sym.Kind != symbols.SymbolObject && sym.Kind != symbols.SymbolProcPointer {
		return 0
	}
	size, align := p.engine.sizeAndAlignment(sym, true)
	if size == 0 {
		return 0
	}
	if override.ok {
		align = override.value
	}
	previous := p.offset
	p.offset = p.engine.alignTo(p.offset, align)
	padding := p.offset - previous
	sym.Size = size
	sym.Offset = p.offset
	p.offset += size
	p.align = max(p.align, align)
	return padding
}

// alignTo rounds an offset up to an alignment, capped at the target's
// maximum alignment. Idempotent; the result is never smaller than x.
func (e *Engine) alignTo(x, align int64) int64 {
	align = min(align, e.Target.MaxAlignment)
	if align <= 1 {
		return x
	}
	r := x % align
	if r == 0 {
		return x
	}
	return x + (align - r)
}

// sizeAndAlignment is the (size, alignment) of a symbol's storage. The four
// symbol classes are disjoint: descriptor-backed entities, procedure
// pointers, plain procedures (no storage), and ordinary data objects.
// For data objects, entire selects the whole object over a single element.
func (e *Engine) sizeAndAlignment(sym *symbols.Symbol, entire bool) (int64, int64) {
	if sym == nil {
		return 0, 0
	}
	if sym.Kind == symbols.SymbolObject && sym.IsDescriptor() {
		info := e.Table.Types.DerivedOf(sym.Type)
		lenParams := 0
		addendum := sym.Flags&symbols.FlagUnlimitedPoly != 0
		if info != nil {
			lenParams = info.LenParams
			addendum = true
		}
		return e.Target.DescriptorBytes(sym.Rank(), addendum, lenParams), e.Target.DescriptorAlignment
	}
	if sym.Kind == symbols.SymbolProcPointer {
		return e.Target.ProcPointerBytes, e.Target.ProcPointerAlign
	}
	if sym.Kind != symbols.SymbolObject {
		return 0, 0
	}
	size, align := e.typeSizeAlign(sym.Type)
	if entire {
		size *= sym.Shape.Elements()
	}
	return size, align
}

// typeSizeAlign is the element size and natural alignment of a type.
func (e *Engine) typeSizeAlign(id types.TypeID) (int64, int64) {
	t, ok := e.Table.Types.Lookup(id)
	if !ok {
		return 0, 0
	}
	switch t.Kind {
	case types.KindInteger, types.KindReal, types.KindLogical:
		return t.KindBytes, t.KindBytes
	case types.KindComplex:
		return 2 * t.KindBytes, t.KindBytes
	case types.KindCharacter:
		if t.Len < 0 {
			return 0, t.KindBytes
		}
		return t.KindBytes * t.Len, t.KindBytes
	case types.KindDerived:
		info := e.Table.Types.Derived(t.Derived)
		if info == nil {
			return 0, 1
		}
		e.ensureDerivedLayout(t.Derived, info)
		if !info.LaidOut {
			return 0, 1
		}
		return info.Size, info.Align
	default:
		return 0, 0
	}
}
