package layout

import (
	"fmt"
	"strconv"
	"strings"

	"gofort/internal/diag"
	"gofort/internal/symbols"
	"gofort/internal/types"
)

// symbolAndOffset is an equivalence object resolved to a symbol and a byte
// offset from that symbol's first storage unit.
type symbolAndOffset struct {
	Symbol symbols.SymbolID
	Offset int64
	Object symbols.EquivalenceObject
}

// resolveEquivalenceSet folds one EQUIVALENCE set into the dependency map.
// The member with the largest resolved offset becomes the representative of
// the set, so every other member's offset relative to it is non-negative.
func (p *pass) resolveEquivalenceSet(set symbols.EquivalenceSet) {
	if len(set) == 0 {
		return
	}
	resolved := make([]symbolAndOffset, 0, len(set))
	representative := -1
	for i := range set {
		obj := set[i]
		offset := p.computeObjectOffset(obj)
		r := p.resolve(symbolAndOffset{Symbol: obj.Symbol, Offset: offset, Object: obj})
		resolved = append(resolved, r)
		// ">=" keeps the last-seen member among equal maximal offsets;
		// the choice is observable in generated offsets and kept as is.
		if representative < 0 || r.Offset >= resolved[representative].Offset {
			representative = i
		}
	}
	if representative < 0 {
		panic("layout: equivalence set has no representative")
	}
	base := resolved[representative]
	for i := range resolved {
		r := resolved[i]
		if r.Symbol == base.Symbol {
			if r.Offset != base.Offset {
				p.reportEquivalenceConflict(base, r)
			}
			continue
		}
		// First edge wins; a second chain reaching the same symbol either
		// agrees (resolved identically) or conflicts (caught above on a
		// later set).
		if _, ok := p.deps[r.Symbol]; !ok {
			p.deps[r.Symbol] = depEntry{
				Base:   base.Symbol,
				Offset: base.Offset - r.Offset,
				Object: r.Object,
			}
		}
	}
}

// resolve follows dependency edges to a base symbol, accumulating offsets.
// Visited edges are rewritten to point at the final base (path compression),
// so repeated resolution through a long chain stays cheap.
func (p *pass) resolve(entry symbolAndOffset) symbolAndOffset {
	dep, ok := p.deps[entry.Symbol]
	if !ok {
		return entry
	}
	r := p.resolve(symbolAndOffset{Symbol: dep.Base, Offset: dep.Offset, Object: dep.Object})
	p.deps[entry.Symbol] = depEntry{Base: r.Symbol, Offset: r.Offset, Object: dep.Object}
	return symbolAndOffset{
		Symbol: r.Symbol,
		Offset: r.Offset + entry.Offset,
		Object: entry.Object,
	}
}

// computeObjectOffset is the byte offset of an equivalence object from the
// start of its own variable. Constant subscripts linearize with the first
// dimension varying fastest, anchored at each dimension's lower bound.
func (p *pass) computeObjectOffset(obj symbols.EquivalenceObject) int64 {
	sym := p.symbol(obj.Symbol)
	if sym == nil {
		return 0
	}
	var index int64
	if len(obj.Subscripts) > 0 && len(obj.Subscripts) == len(sym.Shape) {
		for i := len(obj.Subscripts) - 1; ; {
			index += obj.Subscripts[i] - sym.Shape[i].Lower
			if i == 0 {
				break
			}
			i--
			index *= sym.Shape[i].Extent()
		}
	}
	elemSize, _ := p.engine.sizeAndAlignment(sym, false)
	offset := index * elemSize
	if obj.SubstringStart != 0 {
		kind := p.engine.Target.DefaultCharacterBytes
		if t, ok := p.engine.Table.Types.Lookup(sym.Type); ok && t.Kind == types.KindCharacter && t.KindBytes > 0 {
			kind = t.KindBytes
		}
		offset += kind * (obj.SubstringStart - 1)
	}
	return offset
}

// reportEquivalenceConflict diagnoses two chains forcing the same symbol's
// first storage unit to two different offsets. The layout already assigned
// stands; the conflicting edge is simply not applied.
func (p *pass) reportEquivalenceConflict(base, other symbolAndOffset) {
	e := p.engine
	sym := p.symbol(base.Symbol)
	name := e.Table.SymbolName(base.Symbol)
	x, okX := e.designatorFor(sym, base.Offset)
	y, okY := e.designatorFor(sym, other.Offset)
	if okX && okY {
		diag.ReportError(e.Reporter, diag.SemaEquivalenceConflict, base.Object.Span,
			fmt.Sprintf("'%s' and '%s' cannot have the same first storage unit", x, y)).
			WithNote(other.Object.Span, fmt.Sprintf("Incompatible reference to '%s'", y)).
			Emit()
		return
	}
	// Error recovery: the offset does not map back onto a designator.
	diag.ReportError(e.Reporter, diag.SemaEquivalenceConflict, base.Object.Span,
		fmt.Sprintf("'%s' (offset %d bytes and %d bytes) cannot have the same first storage unit",
			name, base.Offset, other.Offset)).
		WithNote(other.Object.Span, fmt.Sprintf("Incompatible reference to '%s' offset %d bytes", name, other.Offset)).
		Emit()
}

// designatorFor maps a byte offset within a symbol back onto source-like
// designator text, e.g. "a(3)" or "s(2)(5:)". It fails when the offset does
// not land on an element (or character) boundary.
func (e *Engine) designatorFor(sym *symbols.Symbol, offset int64) (string, bool) {
	if sym == nil {
		return "", false
	}
	name, ok := e.Table.Strings.Lookup(sym.Name)
	if !ok || name == "" {
		return "", false
	}
	elemSize, _ := e.sizeAndAlignment(sym, false)
	if elemSize <= 0 {
		if offset == 0 {
			return name, true
		}
		return "", false
	}
	index := offset / elemSize
	rem := offset % elemSize
	var b strings.Builder
	b.WriteString(name)
	if len(sym.Shape) > 0 {
		if index >= sym.Shape.Elements() || index < 0 {
			return "", false
		}
		subs := make([]string, len(sym.Shape))
		linear := index
		for i, d := range sym.Shape {
			extent := d.Extent()
			if extent <= 0 {
				return "", false
			}
			subs[i] = strconv.FormatInt(d.Lower+linear%extent, 10)
			linear /= extent
		}
		b.WriteByte('(')
		b.WriteString(strings.Join(subs, ","))
		b.WriteByte(')')
	} else if index != 0 {
		return "", false
	}
	if rem != 0 {
		t, ok := e.Table.Types.Lookup(sym.Type)
		if !ok || t.Kind != types.KindCharacter || t.KindBytes <= 0 || rem%t.KindBytes != 0 {
			return "", false
		}
		fmt.Fprintf(&b, "(%d:)", rem/t.KindBytes+1)
	}
	return b.String(), true
}
