package layout

import (
	"gofort/internal/symbols"
	"gofort/internal/types"
)

// AlignPolicy supplies a per-symbol alignment override consulted before
// every top-level symbol placement. The policy is chosen once per engine
// from the target characteristics.
type AlignPolicy interface {
	Override(e *Engine, scope *symbols.Scope, id symbols.SymbolID) alignOverride
}

// naturalAlignPolicy never overrides; every symbol keeps its natural
// alignment (clamped by the target maximum in alignTo).
type naturalAlignPolicy struct{}

func (naturalAlignPolicy) Override(*Engine, *symbols.Scope, symbols.SymbolID) alignOverride {
	return noOverride()
}

// aixBindCPolicy implements the AIX rule for interoperable derived types:
// any component other than the first that is a real or complex value wider
// than 4 bytes gets 4-byte alignment instead of its natural one. Nested
// derived components are resolved by componentAlignment.
type aixBindCPolicy struct{}

const aixWideFloatAlign = 4

func (aixBindCPolicy) Override(e *Engine, scope *symbols.Scope, id symbols.SymbolID) alignOverride {
	if scope == nil || scope.Kind != symbols.ScopeDerivedType {
		return noOverride()
	}
	info := e.Table.Types.Derived(scope.Derived)
	if info == nil || !info.BindC {
		return noOverride()
	}
	if len(scope.Symbols) == 0 || scope.Symbols[0] == id {
		return noOverride()
	}
	sym := e.Table.Symbols.Get(id)
	if sym == nil {
		return noOverride()
	}
	t, ok := e.Table.Types.Lookup(sym.Type)
	if !ok {
		return noOverride()
	}
	if isWideFloat(t) {
		return alignOverride{value: aixWideFloatAlign, ok: true}
	}
	if t.Kind == types.KindDerived {
		if v, res := e.componentAlignment(t.Derived, 0); res == overrideValue {
			return alignOverride{value: v, ok: true}
		}
	}
	return noOverride()
}

func isWideFloat(t types.Type) bool {
	return (t.Kind == types.KindReal || t.Kind == types.KindComplex) && t.KindBytes > 4
}

// overrideResult is the explicit tri-state of the nested component walk:
// no override applies, an override value was found, or the type graph is
// malformed (missing definitions, excessive nesting).
type overrideResult uint8

const (
	overrideNone overrideResult = iota
	overrideValue
	overrideMalformed
)

// maxComponentDepth bounds the nested component walk; deeper type graphs
// are treated as malformed rather than recursed into.
const maxComponentDepth = 64

// componentAlignment determines the override alignment of a nested derived
// component. It fails with overrideNone when no wide real or complex
// component exists at this level, matching the platform ABI rule.
func (e *Engine) componentAlignment(id types.DerivedID, depth int) (int64, overrideResult) {
	if depth >= maxComponentDepth {
		return 0, overrideMalformed
	}
	info := e.Table.Types.Derived(id)
	if info == nil {
		return 0, overrideMalformed
	}
	var maxAlign int64
	containsWide := false
	for _, comp := range info.Components {
		t, ok := e.Table.Types.Lookup(comp.Type)
		if !ok {
			return 0, overrideMalformed
		}
		_, align := e.typeSizeAlign(comp.Type)
		switch {
		case isWideFloat(t):
			maxAlign = max(maxAlign, aixWideFloatAlign)
			containsWide = true
		case t.Kind == types.KindDerived:
			if _, res := e.componentAlignment(t.Derived, depth+1); res != overrideValue {
				return 0, res
			}
			maxAlign = max(maxAlign, align)
		default:
			maxAlign = max(maxAlign, align)
		}
	}
	if containsWide {
		return maxAlign, overrideValue
	}
	return 0, overrideNone
}
