package layout

import (
	"fmt"
	"sort"

	"gofort/internal/diag"
	"gofort/internal/symbols"
	"gofort/internal/target"
	"gofort/internal/types"
)

// Engine assigns byte offsets, sizes, and alignments to the storage
// entities of each scope: plain variables, EQUIVALENCE groups, and COMMON
// blocks. It runs once per scope tree, after resolution and type checking,
// and before code generation.
type Engine struct {
	Table    *symbols.Table
	Target   target.Characteristics
	Reporter diag.Reporter
	Commons  CommonMap

	policy AlignPolicy
}

// NewEngine creates an engine for one target. The alignment policy is
// selected here, once, from the target characteristics. A nil commons map
// gets a recording default; a nil reporter discards diagnostics.
func NewEngine(table *symbols.Table, tgt target.Characteristics, reporter diag.Reporter, commons CommonMap) *Engine {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	var policy AlignPolicy = naturalAlignPolicy{}
	if tgt.OS == target.OSAIX {
		policy = aixBindCPolicy{}
	}
	if commons == nil {
		commons = NewRecordingCommonMap(reporter)
	}
	return &Engine{
		Table:    table,
		Target:   tgt,
		Reporter: reporter,
		Commons:  commons,
		policy:   policy,
	}
}

// Compute lays out a scope tree, children first. A scope that is already
// done, or currently being processed, is left alone; that keeps the walk
// finite even over erroneous scope graphs. Kind-parameterized derived-type
// scopes are skipped until instantiation.
func (e *Engine) Compute(id symbols.ScopeID) {
	scope := e.Table.Scopes.Get(id)
	if scope == nil {
		return
	}
	for _, child := range scope.Children {
		e.Compute(child)
	}
	if scope.Kind == symbols.ScopeDerivedType && scope.HasKindParams {
		return
	}
	if scope.State != symbols.LayoutPending {
		return
	}
	scope.State = symbols.LayoutInProgress
	p := &pass{
		engine:   e,
		scopeID:  id,
		scope:    scope,
		deps:     make(map[symbols.SymbolID]depEntry),
		eqBlocks: make(map[symbols.SymbolID]*blockExtent),
	}
	p.run()
	scope.State = symbols.LayoutDone
}

// depEntry ties a symbol to the base symbol that determines its location,
// with the byte offset of the symbol's first storage unit from the base.
type depEntry struct {
	Base   symbols.SymbolID
	Offset int64
	Object symbols.EquivalenceObject
}

// blockExtent is the aggregate extent of one EQUIVALENCE storage sequence,
// keyed by its base symbol.
type blockExtent struct {
	Size  int64
	Align int64
}

// pass is the transient state of laying out one scope. It is created in
// Compute and discarded when the scope's offsets have been committed.
type pass struct {
	engine  *Engine
	scopeID symbols.ScopeID
	scope   *symbols.Scope

	offset int64
	align  int64

	deps     map[symbols.SymbolID]depEntry
	eqBlocks map[symbols.SymbolID]*blockExtent
}

func (p *pass) symbol(id symbols.SymbolID) *symbols.Symbol {
	return p.engine.Table.Symbols.Get(id)
}

func (p *pass) run() {
	scope := p.scope
	// Build the dependency map from the scope's EQUIVALENCE sets.
	for i := range scope.Equivalences {
		p.resolveEquivalenceSet(scope.Equivalences[i])
	}
	// Compute a base symbol and overall extent for each disjoint
	// EQUIVALENCE storage sequence.
	for _, symID := range p.depKeys() {
		stored := p.deps[symID]
		dep := p.resolve(symbolAndOffset{Symbol: stored.Base, Offset: stored.Offset, Object: stored.Object})
		p.deps[symID] = depEntry{Base: dep.Symbol, Offset: dep.Offset, Object: stored.Object}
		sym := p.symbol(symID)
		if sym.Size != 0 {
			panic(fmt.Errorf("layout: size of '%s' assigned twice", p.engine.Table.SymbolName(symID)))
		}
		size, align := p.engine.sizeAndAlignment(sym, true)
		sym.Size = size
		minSize := dep.Offset + size
		if ext, ok := p.eqBlocks[dep.Symbol]; ok {
			ext.Size = max(ext.Size, minSize)
			ext.Align = max(ext.Align, align)
		} else {
			p.eqBlocks[dep.Symbol] = &blockExtent{Size: minSize, Align: align}
		}
	}
	// Assign offsets to EQUIVALENCE block bases outside COMMON, widening
	// the scope extent to cover each whole storage sequence.
	for _, baseID := range p.eqBlockKeys() {
		base := p.symbol(baseID)
		if base.Common.IsValid() {
			continue
		}
		p.placeSymbol(baseID, noOverride())
		ext := p.eqBlocks[baseID]
		ext.Size = max(ext.Size, base.Size)
		p.offset = max(p.offset, base.Offset+ext.Size)
	}
	// Place remaining symbols; this is all of them when the scope has no
	// EQUIVALENCE or COMMON usage.
	for _, symID := range scope.Symbols {
		sym := p.symbol(symID)
		if sym == nil || sym.Common.IsValid() {
			continue
		}
		if _, ok := p.deps[symID]; ok {
			continue
		}
		if _, ok := p.eqBlocks[symID]; ok {
			continue
		}
		p.placeSymbol(symID, p.engine.policy.Override(p.engine, scope, symID))
		if sym.Kind == symbols.SymbolGeneric && sym.Specific.IsValid() {
			// Might be a shadowed procedure pointer.
			if specific := p.symbol(sym.Specific); specific != nil && !specific.Common.IsValid() {
				p.placeSymbol(sym.Specific, noOverride())
			}
		}
	}
	// Size must end up a multiple of the alignment.
	p.offset = p.engine.alignTo(p.offset, p.align)
	scope.Size = p.offset
	scope.Align = p.align
	p.finishDerived()
	// COMMON blocks get their own offset cursors. They are illegal inside
	// BLOCK constructs and skipped there entirely.
	if scope.Kind != symbols.ScopeBlockConstruct {
		for _, blockID := range scope.CommonBlocks {
			p.layoutCommonBlock(blockID)
		}
	}
	// Commit resolved offsets onto aliased symbols, pulling them into the
	// COMMON block of their base when it has one.
	for _, symID := range p.depKeys() {
		dep := p.deps[symID]
		sym := p.symbol(symID)
		base := p.symbol(dep.Base)
		sym.Offset = base.Offset + dep.Offset
		if base.Common.IsValid() {
			sym.Common = base.Common
		}
	}
}

// finishDerived publishes a derived-type scope's extent onto its type
// definition, so objects of the type can be sized.
func (p *pass) finishDerived() {
	if p.scope.Kind != symbols.ScopeDerivedType || !p.scope.Derived.IsValid() {
		return
	}
	if info := p.engine.Table.Types.Derived(p.scope.Derived); info != nil {
		info.Size = p.scope.Size
		info.Align = p.scope.Align
		info.LaidOut = true
	}
}

// depKeys returns the dependency map keys in declaration order (arena IDs
// are allocated in declaration order), so iteration is deterministic.
func (p *pass) depKeys() []symbols.SymbolID {
	keys := make([]symbols.SymbolID, 0, len(p.deps))
	for id := range p.deps {
		keys = append(keys, id)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (p *pass) eqBlockKeys() []symbols.SymbolID {
	keys := make([]symbols.SymbolID, 0, len(p.eqBlocks))
	for id := range p.eqBlocks {
		keys = append(keys, id)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// ensureDerivedLayout lays out a derived type's defining scope on demand.
// Scopes are normally processed bottom-up, so this only fires for types
// defined in sibling or ancestor scopes that have not been reached yet.
func (e *Engine) ensureDerivedLayout(id types.DerivedID, info *types.DerivedInfo) {
	if info == nil || info.LaidOut {
		return
	}
	if scopeID, ok := e.Table.DerivedScopes[id]; ok {
		e.Compute(scopeID)
	}
}
