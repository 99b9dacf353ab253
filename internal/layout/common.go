package layout

import (
	"fmt"

	"gofort/internal/diag"
	"gofort/internal/source"
	"gofort/internal/symbols"
)

// layoutCommonBlock assigns offsets to a block's members in declaration
// order on a cursor of the block's own, reconciling EQUIVALENCE chains that
// cross into or out of the block and folding every associated storage
// sequence into the block's size.
func (p *pass) layoutCommonBlock(blockID symbols.CommonID) {
	block := p.engine.Table.Commons.Get(blockID)
	if block == nil {
		return
	}
	blockName := p.engine.Table.CommonName(blockID)
	p.offset = 0
	p.align = 0
	var minSize, minAlign int64
	previous := make(map[symbols.SymbolID]bool, len(block.Members))
	for _, memberID := range block.Members {
		sym := p.symbol(memberID)
		if sym == nil {
			continue
		}
		errorSite := block.Span
		if block.Name == source.NoStringID {
			errorSite = sym.Span
		}
		if padding := p.placeSymbol(memberID, noOverride()); padding > 0 {
			diag.ReportWarning(p.engine.Reporter, diag.SemaCommonPadding, errorSite,
				fmt.Sprintf("COMMON block /%s/ requires %d bytes of padding before '%s' for alignment",
					blockName, padding, p.engine.Table.SymbolName(memberID))).Emit()
		}
		previous[memberID] = true
		var extKey symbols.SymbolID
		var ext *blockExtent
		if dep, isAliased := p.deps[memberID]; !isAliased {
			if e, ok := p.eqBlocks[memberID]; ok {
				extKey, ext = memberID, e
				ext.Size = max(ext.Size, sym.Size)
			}
		} else {
			base := p.symbol(dep.Base)
			baseName := p.engine.Table.SymbolName(dep.Base)
			switch {
			case base.Common == blockID:
				if !previous[dep.Base] || base.Offset != sym.Offset-dep.Offset {
					diag.ReportError(p.engine.Reporter, diag.SemaEquivalenceMisplaced, errorSite,
						fmt.Sprintf("'%s' is storage associated with '%s' by EQUIVALENCE elsewhere in COMMON block /%s/",
							p.engine.Table.SymbolName(memberID), baseName, blockName)).Emit()
				}
			case base.Common.IsValid():
				diag.ReportError(p.engine.Reporter, diag.SemaEquivalenceCrossCommon, errorSite,
					fmt.Sprintf("'%s' in COMMON block /%s/ must not be storage associated with '%s' in COMMON block /%s/ by EQUIVALENCE",
						p.engine.Table.SymbolName(memberID), blockName, baseName,
						p.engine.Table.CommonName(base.Common))).Emit()
			case dep.Offset > sym.Offset:
				// The base would have to start before the block begins.
				diag.ReportError(p.engine.Reporter, diag.SemaEquivalenceBackwardExtend, errorSite,
					fmt.Sprintf("'%s' cannot backward-extend COMMON block /%s/ via EQUIVALENCE with '%s'",
						p.engine.Table.SymbolName(memberID), blockName, baseName)).Emit()
			default:
				// Adopt the base into this block at the offset the
				// equivalence requires.
				extKey, ext = dep.Base, p.eqBlocks[dep.Base]
				base.Common = blockID
				base.Offset = sym.Offset - dep.Offset
				previous[dep.Base] = true
			}
		}
		// The full extent of an associated EQUIVALENCE storage sequence
		// counts toward the block's size.
		if ext != nil {
			extBase := p.symbol(extKey)
			minSize = max(minSize, max(p.offset, extBase.Offset+ext.Size))
			minAlign = max(minAlign, ext.Align)
		}
	}
	block.Size = max(minSize, p.offset)
	block.Align = max(minAlign, p.align)
	if p.engine.Commons != nil {
		p.engine.Commons.MapBlock(p.engine.Table, blockID)
	}
}
