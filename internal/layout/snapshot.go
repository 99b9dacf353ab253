package layout

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"gofort/internal/symbols"
)

// Current schema version - increment when the snapshot format changes.
const snapshotSchemaVersion uint16 = 1

// Snapshot is a serializable image of a computed layout, used by tooling to
// diff layouts across targets or compiler versions.
type Snapshot struct {
	Schema uint16
	Target string
	Scopes []ScopeLayout
}

// ScopeLayout captures one scope's extent and members.
type ScopeLayout struct {
	Kind    string
	Size    int64
	Align   int64
	Symbols []SymbolLayout
	Commons []CommonLayout
}

// SymbolLayout is one placed symbol.
type SymbolLayout struct {
	Name   string
	Offset int64
	Size   int64
	Common string
}

// CommonLayout is one finalized COMMON block with its members.
type CommonLayout struct {
	Name    string
	Size    int64
	Align   int64
	Members []SymbolLayout
}

// TakeSnapshot collects the computed layout of a scope tree.
func (e *Engine) TakeSnapshot(root symbols.ScopeID) *Snapshot {
	snap := &Snapshot{
		Schema: snapshotSchemaVersion,
		Target: e.Target.Name,
	}
	e.snapshotScope(root, snap)
	return snap
}

func (e *Engine) snapshotScope(id symbols.ScopeID, snap *Snapshot) {
	scope := e.Table.Scopes.Get(id)
	if scope == nil {
		return
	}
	sl := ScopeLayout{
		Kind:  scope.Kind.String(),
		Size:  scope.Size,
		Align: scope.Align,
	}
	for _, symID := range scope.Symbols {
		sym := e.Table.Symbols.Get(symID)
		if sym == nil || sym.Size == 0 {
			continue
		}
		sl.Symbols = append(sl.Symbols, SymbolLayout{
			Name:   e.Table.SymbolName(symID),
			Offset: sym.Offset,
			Size:   sym.Size,
			Common: e.Table.CommonName(sym.Common),
		})
	}
	for _, blockID := range scope.CommonBlocks {
		block := e.Table.Commons.Get(blockID)
		if block == nil {
			continue
		}
		cl := CommonLayout{
			Name:  e.Table.CommonName(blockID),
			Size:  block.Size,
			Align: block.Align,
		}
		for _, memberID := range block.Members {
			member := e.Table.Symbols.Get(memberID)
			if member == nil {
				continue
			}
			cl.Members = append(cl.Members, SymbolLayout{
				Name:   e.Table.SymbolName(memberID),
				Offset: member.Offset,
				Size:   member.Size,
				Common: cl.Name,
			})
		}
		sl.Commons = append(sl.Commons, cl)
	}
	snap.Scopes = append(snap.Scopes, sl)
	for _, child := range scope.Children {
		e.snapshotScope(child, snap)
	}
}

// Encode serializes the snapshot.
func (s *Snapshot) Encode() ([]byte, error) {
	return msgpack.Marshal(s)
}

// DecodeSnapshot deserializes a snapshot, rejecting unknown schemas.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode layout snapshot: %w", err)
	}
	if s.Schema != snapshotSchemaVersion {
		return nil, fmt.Errorf("layout snapshot schema %d not supported (want %d)", s.Schema, snapshotSchemaVersion)
	}
	return &s, nil
}
