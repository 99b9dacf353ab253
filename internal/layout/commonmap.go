package layout

import (
	"fmt"

	"gofort/internal/diag"
	"gofort/internal/source"
	"gofort/internal/symbols"
)

// CommonMap receives every finalized COMMON block. Cross-scope conflict
// detection for same-named blocks happens behind this seam, outside the
// per-scope layout pass.
type CommonMap interface {
	MapBlock(table *symbols.Table, id symbols.CommonID)
}

type mappedCommon struct {
	ID   symbols.CommonID
	Size int64
	Span source.Span
}

// RecordingCommonMap is the default CommonMap: it remembers the first
// finalized block of each name and warns when a later one disagrees on
// size.
type RecordingCommonMap struct {
	reporter diag.Reporter
	byName   map[source.StringID]mappedCommon
}

func NewRecordingCommonMap(reporter diag.Reporter) *RecordingCommonMap {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &RecordingCommonMap{
		reporter: reporter,
		byName:   make(map[source.StringID]mappedCommon),
	}
}

func (m *RecordingCommonMap) MapBlock(table *symbols.Table, id symbols.CommonID) {
	block := table.Commons.Get(id)
	if block == nil || block.Name == source.NoStringID {
		// Blank COMMON may legitimately differ in size between scopes.
		return
	}
	if prior, ok := m.byName[block.Name]; ok {
		if prior.Size != block.Size {
			name, _ := table.Strings.Lookup(block.Name)
			diag.ReportWarning(m.reporter, diag.SemaCommonSizeMismatch, block.Span,
				fmt.Sprintf("COMMON block /%s/ is %d bytes here but %d bytes elsewhere",
					name, block.Size, prior.Size)).
				WithNote(prior.Span, fmt.Sprintf("Previous definition of /%s/", name)).
				Emit()
		}
		return
	}
	m.byName[block.Name] = mappedCommon{ID: id, Size: block.Size, Span: block.Span}
}

// Blocks returns the recorded blocks, one per name.
func (m *RecordingCommonMap) Blocks() []symbols.CommonID {
	out := make([]symbols.CommonID, 0, len(m.byName))
	for _, v := range m.byName {
		out = append(out, v.ID)
	}
	return out
}
