package layout_test

import (
	"strings"
	"testing"

	"gofort/internal/diag"
	"gofort/internal/layout"
	"gofort/internal/source"
	"gofort/internal/symbols"
	"gofort/internal/symfile"
	"gofort/internal/target"
)

type computed struct {
	Table *symbols.Table
	Root  symbols.ScopeID
	Bag   *diag.Bag
	Eng   *layout.Engine
}

func computeFromTOML(t *testing.T, tgt target.Characteristics, text string) computed {
	t.Helper()
	fs := source.NewFileSet()
	table, root, err := symfile.LoadBytes("test.toml", []byte(text), fs)
	if err != nil {
		t.Fatalf("load symfile: %v", err)
	}
	bag := diag.NewBag(32)
	eng := layout.NewEngine(table, tgt, diag.BagReporter{Bag: bag}, nil)
	eng.Compute(root)
	return computed{Table: table, Root: root, Bag: bag, Eng: eng}
}

func (c computed) symbol(t *testing.T, name string) *symbols.Symbol {
	t.Helper()
	want := c.Table.Strings.Intern(name)
	root := c.Table.Scopes.Get(c.Root)
	for _, id := range root.Symbols {
		if sym := c.Table.Symbols.Get(id); sym != nil && sym.Name == want {
			return sym
		}
	}
	t.Fatalf("symbol %q not found in root scope", name)
	return nil
}

func bagHasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestIndependentScalars(t *testing.T) {
	res := computeFromTOML(t, target.X8664LinuxGNU(), `
[[symbols]]
name = "i"
type = "integer(4)"

[[symbols]]
name = "d"
type = "real(8)"

[[symbols]]
name = "l"
type = "logical(1)"
`)
	if res.Bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", res.Bag.Items())
	}
	i := res.symbol(t, "i")
	d := res.symbol(t, "d")
	l := res.symbol(t, "l")
	if i.Offset != 0 || i.Size != 4 {
		t.Errorf("i: got offset %d size %d, want 0/4", i.Offset, i.Size)
	}
	if d.Offset != 8 || d.Size != 8 {
		t.Errorf("d: got offset %d size %d, want 8/8", d.Offset, d.Size)
	}
	if l.Offset != 16 || l.Size != 1 {
		t.Errorf("l: got offset %d size %d, want 16/1", l.Offset, l.Size)
	}
	scope := res.Table.Scopes.Get(res.Root)
	if scope.Size != 24 || scope.Align != 8 {
		t.Errorf("scope: got size %d align %d, want 24/8", scope.Size, scope.Align)
	}
	if scope.Size%scope.Align != 0 {
		t.Errorf("scope size %d is not a multiple of alignment %d", scope.Size, scope.Align)
	}
}

func TestCommonBlockPadding(t *testing.T) {
	res := computeFromTOML(t, target.X8664LinuxGNU(), `
[[symbols]]
name = "a"
type = "integer(4)"

[[symbols]]
name = "b"
type = "real(8)"

[[common]]
name = "c"
members = ["a", "b"]
`)
	a := res.symbol(t, "a")
	b := res.symbol(t, "b")
	if a.Offset != 0 || a.Size != 4 {
		t.Errorf("a: got offset %d size %d, want 0/4", a.Offset, a.Size)
	}
	if b.Offset != 8 || b.Size != 8 {
		t.Errorf("b: got offset %d size %d, want 8/8", b.Offset, b.Size)
	}
	block := res.Table.Commons.Get(res.Table.Scopes.Get(res.Root).CommonBlocks[0])
	if block.Size != 16 || block.Align != 8 {
		t.Errorf("block: got size %d align %d, want 16/8", block.Size, block.Align)
	}
	if !bagHasCode(res.Bag, diag.SemaCommonPadding) {
		t.Errorf("expected padding warning, got %+v", res.Bag.Items())
	}
	if res.Bag.HasErrors() {
		t.Errorf("padding must be a warning, got errors: %+v", res.Bag.Items())
	}
	warning := res.Bag.Items()[0]
	if !strings.Contains(warning.Message, "4 bytes of padding before 'b'") {
		t.Errorf("unexpected warning text: %q", warning.Message)
	}
}

func TestEquivalenceScalars(t *testing.T) {
	res := computeFromTOML(t, target.X8664LinuxGNU(), `
[[symbols]]
name = "x"
type = "real(4)"

[[symbols]]
name = "y"
type = "real(4)"

[[equivalence]]
objects = [{ symbol = "x" }, { symbol = "y" }]
`)
	if res.Bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", res.Bag.Items())
	}
	x := res.symbol(t, "x")
	y := res.symbol(t, "y")
	if x.Offset != 0 || y.Offset != 0 {
		t.Errorf("got offsets x=%d y=%d, want both 0", x.Offset, y.Offset)
	}
	if x.Size != 4 || y.Size != 4 {
		t.Errorf("got sizes x=%d y=%d, want both 4", x.Size, y.Size)
	}
	scope := res.Table.Scopes.Get(res.Root)
	if scope.Size != 4 {
		t.Errorf("scope size %d, want 4 (aggregate of the shared storage)", scope.Size)
	}
}

func TestEquivalenceArrayElement(t *testing.T) {
	res := computeFromTOML(t, target.X8664LinuxGNU(), `
[[symbols]]
name = "a"
type = "real(4)"
dims = [[1, 10]]

[[symbols]]
name = "b"
type = "integer(4)"
dims = [[1, 5]]

[[equivalence]]
objects = [
	{ symbol = "a", subscripts = [3] },
	{ symbol = "b", subscripts = [1] },
]
`)
	if res.Bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", res.Bag.Items())
	}
	a := res.symbol(t, "a")
	b := res.symbol(t, "b")
	if a.Offset != 0 || a.Size != 40 {
		t.Errorf("a: got offset %d size %d, want 0/40", a.Offset, a.Size)
	}
	// b(1) coincides with a(3), i.e. byte 8 of a.
	if b.Offset != 8 || b.Size != 20 {
		t.Errorf("b: got offset %d size %d, want 8/20", b.Offset, b.Size)
	}
	scope := res.Table.Scopes.Get(res.Root)
	if scope.Size != 40 {
		t.Errorf("scope size %d, want 40", scope.Size)
	}
}

func TestEquivalenceChainTransitive(t *testing.T) {
	text := func(setsFirst bool) string {
		set1 := `
[[equivalence]]
objects = [{ symbol = "a", subscripts = [3] }, { symbol = "b", subscripts = [1] }]
`
		set2 := `
[[equivalence]]
objects = [{ symbol = "b", subscripts = [2] }, { symbol = "c" }]
`
		head := `
[[symbols]]
name = "a"
type = "real(4)"
dims = [[1, 10]]

[[symbols]]
name = "b"
type = "integer(4)"
dims = [[1, 5]]

[[symbols]]
name = "c"
type = "integer(4)"
`
		if setsFirst {
			return head + set1 + set2
		}
		return head + set2 + set1
	}
	for _, order := range []bool{true, false} {
		res := computeFromTOML(t, target.X8664LinuxGNU(), text(order))
		if res.Bag.Len() != 0 {
			t.Fatalf("order %v: unexpected diagnostics: %+v", order, res.Bag.Items())
		}
		a := res.symbol(t, "a")
		b := res.symbol(t, "b")
		c := res.symbol(t, "c")
		if a.Offset != 0 || b.Offset != 8 || c.Offset != 12 {
			t.Errorf("order %v: got offsets a=%d b=%d c=%d, want 0/8/12",
				order, a.Offset, b.Offset, c.Offset)
		}
	}
}

func TestEquivalenceConflictReportsDesignators(t *testing.T) {
	res := computeFromTOML(t, target.X8664LinuxGNU(), `
[[symbols]]
name = "a"
type = "real(4)"
dims = [[1, 10]]

[[symbols]]
name = "b"
type = "integer(4)"
dims = [[1, 5]]

[[equivalence]]
objects = [{ symbol = "a", subscripts = [1] }, { symbol = "b", subscripts = [1] }]

[[equivalence]]
objects = [{ symbol = "a", subscripts = [2] }, { symbol = "b", subscripts = [1] }]
`)
	if !bagHasCode(res.Bag, diag.SemaEquivalenceConflict) {
		t.Fatalf("expected %v, got %+v", diag.SemaEquivalenceConflict, res.Bag.Items())
	}
	var msg string
	for _, d := range res.Bag.Items() {
		if d.Code == diag.SemaEquivalenceConflict {
			msg = d.Message
			if len(d.Notes) == 0 {
				t.Errorf("conflict diagnostic carries no note: %+v", d)
			}
		}
	}
	if !strings.Contains(msg, "'b(2)'") || !strings.Contains(msg, "'b(1)'") {
		t.Errorf("conflict message does not cite designators: %q", msg)
	}
	// Error recovery: the first chain's layout stands.
	a := res.symbol(t, "a")
	b := res.symbol(t, "b")
	if b.Offset-a.Offset != 0 && b.Offset-a.Offset != 4 {
		t.Errorf("offsets corrupted after conflict: a=%d b=%d", a.Offset, b.Offset)
	}
}

func TestEquivalenceSubstring(t *testing.T) {
	res := computeFromTOML(t, target.X8664LinuxGNU(), `
[[symbols]]
name = "s"
type = "character(10)"

[[symbols]]
name = "u"
type = "character(5)"

[[equivalence]]
objects = [{ symbol = "s", substring = 3 }, { symbol = "u" }]
`)
	if res.Bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", res.Bag.Items())
	}
	s := res.symbol(t, "s")
	u := res.symbol(t, "u")
	if s.Offset != 0 || u.Offset != 2 {
		t.Errorf("got offsets s=%d u=%d, want 0/2", s.Offset, u.Offset)
	}
	scope := res.Table.Scopes.Get(res.Root)
	if scope.Size != 10 || scope.Align != 1 {
		t.Errorf("scope: got size %d align %d, want 10/1", scope.Size, scope.Align)
	}
}

func TestEquivalenceCrossCommonIsError(t *testing.T) {
	res := computeFromTOML(t, target.X8664LinuxGNU(), `
[[symbols]]
name = "x"
type = "integer(4)"

[[symbols]]
name = "y"
type = "integer(4)"

[[common]]
name = "c1"
members = ["x"]

[[common]]
name = "c2"
members = ["y"]

[[equivalence]]
objects = [{ symbol = "x" }, { symbol = "y" }]
`)
	if !bagHasCode(res.Bag, diag.SemaEquivalenceCrossCommon) {
		t.Fatalf("expected %v, got %+v", diag.SemaEquivalenceCrossCommon, res.Bag.Items())
	}
	scope := res.Table.Scopes.Get(res.Root)
	c1 := res.Table.Commons.Get(scope.CommonBlocks[0])
	if c1.Size != 4 {
		t.Errorf("c1 size %d, want 4 (no cross-block merge)", c1.Size)
	}
}

func TestEquivalenceBackwardExtendIsError(t *testing.T) {
	res := computeFromTOML(t, target.X8664LinuxGNU(), `
[[symbols]]
name = "x"
type = "integer(4)"

[[symbols]]
name = "y"
type = "integer(4)"
dims = [[1, 5]]

[[common]]
name = "c"
members = ["x"]

[[equivalence]]
objects = [{ symbol = "x" }, { symbol = "y", subscripts = [2] }]
`)
	if !bagHasCode(res.Bag, diag.SemaEquivalenceBackwardExtend) {
		t.Fatalf("expected %v, got %+v", diag.SemaEquivalenceBackwardExtend, res.Bag.Items())
	}
}

func TestEquivalenceMisplacedWithinCommon(t *testing.T) {
	res := computeFromTOML(t, target.X8664LinuxGNU(), `
[[symbols]]
name = "x"
type = "integer(4)"

[[symbols]]
name = "y"
type = "integer(4)"

[[common]]
name = "c"
members = ["x", "y"]

[[equivalence]]
objects = [{ symbol = "x" }, { symbol = "y" }]
`)
	if !bagHasCode(res.Bag, diag.SemaEquivalenceMisplaced) {
		t.Fatalf("expected %v, got %+v", diag.SemaEquivalenceMisplaced, res.Bag.Items())
	}
	// Layout recovers: the block is finalized and the equivalence edge is
	// still committed, so both symbols end on the base's offset.
	scope := res.Table.Scopes.Get(res.Root)
	if scope.State != symbols.LayoutDone {
		t.Errorf("scope not finalized after error: state %v", scope.State)
	}
	block := res.Table.Commons.Get(scope.CommonBlocks[0])
	if block.Size != 8 {
		t.Errorf("block size %d, want 8", block.Size)
	}
	x := res.symbol(t, "x")
	y := res.symbol(t, "y")
	if x.Offset != y.Offset {
		t.Errorf("equivalence edge not committed: x=%d y=%d", x.Offset, y.Offset)
	}
}

func TestBlankCommonLayout(t *testing.T) {
	res := computeFromTOML(t, target.X8664LinuxGNU(), `
[[symbols]]
name = "a"
type = "integer(4)"

[[symbols]]
name = "b"
type = "real(8)"

[[common]]
members = ["a", "b"]
`)
	if res.Bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", res.Bag.Items())
	}
	a := res.symbol(t, "a")
	b := res.symbol(t, "b")
	if a.Offset != 0 || b.Offset != 8 {
		t.Errorf("got offsets a=%d b=%d, want 0/8", a.Offset, b.Offset)
	}
	scope := res.Table.Scopes.Get(res.Root)
	blockID := scope.CommonBlocks[0]
	block := res.Table.Commons.Get(blockID)
	if block.Size != 16 || block.Align != 8 {
		t.Errorf("block: got size %d align %d, want 16/8", block.Size, block.Align)
	}
	if res.Table.CommonName(blockID) != "" {
		t.Errorf("blank block has name %q", res.Table.CommonName(blockID))
	}
	if !bagHasCode(res.Bag, diag.SemaCommonPadding) {
		t.Fatalf("expected padding warning, got %+v", res.Bag.Items())
	}
	warning := res.Bag.Items()[0]
	if !strings.Contains(warning.Message, "COMMON block // requires 4 bytes of padding before 'b'") {
		t.Errorf("unexpected warning text: %q", warning.Message)
	}
}

func TestEquivalenceExtendsCommonForward(t *testing.T) {
	res := computeFromTOML(t, target.X8664LinuxGNU(), `
[[symbols]]
name = "x"
type = "integer(4)"
dims = [[1, 4]]

[[symbols]]
name = "y"
type = "integer(4)"
dims = [[1, 4]]

[[common]]
name = "c"
members = ["x"]

[[equivalence]]
objects = [{ symbol = "x", subscripts = [3] }, { symbol = "y", subscripts = [1] }]
`)
	if res.Bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", res.Bag.Items())
	}
	x := res.symbol(t, "x")
	y := res.symbol(t, "y")
	if x.Offset != 0 || y.Offset != 8 {
		t.Errorf("got offsets x=%d y=%d, want 0/8", x.Offset, y.Offset)
	}
	if y.Common != x.Common || !y.Common.IsValid() {
		t.Errorf("y not adopted into the block: common=%d", y.Common)
	}
	scope := res.Table.Scopes.Get(res.Root)
	block := res.Table.Commons.Get(scope.CommonBlocks[0])
	// y ends at byte 24, beyond x's own 16 bytes.
	if block.Size != 24 {
		t.Errorf("block size %d, want 24", block.Size)
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	res := computeFromTOML(t, target.X8664LinuxGNU(), `
[[symbols]]
name = "a"
type = "integer(4)"

[[symbols]]
name = "b"
type = "real(8)"

[[common]]
name = "c"
members = ["a", "b"]
`)
	scope := res.Table.Scopes.Get(res.Root)
	size, align, diags := scope.Size, scope.Align, res.Bag.Len()
	res.Eng.Compute(res.Root)
	if scope.Size != size || scope.Align != align {
		t.Errorf("second Compute changed scope: size %d->%d align %d->%d",
			size, scope.Size, align, scope.Align)
	}
	if res.Bag.Len() != diags {
		t.Errorf("second Compute emitted %d extra diagnostics", res.Bag.Len()-diags)
	}
	if scope.State != symbols.LayoutDone {
		t.Errorf("scope state %v, want LayoutDone", scope.State)
	}
}

func TestDescriptorAndProcPointer(t *testing.T) {
	tgt := target.X8664LinuxGNU()
	res := computeFromTOML(t, tgt, `
[[symbols]]
name = "v"
type = "real(4)"
dims = [[1, 10]]
attrs = ["allocatable"]

[[symbols]]
name = "p"
class = "proc_pointer"

[[symbols]]
name = "f"
class = "procedure"
`)
	if res.Bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", res.Bag.Items())
	}
	v := res.symbol(t, "v")
	wantDesc := tgt.DescriptorBytes(1, false, 0)
	if v.Size != wantDesc {
		t.Errorf("allocatable array: got size %d, want descriptor size %d", v.Size, wantDesc)
	}
	p := res.symbol(t, "p")
	if p.Size != tgt.ProcPointerBytes {
		t.Errorf("proc pointer: got size %d, want %d", p.Size, tgt.ProcPointerBytes)
	}
	f := res.symbol(t, "f")
	if f.Size != 0 || f.Offset != 0 {
		t.Errorf("plain procedure must occupy no storage, got size %d offset %d", f.Size, f.Offset)
	}
}

func TestDerivedTypeObjects(t *testing.T) {
	res := computeFromTOML(t, target.X8664LinuxGNU(), `
[[derived]]
name = "pair"
components = [
	{ name = "x", type = "real(8)" },
	{ name = "y", type = "integer(4)" },
]

[[symbols]]
name = "p"
type = "type(pair)"

[[symbols]]
name = "ps"
type = "type(pair)"
dims = [[1, 3]]
`)
	if res.Bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", res.Bag.Items())
	}
	p := res.symbol(t, "p")
	if p.Size != 16 {
		t.Errorf("pair object: got size %d, want 16 (8 + 4 + trailing padding)", p.Size)
	}
	ps := res.symbol(t, "ps")
	if ps.Size != 48 {
		t.Errorf("pair array: got size %d, want 48", ps.Size)
	}
}

func TestKindParameterizedDerivedSkipped(t *testing.T) {
	res := computeFromTOML(t, target.X8664LinuxGNU(), `
[[derived]]
name = "generic"
kind_params = 1
components = [{ name = "v", type = "real(8)" }]
`)
	if res.Bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", res.Bag.Items())
	}
	root := res.Table.Scopes.Get(res.Root)
	child := res.Table.Scopes.Get(root.Children[0])
	if child.State == symbols.LayoutDone {
		t.Errorf("kind-parameterized derived scope must not be laid out")
	}
}
