package layout_test

import (
	"testing"

	"gofort/internal/target"
)

const bindCFixture = `
[[derived]]
name = "cpair"
bind_c = true
components = [
	{ name = "a", type = "integer(4)" },
	{ name = "b", type = "real(8)" },
]

[[symbols]]
name = "p"
type = "type(cpair)"
`

func TestAIXBindCWideComponent(t *testing.T) {
	res := computeFromTOML(t, target.PPC64AIX(), bindCFixture)
	if res.Bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", res.Bag.Items())
	}
	p := res.symbol(t, "p")
	// The wide real component drops to 4-byte alignment on AIX.
	if p.Size != 12 {
		t.Errorf("cpair on aix: got size %d, want 12", p.Size)
	}
}

func TestAIXBindCNaturalElsewhere(t *testing.T) {
	res := computeFromTOML(t, target.X8664LinuxGNU(), bindCFixture)
	if res.Bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", res.Bag.Items())
	}
	p := res.symbol(t, "p")
	if p.Size != 16 {
		t.Errorf("cpair on linux: got size %d, want 16", p.Size)
	}
}

func TestAIXOverrideNeedsBindC(t *testing.T) {
	res := computeFromTOML(t, target.PPC64AIX(), `
[[derived]]
name = "pair"
components = [
	{ name = "a", type = "integer(4)" },
	{ name = "b", type = "real(8)" },
]

[[symbols]]
name = "p"
type = "type(pair)"
`)
	p := res.symbol(t, "p")
	if p.Size != 16 {
		t.Errorf("non-bind(c) type on aix: got size %d, want natural 16", p.Size)
	}
}

func TestAIXFirstComponentKeepsNaturalAlignment(t *testing.T) {
	res := computeFromTOML(t, target.PPC64AIX(), `
[[derived]]
name = "wfirst"
bind_c = true
components = [
	{ name = "b", type = "real(8)" },
	{ name = "a", type = "integer(4)" },
]

[[symbols]]
name = "p"
type = "type(wfirst)"
`)
	p := res.symbol(t, "p")
	// b leads the type, so it keeps 8-byte alignment and pads the tail.
	if p.Size != 16 {
		t.Errorf("wfirst on aix: got size %d, want 16", p.Size)
	}
}

func TestAIXNestedDerivedComponent(t *testing.T) {
	res := computeFromTOML(t, target.PPC64AIX(), `
[[derived]]
name = "inner"
components = [{ name = "d", type = "real(8)" }]

[[derived]]
name = "outer"
bind_c = true
components = [
	{ name = "i", type = "integer(4)" },
	{ name = "s", type = "type(inner)" },
]

[[symbols]]
name = "p"
type = "type(outer)"
`)
	if res.Bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", res.Bag.Items())
	}
	p := res.symbol(t, "p")
	// inner holds a wide real, so the nested component also packs at 4.
	if p.Size != 12 {
		t.Errorf("outer on aix: got size %d, want 12", p.Size)
	}
}

func TestAIXComplexComponent(t *testing.T) {
	res := computeFromTOML(t, target.PPC64AIX(), `
[[derived]]
name = "cz"
bind_c = true
components = [
	{ name = "i", type = "integer(4)" },
	{ name = "z", type = "complex(8)" },
]

[[symbols]]
name = "p"
type = "type(cz)"
`)
	p := res.symbol(t, "p")
	// complex(8) is 16 bytes with natural 8-byte alignment; on AIX it
	// packs at offset 4 for a 20-byte type.
	if p.Size != 20 {
		t.Errorf("cz on aix: got size %d, want 20", p.Size)
	}
}
