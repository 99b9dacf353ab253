package diagfmt_test

import (
	"strings"
	"testing"

	"gofort/internal/diag"
	"gofort/internal/diagfmt"
	"gofort/internal/source"
)

func TestPretty(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.Add("scope.toml", []byte("line one\nline two\n"), 0)
	bag := diag.NewBag(4)
	bag.Add(diag.New(diag.SevError, diag.SemaEquivalenceConflict,
		source.Span{File: id, Start: 9, End: 13}, "objects collide").
		WithNote(source.Span{File: id, Start: 0, End: 4}, "first reference"))
	bag.Add(diag.New(diag.SevWarning, diag.SemaCommonPadding,
		source.Span{File: id, Start: 0, End: 4}, "padding inserted"))

	var sb strings.Builder
	diagfmt.Pretty(&sb, bag, fs, diagfmt.PrettyOpts{})
	out := sb.String()

	want := []string{
		"scope.toml:2:1: ERROR [SEM3101]: objects collide",
		"  note: scope.toml:1:1: first reference",
		"scope.toml:1:1: WARNING [SEM3105]: padding inserted",
	}
	for _, line := range want {
		if !strings.Contains(out, line) {
			t.Errorf("output missing %q:\n%s", line, out)
		}
	}
}

func TestPrettyWithoutFileSet(t *testing.T) {
	bag := diag.NewBag(1)
	bag.Add(diag.New(diag.SevInfo, diag.SemaInfo, source.Span{File: 3, Start: 7, End: 9}, "hello"))
	var sb strings.Builder
	diagfmt.Pretty(&sb, bag, nil, diagfmt.PrettyOpts{})
	if !strings.Contains(sb.String(), "3:7-9: INFO [SEM3000]: hello") {
		t.Errorf("raw span fallback missing:\n%s", sb.String())
	}
}
