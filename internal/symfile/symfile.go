// Package symfile loads scope descriptions from TOML. A symfile describes
// the storage entities of one scope — symbols, COMMON blocks, EQUIVALENCE
// sets, derived-type definitions — the same way an upstream front end would
// hand them to the layout pass, which makes layouts reproducible from a
// small text fixture.
package symfile

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"gofort/internal/source"
	"gofort/internal/symbols"
	"gofort/internal/types"
)

type fileFormat struct {
	Scope struct {
		Kind string `toml:"kind"`
	} `toml:"scope"`
	Derived     []derivedEntry     `toml:"derived"`
	Symbols     []symbolEntry      `toml:"symbols"`
	Common      []commonEntry      `toml:"common"`
	Equivalence []equivalenceEntry `toml:"equivalence"`
}

type derivedEntry struct {
	Name       string           `toml:"name"`
	BindC      bool             `toml:"bind_c"`
	KindParams int              `toml:"kind_params"`
	LenParams  int              `toml:"len_params"`
	Components []componentEntry `toml:"components"`
}

type componentEntry struct {
	Name string    `toml:"name"`
	Type string    `toml:"type"`
	Dims [][]int64 `toml:"dims"`
}

type symbolEntry struct {
	Name  string    `toml:"name"`
	Type  string    `toml:"type"`
	Class string    `toml:"class"`
	Dims  [][]int64 `toml:"dims"`
	Attrs []string  `toml:"attrs"`
}

type commonEntry struct {
	Name    string   `toml:"name"`
	Members []string `toml:"members"`
}

type equivalenceEntry struct {
	Objects []objectEntry `toml:"objects"`
}

type objectEntry struct {
	Symbol     string  `toml:"symbol"`
	Subscripts []int64 `toml:"subscripts"`
	Substring  int64   `toml:"substring"`
}

// Load reads a symfile from disk and builds a table with one root scope.
func Load(path string, fs *source.FileSet) (*symbols.Table, symbols.ScopeID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, symbols.NoScopeID, err
	}
	return LoadBytes(path, content, fs)
}

// LoadBytes builds a table from symfile content already in memory.
func LoadBytes(path string, content []byte, fs *source.FileSet) (*symbols.Table, symbols.ScopeID, error) {
	var cfg fileFormat
	if err := toml.Unmarshal(content, &cfg); err != nil {
		return nil, symbols.NoScopeID, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	fileID := source.FileID(0)
	if fs != nil {
		fileID = fs.Add(path, content, 0)
	}
	b := &builder{
		table: symbols.NewTable(),
		span:  source.Span{File: fileID},
		names: make(map[string]symbols.SymbolID),
		types: make(map[string]types.DerivedID),
	}
	rootKind, err := parseScopeKind(cfg.Scope.Kind)
	if err != nil {
		return nil, symbols.NoScopeID, fmt.Errorf("%s: %w", path, err)
	}
	root := b.table.Scopes.New(rootKind, symbols.NoScopeID, b.span)
	for i := range cfg.Derived {
		if err := b.addDerived(root, &cfg.Derived[i]); err != nil {
			return nil, symbols.NoScopeID, fmt.Errorf("%s: %w", path, err)
		}
	}
	for i := range cfg.Symbols {
		if err := b.addSymbol(root, &cfg.Symbols[i]); err != nil {
			return nil, symbols.NoScopeID, fmt.Errorf("%s: %w", path, err)
		}
	}
	for i := range cfg.Common {
		if err := b.addCommon(root, &cfg.Common[i]); err != nil {
			return nil, symbols.NoScopeID, fmt.Errorf("%s: %w", path, err)
		}
	}
	for i := range cfg.Equivalence {
		if err := b.addEquivalence(root, &cfg.Equivalence[i]); err != nil {
			return nil, symbols.NoScopeID, fmt.Errorf("%s: %w", path, err)
		}
	}
	return b.table, root, nil
}

type builder struct {
	table *symbols.Table
	span  source.Span
	names map[string]symbols.SymbolID
	types map[string]types.DerivedID
}

func (b *builder) addDerived(parent symbols.ScopeID, entry *derivedEntry) error {
	if entry.Name == "" {
		return fmt.Errorf("derived type without a name")
	}
	if _, ok := b.types[entry.Name]; ok {
		return fmt.Errorf("derived type %q defined twice", entry.Name)
	}
	info := types.DerivedInfo{
		Name:       b.table.Strings.Intern(entry.Name),
		BindC:      entry.BindC,
		KindParams: entry.KindParams,
		LenParams:  entry.LenParams,
	}
	scope := b.table.Scopes.New(symbols.ScopeDerivedType, parent, b.span)
	for i := range entry.Components {
		comp := &entry.Components[i]
		typeID, err := b.parseType(comp.Type)
		if err != nil {
			return fmt.Errorf("component %q of %q: %w", comp.Name, entry.Name, err)
		}
		shape := parseShape(comp.Dims)
		info.Components = append(info.Components, types.Component{
			Name:  b.table.Strings.Intern(comp.Name),
			Type:  typeID,
			Shape: shape,
		})
		symID := b.table.Symbols.New(&symbols.Symbol{
			Name:  b.table.Strings.Intern(comp.Name),
			Kind:  symbols.SymbolObject,
			Scope: scope,
			Span:  b.span,
			Type:  typeID,
			Shape: shape,
		})
		b.table.Scopes.Get(scope).Symbols = append(b.table.Scopes.Get(scope).Symbols, symID)
	}
	derivedID := b.table.Types.NewDerived(info)
	scopePtr := b.table.Scopes.Get(scope)
	scopePtr.Derived = derivedID
	scopePtr.HasKindParams = entry.KindParams > 0
	b.table.DerivedScopes[derivedID] = scope
	b.types[entry.Name] = derivedID
	return nil
}

func (b *builder) addSymbol(scope symbols.ScopeID, entry *symbolEntry) error {
	if entry.Name == "" {
		return fmt.Errorf("symbol without a name")
	}
	if _, ok := b.names[entry.Name]; ok {
		return fmt.Errorf("symbol %q declared twice", entry.Name)
	}
	kind, err := parseSymbolClass(entry.Class)
	if err != nil {
		return fmt.Errorf("symbol %q: %w", entry.Name, err)
	}
	var typeID types.TypeID
	if entry.Type != "" {
		typeID, err = b.parseType(entry.Type)
		if err != nil {
			return fmt.Errorf("symbol %q: %w", entry.Name, err)
		}
	} else if kind == symbols.SymbolObject {
		return fmt.Errorf("symbol %q: data object needs a type", entry.Name)
	}
	flags, err := parseAttrs(entry.Attrs)
	if err != nil {
		return fmt.Errorf("symbol %q: %w", entry.Name, err)
	}
	symID := b.table.Symbols.New(&symbols.Symbol{
		Name:  b.table.Strings.Intern(entry.Name),
		Kind:  kind,
		Scope: scope,
		Span:  b.span,
		Flags: flags,
		Type:  typeID,
		Shape: parseShape(entry.Dims),
	})
	scopePtr := b.table.Scopes.Get(scope)
	scopePtr.Symbols = append(scopePtr.Symbols, symID)
	b.names[entry.Name] = symID
	return nil
}

func (b *builder) addCommon(scope symbols.ScopeID, entry *commonEntry) error {
	block := symbols.CommonBlock{Span: b.span}
	if entry.Name != "" {
		block.Name = b.table.Strings.Intern(entry.Name)
	}
	blockID := b.table.Commons.New(&block)
	blockPtr := b.table.Commons.Get(blockID)
	for _, member := range entry.Members {
		symID, ok := b.names[member]
		if !ok {
			return fmt.Errorf("COMMON /%s/: unknown symbol %q", entry.Name, member)
		}
		sym := b.table.Symbols.Get(symID)
		if sym.Common.IsValid() {
			return fmt.Errorf("COMMON /%s/: %q already belongs to a COMMON block", entry.Name, member)
		}
		sym.Common = blockID
		blockPtr.Members = append(blockPtr.Members, symID)
	}
	scopePtr := b.table.Scopes.Get(scope)
	scopePtr.CommonBlocks = append(scopePtr.CommonBlocks, blockID)
	return nil
}

func (b *builder) addEquivalence(scope symbols.ScopeID, entry *equivalenceEntry) error {
	if len(entry.Objects) < 2 {
		return fmt.Errorf("EQUIVALENCE set needs at least two objects")
	}
	set := make(symbols.EquivalenceSet, 0, len(entry.Objects))
	for _, obj := range entry.Objects {
		symID, ok := b.names[obj.Symbol]
		if !ok {
			return fmt.Errorf("EQUIVALENCE: unknown symbol %q", obj.Symbol)
		}
		if obj.Substring < 0 {
			return fmt.Errorf("EQUIVALENCE: negative substring start for %q", obj.Symbol)
		}
		set = append(set, symbols.EquivalenceObject{
			Symbol:         symID,
			Subscripts:     obj.Subscripts,
			SubstringStart: obj.Substring,
			Span:           b.span,
		})
	}
	scopePtr := b.table.Scopes.Get(scope)
	scopePtr.Equivalences = append(scopePtr.Equivalences, set)
	return nil
}

func parseShape(dims [][]int64) types.Shape {
	if len(dims) == 0 {
		return nil
	}
	shape := make(types.Shape, 0, len(dims))
	for _, d := range dims {
		switch len(d) {
		case 1:
			shape = append(shape, types.Dim{Lower: 1, Upper: d[0]})
		case 2:
			shape = append(shape, types.Dim{Lower: d[0], Upper: d[1]})
		}
	}
	return shape
}

func parseScopeKind(name string) (symbols.ScopeKind, error) {
	switch name {
	case "", "subprogram":
		return symbols.ScopeSubprogram, nil
	case "main":
		return symbols.ScopeMainProgram, nil
	case "module":
		return symbols.ScopeModule, nil
	case "block":
		return symbols.ScopeBlockConstruct, nil
	default:
		return symbols.ScopeInvalid, fmt.Errorf("unknown scope kind %q", name)
	}
}

func parseSymbolClass(name string) (symbols.SymbolKind, error) {
	switch name {
	case "", "object":
		return symbols.SymbolObject, nil
	case "proc_pointer":
		return symbols.SymbolProcPointer, nil
	case "procedure":
		return symbols.SymbolProcedure, nil
	default:
		return symbols.SymbolInvalid, fmt.Errorf("unknown symbol class %q", name)
	}
}

func parseAttrs(attrs []string) (symbols.SymbolFlags, error) {
	var flags symbols.SymbolFlags
	for _, attr := range attrs {
		switch attr {
		case "allocatable":
			flags |= symbols.FlagAllocatable
		case "pointer":
			flags |= symbols.FlagPointer
		case "assumed_shape":
			flags |= symbols.FlagAssumedShape
		case "polymorphic":
			flags |= symbols.FlagPolymorphic
		case "unlimited_polymorphic":
			flags |= symbols.FlagUnlimitedPoly
		default:
			return 0, fmt.Errorf("unknown attribute %q", attr)
		}
	}
	return flags, nil
}
