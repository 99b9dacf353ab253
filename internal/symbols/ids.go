package symbols

// ScopeID identifies a scope in the arena.
type ScopeID uint32

const (
	// NoScopeID marks the absence of a scope reference.
	NoScopeID ScopeID = 0
)

// IsValid reports whether the scope ID refers to an allocated scope.
func (id ScopeID) IsValid() bool { return id != NoScopeID }

// SymbolID identifies a symbol inside the arena.
type SymbolID uint32

const (
	// NoSymbolID marks the absence of a symbol reference.
	NoSymbolID SymbolID = 0
)

// IsValid reports whether the symbol ID refers to an allocated symbol.
func (id SymbolID) IsValid() bool { return id != NoSymbolID }

// CommonID identifies a COMMON block inside the arena.
type CommonID uint32

const (
	// NoCommonID marks the absence of a COMMON block reference.
	NoCommonID CommonID = 0
)

// IsValid reports whether the common ID refers to an allocated block.
func (id CommonID) IsValid() bool { return id != NoCommonID }
