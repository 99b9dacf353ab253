package source

// StringID is an interned identifier for a name.
type StringID uint32

// NoStringID marks the absence of a name.
const NoStringID StringID = 0

// Interner deduplicates identifier spellings and hands out stable IDs.
type Interner struct {
	byID  []string
	index map[string]StringID
}

func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""}, // NoStringID maps to the empty string
		index: map[string]StringID{"": 0},
	}
}

// Intern returns the ID for s, allocating one on first sight.
func (i *Interner) Intern(s string) StringID {
	if id, ok := i.index[s]; ok {
		return id
	}
	// Own copy so we never retain a caller's backing buffer.
	cpy := string([]byte(s))
	id := StringID(len(i.byID))
	i.byID = append(i.byID, cpy)
	i.index[cpy] = id
	return id
}

// Lookup returns the spelling for id, or ("", false) for an unknown ID.
func (i *Interner) Lookup(id StringID) (string, bool) {
	if int(id) >= len(i.byID) {
		return "", false
	}
	return i.byID[id], true
}

// MustLookup is Lookup that panics on an unknown ID.
func (i *Interner) MustLookup(id StringID) string {
	s, ok := i.Lookup(id)
	if !ok {
		panic("invalid string ID")
	}
	return s
}

// Len reports the number of interned strings including the sentinel.
func (i *Interner) Len() int {
	return len(i.byID)
}
