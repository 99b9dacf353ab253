package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Interner stores all types and derived-type definitions for a program.
type Interner struct {
	types   []Type
	derived []DerivedInfo
	index   map[Type]TypeID // dedup for non-derived types
}

// NewInterner creates an empty interner with index 0 reserved as sentinel.
func NewInterner() *Interner {
	return &Interner{
		types:   make([]Type, 1, 64),
		derived: make([]DerivedInfo, 1, 8),
		index:   make(map[Type]TypeID, 64),
	}
}

// Intern returns the ID for t, allocating one on first sight. Derived types
// are never deduplicated; each definition keeps its own identity.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind != KindDerived {
		if id, ok := in.index[t]; ok {
			return id
		}
	}
	value, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("types arena overflow: %w", err))
	}
	id := TypeID(value)
	in.types = append(in.types, t)
	if t.Kind != KindDerived {
		in.index[t] = id
	}
	return id
}

// Lookup returns the type for id.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if !id.IsValid() || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// NewDerived registers a derived-type definition and returns its ID.
func (in *Interner) NewDerived(info DerivedInfo) DerivedID {
	value, err := safecast.Conv[uint32](len(in.derived))
	if err != nil {
		panic(fmt.Errorf("derived arena overflow: %w", err))
	}
	id := DerivedID(value)
	in.derived = append(in.derived, info)
	return id
}

// Derived returns a mutable view of a derived-type definition.
func (in *Interner) Derived(id DerivedID) *DerivedInfo {
	if !id.IsValid() || int(id) >= len(in.derived) {
		return nil
	}
	return &in.derived[id]
}

// DerivedOf returns the derived definition behind a type, if any.
func (in *Interner) DerivedOf(id TypeID) *DerivedInfo {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindDerived {
		return nil
	}
	return in.Derived(t.Derived)
}

// Integer returns the integer type of the given kind width.
func (in *Interner) Integer(bytes int64) TypeID {
	return in.Intern(Type{Kind: KindInteger, KindBytes: bytes})
}

// Real returns the real type of the given kind width.
func (in *Interner) Real(bytes int64) TypeID {
	return in.Intern(Type{Kind: KindReal, KindBytes: bytes})
}

// Complex returns the complex type whose parts have the given kind width.
func (in *Interner) Complex(bytes int64) TypeID {
	return in.Intern(Type{Kind: KindComplex, KindBytes: bytes})
}

// Logical returns the logical type of the given kind width.
func (in *Interner) Logical(bytes int64) TypeID {
	return in.Intern(Type{Kind: KindLogical, KindBytes: bytes})
}

// Character returns the character type with the given kind width and length.
func (in *Interner) Character(bytes, length int64) TypeID {
	return in.Intern(Type{Kind: KindCharacter, KindBytes: bytes, Len: length})
}

// DerivedType returns a type referring to a derived definition.
func (in *Interner) DerivedType(id DerivedID) TypeID {
	return in.Intern(Type{Kind: KindDerived, Derived: id})
}
