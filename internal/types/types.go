package types

import (
	"gofort/internal/source"
)

// TypeID identifies a type in the interner.
type TypeID uint32

// NoTypeID marks the absence of a type reference.
const NoTypeID TypeID = 0

// IsValid reports whether the type ID refers to an interned type.
func (id TypeID) IsValid() bool { return id != NoTypeID }

// DerivedID identifies a derived-type definition.
type DerivedID uint32

// NoDerivedID marks the absence of a derived-type reference.
const NoDerivedID DerivedID = 0

// IsValid reports whether the derived ID refers to a registered definition.
func (id DerivedID) IsValid() bool { return id != NoDerivedID }

// Kind classifies a semantic type.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInteger
	KindReal
	KindComplex
	KindLogical
	KindCharacter
	KindDerived
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindComplex:
		return "complex"
	case KindLogical:
		return "logical"
	case KindCharacter:
		return "character"
	case KindDerived:
		return "derived"
	default:
		return "invalid"
	}
}

// Type is one semantic type. KindBytes is the byte width of the type's kind
// parameter: the storage of one integer/real/logical value, one part of a
// complex value, or one character unit. Len is the character length in
// characters; it is meaningless for other kinds.
type Type struct {
	Kind      Kind
	KindBytes int64
	Len       int64
	Derived   DerivedID
}

// Dim is one array dimension with explicit constant bounds.
type Dim struct {
	Lower int64
	Upper int64
}

// Extent reports the number of elements along the dimension.
func (d Dim) Extent() int64 {
	n := d.Upper - d.Lower + 1
	if n < 0 {
		return 0
	}
	return n
}

// Shape is an array shape in dimension order; empty means scalar.
type Shape []Dim

// Elements reports the total element count of the shape (1 for scalars).
func (s Shape) Elements() int64 {
	n := int64(1)
	for _, d := range s {
		n *= d.Extent()
	}
	return n
}

// Component is one component of a derived-type definition.
type Component struct {
	Name  source.StringID
	Type  TypeID
	Shape Shape
}

// DerivedInfo describes a derived-type definition. Size and Align are filled
// in once the type's defining scope has been laid out.
type DerivedInfo struct {
	Name       source.StringID
	BindC      bool
	KindParams int // unbound kind parameters, > 0 blocks layout
	LenParams  int
	Components []Component

	Size    int64
	Align   int64
	LaidOut bool
}
