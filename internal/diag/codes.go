package diag

import (
	"fmt"
)

// Code is a compact, stable identifier for a diagnostic kind.
type Code uint16

const (
	UnknownCode Code = 0

	// Storage association (semantic phase).
	SemaInfo                      Code = 3000
	SemaEquivalenceConflict       Code = 3101
	SemaEquivalenceCrossCommon    Code = 3102
	SemaEquivalenceBackwardExtend Code = 3103
	SemaEquivalenceMisplaced      Code = 3104
	SemaCommonPadding             Code = 3105
	SemaCommonSizeMismatch        Code = 3106

	// File loading.
	IOLoadFileError Code = 4001

	// Target / scope description configuration.
	CfgInvalidTarget  Code = 5001
	CfgInvalidSymFile Code = 5002
)

var codeDescription = map[Code]string{
	UnknownCode: "Unknown diagnostic",

	SemaInfo:                      "Semantic information",
	SemaEquivalenceConflict:       "EQUIVALENCE objects cannot share the same first storage unit",
	SemaEquivalenceCrossCommon:    "EQUIVALENCE must not associate two distinct COMMON blocks",
	SemaEquivalenceBackwardExtend: "EQUIVALENCE cannot extend a COMMON block backward",
	SemaEquivalenceMisplaced:      "EQUIVALENCE forces an inconsistent COMMON block layout",
	SemaCommonPadding:             "COMMON block member needs alignment padding",
	SemaCommonSizeMismatch:        "COMMON block has different sizes in different scopes",

	IOLoadFileError: "I/O load file error",

	CfgInvalidTarget:  "Invalid target description",
	CfgInvalidSymFile: "Invalid scope description",
}

// ID renders the phase-prefixed numeric form, e.g. "SEM3101".
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("CFG%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
