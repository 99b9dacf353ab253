package symfile

import (
	"fmt"
	"strconv"
	"strings"

	"gofort/internal/types"
)

// parseType understands the compact spellings used in symfiles:
//
//	integer, integer(8), real(4), complex(8), logical(1),
//	character(10), character(10,2), type(point)
//
// The parenthesized value is the kind width in bytes, except for character,
// where it is the length optionally followed by the kind width.
func (b *builder) parseType(spec string) (types.TypeID, error) {
	spec = strings.TrimSpace(strings.ToLower(spec))
	base := spec
	var args []string
	if open := strings.IndexByte(spec, '('); open >= 0 {
		if !strings.HasSuffix(spec, ")") {
			return types.NoTypeID, fmt.Errorf("malformed type %q", spec)
		}
		base = spec[:open]
		for _, a := range strings.Split(spec[open+1:len(spec)-1], ",") {
			args = append(args, strings.TrimSpace(a))
		}
	}
	switch base {
	case "integer":
		kind, err := kindArg(args, 4)
		if err != nil {
			return types.NoTypeID, fmt.Errorf("type %q: %w", spec, err)
		}
		return b.table.Types.Integer(kind), nil
	case "real":
		kind, err := kindArg(args, 4)
		if err != nil {
			return types.NoTypeID, fmt.Errorf("type %q: %w", spec, err)
		}
		return b.table.Types.Real(kind), nil
	case "complex":
		kind, err := kindArg(args, 4)
		if err != nil {
			return types.NoTypeID, fmt.Errorf("type %q: %w", spec, err)
		}
		return b.table.Types.Complex(kind), nil
	case "logical":
		kind, err := kindArg(args, 4)
		if err != nil {
			return types.NoTypeID, fmt.Errorf("type %q: %w", spec, err)
		}
		return b.table.Types.Logical(kind), nil
	case "character":
		length := int64(1)
		kind := int64(1)
		if len(args) > 2 {
			return types.NoTypeID, fmt.Errorf("type %q: too many arguments", spec)
		}
		if len(args) >= 1 {
			v, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return types.NoTypeID, fmt.Errorf("type %q: bad length: %w", spec, err)
			}
			length = v
		}
		if len(args) == 2 {
			v, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil || v <= 0 {
				return types.NoTypeID, fmt.Errorf("type %q: bad character kind", spec)
			}
			kind = v
		}
		return b.table.Types.Character(kind, length), nil
	case "type":
		if len(args) != 1 || args[0] == "" {
			return types.NoTypeID, fmt.Errorf("type %q: expected type(name)", spec)
		}
		derived, ok := b.types[args[0]]
		if !ok {
			return types.NoTypeID, fmt.Errorf("type %q: derived type %q not defined", spec, args[0])
		}
		return b.table.Types.DerivedType(derived), nil
	default:
		return types.NoTypeID, fmt.Errorf("unknown type %q", spec)
	}
}

func kindArg(args []string, dflt int64) (int64, error) {
	if len(args) == 0 {
		return dflt, nil
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("too many arguments")
	}
	v, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("bad kind %q", args[0])
	}
	return v, nil
}
