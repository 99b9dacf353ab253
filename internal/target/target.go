package target

// OS identifies the operating system a layout targets. Layout is mostly
// OS-independent; AIX carries one documented alignment quirk.
type OS uint8

const (
	OSLinux OS = iota
	OSDarwin
	OSWindows
	OSAIX
)

func (o OS) String() string {
	switch o {
	case OSLinux:
		return "linux"
	case OSDarwin:
		return "darwin"
	case OSWindows:
		return "windows"
	case OSAIX:
		return "aix"
	default:
		return "unknown"
	}
}

// Characteristics describes everything the layout pass needs to know about
// a target. Values are configuration, never computed by the pass.
type Characteristics struct {
	Name string
	OS   OS

	// MaxAlignment caps every effective alignment.
	MaxAlignment int64
	// DescriptorAlignment is the alignment of runtime descriptors.
	DescriptorAlignment int64
	// ProcPointerBytes / ProcPointerAlign size procedure pointers.
	ProcPointerBytes int64
	ProcPointerAlign int64
	// DefaultCharacterBytes is the byte width of the default character kind.
	DefaultCharacterBytes int64
}

// Descriptor geometry: a fixed header, one triple of bounds/stride words per
// rank, and an optional addendum holding the derived type pointer plus one
// word per length parameter.
const (
	descriptorHeaderBytes   = 24
	descriptorDimBytes      = 24
	descriptorAddendumBytes = 8
	descriptorLenParamBytes = 8
)

// DescriptorBytes reports the storage needed for a descriptor of the given
// rank. The addendum is present for derived or unlimited polymorphic types.
func (c Characteristics) DescriptorBytes(rank int, addendum bool, lenParams int) int64 {
	size := int64(descriptorHeaderBytes) + int64(rank)*descriptorDimBytes
	if addendum {
		size += descriptorAddendumBytes + int64(lenParams)*descriptorLenParamBytes
	}
	return size
}

// X8664LinuxGNU is the default development target.
func X8664LinuxGNU() Characteristics {
	return Characteristics{
		Name:                  "x86_64-linux-gnu",
		OS:                    OSLinux,
		MaxAlignment:          16,
		DescriptorAlignment:   8,
		ProcPointerBytes:      8,
		ProcPointerAlign:      8,
		DefaultCharacterBytes: 1,
	}
}

// PPC64AIX is the target that carries the BIND(C) alignment override.
func PPC64AIX() Characteristics {
	return Characteristics{
		Name:                  "powerpc64-ibm-aix",
		OS:                    OSAIX,
		MaxAlignment:          16,
		DescriptorAlignment:   8,
		ProcPointerBytes:      8,
		ProcPointerAlign:      8,
		DefaultCharacterBytes: 1,
	}
}

// Preset returns a named built-in target.
func Preset(name string) (Characteristics, bool) {
	switch name {
	case "x86_64-linux-gnu":
		return X8664LinuxGNU(), true
	case "powerpc64-ibm-aix":
		return PPC64AIX(), true
	default:
		return Characteristics{}, false
	}
}
