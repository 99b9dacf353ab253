package target

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

type targetFile struct {
	Target struct {
		Preset                string `toml:"preset"`
		OS                    string `toml:"os"`
		MaxAlignment          int64  `toml:"max_alignment"`
		DescriptorAlignment   int64  `toml:"descriptor_alignment"`
		ProcPointerBytes      int64  `toml:"proc_pointer_bytes"`
		ProcPointerAlign      int64  `toml:"proc_pointer_align"`
		DefaultCharacterBytes int64  `toml:"default_character_bytes"`
	} `toml:"target"`
}

// Load reads target characteristics from a TOML file. A preset may be named
// and then selectively overridden; without a preset the default development
// target is the base.
func Load(path string) (Characteristics, error) {
	var cfg targetFile
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Characteristics{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	base := X8664LinuxGNU()
	if meta.IsDefined("target", "preset") {
		preset, ok := Preset(cfg.Target.Preset)
		if !ok {
			return Characteristics{}, fmt.Errorf("%s: unknown target preset %q", path, cfg.Target.Preset)
		}
		base = preset
	}
	if meta.IsDefined("target", "os") {
		os, err := parseOS(cfg.Target.OS)
		if err != nil {
			return Characteristics{}, fmt.Errorf("%s: %w", path, err)
		}
		base.OS = os
	}
	if meta.IsDefined("target", "max_alignment") {
		base.MaxAlignment = cfg.Target.MaxAlignment
	}
	if meta.IsDefined("target", "descriptor_alignment") {
		base.DescriptorAlignment = cfg.Target.DescriptorAlignment
	}
	if meta.IsDefined("target", "proc_pointer_bytes") {
		base.ProcPointerBytes = cfg.Target.ProcPointerBytes
	}
	if meta.IsDefined("target", "proc_pointer_align") {
		base.ProcPointerAlign = cfg.Target.ProcPointerAlign
	}
	if meta.IsDefined("target", "default_character_bytes") {
		base.DefaultCharacterBytes = cfg.Target.DefaultCharacterBytes
	}
	if err := validate(base); err != nil {
		return Characteristics{}, fmt.Errorf("%s: %w", path, err)
	}
	return base, nil
}

func parseOS(name string) (OS, error) {
	switch name {
	case "linux":
		return OSLinux, nil
	case "darwin":
		return OSDarwin, nil
	case "windows":
		return OSWindows, nil
	case "aix":
		return OSAIX, nil
	default:
		return 0, fmt.Errorf("unknown target os %q", name)
	}
}

func validate(c Characteristics) error {
	if c.MaxAlignment <= 0 || c.MaxAlignment&(c.MaxAlignment-1) != 0 {
		return fmt.Errorf("max_alignment must be a positive power of two, got %d", c.MaxAlignment)
	}
	if c.ProcPointerBytes <= 0 || c.ProcPointerAlign <= 0 {
		return fmt.Errorf("procedure pointer size/alignment must be positive")
	}
	if c.DefaultCharacterBytes <= 0 {
		return fmt.Errorf("default_character_bytes must be positive")
	}
	return nil
}
