package config

import (
	"flag"
	"strings"

	"github.com/BurntSushi/toml"

	apperrors "github.com/agbru/cpustress/internal/errors"
)

// fileOverride maps a TOML key to the flags that take precedence over it.
type fileOverride struct {
	key   string
	flags []string
	apply func(dst *AppConfig, src AppConfig)
}

var fileOverrides = []fileOverride{
	{"duration", []string{"d", "duration"}, func(d *AppConfig, s AppConfig) { d.Duration = s.Duration }},
	{"workers", []string{"w", "workers"}, func(d *AppConfig, s AppConfig) { d.Workers = s.Workers }},
	{"interruptible", []string{"interruptible"}, func(d *AppConfig, s AppConfig) { d.Interruptible = s.Interruptible }},
	{"pin", []string{"pin"}, func(d *AppConfig, s AppConfig) { d.PinThreads = s.PinThreads }},
	{"quiet", []string{"q", "quiet"}, func(d *AppConfig, s AppConfig) { d.Quiet = s.Quiet }},
	{"verbose", []string{"v", "verbose"}, func(d *AppConfig, s AppConfig) { d.Verbose = s.Verbose }},
	{"no_color", []string{"no-color"}, func(d *AppConfig, s AppConfig) { d.NoColor = s.NoColor }},
	{"theme", []string{"theme"}, func(d *AppConfig, s AppConfig) { d.Theme = s.Theme }},
	{"metrics_addr", []string{"metrics-addr"}, func(d *AppConfig, s AppConfig) { d.MetricsAddr = s.MetricsAddr }},
}

// LoadFile decodes a TOML configuration file. Unknown keys are rejected.
// The returned metadata tells which keys the file actually defines.
func LoadFile(path string) (AppConfig, toml.MetaData, error) {
	var fc AppConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return fc, md, apperrors.NewConfigError("cannot read config file %s: %v", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fc, md, apperrors.NewConfigError("unknown keys in config file %s: %s", path, strings.Join(keys, ", "))
	}
	return fc, md, nil
}

// applyFileOverrides layers the values defined in the TOML file over the
// defaults, skipping any key whose flag was set explicitly.
func applyFileOverrides(cfg *AppConfig, fs *flag.FlagSet, path string) error {
	fc, md, err := LoadFile(path)
	if err != nil {
		return err
	}
	for _, o := range fileOverrides {
		if !md.IsDefined(o.key) || isFlagSetAny(fs, o.flags...) {
			continue
		}
		o.apply(cfg, fc)
	}
	return nil
}
