// Package config holds the pvcheck settings read from a TOML file.
package config

import (
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/BurntSushi/toml"

	"github.com/powsybl/powsybl-optimizer/impedance"
	"github.com/powsybl/powsybl-optimizer/outliers"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the pvcheck configuration. Zero-valued fields absent from a file
// keep their Default value.
type Config struct {
	Variant     impedance.Variant `toml:"variant"`
	IMax        float64           `toml:"i_max"`
	Workers     int               `toml:"workers"`
	VoltageBand VoltageBand       `toml:"voltage_band"`
	Outliers    Outliers          `toml:"outliers"`
}

// VoltageBand bounds the source target voltage of physical networks, in kV.
type VoltageBand struct {
	Min float64 `toml:"min"`
	Max float64 `toml:"max"`
}

// Outliers selects how sweep suspects are detected.
type Outliers struct {
	Method    outliers.Method `toml:"method"`
	Threshold float64         `toml:"threshold"`
}

// Default returns the built-in configuration.
func Default() Config {
	opts := impedance.DefaultOptions()

	return Config{
		Variant:     impedance.VariantDualRatio,
		IMax:        2.0,
		Workers:     runtime.NumCPU(),
		VoltageBand: VoltageBand{Min: opts.VoltageMin, Max: opts.VoltageMax},
		Outliers:    Outliers{Method: outliers.MethodZScore, Threshold: 3},
	}
}

// Load decodes the file at path over Default and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%w: unknown key %s in %s", ErrInvalid, undecoded[0], path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks every field.
func (c Config) Validate() error {
	if c.Variant.Rule() == nil {
		return fmt.Errorf("%w: variant %s", ErrInvalid, c.Variant)
	}
	if math.IsNaN(c.IMax) || math.IsInf(c.IMax, 0) || c.IMax < 0 {
		return fmt.Errorf("%w: i_max %g", ErrInvalid, c.IMax)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers %d", ErrInvalid, c.Workers)
	}
	if !(c.VoltageBand.Min >= 0 && c.VoltageBand.Min <= c.VoltageBand.Max) {
		return fmt.Errorf("%w: voltage_band [%g,%g]", ErrInvalid, c.VoltageBand.Min, c.VoltageBand.Max)
	}
	switch c.Outliers.Method {
	case outliers.MethodZScore:
		if math.IsNaN(c.Outliers.Threshold) {
			return fmt.Errorf("%w: outliers.threshold NaN", ErrInvalid)
		}
	case outliers.MethodIQR:
		if !(c.Outliers.Threshold >= 0 && c.Outliers.Threshold < 0.5) {
			return fmt.Errorf("%w: outliers.threshold %g not in [0,0.5) for iqr", ErrInvalid, c.Outliers.Threshold)
		}
	default:
		return fmt.Errorf("%w: outliers.method %s", ErrInvalid, c.Outliers.Method)
	}

	return nil
}

// SearchOptions returns the impedance options implied by the configuration.
func (c Config) SearchOptions() []impedance.Option {
	return []impedance.Option{impedance.WithVoltageBand(c.VoltageBand.Min, c.VoltageBand.Max)}
}
