// Package loader reads tabular network cases from TOML and builds a
// network.Network from them, optionally converting per-unit values to
// physical kV and ohm.
//
// A case file has one array of tables per record kind:
//
//	[[substations]]        num, nominal_kv
//	[[buses]]              num, substation, v
//	[[branches]]           bus1, bus2, sub1, sub2, r, x, ratio, b1, ratio_tc, phase_tc
//	[[generators]]         bus, v_regul, q, min_q, max_q, target_v
//	[[svcs]]               bus, v_regul, target_v
//	[[tap_tables]]         num, tap, x, var_ratio
//	[[ratio_tap_changers]] table, tap
//	[[phase_tap_changers]] table, tap
//
// Bus, substation and tap-changer numbers are 1-based; -1 marks a
// disconnected end or an absent tap changer. Tap changers are referenced by
// their 1-based position in their array.
package loader

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Sentinel errors for case decoding and building.
var (
	// ErrNoBuses indicates a case without any bus record.
	ErrNoBuses = errors.New("loader: case has no buses")

	// ErrUnknownField indicates keys the case schema does not define.
	ErrUnknownField = errors.New("loader: unknown field")

	// ErrBadBus indicates a bus number outside [1, len(buses)].
	ErrBadBus = errors.New("loader: bus number out of range")

	// ErrUnknownSubstation indicates a substation number with no record.
	ErrUnknownSubstation = errors.New("loader: unknown substation")

	// ErrUnknownTap indicates a tap changer or tap table entry that does not exist.
	ErrUnknownTap = errors.New("loader: unknown tap changer or tap")
)

// RecordError locates a failure in one record of a case.
type RecordError struct {
	Table string // e.g. "branches"
	Index int    // 0-based position in the table
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("loader: %s[%d]: %v", e.Table, e.Index, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// Substation groups buses under one nominal voltage.
type Substation struct {
	Num       int     `toml:"num"`
	NominalKV float64 `toml:"nominal_kv"`
}

// Bus is one network node. V is the measured voltage in per-unit.
type Bus struct {
	Num        int     `toml:"num"`
	Substation int     `toml:"substation"`
	V          float64 `toml:"v"`
}

// BranchRecord is a line or transformer between Bus1 and Bus2.
// A zero Ratio means 1. RatioTC and PhaseTC of 0 or -1 mean no tap changer.
type BranchRecord struct {
	Bus1    int     `toml:"bus1"`
	Bus2    int     `toml:"bus2"`
	Sub1    int     `toml:"sub1"`
	Sub2    int     `toml:"sub2"`
	R       float64 `toml:"r"`
	X       float64 `toml:"x"`
	Ratio   float64 `toml:"ratio"`
	B1      float64 `toml:"b1"`
	RatioTC int     `toml:"ratio_tc"`
	PhaseTC int     `toml:"phase_tc"`
}

// Generator regulates its bus voltage unless its reactive output sits on a limit.
type Generator struct {
	Bus     int     `toml:"bus"`
	VRegul  bool    `toml:"v_regul"`
	Q       float64 `toml:"q"`
	MinQ    float64 `toml:"min_q"`
	MaxQ    float64 `toml:"max_q"`
	TargetV float64 `toml:"target_v"`
}

// SVC is a static var compensator.
type SVC struct {
	Bus     int     `toml:"bus"`
	VRegul  bool    `toml:"v_regul"`
	TargetV float64 `toml:"target_v"`
}

// TapStep is one row of a tap table.
type TapStep struct {
	Num      int     `toml:"num"`
	Tap      int     `toml:"tap"`
	X        float64 `toml:"x"`
	VarRatio float64 `toml:"var_ratio"`
}

// TapChanger selects the current tap of a tap table.
type TapChanger struct {
	Table int `toml:"table"`
	Tap   int `toml:"tap"`
}

// Case is a decoded network case.
type Case struct {
	Name             string         `toml:"name"`
	Substations      []Substation   `toml:"substations"`
	Buses            []Bus          `toml:"buses"`
	Branches         []BranchRecord `toml:"branches"`
	Generators       []Generator    `toml:"generators"`
	SVCs             []SVC          `toml:"svcs"`
	TapTables        []TapStep      `toml:"tap_tables"`
	RatioTapChangers []TapChanger   `toml:"ratio_tap_changers"`
	PhaseTapChangers []TapChanger   `toml:"phase_tap_changers"`
}

// Load decodes the case file at path.
func Load(path string) (*Case, error) {
	var c Case
	md, err := toml.DecodeFile(path, &c)
	if err != nil {
		return nil, fmt.Errorf("loader: decode %s: %w", path, err)
	}

	return finish(&c, md)
}

// Decode reads a case from r.
func Decode(r io.Reader) (*Case, error) {
	var c Case
	md, err := toml.NewDecoder(r).Decode(&c)
	if err != nil {
		return nil, fmt.Errorf("loader: decode: %w", err)
	}

	return finish(&c, md)
}

func finish(c *Case, md toml.MetaData) (*Case, error) {
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)

		return nil, fmt.Errorf("%w: %s", ErrUnknownField, strings.Join(keys, ", "))
	}
	if len(c.Buses) == 0 {
		return nil, ErrNoBuses
	}

	return c, nil
}
