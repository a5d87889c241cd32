package loader

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/powsybl/powsybl-optimizer/network"
)

// qLimitEps is the distance in MVar under which a generator counts as
// sitting on a reactive limit and no longer regulates.
const qLimitEps = 0.1

// noTapChanger values of BranchRecord.RatioTC and PhaseTC.
func noTapChanger(tc int) bool { return tc == 0 || tc == -1 }

// pair is an unordered bus pair key.
type pair struct{ lo, hi int }

func keyOf(u, v int) pair {
	if u > v {
		u, v = v, u
	}

	return pair{u, v}
}

// Build creates the network described by the case.
//
// Branches with a disconnected end (-1) are skipped. A tap changer replaces
// x by the tap-table value and multiplies the ratio by its var_ratio. When
// several branches join the same two buses, the one with the smallest x is
// kept. Branches refused by the network (negative x) are skipped.
//
// Generators regulate when v_regul is set and Q is not within 0.1 MVar of a
// limit; SVCs regulate when v_regul is set.
//
// With perUnit false every value is converted to kV and ohm through the
// substation nominal voltages of the kept branch records: r and x are scaled
// by nomV2²/100, ρ by nomV2/nomV1 and a non-zero b by 100/nomV2².
//
// Errors:
//   - *RecordError wrapping ErrBadBus, ErrUnknownSubstation or ErrUnknownTap.
func (c *Case) Build(perUnit bool, opts ...network.Option) (*network.Network, error) {
	if len(c.Buses) == 0 {
		return nil, ErrNoBuses
	}
	net, err := network.New(len(c.Buses), opts...)
	if err != nil {
		return nil, err
	}

	taps := make(map[[2]int]TapStep, len(c.TapTables))
	for _, t := range c.TapTables {
		taps[[2]int{t.Num, t.Tap}] = t
	}

	kept := make(map[pair]int)
	for i, br := range c.Branches {
		if br.Bus1 == -1 || br.Bus2 == -1 {
			continue
		}
		u, err := c.vertex(br.Bus1)
		if err != nil {
			return nil, &RecordError{Table: "branches", Index: i, Err: err}
		}
		v, err := c.vertex(br.Bus2)
		if err != nil {
			return nil, &RecordError{Table: "branches", Index: i, Err: err}
		}

		x, rho := br.X, br.Ratio
		if rho == 0 {
			rho = 1
		}
		for _, tc := range []struct {
			name  string
			index int
			table []TapChanger
		}{
			{"ratio_tc", br.RatioTC, c.RatioTapChangers},
			{"phase_tc", br.PhaseTC, c.PhaseTapChangers},
		} {
			if noTapChanger(tc.index) {
				continue
			}
			step, err := lookupTap(tc.index, tc.table, taps)
			if err != nil {
				return nil, &RecordError{Table: "branches", Index: i, Err: fmt.Errorf("%s: %w", tc.name, err)}
			}
			x = step.X
			if step.VarRatio != 0 {
				rho *= step.VarRatio
			}
		}

		k := keyOf(u, v)
		if _, dup := kept[k]; dup && !(x < net.Reactance(u, v)) {
			continue
		}
		err = net.AddBranch(u, v, br.R, x, network.WithRatio(rho), network.WithSusceptance(br.B1))
		if errors.Is(err, network.ErrNegativeReactance) {
			continue
		}
		if err != nil {
			return nil, &RecordError{Table: "branches", Index: i, Err: err}
		}
		kept[k] = i
	}

	for i, b := range c.Buses {
		v, err := c.vertex(b.Num)
		if err != nil {
			return nil, &RecordError{Table: "buses", Index: i, Err: err}
		}
		if b.V != 0 {
			_ = net.SetVoltage(v, b.V)
		}
	}

	for i, g := range c.Generators {
		regulate := g.VRegul && !(math.Abs(g.Q-g.MaxQ) <= qLimitEps || math.Abs(g.Q-g.MinQ) <= qLimitEps)
		if !regulate || g.Bus == -1 {
			continue
		}
		v, err := c.vertex(g.Bus)
		if err != nil {
			return nil, &RecordError{Table: "generators", Index: i, Err: err}
		}
		_ = net.MarkRegulated(v, g.TargetV)
	}

	for i, s := range c.SVCs {
		if !s.VRegul || s.Bus == -1 {
			continue
		}
		v, err := c.vertex(s.Bus)
		if err != nil {
			return nil, &RecordError{Table: "svcs", Index: i, Err: err}
		}
		_ = net.MarkRegulated(v, s.TargetV)
	}

	if perUnit {
		return net, nil
	}
	if err := c.toPhysical(net, kept); err != nil {
		return nil, err
	}

	return net, nil
}

func (c *Case) toPhysical(net *network.Network, kept map[pair]int) error {
	nominal := make(map[int]float64, len(c.Substations))
	for _, s := range c.Substations {
		nominal[s.Num] = s.NominalKV
	}
	nomV := func(sub int) (float64, error) {
		kv, ok := nominal[sub]
		if !ok {
			return 0, fmt.Errorf("%w: %d", ErrUnknownSubstation, sub)
		}

		return kv, nil
	}

	for i, b := range c.Buses {
		kv, err := nomV(b.Substation)
		if err != nil {
			return &RecordError{Table: "buses", Index: i, Err: err}
		}
		v := b.Num - 1
		if t := net.TargetVoltage(v); !math.IsInf(t, 0) {
			_ = net.SetTargetVoltage(v, t*kv)
		}
		if m := net.Voltage(v); !math.IsInf(m, 0) {
			_ = net.SetVoltage(v, m*kv)
		}
	}

	for _, i := range keptOrder(kept) {
		br := c.Branches[i]
		nomV1, err := nomV(br.Sub1)
		if err != nil {
			return &RecordError{Table: "branches", Index: i, Err: err}
		}
		nomV2, err := nomV(br.Sub2)
		if err != nil {
			return &RecordError{Table: "branches", Index: i, Err: err}
		}

		u, v := br.Bus1-1, br.Bus2-1
		z := nomV2 * nomV2 / 100
		if err := net.SetImpedance(u, v, net.Resistance(u, v)*z, net.Reactance(u, v)*z); err != nil {
			return &RecordError{Table: "branches", Index: i, Err: err}
		}
		if err := net.SetRatio(u, v, net.Ratio(u, v)*nomV2/nomV1); err != nil {
			return &RecordError{Table: "branches", Index: i, Err: err}
		}
		if b := net.Susceptance(u, v); b != 0 {
			if err := net.SetSusceptance(u, v, b/z); err != nil {
				return &RecordError{Table: "branches", Index: i, Err: err}
			}
		}
	}
	net.SetPerUnit(false)

	return nil
}

// keptOrder returns the kept branch indices in case order.
func keptOrder(kept map[pair]int) []int {
	idx := make([]int, 0, len(kept))
	for _, i := range kept {
		idx = append(idx, i)
	}
	sort.Ints(idx)

	return idx
}

// vertex maps a 1-based bus number to a vertex index.
func (c *Case) vertex(num int) (int, error) {
	if num < 1 || num > len(c.Buses) {
		return 0, fmt.Errorf("%w: %d not in [1,%d]", ErrBadBus, num, len(c.Buses))
	}

	return num - 1, nil
}

func lookupTap(index int, changers []TapChanger, taps map[[2]int]TapStep) (TapStep, error) {
	if index < 1 || index > len(changers) {
		return TapStep{}, fmt.Errorf("%w: changer %d of %d", ErrUnknownTap, index, len(changers))
	}
	tc := changers[index-1]
	step, ok := taps[[2]int{tc.Table, tc.Tap}]
	if !ok {
		return TapStep{}, fmt.Errorf("%w: table %d tap %d", ErrUnknownTap, tc.Table, tc.Tap)
	}

	return step, nil
}
