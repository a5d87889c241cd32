// Package pvcheck detects incoherent voltage setpoints in transmission
// networks.
//
// Two voltage-regulated (PV) buses whose setpoints disagree drive a current
// between them, roughly |ΔV| / Z_eq. When the equivalent impedance is small
// and the setpoints far apart, that current is unrealistic and the load flow
// will struggle. The packages estimate Z_eq with a generalized shortest-path
// search that accumulates resistance, reactance and transformer ratios along
// the way, and flag the pairs above a threshold.
//
// Layout:
//
//	network/     bus/branch model with directional transformer ratios
//	matrix/      dense n×n storage used by the model
//	dijkstra/    plain shortest paths on branch weights (baseline)
//	impedance/   rule-parameterized search: lines, single- and dual-ratio, admittance product
//	coherence/   circulating-current diagnostic, parallel sweep, suspect ranking
//	outliers/    z-score and IQR detectors
//	loader/      TOML network cases, per-unit or physical
//	render/      Graphviz DOT/SVG drawings annotated with a diagnostic
//	cmd/pvcheck  command-line front end
//
// Quick start:
//
//	net, _ := network.New(3, network.WithPerUnit(false))
//	_ = net.AddBranch(0, 1, 0, 2.86, network.WithRatio(1.01))
//	_ = net.AddBranch(1, 2, 0, 0.17, network.WithRatio(0.4985))
//	_ = net.MarkRegulated(0, 430)
//	_ = net.MarkRegulated(2, 185)
//
//	rep, err := coherence.Check(net, 2, impedance.DualRatio{}, 2)
//	if err != nil {
//		return err
//	}
//	for _, w := range rep.Warnings {
//		fmt.Println(w)
//	}
//
// All searches keep their state per call, so any number of checks may run
// concurrently on one network.
package pvcheck
