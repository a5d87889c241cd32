// SPDX-License-Identifier: MIT

// Package coherence flags regulated buses whose voltage setpoints cannot
// coexist with a given source bus.
//
// For a source s and every other reached bus i, the diagnostic refers i's
// target voltage to s's voltage base with the search rule, and estimates the
// circulating current I = |ΔV| / Z_eq(s,i). A regulated bus with I above the
// threshold yields a Warning. Warnings are data: an empty list means the
// setpoints are coherent, and a failed validation is an error instead.
//
// Entry points:
//
//   - Check(net, source, rule, iMax):  impedance.Search followed by Diagnose.
//   - Diagnose(net, result, iMax):     diagnostic over an existing search result.
//   - Sweep(ctx, net, rule, iMax):     Check from every regulated bus on a
//     bounded worker pool; SweepResult.Suspects ranks the sources.
//
// Warnings are logged at warn level through charmbracelet/log (see WithLogger).
package coherence
