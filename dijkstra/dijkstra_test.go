// Package dijkstra_test contains unit tests for the baseline Dijkstra routine.
// These tests validate input checks, the reference nine-bus scenario,
// MaxDistance, InfEdgeThreshold and path reconstruction.
package dijkstra_test

import (
	"errors"
	"math"
	"testing"

	"github.com/powsybl/powsybl-optimizer/dijkstra"
	"github.com/powsybl/powsybl-optimizer/network"
)

// nineBus builds the reference nine-bus network.
func nineBus(t *testing.T) *network.Network {
	t.Helper()
	g, err := network.New(9)
	if err != nil {
		t.Fatal(err)
	}
	edges := []struct {
		u, v int
		w    float64
	}{
		{0, 1, 4}, {0, 6, 7}, {1, 6, 11}, {1, 7, 20}, {1, 2, 9},
		{2, 3, 6}, {2, 4, 2}, {3, 4, 10}, {3, 5, 5}, {4, 5, 15},
		{4, 7, 1}, {4, 8, 5}, {5, 8, 12}, {6, 7, 1}, {7, 8, 3},
	}
	for _, e := range edges {
		if err = g.AddEdge(e.u, e.v, e.w); err != nil {
			t.Fatal(err)
		}
	}

	return g
}

// ------------------------------------------------------------------------
// 1. Validation Tests
// ------------------------------------------------------------------------

func TestDijkstra_NoSource(t *testing.T) {
	g, _ := network.New(1)
	if _, _, err := dijkstra.Dijkstra(g); !errors.Is(err, dijkstra.ErrNoSource) {
		t.Fatalf("Expected ErrNoSource, got %v", err)
	}
}

func TestDijkstra_NilGraph(t *testing.T) {
	// ErrNoSource has priority over ErrNilGraph.
	if _, _, err := dijkstra.Dijkstra(nil); !errors.Is(err, dijkstra.ErrNoSource) {
		t.Fatalf("Expected ErrNoSource, got %v", err)
	}
	if _, _, err := dijkstra.Dijkstra(nil, dijkstra.Source(0)); !errors.Is(err, dijkstra.ErrNilGraph) {
		t.Fatalf("Expected ErrNilGraph, got %v", err)
	}
}

func TestDijkstra_SourceOutOfRange(t *testing.T) {
	g, _ := network.New(2)
	for _, src := range []int{2, -5} {
		if _, _, err := dijkstra.Dijkstra(g, dijkstra.Source(src)); !errors.Is(err, dijkstra.ErrVertexNotFound) {
			t.Fatalf("source %d: expected ErrVertexNotFound, got %v", src, err)
		}
	}
}

func TestDijkstra_NegativeWeightDetectedEarly(t *testing.T) {
	g, _ := network.New(3)
	_ = g.AddBranch(0, 1, 0, 1)
	_ = g.AddBranch(1, 2, 0, 1)
	// SetImpedance bypasses the sign check and also rewrites the weight.
	_ = g.SetImpedance(1, 2, 0, -2)

	_, _, err := dijkstra.Dijkstra(g, dijkstra.Source(0))
	if !errors.Is(err, dijkstra.ErrNegativeWeight) {
		t.Fatalf("Expected ErrNegativeWeight, got %v", err)
	}
}

func TestDijkstra_OptionPanics(t *testing.T) {
	for name, opt := range map[string]dijkstra.Option{
		"max distance":  dijkstra.WithMaxDistance(-1),
		"inf threshold": dijkstra.WithInfEdgeThreshold(0),
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic")
				}
			}()
			// Options validate when applied.
			o := dijkstra.DefaultOptions(0)
			opt(&o)
		})
	}
}

// ------------------------------------------------------------------------
// 2. Reference scenario and path reconstruction
// ------------------------------------------------------------------------

func TestDijkstra_NineBusReference(t *testing.T) {
	g := nineBus(t)
	dist, prev, err := dijkstra.Dijkstra(g, dijkstra.Source(0))
	if err != nil {
		t.Fatal(err)
	}
	if prev != nil {
		t.Errorf("expected nil predecessor slice, got %v", prev)
	}

	want := []float64{0, 4, 11, 17, 9, 22, 7, 8, 11}
	for v := range want {
		if dist[v] != want[v] {
			t.Errorf("dist[%d] = %g; want %g", v, dist[v], want[v])
		}
	}
}

func TestDijkstra_NineBusPath(t *testing.T) {
	g := nineBus(t)
	_, prev, err := dijkstra.Dijkstra(g, dijkstra.Source(0), dijkstra.WithReturnPath())
	if err != nil {
		t.Fatal(err)
	}

	// 0 → 6 → 7 → 4 → 2 → 3 → 5
	var path []int
	for v := 5; v != -1; v = prev[v] {
		path = append([]int{v}, path...)
	}
	want := []int{0, 6, 7, 4, 2, 3, 5}
	if len(path) != len(want) {
		t.Fatalf("path = %v; want %v", path, want)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Fatalf("path = %v; want %v", path, want)
		}
	}
}

func TestDijkstra_Unreachable(t *testing.T) {
	g, _ := network.New(3)
	_ = g.AddEdge(0, 1, 2)

	dist, prev, err := dijkstra.Dijkstra(g, dijkstra.Source(0), dijkstra.WithReturnPath())
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsInf(dist[2], 1) || prev[2] != -1 {
		t.Errorf("bus 2: dist=%g prev=%d; want +Inf, -1", dist[2], prev[2])
	}
}

func TestDijkstra_BranchWeightIsReactance(t *testing.T) {
	g, _ := network.New(3)
	_ = g.AddBranch(0, 1, 5, 0.3, network.WithRatio(2))
	_ = g.AddBranch(1, 2, 5, 0.2)

	dist, _, err := dijkstra.Dijkstra(g, dijkstra.Source(0))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(dist[2]-0.5) > 1e-12 {
		t.Errorf("dist[2] = %g; want 0.5", dist[2])
	}
}

// ------------------------------------------------------------------------
// 3. Thresholds
// ------------------------------------------------------------------------

func TestDijkstra_MaxDistance(t *testing.T) {
	g := nineBus(t)
	dist, _, err := dijkstra.Dijkstra(g, dijkstra.Source(0), dijkstra.WithMaxDistance(9))
	if err != nil {
		t.Fatal(err)
	}
	for v, d := range dist {
		if d > 9 && !math.IsInf(d, 1) {
			t.Errorf("dist[%d] = %g exceeds the cap", v, d)
		}
	}
	if dist[4] != 9 {
		t.Errorf("dist[4] = %g; want 9", dist[4])
	}
}

func TestDijkstra_InfEdgeThreshold(t *testing.T) {
	g := nineBus(t)
	// Walls at weight ≥ 7 leave 0-1 as the only usable edge out of 0.
	dist, _, err := dijkstra.Dijkstra(g, dijkstra.Source(0), dijkstra.WithInfEdgeThreshold(7))
	if err != nil {
		t.Fatal(err)
	}
	if dist[1] != 4 {
		t.Errorf("dist[1] = %g; want 4", dist[1])
	}
	if !math.IsInf(dist[6], 1) {
		t.Errorf("dist[6] = %g; want +Inf", dist[6])
	}
}
