// SPDX-License-Identifier: MIT
//
// File: islands.go
// Role: connected components by breadth-first search.

package network

import "sort"

// Islands returns the connected components of the network, each in ascending
// bus order, ordered by their smallest bus. Buses in different islands are
// never compared by a search.
//
// Complexity: O(N²) on the dense adjacency.
func (n *Network) Islands() [][]int {
	n.mu.RLock()
	defer n.mu.RUnlock()

	visited := make([]bool, n.n)
	var out [][]int
	for start := 0; start < n.n; start++ {
		if visited[start] {
			continue
		}
		out = append(out, n.walk(start, visited))
	}

	return out
}

// walk runs a BFS from start, marking visited buses. Caller holds the read lock.
func (n *Network) walk(start int, visited []bool) []int {
	queue := []int{start}
	visited[start] = true
	island := make([]int, 0, 1)
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		island = append(island, u)
		for v := 0; v < n.n; v++ {
			if n.adj[u*n.n+v] && !visited[v] {
				visited[v] = true
				queue = append(queue, v)
			}
		}
	}
	sort.Ints(island)

	return island
}
