package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// Topo is a Kahn ordering of the import graph. Importers come before the
// files they import.
type Topo struct {
	Order   []NodeID
	Batches [][]NodeID // waves of files independent of each other
	Cyclic  bool
	Cycles  []NodeID // files left with importers after the sort
}

func ToposortKahn(g Graph) *Topo {
	nodeCount := len(g.Edges)
	indeg := make([]int, len(g.Indeg))
	copy(indeg, g.Indeg)

	topo := &Topo{
		Order:   make([]NodeID, 0, nodeCount),
		Batches: make([][]NodeID, 0),
	}

	active := 0
	for i := range nodeCount {
		if g.Present[i] {
			active++
		}
	}

	current := make([]NodeID, 0, nodeCount)
	for i := range nodeCount {
		if !g.Present[i] {
			continue
		}
		if indeg[i] == 0 {
			mID, err := safecast.Conv[NodeID](i)
			if err != nil {
				panic(fmt.Errorf("node id overflow: %w", err))
			}
			current = append(current, mID)
		}
	}
	slices.Sort(current)

	visited := 0
	for len(current) > 0 {
		batch := make([]NodeID, len(current))
		copy(batch, current)
		topo.Batches = append(topo.Batches, batch)

		next := make([]NodeID, 0)
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			visited++
			for _, to := range g.Edges[int(id)] {
				if !g.Present[int(to)] {
					continue
				}
				indeg[int(to)]--
				if indeg[int(to)] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if visited != active {
		topo.Cyclic = true
		for i := range nodeCount {
			if !g.Present[i] {
				continue
			}
			if indeg[i] > 0 {
				mID, err := safecast.Conv[NodeID](i)
				if err != nil {
					panic(fmt.Errorf("node id overflow: %w", err))
				}
				topo.Cycles = append(topo.Cycles, mID)
			}
		}
		slices.Sort(topo.Cycles)
	}

	return topo
}

// Levels returns the batches in dependency order: a file appears after
// every file it imports.
func (t *Topo) Levels() [][]NodeID {
	out := make([][]NodeID, len(t.Batches))
	for i, b := range t.Batches {
		out[len(t.Batches)-1-i] = b
	}
	return out
}
