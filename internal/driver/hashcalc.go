package driver

import (
	"spice/internal/project"
	"spice/internal/project/dag"
)

// computeHashes fills Meta.Hash in dependency order, so a file's hash
// changes whenever one of its imports changes.
func computeHashes(g dag.Graph, slots []dag.Slot, levels [][]dag.NodeID) {
	for _, level := range levels {
		for _, id := range level {
			slot := &slots[int(id)]
			if !slot.Present {
				continue
			}
			deps := make([]project.Digest, 0, len(g.Edges[int(id)]))
			for _, to := range g.Edges[int(id)] {
				deps = append(deps, slots[int(to)].Meta.Hash)
			}
			slot.Meta.Hash = project.Combine(slot.Meta.ContentHash, deps...)
		}
	}
}
