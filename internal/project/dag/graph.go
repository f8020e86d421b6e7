package dag

import (
	"fmt"
	"slices"
	"strings"

	"spice/internal/diag"
	"spice/internal/project"
)

// Graph holds import edges: Edges[importer] lists the imported files.
type Graph struct {
	Edges   [][]NodeID
	Indeg   []int  // number of importers, for Kahn
	Present []bool // the file was parsed, not only named by an import
}

type Slot struct {
	Meta    project.FileMeta
	Present bool
}

// BuildGraph links the parsed files. The first file importing something
// that was not parsed, or importing itself, yields a semantic error at the
// import declaration.
func BuildGraph(idx Index, metas []project.FileMeta) (Graph, []Slot, error) {
	n := len(idx.IDToPath)
	g := Graph{
		Edges:   make([][]NodeID, n),
		Indeg:   make([]int, n),
		Present: make([]bool, n),
	}
	slots := make([]Slot, n)
	for i, path := range idx.IDToPath {
		slots[i].Meta.Path = path
	}
	for _, meta := range metas {
		id, ok := idx.PathToID[meta.Path]
		if !ok || slots[int(id)].Present {
			continue
		}
		slots[int(id)] = Slot{Meta: meta, Present: true}
		g.Present[int(id)] = true
	}

	for from := range slots {
		slot := &slots[from]
		if !slot.Present {
			continue
		}
		seen := make(map[NodeID]struct{}, len(slot.Meta.Imports))
		for _, dep := range slot.Meta.Imports {
			to := idx.PathToID[dep.Path]
			if NodeID(from) == to {
				return Graph{}, nil, diag.NewSemanticError(dep.Loc, diag.SemCircularDependency,
					fmt.Sprintf("The file '%s' imports itself", slot.Meta.Path))
			}
			if !g.Present[int(to)] {
				return Graph{}, nil, diag.NewSemanticError(dep.Loc, diag.SemImportedFileNotExisting,
					fmt.Sprintf("The source file '%s' was not found", dep.Written))
			}
			if _, dup := seen[to]; dup {
				continue
			}
			seen[to] = struct{}{}
			g.Edges[from] = append(g.Edges[from], to)
			g.Indeg[int(to)]++
		}
		slices.Sort(g.Edges[from])
	}
	return g, slots, nil
}

// CycleError describes the cycle found by the toposort, or returns nil.
func CycleError(idx Index, slots []Slot, topo *Topo) error {
	if topo == nil || !topo.Cyclic || len(topo.Cycles) == 0 {
		return nil
	}
	names := make([]string, 0, len(topo.Cycles))
	for _, id := range topo.Cycles {
		names = append(names, idx.IDToPath[int(id)])
	}
	inCycle := make(map[string]bool, len(names))
	for _, name := range names {
		inCycle[name] = true
	}
	for _, id := range topo.Cycles {
		for _, imp := range slots[int(id)].Meta.Imports {
			if inCycle[imp.Path] {
				return diag.NewSemanticError(imp.Loc, diag.SemCircularDependency,
					"Circular import detected: "+strings.Join(names, " -> "))
			}
		}
	}
	return diag.NewCompilerError(diag.CmpInternalError, "circular import without import site: "+strings.Join(names, " -> "))
}
