package dag

import (
	"sort"

	"spice/internal/project"
)

// NodeID numbers files in path order.
type NodeID uint32

type Index struct {
	PathToID map[string]NodeID
	IDToPath []string
}

// BuildIndex assigns ids to every file and every import target, sorted by
// path so that ids do not depend on parse order.
func BuildIndex(metas []project.FileMeta) Index {
	uniq := make(map[string]struct{}, len(metas))
	for _, meta := range metas {
		if meta.Path != "" {
			uniq[meta.Path] = struct{}{}
		}
		for _, dep := range meta.Imports {
			if dep.Path != "" {
				uniq[dep.Path] = struct{}{}
			}
		}
	}
	paths := make([]string, 0, len(uniq))
	for path := range uniq {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	pathToID := make(map[string]NodeID, len(paths))
	for i, path := range paths {
		pathToID[path] = NodeID(i)
	}
	return Index{PathToID: pathToID, IDToPath: paths}
}
