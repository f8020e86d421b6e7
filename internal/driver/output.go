package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"spice/internal/diag"
	"spice/internal/project"
)

// WriteIR writes one .ll file per module into dir and returns the paths in
// dependency order. Files sharing a base name get a numeric suffix.
func (r *Result) WriteIR(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, diag.WrapCompilerError(diag.CmpCantOpenOutputFile, "cannot create "+dir, err)
	}
	used := make(map[string]int, len(r.Files))
	out := make([]string, 0, len(r.Files))
	for _, f := range r.Files {
		mod := r.Modules[f.Path]
		if mod == nil {
			continue
		}
		base := strings.TrimSuffix(filepath.Base(f.Path), project.Ext)
		name := base
		if n := used[base]; n > 0 {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		used[base]++
		path := filepath.Join(dir, name+".ll")
		if err := os.WriteFile(path, []byte(mod.String()), 0o644); err != nil {
			return nil, diag.WrapCompilerError(diag.CmpCantOpenOutputFile, "cannot write "+path, err)
		}
		out = append(out, path)
	}
	return out, nil
}
