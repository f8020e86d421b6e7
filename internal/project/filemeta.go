package project

import (
	"path/filepath"
	"strings"

	"spice/internal/ast"
	"spice/internal/source"
)

// Ext is the extension of Spice source files.
const Ext = ".spice"

// ImportMeta is one import declaration with its path resolved on disk.
type ImportMeta struct {
	Written string // as spelled in the import declaration
	Path    string // cleaned file path
	Loc     source.CodeLoc
}

// FileMeta describes a parsed file for graph building and caching.
type FileMeta struct {
	Path        string
	Imports     []ImportMeta
	ContentHash Digest // hash of the file bytes
	Hash        Digest // content hash combined with the hashes of all imports
}

// ResolveImport maps an import path to a file path. Paths are relative to
// the importing file; the extension may be omitted.
func ResolveImport(importer, written string) string {
	p := filepath.FromSlash(written)
	if filepath.Ext(p) != Ext {
		p += Ext
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(filepath.Dir(importer), p)
	}
	return filepath.Clean(p)
}

// MetaOf collects the metadata of a parsed file.
func MetaOf(f *ast.File, src *source.File) FileMeta {
	meta := FileMeta{Path: filepath.Clean(filepath.FromSlash(f.Path))}
	if src != nil {
		meta.ContentHash = src.Hash
	}
	for _, imp := range f.Imports() {
		if strings.TrimSpace(imp.Path) == "" {
			continue
		}
		meta.Imports = append(meta.Imports, ImportMeta{
			Written: imp.Path,
			Path:    ResolveImport(meta.Path, imp.Path),
			Loc:     imp.Loc,
		})
	}
	return meta
}
