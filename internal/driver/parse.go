package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/llir/llvm/ir"
	"golang.org/x/sync/errgroup"

	"spice/internal/ast"
	"spice/internal/diag"
	"spice/internal/parser"
	"spice/internal/project"
	"spice/internal/sema"
	"spice/internal/source"
)

// File is one source file moving through the pipeline.
type File struct {
	Path    string
	ID      source.FileID
	AST     *ast.File
	Meta    project.FileMeta
	Primary bool
	Sema    *sema.Result
	Module  *ir.Module
	// Cached is set when Module came from the IR cache.
	Cached bool
	key    project.Digest
}

// parseAll parses entry, then the files it imports, one wave per import
// depth. Files within a wave are parsed in parallel.
func (c *compilation) parseAll(ctx context.Context, entry string) error {
	first := filepath.Clean(entry)
	wave := []string{first}
	seen := map[string]bool{first: true}
	for len(wave) > 0 {
		parsed := make([]*File, len(wave))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(min(c.jobs, len(wave)))
		for i, path := range wave {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				f, err := c.parseFile(path, path == first)
				if err != nil {
					return err
				}
				parsed[i] = f
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		var next []string
		for _, f := range parsed {
			// missing imports are reported by the import graph
			if f == nil {
				continue
			}
			c.files[f.Path] = f
			c.order = append(c.order, f)
			for _, imp := range f.Meta.Imports {
				if !seen[imp.Path] {
					seen[imp.Path] = true
					next = append(next, imp.Path)
				}
			}
		}
		wave = next
	}
	if len(c.order) == 0 {
		return diag.NewCompilerError(diag.CmpSourceFileNotFound, fmt.Sprintf("The source file '%s' was not found", entry))
	}
	return nil
}

func (c *compilation) parseFile(path string, primary bool) (*File, error) {
	began := c.opts.Observer.start("parse", path)
	f, err := c.loadAndParse(path, primary)
	c.opts.Observer.end("parse", path, began, err)
	return f, err
}

func (c *compilation) loadAndParse(path string, primary bool) (*File, error) {
	var flags source.FileFlags
	if !primary {
		flags = source.FileImported
	}
	id, err := c.fs.Load(path, flags)
	if err != nil {
		switch {
		case errors.Is(err, os.ErrNotExist) && primary:
			return nil, diag.NewCompilerError(diag.CmpSourceFileNotFound, fmt.Sprintf("The source file '%s' was not found", path))
		case errors.Is(err, os.ErrNotExist):
			return nil, nil
		default:
			return nil, diag.WrapCompilerError(diag.CmpIOError, "cannot read "+path, err)
		}
	}
	tree, err := parser.ParseFile(c.fs, id, nil)
	if err != nil {
		return nil, err
	}
	meta := project.MetaOf(tree, c.fs.Get(id))
	return &File{Path: meta.Path, ID: id, AST: tree, Meta: meta, Primary: primary}, nil
}
