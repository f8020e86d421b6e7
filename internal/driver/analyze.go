package driver

import (
	"context"

	"spice/internal/project"
	"spice/internal/project/dag"
	"spice/internal/sema"
	"spice/internal/symbols"
	"spice/internal/version"
)

// importLevels orders the parsed files so that every file comes after its
// imports and computes their cache keys on the way.
func (c *compilation) importLevels() ([][]*File, error) {
	metas := make([]project.FileMeta, 0, len(c.files))
	for _, p := range sortedPaths(c.files) {
		metas = append(metas, c.files[p].Meta)
	}
	idx := dag.BuildIndex(metas)
	g, slots, err := dag.BuildGraph(idx, metas)
	if err != nil {
		return nil, err
	}
	topo := dag.ToposortKahn(g)
	if err := dag.CycleError(idx, slots, topo); err != nil {
		return nil, err
	}
	ids := topo.Levels()
	computeHashes(g, slots, ids)

	levels := make([][]*File, 0, len(ids))
	for _, level := range ids {
		files := make([]*File, 0, len(level))
		for _, id := range level {
			slot := slots[int(id)]
			f := c.files[slot.Meta.Path]
			f.Meta.Hash = slot.Meta.Hash
			f.key = project.Salt(f.Meta.Hash, c.opts.Target.Triple, version.Version)
			files = append(files, f)
		}
		levels = append(levels, files)
	}
	return levels, nil
}

// analyzeAll runs the analyzer file by file. Importers instantiate generic
// templates inside the tables of their imports, so files are analyzed one
// at a time even within a level.
func (c *compilation) analyzeAll(ctx context.Context, levels [][]*File) error {
	for _, level := range levels {
		for _, f := range level {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := c.analyze(ctx, f); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *compilation) analyze(ctx context.Context, f *File) error {
	imports := make(map[string]*symbols.Table, len(f.Meta.Imports))
	for _, imp := range f.Meta.Imports {
		imports[imp.Written] = c.files[imp.Path].Sema.Table
	}
	began := c.opts.Observer.start("analyze", f.Path)
	res, err := sema.Analyze(ctx, f.AST, sema.Options{
		Registry: c.reg,
		Reporter: c.opts.Reporter,
		Imports:  imports,
		MaxRuns:  c.opts.MaxRuns,
		Primary:  f.Primary,
	})
	c.opts.Observer.end("analyze", f.Path, began, err)
	if err != nil {
		return err
	}
	f.Sema = res
	return nil
}
