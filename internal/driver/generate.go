package driver

import (
	"context"
	"time"

	"github.com/llir/llvm/asm"
	"golang.org/x/sync/errgroup"

	"spice/internal/diag"
	"spice/internal/irgen"
	"spice/internal/version"
)

// generateAll builds the IR of every file in parallel. The analyzer is done
// with every table at this point, so the generators only read shared state.
func (c *compilation) generateAll(ctx context.Context, files []*File) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(c.jobs, max(len(files), 1)))
	for _, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			began := c.opts.Observer.start("generate", f.Path)
			err := c.generate(gctx, f)
			c.opts.Observer.end("generate", f.Path, began, err)
			return err
		})
	}
	return g.Wait()
}

func (c *compilation) generate(ctx context.Context, f *File) error {
	if c.restore(f) {
		return nil
	}
	mod, err := irgen.Generate(ctx, f.Sema, irgen.Options{Target: c.opts.Target})
	if err != nil {
		return err
	}
	f.Module = mod
	if c.opts.Cache == nil {
		return nil
	}
	err = c.opts.Cache.Put(f.key, &CacheEntry{
		BuildID:  c.buildID,
		Path:     f.Path,
		Triple:   c.opts.Target.Triple,
		Compiler: version.Version,
		Hash:     f.Meta.Hash,
		Written:  time.Now().UTC(),
		IR:       mod.String(),
	})
	if err != nil {
		return diag.WrapCompilerError(diag.CmpIOError, "cannot write IR cache for "+f.Path, err)
	}
	return nil
}

// restore loads f's module from the cache. Unreadable entries count as
// misses and get overwritten.
func (c *compilation) restore(f *File) bool {
	entry, ok, err := c.opts.Cache.Get(f.key)
	if err != nil || !ok || entry.Hash != f.Meta.Hash || entry.Triple != c.opts.Target.Triple {
		return false
	}
	mod, err := asm.ParseString(f.Path, entry.IR)
	if err != nil {
		return false
	}
	f.Module = mod
	f.Cached = true
	return true
}
