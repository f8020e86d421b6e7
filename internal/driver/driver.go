package driver

import (
	"context"
	"runtime"
	"sort"

	"github.com/google/uuid"
	"github.com/llir/llvm/ir"

	"spice/internal/diag"
	"spice/internal/layout"
	"spice/internal/observ"
	"spice/internal/source"
	"spice/internal/types"
)

// Options configure one compilation.
type Options struct {
	// Target selects data layout and syscall convention. The zero value
	// means x86_64 Linux.
	Target  layout.Target
	MaxRuns int
	// Jobs bounds the parallel parse and generate workers. Zero uses
	// GOMAXPROCS.
	Jobs int
	// Reporter receives the warnings of the entry file.
	Reporter diag.Reporter
	// Cache is optional; nil disables IR caching.
	Cache    *Cache
	Observer PhaseObserver
	// Timer records the pipeline phases. Compile creates one if nil.
	Timer *observ.Timer
	// SkipIR stops after semantic analysis.
	SkipIR bool
	// FileSet receives the loaded sources. Passing one keeps them reachable
	// for error snippets when Compile fails.
	FileSet *source.FileSet
}

// Result is a finished compilation.
type Result struct {
	FileSet *source.FileSet
	Types   *types.Registry
	// Files lists every file so that imports precede their importers.
	Files []*File
	Main  *File
	// Modules maps file paths to their IR. Empty when SkipIR was set.
	Modules map[string]*ir.Module
	BuildID string
	Timer   *observ.Timer
}

// File returns the compiled file with the given path.
func (r *Result) File(path string) (*File, bool) {
	for _, f := range r.Files {
		if f.Path == path {
			return f, true
		}
	}
	return nil, false
}

// CacheHits counts the modules restored from the cache.
func (r *Result) CacheHits() int {
	n := 0
	for _, f := range r.Files {
		if f.Cached {
			n++
		}
	}
	return n
}

type compilation struct {
	opts    Options
	jobs    int
	fs      *source.FileSet
	reg     *types.Registry
	buildID string
	files   map[string]*File
	order   []*File
}

// Compile parses entry and the files it imports, analyzes them in import
// order and generates one IR module per file. The first error aborts.
func Compile(ctx context.Context, entry string, opts Options) (*Result, error) {
	if opts.Target.Arch == 0 {
		opts.Target = layout.X86_64Linux()
	}
	if opts.Timer == nil {
		opts.Timer = observ.NewTimer()
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	if opts.FileSet == nil {
		opts.FileSet = source.NewFileSet()
	}
	c := &compilation{
		opts:    opts,
		jobs:    jobs,
		fs:      opts.FileSet,
		reg:     types.NewRegistry(),
		buildID: uuid.NewString(),
		files:   make(map[string]*File),
	}
	res := &Result{
		FileSet: c.fs,
		Types:   c.reg,
		Modules: make(map[string]*ir.Module),
		BuildID: c.buildID,
		Timer:   opts.Timer,
	}
	tm := opts.Timer

	if err := tm.Track("parse", func() error { return c.parseAll(ctx, entry) }); err != nil {
		return nil, err
	}
	var levels [][]*File
	if err := tm.Track("imports", func() (err error) {
		levels, err = c.importLevels()
		return err
	}); err != nil {
		return nil, err
	}
	for _, level := range levels {
		res.Files = append(res.Files, level...)
	}
	res.Main = c.order[0]

	if err := tm.Track("analyze", func() error { return c.analyzeAll(ctx, levels) }); err != nil {
		return nil, err
	}
	if opts.SkipIR {
		return res, nil
	}
	if err := tm.Track("generate", func() error { return c.generateAll(ctx, res.Files) }); err != nil {
		return nil, err
	}
	for _, f := range res.Files {
		res.Modules[f.Path] = f.Module
	}
	return res, nil
}

// sortedPaths is used wherever map order would leak into the output.
func sortedPaths(files map[string]*File) []string {
	out := make([]string, 0, len(files))
	for p := range files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
