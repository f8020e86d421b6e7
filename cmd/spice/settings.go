package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"spice/internal/diag"
	"spice/internal/layout"
	"spice/internal/project"
	"spice/internal/version"
)

// settings merge command flags with the nearest spice.toml. Flags win.
type settings struct {
	entry            string
	manifest         *project.Manifest
	target           layout.Target
	maxRuns          int
	outputDir        string
	warningsAsErrors bool
	quiet            bool
	timings          bool
}

func loadSettings(cmd *cobra.Command, args []string) (*settings, error) {
	s := &settings{}
	var err error
	if s.quiet, err = cmd.Flags().GetBool("quiet"); err != nil {
		return nil, err
	}
	if s.timings, err = cmd.Flags().GetBool("timings"); err != nil {
		return nil, err
	}

	startDir := "."
	if len(args) > 0 && args[0] != "" {
		startDir = filepath.Dir(args[0])
	}
	manifest, ok, err := project.LoadManifest(startDir)
	if err != nil {
		return nil, err
	}
	if ok {
		s.manifest = manifest
		if err := manifest.CheckCompiler(version.Version); err != nil {
			return nil, err
		}
		s.maxRuns = manifest.Config.Build.MaxRuns
		s.warningsAsErrors = manifest.Config.Build.WarningsAsErrors
	}

	switch {
	case len(args) > 0 && args[0] != "":
		s.entry = args[0]
	case s.manifest.MainPath() != "":
		s.entry = s.manifest.MainPath()
	default:
		return nil, fmt.Errorf("no input file given and no [package].main in %s", project.ManifestName)
	}
	if filepath.Ext(s.entry) != project.Ext {
		return nil, fmt.Errorf("%s: expected a %s file", s.entry, project.Ext)
	}
	if info, err := os.Stat(s.entry); err == nil && info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", s.entry)
	}

	triple, err := cmd.Flags().GetString("target")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(triple) == "" && s.manifest != nil {
		triple = s.manifest.Config.Build.Target
	}
	if s.target, err = resolveTarget(triple); err != nil {
		return nil, err
	}

	maxRuns, err := cmd.Flags().GetInt("max-runs")
	if err != nil {
		return nil, err
	}
	if maxRuns > 0 {
		s.maxRuns = maxRuns
	}

	if s.manifest != nil {
		s.outputDir = s.manifest.OutputDir()
	} else {
		s.outputDir = filepath.Join(filepath.Dir(s.entry), "build")
	}
	out, err := optionalString(cmd.Flags(), "output")
	if err != nil {
		return nil, err
	}
	if out != "" {
		s.outputDir = out
	}
	return s, nil
}

// optionalString reads a flag that only some commands define.
func optionalString(flags *pflag.FlagSet, name string) (string, error) {
	if flags.Lookup(name) == nil {
		return "", nil
	}
	return flags.GetString(name)
}

func resolveTarget(triple string) (layout.Target, error) {
	triple = strings.TrimSpace(triple)
	if triple == "" {
		return layout.X86_64Linux(), nil
	}
	t, err := layout.ParseTarget(triple)
	if err != nil {
		return layout.Target{}, diag.WrapCompilerError(diag.CmpTargetNotAvailable, "unsupported target "+triple, err)
	}
	return t, nil
}
