package project

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"

	"spice/internal/diag"
)

// Manifest is a loaded spice.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the sections of spice.toml.
type Config struct {
	Package PackageConfig `toml:"package"`
	Build   BuildConfig   `toml:"build"`
}

type PackageConfig struct {
	Name string `toml:"name"`
	// Main is the entry file relative to the manifest.
	Main string `toml:"main"`
	// MinCompiler is a version ("0.2.0") or a constraint (">= 0.2, < 1").
	MinCompiler string `toml:"min_compiler"`
}

type BuildConfig struct {
	Target           string `toml:"target"`
	OutputDir        string `toml:"output_dir"`
	MaxRuns          int    `toml:"max_runs"`
	WarningsAsErrors bool   `toml:"warnings_as_errors"`
}

// LoadManifest finds spice.toml above startDir and decodes it. ok is false
// when there is no manifest.
func LoadManifest(startDir string) (m *Manifest, ok bool, err error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := DecodeManifest(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// DecodeManifest reads and validates one manifest file.
func DecodeManifest(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, diag.WrapCompilerError(diag.CmpManifestInvalid, path+": failed to parse TOML", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, diag.NewCompilerError(diag.CmpManifestInvalid,
			fmt.Sprintf("%s: unknown key %s", path, undecoded[0].String()))
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return Config{}, diag.NewCompilerError(diag.CmpManifestInvalid, path+": missing [package].name")
	}
	if cfg.Build.MaxRuns < 0 {
		return Config{}, diag.NewCompilerError(diag.CmpManifestInvalid, path+": [build].max_runs must not be negative")
	}
	return cfg, nil
}

// MainPath returns the absolute entry file, or "" when none is configured.
func (m *Manifest) MainPath() string {
	if m == nil || strings.TrimSpace(m.Config.Package.Main) == "" {
		return ""
	}
	return filepath.Join(m.Root, filepath.FromSlash(m.Config.Package.Main))
}

// OutputDir returns the absolute output directory, defaulting to build/.
func (m *Manifest) OutputDir() string {
	dir := "build"
	if m == nil {
		return dir
	}
	if strings.TrimSpace(m.Config.Build.OutputDir) != "" {
		dir = m.Config.Build.OutputDir
	}
	return filepath.Join(m.Root, filepath.FromSlash(dir))
}

// CheckCompiler fails when compilerVersion does not satisfy min_compiler.
func (m *Manifest) CheckCompiler(compilerVersion string) error {
	if m == nil {
		return nil
	}
	want := strings.TrimSpace(m.Config.Package.MinCompiler)
	if want == "" {
		return nil
	}
	have, err := semver.NewVersion(compilerVersion)
	if err != nil {
		return diag.WrapCompilerError(diag.CmpInternalError, "compiler version "+compilerVersion+" is not semantic", err)
	}
	// Pre-releases of the required version are accepted.
	release, err := have.SetPrerelease("")
	if err != nil {
		return diag.WrapCompilerError(diag.CmpInternalError, "compiler version "+compilerVersion, err)
	}
	if strings.ContainsAny(want, "<>=~^!,| ") {
		c, err := semver.NewConstraint(want)
		if err != nil {
			return diag.WrapCompilerError(diag.CmpManifestInvalid, m.Path+": invalid min_compiler", err)
		}
		if !c.Check(&release) {
			return diag.NewCompilerError(diag.CmpManifestInvalid,
				fmt.Sprintf("%s: compiler %s does not satisfy %q", m.Path, compilerVersion, want))
		}
		return nil
	}
	minV, err := semver.NewVersion(want)
	if err != nil {
		return diag.WrapCompilerError(diag.CmpManifestInvalid, m.Path+": invalid min_compiler", err)
	}
	if release.LessThan(minV) {
		return diag.NewCompilerError(diag.CmpManifestInvalid,
			fmt.Sprintf("%s: compiler %s is older than the required %s", m.Path, compilerVersion, minV))
	}
	return nil
}
