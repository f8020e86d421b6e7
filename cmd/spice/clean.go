package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"spice/internal/driver"
	"spice/internal/project"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [path]",
	Short: "Remove build outputs",
	Long:  "Remove the output directory of the project at path. With --cache the IR cache is dropped as well.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClean,
}

func init() {
	cleanCmd.Flags().Bool("cache", false, "also drop the IR cache")
}

func runClean(cmd *cobra.Command, args []string) error {
	baseDir := "."
	if len(args) > 0 && args[0] != "" {
		baseDir = args[0]
	}
	outDir, err := resolveOutputDir(baseDir)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	info, err := os.Stat(outDir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		fmt.Fprintf(out, "%s not found\n", displayPath(outDir))
	case err != nil:
		return fmt.Errorf("failed to stat %q: %w", outDir, err)
	case !info.IsDir():
		return fmt.Errorf("%q is not a directory", outDir)
	default:
		if err := os.RemoveAll(outDir); err != nil {
			return fmt.Errorf("failed to remove %q: %w", outDir, err)
		}
		fmt.Fprintf(out, "removed %s\n", displayPath(outDir))
	}

	dropCache, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return err
	}
	if !dropCache {
		return nil
	}
	cache, err := driver.OpenCache("spice")
	if err != nil {
		return err
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to drop cache: %w", err)
	}
	fmt.Fprintf(out, "dropped cache %s\n", cache.Dir())
	return nil
}

// resolveOutputDir returns the manifest's output directory above base, or
// base/build without a manifest.
func resolveOutputDir(base string) (string, error) {
	info, err := os.Stat(base)
	if err != nil {
		return "", fmt.Errorf("failed to stat %q: %w", base, err)
	}
	if !info.IsDir() {
		base = filepath.Dir(base)
	}
	manifest, ok, err := project.LoadManifest(base)
	if err != nil {
		return "", err
	}
	if ok {
		return manifest.OutputDir(), nil
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return filepath.Join(base, "build"), nil
	}
	return filepath.Join(abs, "build"), nil
}
