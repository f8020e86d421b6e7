package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"spice/internal/project"
)

const maxSeedBytes = 64 << 10

func addCorpusSeeds(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte("f<int> main() { return 0; }\n"))
	addTestdataSeeds(f)
}

// addTestdataSeeds adds every .spice file below testdata/.
func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != project.Ext {
			return nil
		}
		// #nosec G304 -- path comes from the repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) > maxSeedBytes {
		src = src[:maxSeedBytes]
	}
	return append([]byte(nil), src...)
}
