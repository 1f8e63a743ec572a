package policy

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treesum/internal/config"
)

func newPolicy(t *testing.T, root string, mutate func(*config.Summary)) *Policy {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	p, err := New(root, cfg, nil)
	require.NoError(t, err)
	return p
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestExtensionAllowList(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.py"), "print('hi')\n")
	writeFile(t, filepath.Join(root, "image.bin"), "data")

	p := newPolicy(t, root, nil)
	assert.True(t, p.ShouldIncludeFile(filepath.Join(root, "main.py")))
	assert.False(t, p.ShouldIncludeFile(filepath.Join(root, "image.bin")))
}

func TestSizeBoundaryIsInclusive(t *testing.T) {
	root := t.TempDir()
	exact := filepath.Join(root, "exact.txt")
	over := filepath.Join(root, "over.txt")
	writeFile(t, exact, string(bytes.Repeat([]byte("a"), 2*1024)))
	writeFile(t, over, string(bytes.Repeat([]byte("a"), 2*1024+1)))

	p := newPolicy(t, root, func(c *config.Summary) { c.MaxFileSizeKB = 2 })
	assert.True(t, p.ShouldIncludeFile(exact), "file exactly at the threshold is included")
	assert.False(t, p.ShouldIncludeFile(over), "one byte over the threshold is excluded")
}

func TestComponentPatternsMatchWholeComponentsOnly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "cache", "a.txt"), "x")
	writeFile(t, filepath.Join(root, "cacher", "b.txt"), "x")

	p := newPolicy(t, root, func(c *config.Summary) { c.ExcludePatterns = []string{"cache"} })
	assert.False(t, p.ShouldIncludeFile(filepath.Join(root, "cache", "a.txt")))
	// No substring matching: "cache" must not exclude "cacher".
	assert.True(t, p.ShouldIncludeFile(filepath.Join(root, "cacher", "b.txt")))
	assert.False(t, p.ShouldIncludeDir(filepath.Join(root, "cache")))
	assert.True(t, p.ShouldIncludeDir(filepath.Join(root, "cacher")))
}

func TestGlobPatternAgainstFileName(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "debug.log"), "x")
	writeFile(t, filepath.Join(root, "debug.txt"), "x")

	p := newPolicy(t, root, func(c *config.Summary) {
		c.IncludeExtensions = append(c.IncludeExtensions, ".log")
		c.ExcludePatterns = []string{"*.log"}
	})
	assert.False(t, p.ShouldIncludeFile(filepath.Join(root, "debug.log")))
	assert.True(t, p.ShouldIncludeFile(filepath.Join(root, "debug.txt")))
}

func TestDirOnlyPatternExcludesSubtree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "build", "out.txt"), "x")
	writeFile(t, filepath.Join(root, "build.txt"), "x")

	p := newPolicy(t, root, func(c *config.Summary) { c.ExcludePatterns = []string{"build/"} })
	assert.False(t, p.ShouldIncludeDir(filepath.Join(root, "build")))
	assert.False(t, p.ShouldIncludeFile(filepath.Join(root, "build", "out.txt")))
	// Directory-only pattern must not exclude a plain file of the same name.
	assert.True(t, p.ShouldIncludeFile(filepath.Join(root, "build.txt")))
}

func TestPathwisePatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "docs", "tmp", "a.md"), "x")
	writeFile(t, filepath.Join(root, "docs", "guide.md"), "x")
	writeFile(t, filepath.Join(root, "src", "tmp", "b.md"), "x")

	p := newPolicy(t, root, func(c *config.Summary) { c.ExcludePatterns = []string{"docs/tmp/**"} })
	assert.False(t, p.ShouldIncludeFile(filepath.Join(root, "docs", "tmp", "a.md")))
	assert.True(t, p.ShouldIncludeFile(filepath.Join(root, "docs", "guide.md")))
	assert.True(t, p.ShouldIncludeFile(filepath.Join(root, "src", "tmp", "b.md")))
}

func TestExcludedAncestorDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "node_modules", "pkg", "index.js"), "x")

	p := newPolicy(t, root, nil)
	assert.False(t, p.ShouldIncludeFile(filepath.Join(root, "node_modules", "pkg", "index.js")))
	assert.False(t, p.ShouldIncludeDir(filepath.Join(root, "node_modules", "pkg")))
}

func TestArtifactsAreNeverIncluded(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ArtifactName), "previous run output")

	p := newPolicy(t, root, func(c *config.Summary) { c.IncludeExtensions = nil })
	assert.False(t, p.ShouldIncludeFile(filepath.Join(root, ArtifactName)))
}

func TestBinarySniff(t *testing.T) {
	root := t.TempDir()
	bin := filepath.Join(root, "blob.txt")
	require.NoError(t, os.WriteFile(bin, []byte("text\x00more"), 0o644))

	p := newPolicy(t, root, nil)
	assert.False(t, p.ShouldIncludeFile(bin))
}

func TestWorkflowDirectoriesAlwaysEligible(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".github", "workflows", "ci.yml"), "on: push\n")

	p := newPolicy(t, root, nil)
	assert.True(t, p.ShouldIncludeDir(filepath.Join(root, ".github", "workflows")))
}

func TestRootDirectoryIsIncluded(t *testing.T) {
	root := t.TempDir()
	p := newPolicy(t, root, nil)
	assert.True(t, p.ShouldIncludeDir(root))
}

func TestPathsOutsideRootAreRejected(t *testing.T) {
	root := t.TempDir()
	p := newPolicy(t, root, nil)
	assert.False(t, p.ShouldIncludeFile(filepath.Join(root, "..", "escape.txt")))
	assert.False(t, p.ShouldIncludeDir(filepath.Join(root, "..")))
}

func TestNegationPatternsAreDropped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.log"), "x")
	writeFile(t, filepath.Join(root, "keep.txt"), "x")

	p := newPolicy(t, root, func(c *config.Summary) {
		c.IncludeExtensions = append(c.IncludeExtensions, ".log")
		c.ExcludePatterns = []string{"*.log", "!keep.log"}
	})
	// Negation is unsupported; the positive pattern still applies and the
	// "!" line never matches as a literal.
	assert.False(t, p.ShouldIncludeFile(filepath.Join(root, "keep.log")))
	assert.True(t, p.ShouldIncludeFile(filepath.Join(root, "keep.txt")))
}

func TestInvalidPatternIsDroppedNotFatal(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ok.txt"), "x")
	p := newPolicy(t, root, func(c *config.Summary) { c.ExcludePatterns = []string{"[unclosed"} })
	assert.True(t, p.ShouldIncludeFile(filepath.Join(root, "ok.txt")))
}
