// Package summary builds machine-consumable summaries of a project tree:
// per-directory concatenation artifacts aggregated bottom-up, a structural
// document of Python signatures, and a README collation. Outputs are
// deterministic; re-running on an unchanged tree reproduces byte-identical
// artifacts.
package summary

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"treesum/internal/config"
	"treesum/internal/pathmap"
	"treesum/internal/policy"
	"treesum/internal/textutil"
)

// PublishFunc hands a set of written artifact paths to an external
// persistence collaborator (typically a git commit-and-push step).
// Implementations must be idempotent; the engine only supplies paths and
// has no opinion on version-control semantics.
type PublishFunc func(paths []string) error

// Generator produces summary artifacts for one project root. The resolved
// configuration is loaded once at construction and never mutated;
// concurrent runs should construct independent generators.
type Generator struct {
	root   string
	cfg    config.Summary
	cfgSet bool
	pol    *policy.Policy
	log    *zap.SugaredLogger
}

// Option customizes generator construction.
type Option func(*Generator)

// WithLogger injects a logger; the default discards everything.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(g *Generator) { g.log = log }
}

// WithConfig bypasses config file resolution, mainly for tests and
// embedding callers that resolved configuration themselves.
func WithConfig(cfg config.Summary) Option {
	return func(g *Generator) { g.cfg, g.cfgSet = cfg, true }
}

// New builds a Generator rooted at root.
func New(root string, opts ...Option) (*Generator, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	g := &Generator{root: abs}
	for _, opt := range opts {
		opt(g)
	}
	if g.log == nil {
		g.log = zap.NewNop().Sugar()
	}
	if !g.cfgSet {
		g.cfg = config.Load(abs, g.log)
	}
	g.pol, err = policy.New(abs, g.cfg, g.log)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Root returns the absolute project root.
func (g *Generator) Root() string { return g.root }

// GenerateDirectorySummary concatenates the directly-contained included
// files of dir, each prefixed by a delimiter header carrying its
// project-relative path. It returns "" when nothing in dir qualifies.
func (g *Generator) GenerateDirectorySummary(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	var sections []string
	for _, e := range entries { // ReadDir is sorted by name
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if !g.pol.ShouldIncludeFile(path) {
			continue
		}
		rel, _ := g.pol.Rel(path)
		data, err := os.ReadFile(path)
		if err != nil {
			g.log.Warnw("skipping unreadable file", "path", rel, "error", err)
			continue
		}
		sections = appendFileSection(sections, rel, string(textutil.NormalizeUTF8LF(data)))
	}
	if len(sections) == 0 {
		return "", nil
	}
	return strings.Join(sections, "\n"), nil
}

// appendFileSection appends the delimiter header and content for one file.
// The "\n" tail keeps a blank separator between sections after joining.
func appendFileSection(sections []string, rel, content string) []string {
	return append(sections, "---", "File: "+rel, "---", content, "\n")
}

// GenerateAllSummaries walks the project once, then processes candidate
// directories deepest-first so every directory aggregates from
// already-finalized child artifacts. Each included directory with content
// gets exactly one artifact at its mapped path; directories whose mapped
// paths collide share one merged artifact, listed once. The ordered list of
// written paths is returned.
//
// Per-file failures are logged and skipped; only the inability to write an
// artifact at all is fatal.
func (g *Generator) GenerateAllSummaries() ([]string, error) {
	g.log.Infow("starting summary generation", "root", g.root)

	dirs := g.collectDirectories()
	g.log.Infow("collected candidate directories", "count", len(dirs))

	order := make([]string, 0, len(dirs))
	for d := range dirs {
		order = append(order, d)
	}
	sort.Slice(order, func(i, j int) bool {
		di, dj := g.depth(order[i]), g.depth(order[j])
		if di != dj {
			return di > dj
		}
		return order[i] < order[j]
	})

	children := g.childIndex(dirs)
	artifacts := make(map[string]string, len(dirs))
	// folded records, per output artifact, the child artifacts it already
	// contains. Directories whose mapped paths collide (".github" next to
	// "github") share one entry, so the second writer merges instead of
	// overwriting and never folds the same child twice.
	folded := make(map[string]map[string]bool, len(dirs))
	var written []string

	for _, dir := range order {
		ap := filepath.Join(g.mappedDir(dir), policy.ArtifactName)
		seen, merging := folded[ap]
		if seen == nil {
			seen = make(map[string]bool, len(children[dir]))
		}

		local, err := g.GenerateDirectorySummary(dir)
		if err != nil {
			g.log.Warnw("skipping unreadable directory", "dir", dir, "error", err)
			local = ""
		}

		var parts []string
		for _, child := range children[dir] {
			childAP, ok := artifacts[child]
			if !ok || seen[childAP] {
				continue // no artifact, or a colliding sibling already folded it
			}
			seen[childAP] = true
			data, err := os.ReadFile(childAP)
			if err != nil {
				g.log.Warnw("cannot read back child artifact", "path", childAP, "error", err)
				continue
			}
			parts = append(parts, string(data))
		}
		if local != "" {
			parts = append(parts, local)
		}
		if len(parts) == 0 {
			if merging {
				artifacts[dir] = ap
			}
			continue
		}

		if merging {
			prev, err := os.ReadFile(ap)
			if err != nil {
				return written, err
			}
			parts = append([]string{string(prev)}, parts...)
			g.log.Warnw("mapped artifact collision, merging", "dir", dir, "artifact", ap)
		} else if err := os.MkdirAll(filepath.Dir(ap), 0o755); err != nil {
			return written, err
		}
		if err := os.WriteFile(ap, []byte(strings.Join(parts, "\n")), 0o644); err != nil {
			return written, err
		}
		artifacts[dir] = ap
		folded[ap] = seen
		if !merging {
			written = append(written, ap)
		}
		g.log.Debugw("wrote summary", "dir", dir, "artifact", ap)
	}

	g.log.Infow("summary generation complete", "artifacts", len(written))
	return written, nil
}

// collectDirectories performs the one-time scan: every directory holding an
// included file plus all of its included ancestors up to the root. Excluded
// directories are pruned during the walk, except .github, which must stay
// traversable so workflow directories remain reachable.
func (g *Generator) collectDirectories() map[string]struct{} {
	dirs := make(map[string]struct{})
	_ = filepath.WalkDir(g.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			g.log.Warnw("walk error", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			if path != g.root && !g.pol.ShouldIncludeDir(path) && d.Name() != ".github" {
				return filepath.SkipDir
			}
			return nil
		}
		if !g.pol.ShouldIncludeFile(path) {
			return nil
		}
		for p := filepath.Dir(path); ; p = filepath.Dir(p) {
			if g.pol.ShouldIncludeDir(p) {
				dirs[p] = struct{}{}
			}
			if p == g.root {
				break
			}
		}
		return nil
	})
	return dirs
}

// childIndex maps every candidate directory to the candidates whose nearest
// included ancestor it is, sorted for deterministic aggregation order.
func (g *Generator) childIndex(dirs map[string]struct{}) map[string][]string {
	children := make(map[string][]string, len(dirs))
	for d := range dirs {
		if d == g.root {
			continue
		}
		p := filepath.Dir(d)
		for p != g.root {
			if _, ok := dirs[p]; ok {
				break
			}
			p = filepath.Dir(p)
		}
		children[p] = append(children[p], d)
	}
	for _, c := range children {
		sort.Strings(c)
	}
	return children
}

func (g *Generator) depth(dir string) int {
	rel, _ := g.pol.Rel(dir)
	if rel == "." {
		return 0
	}
	return 1 + strings.Count(rel, "/")
}

// mappedDir returns the display-safe output directory for dir.
func (g *Generator) mappedDir(dir string) string {
	rel, ok := g.pol.Rel(dir)
	if !ok || rel == "." {
		return g.root
	}
	return filepath.Join(g.root, pathmap.Map(filepath.FromSlash(rel)))
}
