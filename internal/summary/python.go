package summary

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"treesum/internal/pysig"
	"treesum/internal/textutil"
)

// PythonSummaryName is the conventional output path for the structural
// document, relative to the project root. Writing it is the caller's job.
const PythonSummaryName = "PYTHON_SUMMARY.md"

// GeneratePythonSummary extracts signatures from every qualifying Python
// file and renders one document with a section per file, signatures in
// declaration order and indentation reflecting nesting. Files that fail to
// parse are omitted with a warning; a single bad file never aborts the
// summary.
func (g *Generator) GeneratePythonSummary() (string, error) {
	files := g.matchingFiles(func(rel string) bool {
		return strings.HasSuffix(rel, ".py")
	})

	var b strings.Builder
	b.WriteString("# Python Project Structure\n")

	for _, rel := range files {
		data, err := os.ReadFile(filepath.Join(g.root, filepath.FromSlash(rel)))
		if err != nil {
			g.log.Warnw("skipping unreadable python file", "path", rel, "error", err)
			continue
		}
		sigs, err := pysig.ExtractSignatures(string(textutil.NormalizeUTF8LF(data)))
		if err != nil {
			g.log.Warnw("skipping unparsable python file", "path", rel, "error", err)
			continue
		}
		if len(sigs) == 0 {
			g.log.Debugw("no declarations", "path", rel)
			continue
		}
		b.WriteString("\n## ")
		b.WriteString(rel)
		b.WriteString("\n\n```python\n")
		b.WriteString(pysig.Render(sigs))
		b.WriteString("```\n")
	}
	return b.String(), nil
}

// matchingFiles walks the tree once and returns the sorted project-relative
// paths of included files whose relative path satisfies match. The same
// pruning rules as summary generation apply.
func (g *Generator) matchingFiles(match func(rel string) bool) []string {
	var files []string
	_ = filepath.WalkDir(g.root, func(path string, d os.DirEntry, err error) error {
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
		rel, ok := g.pol.Rel(path)
		if !ok || !match(rel) || !g.pol.ShouldIncludeFile(path) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	// WalkDir is lexical already; keep the guarantee explicit.
	sort.Strings(files)
	return files
}
