package summary

import (
	"os"
	"path/filepath"
	"strings"

	"treesum/internal/textutil"
)

// ReadmeSummaryName is the conventional output path for the README
// collation, relative to the project root.
const ReadmeSummaryName = "README_SUMMARY.md"

// GenerateReadmeSummary concatenates every included file whose name starts
// with "README" into one document with the usual delimiter headers. It is
// a thin convenience over the directory summary format.
func (g *Generator) GenerateReadmeSummary() (string, error) {
	files := g.matchingFiles(func(rel string) bool {
		base := strings.ToUpper(filepath.Base(rel))
		return strings.HasPrefix(base, "README")
	})

	var sections []string
	for _, rel := range files {
		data, err := os.ReadFile(filepath.Join(g.root, filepath.FromSlash(rel)))
		if err != nil {
			g.log.Warnw("skipping unreadable readme", "path", rel, "error", err)
			continue
		}
		sections = appendFileSection(sections, rel, string(textutil.NormalizeUTF8LF(data)))
	}
	if len(sections) == 0 {
		return "", nil
	}
	return strings.Join(sections, "\n"), nil
}
