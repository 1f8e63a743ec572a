// Package policy decides which files and directories participate in
// summary generation. Decisions are pure functions of the resolved
// configuration plus filesystem metadata; the policy holds no run state.
//
// Exclude-pattern semantics (pinned here, tested in policy_test.go):
//   - a pattern without '/' matches whole path components, either exactly
//     or as a single-component glob ("*.log"); it never matches substrings
//   - a pattern containing '/' or '**' matches against the project-relative
//     path, gitignore style
//   - a trailing '/' restricts the pattern to directories, which also
//     excludes everything beneath them
package policy

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"treesum/internal/config"
)

// ArtifactName is the file name used for directory summary artifacts.
// Artifacts are never re-ingested, so repeated runs stay byte-identical.
const ArtifactName = "SUMMARY"

// sniffLen is how many leading bytes are examined for the binary heuristic.
const sniffLen = 1024

type pattern struct {
	raw      string
	dirOnly  bool
	pathwise bool
}

// Policy evaluates inclusion rules for one project root.
type Policy struct {
	root        string
	exts        map[string]struct{}
	patterns    []pattern
	excludeDirs map[string]struct{}
	maxBytes    int64
	log         *zap.SugaredLogger
}

// New builds a Policy for the project rooted at root. Invalid patterns are
// logged and dropped rather than failing the run.
func New(root string, cfg config.Summary, log *zap.SugaredLogger) (*Policy, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	p := &Policy{
		root:        abs,
		exts:        make(map[string]struct{}, len(cfg.IncludeExtensions)),
		excludeDirs: make(map[string]struct{}, len(cfg.ExcludeDirectories)),
		maxBytes:    cfg.MaxFileSizeKB * 1024,
		log:         log,
	}
	for _, e := range cfg.IncludeExtensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		p.exts[e] = struct{}{}
	}
	for _, d := range cfg.ExcludeDirectories {
		if d = strings.TrimSpace(d); d != "" {
			p.excludeDirs[d] = struct{}{}
		}
	}
	for _, raw := range cfg.ExcludePatterns {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		if strings.HasPrefix(raw, "!") {
			log.Warnw("dropping unsupported negation pattern", "pattern", raw)
			continue
		}
		pat := pattern{raw: raw}
		if strings.HasSuffix(raw, "/") {
			pat.dirOnly = true
			pat.raw = strings.TrimSuffix(raw, "/")
		}
		pat.raw = strings.TrimPrefix(pat.raw, "/")
		pat.pathwise = strings.Contains(pat.raw, "/") || strings.Contains(pat.raw, "**")
		if !doublestar.ValidatePattern(pat.raw) {
			log.Warnw("dropping invalid exclude pattern", "pattern", raw)
			continue
		}
		p.patterns = append(p.patterns, pat)
	}
	return p, nil
}

// Root returns the absolute project root the policy was built for.
func (p *Policy) Root() string { return p.root }

// Rel converts path to a slash-separated project-relative path. ok is false
// when path lies outside the root.
func (p *Policy) Rel(path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(p.root, abs)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}

// ShouldIncludeFile reports whether the file at path participates in
// summaries: allow-listed extension, no excluded component, no matching
// exclude pattern, size within the threshold (boundary inclusive) and not
// binary-looking.
func (p *Policy) ShouldIncludeFile(path string) bool {
	rel, ok := p.Rel(path)
	if !ok || rel == "." {
		return false
	}
	base := filepath.Base(rel)
	if base == ArtifactName {
		return false
	}
	if len(p.exts) > 0 {
		if _, ok := p.exts[strings.ToLower(filepath.Ext(base))]; !ok {
			return false
		}
	}
	comps := strings.Split(rel, "/")
	for _, c := range comps[:len(comps)-1] {
		if _, bad := p.excludeDirs[c]; bad {
			return false
		}
	}
	if p.excludedByPattern(rel, false) {
		return false
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		p.log.Debugw("cannot stat candidate file", "path", path, "error", err)
		return false
	}
	if p.maxBytes > 0 && info.Size() > p.maxBytes {
		p.log.Debugw("excluding large file", "path", path, "bytes", info.Size())
		return false
	}
	if p.looksBinary(path) {
		p.log.Debugw("excluding binary file", "path", path)
		return false
	}
	return true
}

// ShouldIncludeDir reports whether a directory may carry a summary
// artifact. Workflow directories under .github are always eligible even
// though .github itself is hidden.
func (p *Policy) ShouldIncludeDir(path string) bool {
	rel, ok := p.Rel(path)
	if !ok {
		return false
	}
	if rel == "." {
		return true
	}
	if strings.Contains("/"+rel+"/", "/.github/workflows/") {
		return true
	}
	for _, c := range strings.Split(rel, "/") {
		if _, bad := p.excludeDirs[c]; bad {
			return false
		}
	}
	return !p.excludedByPattern(rel, true)
}

// excludedByPattern applies the pinned pattern semantics to rel.
func (p *Policy) excludedByPattern(rel string, isDir bool) bool {
	comps := strings.Split(rel, "/")

	// Ancestor directory paths, shortest first, excluding rel itself.
	prefixes := make([]string, 0, len(comps))
	for i := 1; i < len(comps); i++ {
		prefixes = append(prefixes, strings.Join(comps[:i], "/"))
	}

	for _, pat := range p.patterns {
		if pat.pathwise {
			targets := prefixes
			if isDir || !pat.dirOnly {
				targets = append(targets, rel)
			}
			for _, t := range targets {
				if ok, _ := doublestar.Match(pat.raw, t); ok {
					return true
				}
			}
			continue
		}
		names := comps
		if !isDir && pat.dirOnly {
			names = comps[:len(comps)-1]
		}
		for _, name := range names {
			if name == pat.raw {
				return true
			}
			if ok, _ := doublestar.Match(pat.raw, name); ok {
				return true
			}
		}
	}
	return false
}

// looksBinary reports whether the file's leading bytes contain a NUL,
// the same cheap heuristic the summarizer has always used.
func (p *Policy) looksBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		// Leave the final decision to the reader; an unreadable file is
		// skipped at concatenation time with a warning.
		return false
	}
	defer f.Close()
	buf := make([]byte, sniffLen)
	n, _ := f.Read(buf)
	return bytes.IndexByte(buf[:n], 0) >= 0
}
