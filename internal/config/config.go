// Package config resolves the summarizer configuration: built-in defaults,
// an optional .treesum.yml overlay, ignore-file patterns and environment
// overrides. The result is read-only for the duration of a generation run;
// concurrent runs construct independent copies instead of sharing state.
package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	// FileName is the per-project configuration overlay.
	FileName = ".treesum.yml"
	// IgnoreFileName holds gitignore-style exclude patterns. When absent,
	// .gitignore is consulted instead.
	IgnoreFileName = ".treesumignore"

	// EnvMaxFileSizeKB overrides summary.max_file_size_kb.
	EnvMaxFileSizeKB = "TREESUM_MAX_FILE_SIZE_KB"
	// EnvConfigPath points at an alternate configuration overlay. Relative
	// values are resolved against the project root.
	EnvConfigPath = "TREESUM_CONFIG"
)

// Summary is the resolved configuration for one generation run.
type Summary struct {
	IncludeExtensions  []string `yaml:"include_extensions"`
	ExcludePatterns    []string `yaml:"exclude_patterns"`
	ExcludeDirectories []string `yaml:"exclude_directories"`
	MaxFileSizeKB      int64    `yaml:"max_file_size_kb"`
}

type fileConfig struct {
	Summary Summary `yaml:"summary"`
}

// Default returns the built-in configuration. It must always be
// constructible; every other failure mode falls back to it.
func Default() Summary {
	return Summary{
		IncludeExtensions: []string{
			".go", ".py", ".js", ".jsx", ".ts", ".tsx",
			".css", ".html", ".md", ".rst", ".txt",
			".json", ".yaml", ".yml", ".toml", ".proto", ".sh",
		},
		ExcludePatterns: []string{".git/"},
		ExcludeDirectories: []string{
			".git", "node_modules", "__pycache__",
			".venv", "venv", "dist", "build",
			".idea", ".vscode", ".pytest_cache", ".mypy_cache",
		},
		MaxFileSizeKB: 1000,
	}
}

// Load resolves the configuration for a project rooted at root. Malformed
// or missing inputs are logged and degrade to defaults; Load itself never
// fails.
func Load(root string, log *zap.SugaredLogger) Summary {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	cfg := Default()

	// .env is optional; it only feeds the TREESUM_* overrides below.
	_ = godotenv.Load(filepath.Join(root, ".env"))

	path := filepath.Join(root, FileName)
	if alt := strings.TrimSpace(os.Getenv(EnvConfigPath)); alt != "" {
		if filepath.IsAbs(alt) {
			path = alt
		} else {
			path = filepath.Join(root, alt)
		}
	}
	if data, err := os.ReadFile(path); err == nil {
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			log.Warnw("malformed config, using defaults", "path", path, "error", err)
		} else {
			merge(&cfg, fc.Summary)
			log.Debugw("loaded configuration", "path", path)
		}
	} else {
		log.Debugw("no project config, using defaults", "path", path)
	}

	// Ignore-file patterns apply only when the config file did not pin
	// exclude_patterns itself.
	if len(cfg.ExcludePatterns) == 0 || equalStrings(cfg.ExcludePatterns, Default().ExcludePatterns) {
		if pats := readIgnorePatterns(root, log); len(pats) > 0 {
			cfg.ExcludePatterns = pats
		}
	}

	if raw := strings.TrimSpace(os.Getenv(EnvMaxFileSizeKB)); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v > 0 {
			cfg.MaxFileSizeKB = v
		} else {
			log.Warnw("ignoring invalid env override", "var", EnvMaxFileSizeKB, "value", raw)
		}
	}
	return cfg
}

// merge overlays non-empty user fields onto dst.
func merge(dst *Summary, user Summary) {
	if len(user.IncludeExtensions) > 0 {
		dst.IncludeExtensions = user.IncludeExtensions
	}
	if len(user.ExcludePatterns) > 0 {
		dst.ExcludePatterns = user.ExcludePatterns
	}
	if len(user.ExcludeDirectories) > 0 {
		dst.ExcludeDirectories = user.ExcludeDirectories
	}
	if user.MaxFileSizeKB > 0 {
		dst.MaxFileSizeKB = user.MaxFileSizeKB
	}
}

// readIgnorePatterns loads .treesumignore, falling back to .gitignore.
// Comment and blank lines are dropped; pattern order is preserved.
func readIgnorePatterns(root string, log *zap.SugaredLogger) []string {
	for _, name := range []string{IgnoreFileName, ".gitignore"} {
		path := filepath.Join(root, name)
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		var pats []string
		s := bufio.NewScanner(f)
		for s.Scan() {
			line := strings.TrimSpace(s.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			if strings.HasPrefix(line, "!") {
				log.Warnw("negation patterns are not supported, dropping", "path", path, "pattern", line)
				continue
			}
			pats = append(pats, line)
		}
		f.Close()
		if err := s.Err(); err != nil {
			log.Warnw("error reading ignore file", "path", path, "error", err)
			continue
		}
		log.Debugw("loaded ignore patterns", "path", path, "count", len(pats))
		return pats
	}
	return nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
