package config

import (
	"os"
	"path/filepath"
)

const starterConfig = `# treesum configuration

# Summary generation settings
summary:
  # Maximum file size in KB to include
  max_file_size_kb: 1000

  # Extensions that participate in directory summaries
  # include_extensions:
  #   - ".go"
  #   - ".py"
  #   - ".md"

  # Additional exclude patterns beyond .treesumignore
  # (generally you should use .treesumignore instead)
  # exclude_patterns:
  #   - "some_specific_file.txt"

  # Directory names skipped entirely
  # exclude_directories:
  #   - "node_modules"
`

const starterIgnore = `# treesum ignore file
# Lines starting with # are comments
# Patterns use gitignore-style matching:
#   *  - matches any sequence of characters except /
#   ?  - matches any single character except /
#   ** - matches any sequence of characters including /
#   /  at the end of a pattern - directories only

# Version control
.git/

# Python
__pycache__/
*.pyc
.pytest_cache/

# Virtual environments
.env
.venv
venv/

# IDE files
.idea/
.vscode/
*.swp

# Logs and databases
*.log
*.sqlite

# OS specific
.DS_Store
Thumbs.db
`

// WriteStarterFiles creates a default .treesum.yml and .treesumignore under
// root and returns the created paths. Existing files are left untouched.
func WriteStarterFiles(root string) ([]string, error) {
	var created []string
	for _, f := range []struct{ name, body string }{
		{FileName, starterConfig},
		{IgnoreFileName, starterIgnore},
	} {
		path := filepath.Join(root, f.name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte(f.body), 0o644); err != nil {
			return created, err
		}
		created = append(created, path)
	}
	return created, nil
}
