package setting

import (
	"os"
	"strings"
)

// FileChecker reads the mock-location allowance from a flag file, the
// daemon's stand-in for the host's developer option. A missing or empty
// file, or one whose trimmed content is "0", means disabled; any other
// content means enabled. This mirrors the legacy allow-mock-locations
// convention where any non-zero value grants the allowance.
type FileChecker struct {
	path string
}

// NewFileChecker returns a checker reading the flag file at path.
func NewFileChecker(path string) *FileChecker {
	return &FileChecker{path: path}
}

func (c *FileChecker) Enabled() bool {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		return false
	}
	content := strings.TrimSpace(string(raw))
	return content != "" && content != "0"
}
