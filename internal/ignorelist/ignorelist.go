package ignorelist

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// New loads one pattern per line from path. Blank lines and lines starting
// with '#' are skipped. An empty path yields an empty list.
func New(path string) (*IgnoreList, error) {
	l := IgnoreList{}
	if path == "" {
		return &l, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	//goland:noinspection GoUnhandledErrorResult
	defer f.Close()
	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		pattern := strings.TrimSpace(scanner.Text())
		if pattern == "" || strings.HasPrefix(pattern, "#") {
			continue
		}
		l.patterns = append(l.patterns, filepath.ToSlash(pattern))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore list: %w", err)
	}
	logrus.Infof("Loaded %d ignore patterns", len(l.patterns))
	return &l, nil
}

// FromPatterns builds a list without reading a file.
func FromPatterns(patterns ...string) *IgnoreList {
	l := IgnoreList{}
	for _, p := range patterns {
		if p != "" {
			l.patterns = append(l.patterns, filepath.ToSlash(p))
		}
	}
	return &l
}

// IgnoreList matches paths that contain any of its patterns as a substring.
type IgnoreList struct {
	patterns []string
}

func (l *IgnoreList) Contains(path string) bool {
	if l == nil {
		return false
	}
	path = filepath.ToSlash(path)
	for _, pattern := range l.patterns {
		if strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}

func (l *IgnoreList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.patterns)
}
