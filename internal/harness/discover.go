package harness

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScenarioNotFoundError is returned when a scenario path does not exist.
type ScenarioNotFoundError struct {
	Path string
}

// Error implements the error interface.
func (e *ScenarioNotFoundError) Error() string {
	return fmt.Sprintf("scenario path %q does not exist", e.Path)
}

// FindScenarios returns the scenario files under path, sorted.
//
// path may be a single file or a directory, which is walked recursively
// for .yaml and .yml files. A non-empty filter is a filepath.Match glob
// applied to each file's base name without extension.
func FindScenarios(path, filter string) ([]string, error) {
	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter %q: %w", filter, err)
		}
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &ScenarioNotFoundError{Path: path}
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(p)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			stem := strings.TrimSuffix(filepath.Base(p), ext)
			if ok, _ := filepath.Match(filter, stem); !ok {
				return nil
			}
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", path, err)
	}

	sort.Strings(files)
	return files, nil
}
