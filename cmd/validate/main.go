package main

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/calebmoran/questforge/pkg/catalog"
)

// Validates the item and enemy catalog files under a data directory.
// Usage: validate [data_dir]
func main() {
	dataDir := "./data"
	if len(os.Args) > 1 {
		dataDir = os.Args[1]
	}

	v := &CatalogValidator{}
	checked, err := v.validateDir(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}
	if len(v.errors) > 0 {
		fmt.Fprintf(os.Stderr, "Validation errors:\n%s\n", strings.Join(v.errors, "\n"))
		os.Exit(1)
	}

	fmt.Printf("Catalog is valid (%d files checked).\n", checked)
}

type CatalogValidator struct {
	errors []string
}

var validIDPattern = regexp.MustCompile(`^[a-z0-9]+(_[a-z0-9]+)*$`)

func (v *CatalogValidator) validateDir(dataDir string) (int, error) {
	checked := 0
	for _, sub := range []string{"items", "enemies"} {
		root := filepath.Join(dataDir, sub)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
				return nil
			}
			checked++
			v.validateFile(sub, path)
			return nil
		})
		if err != nil {
			return checked, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}
	return checked, nil
}

func (v *CatalogValidator) validateFile(kind, path string) {
	id := strings.TrimSuffix(filepath.Base(path), ".json")
	if !validIDPattern.MatchString(id) {
		v.errorf(path, "filename must be lowercase snake_case (e.g. iron_sword.json)")
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		v.errorf(path, "failed to read: %v", err)
		return
	}

	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()

	switch kind {
	case "items":
		var item catalog.Item
		if err := decoder.Decode(&item); err != nil {
			v.errorf(path, "failed strict JSON unmarshaling: %v", err)
			return
		}
		item.ID = id
		if item.Name == "" {
			item.Name = catalog.DisplayName(id)
		}
		if err := item.Validate(); err != nil {
			v.errorf(path, "%v", err)
		}
	case "enemies":
		var enemy catalog.Enemy
		if err := decoder.Decode(&enemy); err != nil {
			v.errorf(path, "failed strict JSON unmarshaling: %v", err)
			return
		}
		enemy.ID = id
		if enemy.Name == "" {
			enemy.Name = catalog.DisplayName(id)
		}
		if err := enemy.Validate(); err != nil {
			v.errorf(path, "%v", err)
		}
	}
}

func (v *CatalogValidator) errorf(path, format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf("  %s: %s", path, fmt.Sprintf(format, args...)))
}
