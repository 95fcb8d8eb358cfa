package files

import (
	"fmt"
	"os"
	"path/filepath"
)

// ParseElementText parses serialized element text (frontmatter plus body)
// without touching the store. Backends use it to index content fetched from
// remote sources.
func ParseElementText(raw string) (*Element, error) {
	fm, content, err := splitFrontmatter(raw)
	if err != nil {
		return nil, err
	}
	el := &Element{Content: content}
	el.Name = fm.Name
	el.Version = fm.Version
	el.Description = fm.Description
	el.Tags = fm.Tags
	return el, nil
}

// WriteRaw writes serialized element text verbatim to a store-relative path,
// holding the path lock and renaming into place so sync writes round-trip
// remote bytes without reformatting.
func WriteRaw(path, content string) error {
	release, err := lockPath(path)
	if err != nil {
		return err
	}
	defer release()

	absPath := filepath.Join(CurioDir, path)
	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory for element: %w", err)
	}

	tmp := absPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write element %s: %w", path, err)
	}
	if err := os.Rename(tmp, absPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write element %s: %w", path, err)
	}

	return nil
}

// ReadRaw returns the serialized element text at a store-relative path.
func ReadRaw(path string) (string, error) {
	raw, err := os.ReadFile(filepath.Join(CurioDir, path))
	if err != nil {
		return "", fmt.Errorf("failed to read element %s: %w", path, err)
	}
	return string(raw), nil
}
