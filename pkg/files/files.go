package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/curio-cli/curio/pkg/models"
)

const (
	CurioDir    = ".curio"
	ElementsDir = "elements"
	ConfigFile  = "config.yaml"
)

// DefaultElementTypes are the element type directories created by init. The
// store itself accepts any type directory that exists.
var DefaultElementTypes = []string{"personas", "skills", "templates", "memories"}

// Element is a fully loaded local element: index metadata plus content.
type Element struct {
	models.IndexEntry
	Content string
}

// frontmatter is the yaml header at the top of every element file.
type frontmatter struct {
	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	Description string   `yaml:"description,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
}

// InitPortfolioStructure creates the .curio folder structure in the current
// directory, including a default type directory per element kind.
func InitPortfolioStructure() error {
	dirs := []string{
		CurioDir,
		filepath.Join(CurioDir, ElementsDir),
	}
	for _, t := range DefaultElementTypes {
		dirs = append(dirs, filepath.Join(CurioDir, ElementsDir, t))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// PortfolioExists reports whether the current directory holds a portfolio.
func PortfolioExists() bool {
	_, err := os.Stat(CurioDir)
	return err == nil
}

// ElementPath returns the store-relative path for an element key.
func ElementPath(key models.ElementKey) string {
	return filepath.Join(ElementsDir, key.Type, key.Name+".md")
}

// ReadElement reads an element by its store-relative path, parsing the yaml
// frontmatter into metadata.
func ReadElement(path string) (*Element, error) {
	absPath := filepath.Join(CurioDir, path)

	raw, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read element %s: %w", path, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat element %s: %w", path, err)
	}

	fm, content, err := splitFrontmatter(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse element %s: %w", path, err)
	}

	name := fm.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), ".md")
	}

	return &Element{
		IndexEntry: models.IndexEntry{
			Name:        models.NormalizeName(name),
			Type:        elementTypeFromPath(path),
			Path:        path,
			Version:     fm.Version,
			Description: fm.Description,
			Tags:        fm.Tags,
			Modified:    info.ModTime(),
		},
		Content: content,
	}, nil
}

// WriteElement serializes an element back to frontmatter plus content and
// writes it under the store. The write holds the element's path lock so a
// concurrent reader never observes a partially written file.
func WriteElement(el *Element) error {
	if el.Path == "" {
		el.Path = ElementPath(el.Key())
	}
	absPath := filepath.Join(CurioDir, el.Path)

	release, err := lockPath(el.Path)
	if err != nil {
		return err
	}
	defer release()

	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory for element: %w", err)
	}

	rendered, err := renderElement(el)
	if err != nil {
		return err
	}

	// Write to a sibling temp file and rename so a crash mid-write cannot
	// leave a truncated element behind.
	tmp := absPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(rendered), 0644); err != nil {
		return fmt.Errorf("failed to write element %s: %w", el.Path, err)
	}
	if err := os.Rename(tmp, absPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write element %s: %w", el.Path, err)
	}

	return nil
}

// DeleteElement removes an element file under the element's path lock.
func DeleteElement(path string) error {
	release, err := lockPath(path)
	if err != nil {
		return err
	}
	defer release()

	absPath := filepath.Join(CurioDir, path)
	if err := os.Remove(absPath); err != nil {
		return fmt.Errorf("failed to delete element %s: %w", path, err)
	}
	return nil
}

// ListElementTypes returns the element type directories present in the store.
func ListElementTypes() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(CurioDir, ElementsDir))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list element types: %w", err)
	}

	var types []string
	for _, entry := range entries {
		if entry.IsDir() {
			types = append(types, entry.Name())
		}
	}
	return types, nil
}

// ListElements returns the element filenames for one type, or for every type
// when elementType is empty.
func ListElements(elementType string) ([]string, error) {
	types := []string{elementType}
	if elementType == "" {
		var err error
		types, err = ListElementTypes()
		if err != nil {
			return nil, err
		}
	}

	var elements []string
	for _, t := range types {
		dir := filepath.Join(CurioDir, ElementsDir, t)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to list %s elements: %w", t, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".md") {
				elements = append(elements, filepath.Join(ElementsDir, t, entry.Name()))
			}
		}
	}

	return elements, nil
}

func elementTypeFromPath(path string) string {
	rel := strings.TrimPrefix(path, ElementsDir+string(os.PathSeparator))
	if idx := strings.IndexRune(rel, os.PathSeparator); idx > 0 {
		return rel[:idx]
	}
	return "unknown"
}

func splitFrontmatter(raw string) (frontmatter, string, error) {
	var fm frontmatter

	if !strings.HasPrefix(raw, "---\n") {
		return fm, raw, nil
	}

	rest := raw[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return fm, raw, nil
	}

	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return fm, "", fmt.Errorf("invalid frontmatter: %w", err)
	}

	content := rest[end+len("\n---"):]
	content = strings.TrimPrefix(content, "\n")
	return fm, content, nil
}

func renderElement(el *Element) (string, error) {
	fm := frontmatter{
		Name:        el.Name,
		Version:     el.Version,
		Description: el.Description,
		Tags:        el.Tags,
	}
	header, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("failed to marshal element frontmatter: %w", err)
	}
	return "---\n" + string(header) + "---\n" + el.Content, nil
}
