package catalog

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed content
var contentFS embed.FS

const manifestFile = "catalog.yaml"

type manifestDoc struct {
	Version string   `yaml:"version"`
	Streams []Stream `yaml:"streams"`
}

type streamDoc struct {
	Stream    StreamID        `yaml:"stream"`
	Questions []Question      `yaml:"questions"`
	Courses   []CourseProfile `yaml:"courses"`
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the catalog built from the embedded content. It is
// loaded once per process.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(contentFS, "content")
		if err != nil {
			defaultErr = fmt.Errorf("open embedded content: %w", err)
			return
		}
		defaultCat, defaultErr = Load(sub)
	})
	return defaultCat, defaultErr
}

// LoadDir loads a catalog from a content directory on disk.
func LoadDir(dir string) (*Catalog, error) {
	return Load(os.DirFS(dir))
}

// Load reads catalog.yaml and streams/*.yaml from fsys, validates every
// document against its schema and the content rules, and builds the
// Catalog. Any problem fails the whole load.
func Load(fsys fs.FS) (*Catalog, error) {
	var manifest manifestDoc
	if err := decodeFile(fsys, manifestFile, schemaManifest, &manifest); err != nil {
		return nil, err
	}

	files, err := fs.Glob(fsys, "streams/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("list stream files: %w", err)
	}

	var (
		questions []Question
		courses   []CourseProfile
	)
	for _, name := range files {
		var doc streamDoc
		if err := decodeFile(fsys, name, schemaStream, &doc); err != nil {
			return nil, err
		}
		for _, q := range doc.Questions {
			q.Stream = doc.Stream
			questions = append(questions, q)
		}
		for _, cp := range doc.Courses {
			cp.Stream = doc.Stream
			courses = append(courses, cp)
		}
	}

	c, err := New(manifest.Version, manifest.Streams, questions, courses)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return c, nil
}

// decodeFile validates a YAML file against a schema, then decodes it into v.
func decodeFile(fsys fs.FS, name, schema string, v any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%s is empty", name)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	if err := validateDocument(schema, doc); err != nil {
		return fmt.Errorf("%s: %w", path.Base(name), err)
	}

	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}
