// Package project reads and updates the user's project: its package.json
// manifest, its package manager and the initialization script.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// ManifestFileName is the project manifest read from the project directory.
const ManifestFileName = "package.json"

var (
	// ErrManifestUnreadable is returned when package.json is missing or not valid JSON.
	ErrManifestUnreadable = errors.New("Could not read package.json. Make sure you're in the root directory of your project.")
	// ErrManifestMissingName is returned when package.json has no name.
	ErrManifestMissingName = errors.New("package.json must contain a name field")
	// ErrManifestMissingPublisher is returned when package.json has no publisher.
	ErrManifestMissingPublisher = errors.New("package.json must contain a publisher field")
)

// Manifest holds the package.json fields the CLI uses.
type Manifest struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
	Publisher   string `json:"publisher,omitempty"`
}

// RequirePublisher fails when the manifest names no publisher.
func (m *Manifest) RequirePublisher() error {
	if m.Publisher == "" {
		return ErrManifestMissingPublisher
	}
	return nil
}

// ReadManifest reads package.json from dir and requires a name.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFileName))
	if err != nil {
		return nil, ErrManifestUnreadable
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, ErrManifestUnreadable
	}
	if m.Name == "" {
		return nil, ErrManifestMissingName
	}
	return &m, nil
}

// DefaultPublisher returns the publisher named in dir's package.json, or ""
// when there is none.
func DefaultPublisher(dir string) string {
	m, err := ReadManifest(dir)
	if err != nil {
		return ""
	}
	return m.Publisher
}

// EnsurePublisher sets the publisher field of dir's package.json when it is
// absent or empty. It reports whether the file was changed. A missing
// package.json is left alone. Key order is kept and the file is rewritten
// with two-space indentation.
func EnsurePublisher(dir, publisher string) (bool, error) {
	path := filepath.Join(dir, ManifestFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", ManifestFileName, err)
	}

	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return false, fmt.Errorf("parse %s: top-level value is not a JSON object", ManifestFileName)
	}
	if existing := gjson.GetBytes(data, "publisher"); existing.Type == gjson.String && existing.Str != "" {
		return false, nil
	}

	updated, err := sjson.SetBytes(data, "publisher", publisher)
	if err != nil {
		return false, fmt.Errorf("set publisher in %s: %w", ManifestFileName, err)
	}
	updated = pretty.PrettyOptions(updated, manifestStyle)

	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, updated, info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("write %s: %w", ManifestFileName, err)
	}
	return true, nil
}

// manifestStyle matches npm's formatting: two-space indent, one array
// element per line, keys in file order.
var manifestStyle = &pretty.Options{Indent: "  "}
