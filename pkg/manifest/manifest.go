// Package manifest reads package.json files.
//
// Dependency mappings keep their document order. The crawler's output order
// and the order of reported diagnostics both follow declaration order, so a
// plain map[string]string is not enough here; parsing goes through gjson,
// whose object iteration walks keys in the order they appear in the file.
package manifest

import (
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"

	"github.com/matzehuels/renoma/pkg/errors"
)

// FileName is the manifest file name inside every package directory.
const FileName = "package.json"

// Dependency is one declared dependency.
type Dependency struct {
	Name string `json:"name"`
	Spec string `json:"spec"` // version specifier as written, e.g. "^1.0.0" or "workspace:*"
}

// Dependencies is an ordered dependency mapping.
type Dependencies []Dependency

// Names returns the dependency names in declaration order.
func (d Dependencies) Names() []string {
	names := make([]string, len(d))
	for i, dep := range d {
		names[i] = dep.Name
	}
	return names
}

// Get returns the specifier declared for name.
func (d Dependencies) Get(name string) (string, bool) {
	for _, dep := range d {
		if dep.Name == name {
			return dep.Spec, true
		}
	}
	return "", false
}

// Manifest is the parsed form of a package.json file.
type Manifest struct {
	Name             string
	Version          string
	Dependencies     Dependencies
	DevDependencies  Dependencies
	PeerDependencies Dependencies

	// Path is the file the manifest was read from. Empty for Parse.
	Path string
}

// Dir returns the package directory, or "" when the manifest was not read
// from disk.
func (m *Manifest) Dir() string {
	if m.Path == "" {
		return ""
	}
	return filepath.Dir(m.Path)
}

// Read parses the manifest at path. Every call re-reads the file.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeManifestNotFound, err, "read %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", path)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", path)
	}
	m.Path = path
	return m, nil
}

// Parse decodes manifest JSON. The document must be a JSON object; missing
// fields decode as empty values.
func Parse(data []byte) (*Manifest, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "invalid JSON")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "manifest must be a JSON object")
	}

	return &Manifest{
		Name:             stringField(doc, "name"),
		Version:          stringField(doc, "version"),
		Dependencies:     dependencyField(doc, "dependencies"),
		DevDependencies:  dependencyField(doc, "devDependencies"),
		PeerDependencies: dependencyField(doc, "peerDependencies"),
	}, nil
}

func stringField(doc gjson.Result, key string) string {
	v := doc.Get(key)
	if v.Type != gjson.String {
		return ""
	}
	return v.Str
}

// dependencyField reads an object field as ordered (name, spec) pairs.
// A key repeated in the document keeps its first position and its last
// value, which is what JSON.parse produces.
func dependencyField(doc gjson.Result, key string) Dependencies {
	obj := doc.Get(key)
	if !obj.IsObject() {
		return nil
	}

	var deps Dependencies
	index := make(map[string]int)
	obj.ForEach(func(k, v gjson.Result) bool {
		name := k.String()
		spec := v.String()
		if i, ok := index[name]; ok {
			deps[i].Spec = spec
			return true
		}
		index[name] = len(deps)
		deps = append(deps, Dependency{Name: name, Spec: spec})
		return true
	})
	return deps
}
