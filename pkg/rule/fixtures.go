package rule

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/praetorian-inc/uaparser/pkg/types"
)

// Fixture is one expected classification from a uap-core style test_cases
// file. Which fields are meaningful depends on Category.
type Fixture struct {
	Category   types.Category
	UserAgent  string
	Family     string
	Major      string
	Minor      string
	Patch      string
	PatchMinor string
	Brand      string
	Model      string
}

// LoadFixtures parses a test_cases YAML document for category c.
func (l *Loader) LoadFixtures(data []byte, c types.Category) ([]Fixture, error) {
	var doc yamlFixtureFile
	if err := decodeStrict(data, &doc); err != nil {
		return nil, err
	}

	out := make([]Fixture, 0, len(doc.TestCases))
	for _, tc := range doc.TestCases {
		out = append(out, Fixture{
			Category:   c,
			UserAgent:  tc.UserAgent,
			Family:     tc.Family,
			Major:      tc.Major,
			Minor:      tc.Minor,
			Patch:      tc.Patch,
			PatchMinor: tc.PatchMinor,
			Brand:      tc.Brand,
			Model:      tc.Model,
		})
	}
	return out, nil
}

// LoadFixtureFile loads fixtures for category c from a YAML file path.
func (l *Loader) LoadFixtureFile(path string, c types.Category) ([]Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return l.LoadFixtures(data, c)
}

// LoadBuiltinFixtures loads the fixtures shipped with the built-in catalogue.
func (l *Loader) LoadBuiltinFixtures(c types.Category) ([]Fixture, error) {
	p := fixturePath(c)
	data, err := fs.ReadFile(l.fs, p)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	fixtures, err := l.LoadFixtures(data, c)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", p, err)
	}
	return fixtures, nil
}

// Mismatches compares the fixture with a classification and describes every
// field that differs. An empty result means the fixture passed.
func (f Fixture) Mismatches(ua types.UserAgent) []string {
	var out []string
	check := func(field, want, got string) {
		if want != got {
			out = append(out, fmt.Sprintf("%s %s: want %q, got %q", f.Category, field, want, got))
		}
	}

	switch f.Category {
	case types.CategoryBrowser:
		check("family", f.Family, ua.Browser.Family)
		check("major", f.Major, ua.Browser.Major)
		check("minor", f.Minor, ua.Browser.Minor)
		check("patch", f.Patch, ua.Browser.Patch)
	case types.CategoryOS:
		check("family", f.Family, ua.OS.Family)
		check("major", f.Major, ua.OS.Major)
		check("minor", f.Minor, ua.OS.Minor)
		check("patch", f.Patch, ua.OS.Patch)
		check("patch_minor", f.PatchMinor, ua.OS.PatchMinor)
	case types.CategoryDevice:
		check("family", f.Family, ua.Device.Family)
		check("brand", f.Brand, ua.Device.Brand)
		check("model", f.Model, ua.Device.Model)
	}
	return out
}
