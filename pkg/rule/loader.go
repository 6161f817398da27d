package rule

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/praetorian-inc/uaparser/pkg/types"
)

var (
	// ErrUnknownField is returned when a catalogue record carries a key the
	// loader does not know.
	ErrUnknownField = errors.New("unknown field")

	// ErrInvalidFlag is returned for a regex_flag other than "i".
	ErrInvalidFlag = errors.New("invalid regex_flag")
)

// Loader handles loading catalogues from uap-core style YAML files.
type Loader struct {
	fs fs.FS // embedded filesystem for the built-in catalogue
}

// NewLoader creates a loader with the built-in catalogue from the embedded
// filesystem.
func NewLoader() *Loader {
	return &Loader{
		fs: builtinFS,
	}
}

// NewLoaderWithFS creates a loader with a custom filesystem. The filesystem
// must follow the built-in layout: regexes/regexes.yaml and
// regexes/tests/*.yaml.
func NewLoaderWithFS(fsys fs.FS) *Loader {
	return &Loader{
		fs: fsys,
	}
}

// LoadCatalogue parses a catalogue from YAML bytes. Every rule is checked for
// required fields; the first invalid rule fails the whole load. Patterns are
// not compiled here: engine.Open rejects a bad one, and ValidateCatalogue
// reports them all up front.
func (l *Loader) LoadCatalogue(data []byte) (*types.Catalogue, error) {
	var doc yamlCatalogue
	if err := decodeStrict(data, &doc); err != nil {
		return nil, err
	}

	cat := &types.Catalogue{
		Browser: make([]*types.Rule, 0, len(doc.UserAgentParsers)),
		OS:      make([]*types.Rule, 0, len(doc.OSParsers)),
		Device:  make([]*types.Rule, 0, len(doc.DeviceParsers)),
	}
	for i, yr := range doc.UserAgentParsers {
		r, err := convertAgentRule(yr, i+1)
		if err != nil {
			return nil, err
		}
		cat.Browser = append(cat.Browser, r)
	}
	for i, yr := range doc.OSParsers {
		r, err := convertOSRule(yr, i+1)
		if err != nil {
			return nil, err
		}
		cat.OS = append(cat.OS, r)
	}
	for i, yr := range doc.DeviceParsers {
		r, err := convertDeviceRule(yr, i+1)
		if err != nil {
			return nil, err
		}
		cat.Device = append(cat.Device, r)
	}

	if cat.Len() == 0 {
		return nil, fmt.Errorf("no rules found in YAML")
	}
	for _, c := range types.Categories {
		for _, r := range cat.Rules(c) {
			if err := checkRule(r); err != nil {
				return nil, err
			}
		}
	}
	return cat, nil
}

// LoadCatalogueFile loads a catalogue from a YAML file path.
func (l *Loader) LoadCatalogueFile(path string) (*types.Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	cat, err := l.LoadCatalogue(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

// LoadBuiltinCatalogue loads the catalogue from the loader's filesystem.
func (l *Loader) LoadBuiltinCatalogue() (*types.Catalogue, error) {
	data, err := fs.ReadFile(l.fs, builtinCatalogue)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", builtinCatalogue, err)
	}
	cat, err := l.LoadCatalogue(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", builtinCatalogue, err)
	}
	return cat, nil
}

// decodeStrict unmarshals YAML rejecting keys the target does not declare.
func decodeStrict(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty YAML document")
		}
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) && isUnknownField(typeErr) {
			return fmt.Errorf("%w: %s", ErrUnknownField, strings.Join(typeErr.Errors, "; "))
		}
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

func isUnknownField(err *yaml.TypeError) bool {
	for _, msg := range err.Errors {
		if strings.Contains(msg, "not found in type") {
			return true
		}
	}
	return false
}

func parseFlag(flag, id string) (bool, error) {
	switch flag {
	case "":
		return false, nil
	case "i":
		return true, nil
	}
	return false, fmt.Errorf("rule %s: %w %q (only \"i\" is supported)", id, ErrInvalidFlag, flag)
}

func ruleID(c types.Category, n int) string {
	return fmt.Sprintf("%s.%d", c, n)
}

// convertAgentRule converts a user_agent_parsers entry to types.Rule.
func convertAgentRule(yr yamlAgentRule, n int) (*types.Rule, error) {
	id := ruleID(types.CategoryBrowser, n)
	ci, err := parseFlag(yr.RegexFlag, id)
	if err != nil {
		return nil, err
	}
	r := &types.Rule{
		ID:                id,
		Category:          types.CategoryBrowser,
		Index:             n,
		Pattern:           yr.Regex,
		CaseInsensitive:   ci,
		FamilyReplacement: yr.FamilyReplacement,
		MajorReplacement:  yr.V1Replacement,
		MinorReplacement:  yr.V2Replacement,
		PatchReplacement:  yr.V3Replacement,
	}
	r.StructuralID = r.ComputeStructuralID()
	return r, nil
}

// convertOSRule converts an os_parsers entry to types.Rule.
func convertOSRule(yr yamlOSRule, n int) (*types.Rule, error) {
	id := ruleID(types.CategoryOS, n)
	ci, err := parseFlag(yr.RegexFlag, id)
	if err != nil {
		return nil, err
	}
	r := &types.Rule{
		ID:                    id,
		Category:              types.CategoryOS,
		Index:                 n,
		Pattern:               yr.Regex,
		CaseInsensitive:       ci,
		FamilyReplacement:     yr.OSReplacement,
		MajorReplacement:      yr.OSV1Replacement,
		MinorReplacement:      yr.OSV2Replacement,
		PatchReplacement:      yr.OSV3Replacement,
		PatchMinorReplacement: yr.OSV4Replacement,
	}
	r.StructuralID = r.ComputeStructuralID()
	return r, nil
}

// convertDeviceRule converts a device_parsers entry to types.Rule.
func convertDeviceRule(yr yamlDeviceRule, n int) (*types.Rule, error) {
	id := ruleID(types.CategoryDevice, n)
	ci, err := parseFlag(yr.RegexFlag, id)
	if err != nil {
		return nil, err
	}
	r := &types.Rule{
		ID:                id,
		Category:          types.CategoryDevice,
		Index:             n,
		Pattern:           yr.Regex,
		CaseInsensitive:   ci,
		FamilyReplacement: yr.DeviceReplacement,
		BrandReplacement:  yr.BrandReplacement,
		ModelReplacement:  yr.ModelReplacement,
	}
	r.StructuralID = r.ComputeStructuralID()
	return r, nil
}

// fixturePath returns the path of the built-in fixture file for category c.
func fixturePath(c types.Category) string {
	return path.Join(builtinFixtures, "test_"+string(c)+".yaml")
}
