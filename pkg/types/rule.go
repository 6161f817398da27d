package types

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// Category is one of the three independent classification dimensions.
type Category string

const (
	CategoryBrowser Category = "browser"
	CategoryOS      Category = "os"
	CategoryDevice  Category = "device"
)

// Categories lists every category in catalogue order.
var Categories = []Category{CategoryBrowser, CategoryOS, CategoryDevice}

// ParseCategory converts a string to a Category.
func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryBrowser, CategoryOS, CategoryDevice:
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q (want browser, os or device)", s)
}

// Rule is one catalogue entry: a pattern plus the replacement templates used
// to build an identity from its match. An empty replacement means none was
// declared.
type Rule struct {
	ID              string   // e.g., "browser.12"
	Category        Category // browser, os or device
	Index           int      // 1-based declaration index within the category
	Pattern         string   // regex pattern
	CaseInsensitive bool     // regex_flag: 'i'
	StructuralID    string   // SHA-1 of pattern (computed)

	FamilyReplacement     string // family_replacement, os_replacement, device_replacement
	MajorReplacement      string // v1_replacement, os_v1_replacement
	MinorReplacement      string // v2_replacement, os_v2_replacement
	PatchReplacement      string // v3_replacement, os_v3_replacement
	PatchMinorReplacement string // os_v4_replacement
	BrandReplacement      string // brand_replacement
	ModelReplacement      string // model_replacement
}

// ComputeStructuralID computes SHA-1 of the pattern and its case flag, so the
// same expression declared twice gets the same id.
func (r *Rule) ComputeStructuralID() string {
	h := sha1.New()
	h.Write([]byte(r.Pattern))
	if r.CaseInsensitive {
		h.Write([]byte{0, 'i'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Catalogue is the ordered rule list of every category. Order is significant:
// the first matching rule of a category wins.
type Catalogue struct {
	Browser []*Rule
	OS      []*Rule
	Device  []*Rule
}

// Rules returns the ordered rules of category c.
func (c *Catalogue) Rules(category Category) []*Rule {
	switch category {
	case CategoryBrowser:
		return c.Browser
	case CategoryOS:
		return c.OS
	case CategoryDevice:
		return c.Device
	}
	return nil
}

// Len returns the total number of rules.
func (c *Catalogue) Len() int {
	return len(c.Browser) + len(c.OS) + len(c.Device)
}
