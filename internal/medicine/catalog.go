// Package medicine holds the static drug dictionaries and the mention
// normalizer. The catalog is loaded once at startup and is read-only
// afterwards; every component receives it by injection rather than reaching
// for package globals.
package medicine

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

//go:embed catalog.json
var defaultCatalogJSON []byte

// catalogFile is the on-disk shape of catalog.json.
type catalogFile struct {
	Categories      map[string][]string `json:"categories"`
	BrandToGeneric  map[string]string   `json:"brand_to_generic"`
	Forms           []string            `json:"forms"`
	OTC             []string            `json:"otc"`
	NonReimbursable []string            `json:"non_reimbursable"`
}

// Catalog is the immutable dictionary set used across the pipeline: known
// medicine names by category, brand→generic resolution, dosage-form keywords,
// the OTC allowance list and the non-reimbursable keyword list.
type Catalog struct {
	categories     map[string][]string
	brandToGeneric map[string]string
	forms          []string
	otc            []string
	excluded       []string

	// known is the flat lowercase set of every generic and brand name,
	// ordered longest-first so compound names win substring checks.
	known []string
}

// LoadDefaultCatalog parses and validates the embedded catalog.
func LoadDefaultCatalog() (*Catalog, error) {
	return NewCatalog(defaultCatalogJSON)
}

// NewCatalog builds a Catalog from raw JSON, validating it against the
// catalog schema first so a malformed override file fails loudly at startup
// instead of silently degrading extraction.
func NewCatalog(raw []byte) (*Catalog, error) {
	if err := ValidateJSONAgainstSchema(catalogSchema(), raw); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	var f catalogFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}

	c := &Catalog{
		categories:     f.Categories,
		brandToGeneric: make(map[string]string, len(f.BrandToGeneric)),
		forms:          lowerAll(f.Forms),
		otc:            lowerAll(f.OTC),
		excluded:       lowerAll(f.NonReimbursable),
	}

	seen := make(map[string]struct{})
	for _, meds := range f.Categories {
		for _, m := range meds {
			m = strings.ToLower(strings.TrimSpace(m))
			if _, ok := seen[m]; !ok && m != "" {
				seen[m] = struct{}{}
				c.known = append(c.known, m)
			}
		}
	}
	for brand, generic := range f.BrandToGeneric {
		brand = strings.ToLower(strings.TrimSpace(brand))
		c.brandToGeneric[brand] = strings.ToLower(strings.TrimSpace(generic))
		if _, ok := seen[brand]; !ok && brand != "" {
			seen[brand] = struct{}{}
			c.known = append(c.known, brand)
		}
	}
	// Longest-first so "folic acid" beats "iron" inside the same line, and
	// ties stay deterministic.
	sort.Slice(c.known, func(i, j int) bool {
		if len(c.known[i]) != len(c.known[j]) {
			return len(c.known[i]) > len(c.known[j])
		}
		return c.known[i] < c.known[j]
	})
	return c, nil
}

// FindKnown returns the first known medicine or brand name contained in the
// lowercase line, or "" when none matches.
func (c *Catalog) FindKnown(line string) string {
	for _, name := range c.known {
		if strings.Contains(line, name) {
			return name
		}
	}
	return ""
}

// Generic resolves a brand name to its generic form. Unresolved names pass
// through unchanged as their own generic form.
func (c *Catalog) Generic(name string) string {
	if g, ok := c.brandToGeneric[strings.ToLower(name)]; ok {
		return g
	}
	return strings.ToLower(name)
}

// HasForm reports whether the lowercase line mentions a dosage-form keyword.
func (c *Catalog) HasForm(line string) bool {
	for _, form := range c.forms {
		if strings.Contains(line, form) {
			return true
		}
	}
	return false
}

// IsOTC reports whether the medicine name matches the over-the-counter list.
func (c *Catalog) IsOTC(name string) bool {
	lower := strings.ToLower(name)
	for _, otc := range c.otc {
		if strings.Contains(lower, otc) {
			return true
		}
	}
	return false
}

// IsExcluded reports whether the medicine name matches the non-reimbursable
// (cosmetic/lifestyle) keyword list.
func (c *Catalog) IsExcluded(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range c.excluded {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Forms returns the dosage-form keyword list.
func (c *Catalog) Forms() []string { return c.forms }

// OTCList returns the over-the-counter medicine list.
func (c *Catalog) OTCList() []string { return c.otc }

// ExcludedCategories returns the non-reimbursable keyword list.
func (c *Catalog) ExcludedCategories() []string { return c.excluded }

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// catalogSchema returns the JSON-Schema (draft 2020-12 subset) the catalog
// file must satisfy.
func catalogSchema() map[string]any {
	nameList := map[string]any{
		"type":     "array",
		"minItems": 1,
		"items":    map[string]any{"type": "string", "minLength": 1},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"categories", "brand_to_generic", "forms", "otc", "non_reimbursable"},
		"properties": map[string]any{
			"categories": map[string]any{
				"type":                 "object",
				"minProperties":        1,
				"additionalProperties": nameList,
			},
			"brand_to_generic": map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"type": "string", "minLength": 1},
			},
			"forms":            nameList,
			"otc":              nameList,
			"non_reimbursable": nameList,
		},
	}
}
