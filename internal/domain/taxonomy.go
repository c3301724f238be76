package domain

import (
	"errors"
	"fmt"
)

// CulturalDomain is one node of the static taxonomy: a cultural domain
// with its categories. The taxonomy is loaded once at startup and treated
// as read-only for the lifetime of the process.
type CulturalDomain struct {
	ID          string     `json:"id"          yaml:"id"`
	Name        string     `json:"name"        yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Categories  []Category `json:"categories"  yaml:"categories"`
}

// Category groups the keywords of one facet of a domain.
// Keywords are lowercase match strings; an empty keyword set is a
// configuration error caught at load time.
type Category struct {
	Name        string   `json:"name"        yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Keywords    []string `json:"keywords"    yaml:"keywords"`
}

// ErrInvalidTaxonomy marks configuration errors in the taxonomy. It is
// returned from validation at load time, never during classification.
var ErrInvalidTaxonomy = errors.New("invalid taxonomy")

// ValidateTaxonomy checks the structural invariants the classifier relies
// on: unique non-empty domain IDs, at least one category per domain, and a
// non-empty keyword set per category.
func ValidateTaxonomy(domains []CulturalDomain) error {
	seen := make(map[string]bool, len(domains))
	for _, d := range domains {
		if d.ID == "" {
			return fmt.Errorf("%w: domain %q has empty id", ErrInvalidTaxonomy, d.Name)
		}
		if seen[d.ID] {
			return fmt.Errorf("%w: duplicate domain id %q", ErrInvalidTaxonomy, d.ID)
		}
		seen[d.ID] = true
		if len(d.Categories) == 0 {
			return fmt.Errorf("%w: domain %q has no categories", ErrInvalidTaxonomy, d.ID)
		}
		for _, cat := range d.Categories {
			if len(cat.Keywords) == 0 {
				return fmt.Errorf("%w: category %q in domain %q has no keywords", ErrInvalidTaxonomy, cat.Name, d.ID)
			}
			for _, kw := range cat.Keywords {
				if kw == "" {
					return fmt.Errorf("%w: category %q in domain %q has an empty keyword", ErrInvalidTaxonomy, cat.Name, d.ID)
				}
			}
		}
	}
	return nil
}
