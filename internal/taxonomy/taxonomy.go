// Package taxonomy loads the static cultural-domain taxonomy the
// classifier matches against. The taxonomy is configuration: it is read
// once at startup, validated, and shared read-only afterwards.
package taxonomy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/culturepulse/pulse/internal/domain"
)

// file is the on-disk YAML shape.
type file struct {
	Domains []domain.CulturalDomain `yaml:"domains"`
}

// Load reads a taxonomy YAML file and validates it. A malformed taxonomy
// (duplicate domain IDs, empty keyword sets) is a fatal configuration
// error; classification never re-validates.
func Load(path string) ([]domain.CulturalDomain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy file %s: %w", path, err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse taxonomy file %s: %w", path, err)
	}

	if err := domain.ValidateTaxonomy(f.Domains); err != nil {
		return nil, err
	}
	return f.Domains, nil
}

// LoadOrDefault loads the taxonomy from path, falling back to the built-in
// default when path is empty.
func LoadOrDefault(path string) ([]domain.CulturalDomain, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Default returns the built-in cultural-domain taxonomy. Keywords are
// lowercase; the classifier matches them as substrings.
func Default() []domain.CulturalDomain {
	return []domain.CulturalDomain{
		{
			ID:          "music",
			Name:        "Music",
			Description: "Musical genres, artists, and movements",
			Categories: []domain.Category{
				{
					Name:        "Hip-Hop",
					Description: "Hip-hop and rap culture",
					Keywords:    []string{"hip-hop", "hip hop", "rap", "rapper", "mixtape", "freestyle", "mc"},
				},
				{
					Name:        "Jazz",
					Description: "Jazz traditions and contemporary jazz",
					Keywords:    []string{"jazz", "bebop", "swing", "improvisation", "saxophone"},
				},
				{
					Name:        "R&B and Soul",
					Description: "Rhythm and blues, soul, funk",
					Keywords:    []string{"r&b", "soul", "funk", "motown", "gospel"},
				},
			},
		},
		{
			ID:          "language",
			Name:        "Language",
			Description: "Vernacular language and linguistic innovation",
			Categories: []domain.Category{
				{
					Name:        "Vernacular",
					Description: "Vernacular English features and usage",
					Keywords:    []string{"aave", "vernacular", "dialect", "slang", "code-switching", "linguistics"},
				},
				{
					Name:        "Expression",
					Description: "Phrases and expressions entering wider usage",
					Keywords:    []string{"expression", "phrase", "idiom", "terminology"},
				},
			},
		},
		{
			ID:          "arts",
			Name:        "Arts",
			Description: "Literature, visual arts, and performance",
			Categories: []domain.Category{
				{
					Name:        "Literature",
					Description: "Fiction, poetry, and literary criticism",
					Keywords:    []string{"literature", "novel", "poetry", "poet", "author", "memoir"},
				},
				{
					Name:        "Visual Arts",
					Description: "Painting, sculpture, galleries",
					Keywords:    []string{"art", "gallery", "exhibition", "painting", "sculpture", "mural"},
				},
				{
					Name:        "Film and Theater",
					Description: "Cinema, television, and stage",
					Keywords:    []string{"film", "director", "theater", "playwright", "documentary"},
				},
			},
		},
		{
			ID:          "activism",
			Name:        "Activism",
			Description: "Social movements and civil rights",
			Categories: []domain.Category{
				{
					Name:        "Civil Rights",
					Description: "Civil rights history and present",
					Keywords:    []string{"civil rights", "equality", "justice", "voting rights", "desegregation"},
				},
				{
					Name:        "Movements",
					Description: "Contemporary organizing and protest",
					Keywords:    []string{"protest", "movement", "organizer", "activist", "march", "boycott"},
				},
			},
		},
		{
			ID:          "innovation",
			Name:        "Innovation",
			Description: "Technology, science, and entrepreneurship",
			Categories: []domain.Category{
				{
					Name:        "Technology",
					Description: "Technology and engineering",
					Keywords:    []string{"technology", "engineer", "software", "startup", "founder"},
				},
				{
					Name:        "Science",
					Description: "Research and scientific achievement",
					Keywords:    []string{"science", "research", "scientist", "study", "discovery"},
				},
			},
		},
	}
}
