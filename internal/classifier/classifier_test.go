package classifier

import (
	"context"
	"reflect"
	"testing"

	"github.com/culturepulse/pulse/internal/domain"
	"github.com/culturepulse/pulse/internal/logger"
	"github.com/culturepulse/pulse/internal/taxonomy"
)

func musicTaxonomy() []domain.CulturalDomain {
	return []domain.CulturalDomain{
		{
			ID:   "music",
			Name: "Music",
			Categories: []domain.Category{
				{Name: "Jazz", Keywords: []string{"jazz", "bebop"}},
			},
		},
	}
}

func newTestClassifier(domains []domain.CulturalDomain) *Classifier {
	return New(logger.NewNop(), domains, Config{}, nil)
}

func TestClassify_JazzScenario(t *testing.T) {
	c := newTestClassifier(musicTaxonomy())

	item := domain.ContentItem{
		ID:      "jazz-1",
		Title:   "Jazz lives",
		Content: "a new bebop record",
	}

	matches := c.Classify(context.Background(), item)

	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	m := matches[0]
	if m.DomainID != "music" {
		t.Errorf("expected domain music, got %s", m.DomainID)
	}
	if !reflect.DeepEqual(m.MatchedKeywords, []string{"jazz", "bebop"}) {
		t.Errorf("expected keywords [jazz bebop], got %v", m.MatchedKeywords)
	}
	// 2 matched keywords / reference size 5
	if m.Confidence != 0.4 {
		t.Errorf("expected confidence 0.4, got %f", m.Confidence)
	}
}

func TestClassify_EmptyItem(t *testing.T) {
	c := newTestClassifier(taxonomy.Default())

	matches := c.Classify(context.Background(), domain.ContentItem{Title: "", Content: ""})

	if len(matches) != 0 {
		t.Errorf("expected empty result for empty item, got %d matches", len(matches))
	}
}

func TestClassify_NoHitDomainsOmitted(t *testing.T) {
	domains := append(musicTaxonomy(), domain.CulturalDomain{
		ID:   "arts",
		Name: "Arts",
		Categories: []domain.Category{
			{Name: "Literature", Keywords: []string{"poetry", "novel"}},
		},
	})
	c := newTestClassifier(domains)

	matches := c.Classify(context.Background(), domain.ContentItem{Content: "a jazz standard"})

	if len(matches) != 1 || matches[0].DomainID != "music" {
		t.Fatalf("expected only the music domain, got %+v", matches)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	c := newTestClassifier(taxonomy.Default())
	item := domain.ContentItem{
		Title:   "Hip-hop and jazz meet the gallery",
		Content: "The exhibition pairs rap freestyle sessions with live improvisation and poetry readings.",
	}

	first := c.Classify(context.Background(), item)
	for i := 0; i < 20; i++ {
		got := c.Classify(context.Background(), item)
		if !reflect.DeepEqual(first, got) {
			t.Fatalf("classification not deterministic on run %d:\nfirst: %+v\ngot:   %+v", i, first, got)
		}
	}
}

func TestClassify_OrderedByConfidenceThenTaxonomy(t *testing.T) {
	domains := []domain.CulturalDomain{
		{ID: "a", Name: "A", Categories: []domain.Category{{Name: "x", Keywords: []string{"alpha"}}}},
		{ID: "b", Name: "B", Categories: []domain.Category{{Name: "y", Keywords: []string{"beta", "gamma"}}}},
		{ID: "c", Name: "C", Categories: []domain.Category{{Name: "z", Keywords: []string{"delta"}}}},
	}
	c := newTestClassifier(domains)

	matches := c.Classify(context.Background(), domain.ContentItem{
		Content: "alpha beta gamma delta",
	})

	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	// b has 2 hits, a and c tie with 1 each; tie resolved by taxonomy order.
	want := []string{"b", "a", "c"}
	for i, id := range want {
		if matches[i].DomainID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, matches[i].DomainID)
		}
	}
}

func TestClassify_ConfidenceSaturates(t *testing.T) {
	domains := []domain.CulturalDomain{
		{ID: "d", Name: "D", Categories: []domain.Category{
			{Name: "k", Keywords: []string{"one", "two", "three", "four", "five", "six", "seven"}},
		}},
	}
	c := newTestClassifier(domains)

	matches := c.Classify(context.Background(), domain.ContentItem{
		Content: "one two three four five six seven",
	})

	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Confidence != 1.0 {
		t.Errorf("expected confidence capped at 1.0, got %f", matches[0].Confidence)
	}
}

func TestClassify_ConfidenceMonotonic(t *testing.T) {
	item := domain.ContentItem{Content: "jazz and bebop and swing"}

	base := newTestClassifier([]domain.CulturalDomain{
		{ID: "music", Name: "Music", Categories: []domain.Category{
			{Name: "Jazz", Keywords: []string{"jazz"}},
		}},
	})
	grown := newTestClassifier([]domain.CulturalDomain{
		{ID: "music", Name: "Music", Categories: []domain.Category{
			{Name: "Jazz", Keywords: []string{"jazz", "bebop", "swing"}},
		}},
	})

	baseMatches := base.Classify(context.Background(), item)
	grownMatches := grown.Classify(context.Background(), item)

	if len(baseMatches) != 1 || len(grownMatches) != 1 {
		t.Fatal("expected one match from each classifier")
	}
	if grownMatches[0].Confidence < baseMatches[0].Confidence {
		t.Errorf("adding matching keywords decreased confidence: %f -> %f",
			baseMatches[0].Confidence, grownMatches[0].Confidence)
	}
}

func TestClassify_SubstringSemantics(t *testing.T) {
	domains := []domain.CulturalDomain{
		{ID: "arts", Name: "Arts", Categories: []domain.Category{
			{Name: "Visual", Keywords: []string{"art"}},
		}},
	}
	c := newTestClassifier(domains)

	// "art" matches inside "artist": plain substring containment.
	matches := c.Classify(context.Background(), domain.ContentItem{Content: "the artist spoke"})

	if len(matches) != 1 {
		t.Fatalf("expected substring match inside a longer word, got %d matches", len(matches))
	}
}

func TestClassify_ReferenceSizeConfigurable(t *testing.T) {
	c := New(logger.NewNop(), musicTaxonomy(), Config{ReferenceSize: 2}, nil)

	matches := c.Classify(context.Background(), domain.ContentItem{Content: "jazz bebop"})

	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Confidence != 1.0 {
		t.Errorf("with reference size 2 and 2 hits, expected 1.0, got %f", matches[0].Confidence)
	}
}

func TestClassify_EngineMatchesNaive(t *testing.T) {
	c := newTestClassifier(taxonomy.Default())

	items := []domain.ContentItem{
		{Title: "Jazz lives", Content: "a new bebop record"},
		{Content: "protest march organized downtown by community activist groups"},
		{Content: "the artist opened a gallery exhibition of murals and sculpture"},
		{Content: "startup founder discusses software engineering research"},
		{Content: "aave vernacular expression in code-switching studies"},
		{Content: "nothing that matches anything at all"},
		{},
	}

	for i, item := range items {
		engine := c.Classify(context.Background(), item)
		naive := c.ClassifyNaive(item)
		if !reflect.DeepEqual(engine, naive) {
			t.Errorf("item %d: engine and naive classification differ:\nengine: %+v\nnaive:  %+v", i, engine, naive)
		}
	}
}

func TestClassifyBatch(t *testing.T) {
	c := newTestClassifier(musicTaxonomy())

	results := c.ClassifyBatch(context.Background(), []domain.ContentItem{
		{Content: "jazz"},
		{Content: "no match"},
	})

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if len(results[0]) != 1 {
		t.Errorf("expected first item to match, got %d matches", len(results[0]))
	}
	if len(results[1]) != 0 {
		t.Errorf("expected second item to have no matches, got %d", len(results[1]))
	}
}
