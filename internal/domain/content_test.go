package domain

import (
	"testing"
	"time"
)

func TestContentItem_Normalize(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	item := ContentItem{ID: "a", Content: "some text"}
	got := item.Normalize(now)

	if got.Author != UnknownAuthor {
		t.Errorf("expected author %q, got %q", UnknownAuthor, got.Author)
	}
	if got.Source != SourceUnknown {
		t.Errorf("expected source %q, got %q", SourceUnknown, got.Source)
	}
	if !got.Timestamp.Equal(now) {
		t.Errorf("expected timestamp %v, got %v", now, got.Timestamp)
	}

	// Original must not be mutated
	if item.Author != "" {
		t.Error("Normalize mutated the input item")
	}
}

func TestContentItem_Normalize_KeepsExistingFields(t *testing.T) {
	ts := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	item := ContentItem{ID: "b", Author: "Jones, R.", Source: SourceAcademic, Timestamp: ts}

	got := item.Normalize(time.Now())

	if got.Author != "Jones, R." || got.Source != SourceAcademic || !got.Timestamp.Equal(ts) {
		t.Errorf("Normalize overwrote populated fields: %+v", got)
	}
}

func TestContentItem_Text(t *testing.T) {
	item := ContentItem{Title: "Jazz Lives", Content: "A new Bebop record"}
	want := "jazz lives a new bebop record"
	if got := item.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestContentItem_IsEmpty(t *testing.T) {
	if !(ContentItem{Title: "  ", Content: ""}).IsEmpty() {
		t.Error("whitespace-only item should be empty")
	}
	if (ContentItem{Content: "x"}).IsEmpty() {
		t.Error("item with content should not be empty")
	}
}

func TestValidateTaxonomy(t *testing.T) {
	valid := []CulturalDomain{
		{ID: "music", Name: "Music", Categories: []Category{
			{Name: "Jazz", Keywords: []string{"jazz", "bebop"}},
		}},
	}
	if err := ValidateTaxonomy(valid); err != nil {
		t.Fatalf("valid taxonomy rejected: %v", err)
	}

	cases := []struct {
		name    string
		domains []CulturalDomain
	}{
		{"empty id", []CulturalDomain{{Name: "Music", Categories: []Category{{Name: "Jazz", Keywords: []string{"jazz"}}}}}},
		{"duplicate id", append(valid, valid[0])},
		{"no categories", []CulturalDomain{{ID: "arts", Name: "Arts"}}},
		{"empty keywords", []CulturalDomain{{ID: "arts", Name: "Arts", Categories: []Category{{Name: "Poetry"}}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := ValidateTaxonomy(tc.domains); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}
