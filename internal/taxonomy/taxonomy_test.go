package taxonomy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/culturepulse/pulse/internal/domain"
)

func TestDefault_Valid(t *testing.T) {
	domains := Default()
	if len(domains) == 0 {
		t.Fatal("default taxonomy is empty")
	}
	if err := domain.ValidateTaxonomy(domains); err != nil {
		t.Fatalf("default taxonomy failed validation: %v", err)
	}
}

func TestLoad_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.yml")
	content := `domains:
  - id: music
    name: Music
    description: Musical genres
    categories:
      - name: Jazz
        keywords: [jazz, bebop]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	domains, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(domains) != 1 {
		t.Fatalf("expected 1 domain, got %d", len(domains))
	}
	if domains[0].ID != "music" {
		t.Errorf("expected domain id music, got %s", domains[0].ID)
	}
	if len(domains[0].Categories[0].Keywords) != 2 {
		t.Errorf("expected 2 keywords, got %d", len(domains[0].Categories[0].Keywords))
	}
}

func TestLoad_EmptyKeywordsRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.yml")
	content := `domains:
  - id: music
    name: Music
    categories:
      - name: Jazz
        keywords: []
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if !errors.Is(err, domain.ErrInvalidTaxonomy) {
		t.Fatalf("expected ErrInvalidTaxonomy, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/taxonomy.yml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadOrDefault_EmptyPath(t *testing.T) {
	domains, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(domains) != len(Default()) {
		t.Error("expected built-in default taxonomy")
	}
}
