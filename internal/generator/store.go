package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/culturepulse/pulse/internal/domain"
)

const (
	articlePrefix = "article_"
	articleSuffix = ".json"
	// articleTimeLayout sorts lexicographically so Recent can order by
	// filename alone.
	articleTimeLayout = "20060102T150405.000"
)

// ArticleStore persists generated articles as JSON files.
type ArticleStore struct {
	dir string
}

// NewArticleStore creates the article directory if needed.
func NewArticleStore(dir string) (*ArticleStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create article dir %s: %w", dir, err)
	}
	return &ArticleStore{dir: dir}, nil
}

// Save writes one article.
func (s *ArticleStore) Save(article domain.GeneratedArticle) error {
	data, err := json.MarshalIndent(article, "", "  ")
	if err != nil {
		return fmt.Errorf("encode article: %w", err)
	}

	name := articlePrefix + article.Timestamp.UTC().Format(articleTimeLayout) + "_" + article.ID + articleSuffix
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write article: %w", err)
	}
	return nil
}

// Recent returns up to n articles, newest first.
func (s *ArticleStore) Recent(n int) ([]domain.GeneratedArticle, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read article dir %s: %w", s.dir, err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, articlePrefix) || !strings.HasSuffix(name, articleSuffix) {
			continue
		}
		names = append(names, name)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	if n > 0 && len(names) > n {
		names = names[:n]
	}

	articles := make([]domain.GeneratedArticle, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, fmt.Errorf("read article %s: %w", name, err)
		}
		var article domain.GeneratedArticle
		if err := json.Unmarshal(data, &article); err != nil {
			return nil, fmt.Errorf("decode article %s: %w", name, err)
		}
		articles = append(articles, article)
	}
	return articles, nil
}
