package trends

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/culturepulse/pulse/internal/domain"
)

// Clusterer defaults.
const (
	DefaultMinSharedTerms = 2
	DefaultMinClusterSize = 2
	DefaultTopKeywords    = 5
)

// ClustererConfig tunes co-occurrence clustering.
type ClustererConfig struct {
	// MinSharedTerms is the number of significant terms two items must
	// share to land in the same cluster.
	MinSharedTerms int
	// MinClusterSize is the minimum number of items a cluster needs to be
	// reported.
	MinClusterSize int
	// TopKeywords bounds the keywords kept per cluster; the cluster
	// signature is built from them.
	TopKeywords int
	// MinTermLength and Stopwords are passed through to the tokenizer.
	MinTermLength int
	Stopwords     []string
}

func (c ClustererConfig) withDefaults() ClustererConfig {
	if c.MinSharedTerms <= 0 {
		c.MinSharedTerms = DefaultMinSharedTerms
	}
	if c.MinClusterSize <= 0 {
		c.MinClusterSize = DefaultMinClusterSize
	}
	if c.TopKeywords <= 0 {
		c.TopKeywords = DefaultTopKeywords
	}
	return c
}

// Cluster is one group of items whose texts share significant terms.
type Cluster struct {
	// TopicID is a deterministic identifier derived from the dominant
	// terms, stable across windows for the same vocabulary.
	TopicID string
	// Signature identifies the cluster for history lookups: the top
	// keywords sorted and joined with "|".
	Signature string
	// Name is a display name built from the highest-weighted term.
	Name string
	// Keywords are the top terms ranked by weight.
	Keywords []string
	// Count is the total occurrences of the cluster's significant terms
	// in the batch.
	Count int
	// Items is the number of content items in the cluster.
	Items int
	// Words is the full weighted term list, descending by weight.
	Words []domain.WordWeight
}

// Clusterer groups content items by shared significant terms using
// union-find over pairwise term overlap.
type Clusterer struct {
	cfg   ClustererConfig
	tok   *Tokenizer
	caser cases.Caser
}

// NewClusterer creates a clusterer with the given config; zero values
// select defaults.
func NewClusterer(cfg ClustererConfig) *Clusterer {
	cfg = cfg.withDefaults()
	return &Clusterer{
		cfg:   cfg,
		tok:   NewTokenizer(cfg.MinTermLength, cfg.Stopwords),
		caser: cases.Title(language.English),
	}
}

// Cluster groups items and returns clusters of at least MinClusterSize
// items, ordered descending by term count for determinism.
func (c *Clusterer) Cluster(items []domain.ContentItem) []Cluster {
	if len(items) == 0 {
		return nil
	}

	terms := make([][]string, len(items))
	sets := make([]map[string]struct{}, len(items))
	for i, item := range items {
		terms[i] = c.tok.Terms(item.Text())
		sets[i] = make(map[string]struct{}, len(terms[i]))
		for _, t := range terms[i] {
			sets[i][t] = struct{}{}
		}
	}

	uf := newUnionFind(len(items))
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			if sharedTerms(sets[i], sets[j]) >= c.cfg.MinSharedTerms {
				uf.union(i, j)
			}
		}
	}

	// Aggregate term frequencies per cluster root.
	groups := make(map[int][]int)
	for i := range items {
		root := uf.find(i)
		groups[root] = append(groups[root], i)
	}

	var clusters []Cluster
	for _, members := range groups {
		if len(members) < c.cfg.MinClusterSize {
			continue
		}

		freq := make(map[string]int)
		total := 0
		for _, idx := range members {
			for _, t := range terms[idx] {
				freq[t]++
				total++
			}
		}
		if total == 0 {
			continue
		}

		clusters = append(clusters, c.build(freq, total, len(members)))
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		if clusters[i].Count != clusters[j].Count {
			return clusters[i].Count > clusters[j].Count
		}
		return clusters[i].Signature < clusters[j].Signature
	})
	return clusters
}

func (c *Clusterer) build(freq map[string]int, total, items int) Cluster {
	words := make([]domain.WordWeight, 0, len(freq))
	for term, n := range freq {
		words = append(words, domain.WordWeight{
			Word:   term,
			Weight: float64(n) / float64(total),
		})
	}
	// Ties broken by term so output is deterministic for a given batch.
	sort.SliceStable(words, func(i, j int) bool {
		if words[i].Weight != words[j].Weight {
			return words[i].Weight > words[j].Weight
		}
		return words[i].Word < words[j].Word
	})

	top := c.cfg.TopKeywords
	if top > len(words) {
		top = len(words)
	}
	keywords := make([]string, top)
	for i := 0; i < top; i++ {
		keywords[i] = words[i].Word
	}

	sorted := append([]string(nil), keywords...)
	sort.Strings(sorted)
	signature := strings.Join(sorted, "|")

	return Cluster{
		TopicID:   "topic-" + strings.Join(sorted, "-"),
		Signature: signature,
		Name:      c.caser.String(words[0].Word),
		Keywords:  keywords,
		Count:     total,
		Items:     items,
		Words:     words,
	}
}

func sharedTerms(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for t := range a {
		if _, ok := b[t]; ok {
			n++
		}
	}
	return n
}

// unionFind is a plain disjoint-set with path compression.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.rank[ra] < uf.rank[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	if uf.rank[ra] == uf.rank[rb] {
		uf.rank[ra]++
	}
}
