package trends

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/culturepulse/pulse/internal/domain"
)

func TestTokenizer_Terms(t *testing.T) {
	tok := NewTokenizer(0, nil)

	terms := tok.Terms("The Jazz revival: bebop, bebop & AAVE in 2024!")

	// Stopwords and short tokens gone, repeats preserved, punctuation split.
	assert.Equal(t, []string{"jazz", "revival", "bebop", "bebop", "aave", "2024"}, terms)
}

func TestTokenizer_ExtraStopwords(t *testing.T) {
	tok := NewTokenizer(0, []string{"Jazz"})

	terms := tok.Terms("jazz bebop")

	assert.Equal(t, []string{"bebop"}, terms)
}

func TestTokenizer_MinLength(t *testing.T) {
	tok := NewTokenizer(5, nil)

	terms := tok.Terms("jazz vernacular art bebop")

	assert.Equal(t, []string{"vernacular", "bebop"}, terms)
}

func item(id, content string) domain.ContentItem {
	return domain.ContentItem{ID: id, Content: content}
}

func TestClusterer_MergesOnSharedTerms(t *testing.T) {
	c := NewClusterer(ClustererConfig{})

	clusters := c.Cluster([]domain.ContentItem{
		item("a", "jazz bebop revival"),
		item("b", "bebop jazz clubs"),
	})

	require.Len(t, clusters, 1)
	assert.Equal(t, 6, clusters[0].Count)
	assert.Equal(t, 2, clusters[0].Items)
}

func TestClusterer_OneSharedTermIsNotEnough(t *testing.T) {
	c := NewClusterer(ClustererConfig{})

	// Only "jazz" is shared, so the items stay apart and both fall below
	// the minimum cluster size.
	clusters := c.Cluster([]domain.ContentItem{
		item("a", "jazz bebop"),
		item("b", "jazz protest"),
	})

	assert.Empty(t, clusters)
}

func TestClusterer_SignatureAndName(t *testing.T) {
	c := NewClusterer(ClustererConfig{})

	clusters := c.Cluster([]domain.ContentItem{
		item("a", "vernacular aave vernacular"),
		item("b", "aave vernacular"),
	})

	require.Len(t, clusters, 1)
	cl := clusters[0]
	// vernacular: 3 occurrences, aave: 2.
	assert.Equal(t, "aave|vernacular", cl.Signature)
	assert.Equal(t, "topic-aave-vernacular", cl.TopicID)
	assert.Equal(t, "Vernacular", cl.Name)
	assert.Equal(t, []string{"vernacular", "aave"}, cl.Keywords)
	assert.Equal(t, 5, cl.Count)
}

func TestClusterer_WordWeights(t *testing.T) {
	c := NewClusterer(ClustererConfig{})

	clusters := c.Cluster([]domain.ContentItem{
		item("a", "jazz jazz jazz bebop"),
		item("b", "jazz bebop"),
	})

	require.Len(t, clusters, 1)
	words := clusters[0].Words
	require.Len(t, words, 2)
	assert.Equal(t, domain.WordWeight{Word: "jazz", Weight: 4.0 / 6.0}, words[0])
	assert.Equal(t, domain.WordWeight{Word: "bebop", Weight: 2.0 / 6.0}, words[1])
}

func TestClusterer_WeightTiesBreakByTerm(t *testing.T) {
	c := NewClusterer(ClustererConfig{})

	clusters := c.Cluster([]domain.ContentItem{
		item("a", "bebop jazz"),
		item("b", "jazz bebop"),
	})

	require.Len(t, clusters, 1)
	words := clusters[0].Words
	require.Len(t, words, 2)
	assert.Equal(t, "bebop", words[0].Word)
	assert.Equal(t, "jazz", words[1].Word)
}

func TestClusterer_TopKeywordsBoundsSignature(t *testing.T) {
	c := NewClusterer(ClustererConfig{TopKeywords: 2})

	clusters := c.Cluster([]domain.ContentItem{
		item("a", "jazz jazz jazz bebop bebop swing"),
		item("b", "jazz bebop swing trumpet"),
	})

	require.Len(t, clusters, 1)
	assert.Equal(t, []string{"jazz", "bebop"}, clusters[0].Keywords)
	assert.Equal(t, "bebop|jazz", clusters[0].Signature)
}

func TestClusterer_EmptyBatch(t *testing.T) {
	c := NewClusterer(ClustererConfig{})

	assert.Nil(t, c.Cluster(nil))
}
