package classifier

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/culturepulse/pulse/internal/domain"
	"github.com/culturepulse/pulse/internal/logger"
	"github.com/culturepulse/pulse/internal/telemetry"
)

// DefaultReferenceSize is the confidence normalization constant: an item
// matching this many unique keywords in a domain saturates confidence
// at 1.0.
const DefaultReferenceSize = 5

// Config holds classifier tunables.
type Config struct {
	// ReferenceSize is the denominator of the confidence score.
	ReferenceSize int
}

// Classifier classifies content items against the loaded taxonomy.
// It is safe for concurrent use; classification is pure and never fails
// for well-formed input.
type Classifier struct {
	taxonomy      []domain.CulturalDomain
	engine        *KeywordEngine
	referenceSize int
	logger        logger.Logger
	telemetry     *telemetry.Provider
}

// New creates a classifier for a validated taxonomy. The telemetry
// provider may be nil.
func New(log logger.Logger, taxonomy []domain.CulturalDomain, cfg Config, tp *telemetry.Provider) *Classifier {
	refSize := cfg.ReferenceSize
	if refSize <= 0 {
		refSize = DefaultReferenceSize
	}

	return &Classifier{
		taxonomy:      taxonomy,
		engine:        NewKeywordEngine(taxonomy, log, tp),
		referenceSize: refSize,
		logger:        log,
		telemetry:     tp,
	}
}

// Taxonomy returns the classifier's taxonomy.
func (c *Classifier) Taxonomy() []domain.CulturalDomain {
	return c.taxonomy
}

// Classify maps one item to the domains whose keywords appear in its
// text. Results are ordered by descending confidence; ties keep taxonomy
// declaration order. Zero-hit domains are omitted, so an empty item
// yields an empty slice.
//
// Keywords are matched as case-insensitive substrings of title+content.
// This deliberately matches inside longer words ("art" hits "artist");
// word-boundary matching would change confidence scores and recurrence
// signatures, so the substring semantics are kept and documented.
func (c *Classifier) Classify(ctx context.Context, item domain.ContentItem) []domain.DomainMatch {
	start := time.Now()

	matches := c.buildMatches(c.engine.Match(item.Text()))

	if c.telemetry != nil {
		c.telemetry.RecordClassification(item.Source, len(matches), time.Since(start))
	}
	c.logger.Debug("item classified",
		logger.String("content_id", item.ID),
		logger.Int("domains_matched", len(matches)),
	)
	return matches
}

// ClassifyBatch classifies a batch of items. Each item is independent; a
// batch of empty items yields a slice of empty match lists.
func (c *Classifier) ClassifyBatch(ctx context.Context, items []domain.ContentItem) [][]domain.DomainMatch {
	results := make([][]domain.DomainMatch, len(items))
	for i, item := range items {
		results[i] = c.Classify(ctx, item)
	}
	return results
}

func (c *Classifier) buildMatches(perDomain map[int][]string) []domain.DomainMatch {
	if len(perDomain) == 0 {
		return []domain.DomainMatch{}
	}

	matches := make([]domain.DomainMatch, 0, len(perDomain))
	// Iterate in taxonomy order so the later stable sort preserves
	// declaration order among equal confidences.
	for di := range c.taxonomy {
		kws, ok := perDomain[di]
		if !ok || len(kws) == 0 {
			continue
		}
		d := c.taxonomy[di]
		matches = append(matches, domain.DomainMatch{
			DomainID:        d.ID,
			DomainName:      d.Name,
			MatchedKeywords: kws,
			Confidence:      confidence(len(kws), c.referenceSize),
		})
		if c.telemetry != nil {
			c.telemetry.RecordDomainMatch(d.ID)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	return matches
}

func confidence(matched, referenceSize int) float64 {
	score := float64(matched) / float64(referenceSize)
	if score > 1.0 {
		return 1.0
	}
	return score
}

// ClassifyNaive is the reference implementation of the matching contract:
// a direct scan of every keyword against the item text. The Aho-Corasick
// path must produce identical results; tests compare the two.
func (c *Classifier) ClassifyNaive(item domain.ContentItem) []domain.DomainMatch {
	text := item.Text()
	if strings.TrimSpace(text) == "" {
		return []domain.DomainMatch{}
	}

	perDomain := make(map[int][]string)
	for di, d := range c.taxonomy {
		seen := make(map[string]bool)
		for _, cat := range d.Categories {
			for _, kw := range cat.Keywords {
				normalized := strings.ToLower(strings.TrimSpace(kw))
				if normalized == "" || seen[normalized] {
					continue
				}
				if strings.Contains(text, normalized) {
					seen[normalized] = true
					perDomain[di] = append(perDomain[di], normalized)
				}
			}
		}
	}
	return c.buildMatches(perDomain)
}
