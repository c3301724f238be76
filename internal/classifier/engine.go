// Package classifier maps content items to cultural domains by keyword
// matching with confidence scoring.
// engine.go implements an Aho-Corasick keyword engine for O(n+m) matching
// across the whole taxonomy in a single pass per item.
package classifier

import (
	"strings"
	"sync"
	"time"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/culturepulse/pulse/internal/domain"
	"github.com/culturepulse/pulse/internal/logger"
	"github.com/culturepulse/pulse/internal/telemetry"
)

// KeywordEngine matches every taxonomy keyword against an item's text in
// one pass. Matching is plain substring containment over the lowercased
// text — the same semantics as the naive per-keyword scan, so both paths
// produce identical results.
type KeywordEngine struct {
	mu        sync.RWMutex
	matcher   *ahocorasick.Matcher
	keywords  []string
	kwDomains map[string][]kwMapping
	telemetry *telemetry.Provider
	logger    logger.Logger
}

type kwMapping struct {
	domainIndex  int
	keywordOrder int // position within the domain's flattened keyword list
}

// NewKeywordEngine builds the Aho-Corasick automaton from the taxonomy.
// The taxonomy must already be validated.
func NewKeywordEngine(domains []domain.CulturalDomain, log logger.Logger, tp *telemetry.Provider) *KeywordEngine {
	e := &KeywordEngine{
		kwDomains: make(map[string][]kwMapping),
		telemetry: tp,
		logger:    log,
	}
	e.rebuild(domains)

	if log != nil {
		log.Info("keyword engine initialized",
			logger.Int("domains", len(domains)),
			logger.Int("keywords", len(e.keywords)))
	}
	return e
}

func (e *KeywordEngine) rebuild(domains []domain.CulturalDomain) {
	e.keywords = e.keywords[:0]
	e.kwDomains = make(map[string][]kwMapping)

	for di, d := range domains {
		order := 0
		for _, cat := range d.Categories {
			for _, kw := range cat.Keywords {
				normalized := strings.ToLower(strings.TrimSpace(kw))
				if normalized == "" {
					continue
				}
				// The same keyword can appear in several categories of one
				// domain; record it once per domain.
				if !e.hasMapping(normalized, di) {
					e.kwDomains[normalized] = append(e.kwDomains[normalized], kwMapping{
						domainIndex:  di,
						keywordOrder: order,
					})
				}
				e.keywords = append(e.keywords, normalized)
				order++
			}
		}
	}

	if len(e.keywords) > 0 {
		e.matcher = ahocorasick.NewStringMatcher(e.keywords)
	} else {
		e.matcher = nil
	}
}

func (e *KeywordEngine) hasMapping(kw string, domainIndex int) bool {
	for _, m := range e.kwDomains[kw] {
		if m.domainIndex == domainIndex {
			return true
		}
	}
	return false
}

// Match returns, per domain index, the unique keywords found in text.
// Keywords within a domain keep their taxonomy declaration order so the
// result is deterministic. text must already be lowercased.
func (e *KeywordEngine) Match(text string) map[int][]string {
	start := time.Now()

	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.matcher == nil || text == "" {
		return nil
	}

	hits := e.matcher.Match([]byte(text))
	if len(hits) == 0 {
		return nil
	}

	type hit struct {
		keyword string
		order   int
	}
	perDomain := make(map[int][]hit)
	seen := make(map[string]bool, len(hits))

	for _, hitIndex := range hits {
		if hitIndex >= len(e.keywords) {
			continue
		}
		kw := e.keywords[hitIndex]
		if seen[kw] {
			continue
		}
		seen[kw] = true
		for _, m := range e.kwDomains[kw] {
			perDomain[m.domainIndex] = append(perDomain[m.domainIndex], hit{keyword: kw, order: m.keywordOrder})
		}
	}

	result := make(map[int][]string, len(perDomain))
	for di, hits := range perDomain {
		// Insertion sort by declaration order; keyword lists per domain
		// are short.
		for i := 1; i < len(hits); i++ {
			for j := i; j > 0 && hits[j].order < hits[j-1].order; j-- {
				hits[j], hits[j-1] = hits[j-1], hits[j]
			}
		}
		kws := make([]string, len(hits))
		for i, h := range hits {
			kws[i] = h.keyword
		}
		result[di] = kws
	}

	if e.telemetry != nil {
		e.telemetry.RecordKeywordMatch(time.Since(start))
	}
	return result
}

// KeywordCount returns the total keywords across the taxonomy (duplicates
// between domains counted once per occurrence).
func (e *KeywordEngine) KeywordCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.keywords)
}
