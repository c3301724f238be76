package domain

// DomainMatch is the classifier output for one (item, domain) pair.
// Matches are ephemeral: computed on demand and not persisted by the core.
type DomainMatch struct {
	DomainID        string   `json:"domain_id"`
	DomainName      string   `json:"domain_name"`
	MatchedKeywords []string `json:"matched_keywords"`
	Confidence      float64  `json:"confidence"`
}
