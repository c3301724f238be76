package domain

// TrendingTopic is one detected trend: a term cluster whose current-window
// frequency spiked relative to its historical baseline.
type TrendingTopic struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
	// Count is the total occurrences of the cluster's terms in the
	// current window.
	Count int `json:"count"`
	// Multiplier is current frequency / baseline frequency. 1.0 means no
	// change; topics are only emitted above the significance threshold.
	Multiplier float64 `json:"multiplier"`
	// Velocity is the normalized growth rate against the immediately
	// preceding window, bounded below by -1.
	Velocity    float64 `json:"velocity"`
	IsRecurrent bool    `json:"is_recurrent"`
	// Occurrences counts the prior windows in which this cluster trended.
	Occurrences int    `json:"occurrences"`
	TopicID     string `json:"topic_id"`
}

// WordWeight is one entry of a topic's weighted term list.
type WordWeight struct {
	Word   string  `json:"word"`
	Weight float64 `json:"weight"`
}

// TopicDetail describes one discovered topic cluster. Words are sorted
// descending by weight; weights are term frequency within the cluster
// normalized by the cluster's total term occurrences, so they are
// deterministic for a given input batch.
type TopicDetail struct {
	Name  string       `json:"name"`
	Count int          `json:"count"`
	Words []WordWeight `json:"words"`
}

// TrendAnalysis is the full output of one trend-analysis run.
type TrendAnalysis struct {
	Trends       []TrendingTopic        `json:"trends"`
	TopicDetails map[string]TopicDetail `json:"topic_details"`
}
