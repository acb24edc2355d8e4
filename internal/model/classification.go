package model

import "time"

// ClassificationResult is the classifier's verdict for a single input text.
// It is immutable once created and is never persisted beyond the audit log.
type ClassificationResult struct {
	Timestamp       time.Time
	Sector          Sector
	Reasoning       string
	RawInput        string
	MatchedKeywords []string // insertion order = lexicon declaration order
	Confidence      float64  // 0.0 – 1.0
}

// AsMap renders the result for the dispatch envelope and the audit log.
func (r ClassificationResult) AsMap() map[string]any {
	keywords := r.MatchedKeywords
	if keywords == nil {
		keywords = []string{}
	}
	return map[string]any{
		"sector":           string(r.Sector),
		"confidence":       r.Confidence,
		"matched_keywords": keywords,
		"reasoning":        r.Reasoning,
		"timestamp":        r.Timestamp.UTC().Format(time.RFC3339),
	}
}
