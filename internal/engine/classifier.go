// Package engine implements the core classification and dispatch engine for
// routing inbound requests to sector handlers.
package engine

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/antigravity-ventures/thaiturk/internal/lexicon"
	"github.com/antigravity-ventures/thaiturk/internal/model"
)

// confidenceScale maps the raw lexicon hit ratio onto [0, 1]: matching 10%
// of a sector's lexicon yields full confidence.
const confidenceScale = 10.0

// reasoningKeywordLimit caps how many matched terms the reasoning cites.
const reasoningKeywordLimit = 5

// keywordPattern pairs a lexicon entry with its precompiled matcher.
type keywordPattern struct {
	re      *regexp.Regexp
	keyword string // original lexicon spelling, reported on match
}

// Classifier scores free text against the sector lexicon. It is pure and
// deterministic: no I/O, no hidden state, safe for concurrent use.
type Classifier struct {
	patterns map[model.Sector][]keywordPattern
	sizes    map[model.Sector]int
}

// NewClassifier compiles the lexicon into a classifier.
func NewClassifier(lex *lexicon.Lexicon) (*Classifier, error) {
	c := &Classifier{
		patterns: make(map[model.Sector][]keywordPattern),
		sizes:    make(map[model.Sector]int),
	}
	for _, sector := range model.AllSectors() {
		keywords := lex.Keywords(sector)
		compiled := make([]keywordPattern, 0, len(keywords))
		for _, kw := range keywords {
			re, err := compileKeyword(kw)
			if err != nil {
				return nil, fmt.Errorf("sector %s keyword %q: %w", sector, kw, err)
			}
			compiled = append(compiled, keywordPattern{keyword: kw, re: re})
		}
		c.patterns[sector] = compiled
		c.sizes[sector] = len(compiled)
	}
	return c, nil
}

// compileKeyword builds a whole-word matcher for one lexicon entry. Go's \b
// only understands ASCII word characters, so the boundary is expressed with
// explicit Unicode letter/digit guards to work for Turkish and Cyrillic.
func compileKeyword(keyword string) (*regexp.Regexp, error) {
	folded := foldText(keyword)
	pattern := `(?:\A|[^\p{L}\p{N}])` + regexp.QuoteMeta(folded) + `(?:[^\p{L}\p{N}]|\z)`
	return regexp.Compile(pattern)
}

// foldText normalizes text for case-insensitive Unicode comparison.
func foldText(text string) string {
	return cases.Fold().String(norm.NFC.String(text))
}

// Classify maps arbitrary natural-language text to exactly one sector with a
// confidence score. A zero score for every sector yields Unknown/0.0; the
// function never fails for any string input.
func (c *Classifier) Classify(text string) model.ClassificationResult {
	clean := strings.TrimSpace(text)
	folded := foldText(clean)

	best := model.SectorUnknown
	bestScore := 0.0
	var bestMatches []string

	// Sectors are evaluated in declaration order; a tie keeps the earlier
	// sector, which makes tie-breaking explicit and testable.
	for _, sector := range model.AllSectors() {
		if c.sizes[sector] == 0 {
			continue
		}
		var matches []string
		for _, p := range c.patterns[sector] {
			if p.re.MatchString(folded) {
				matches = append(matches, p.keyword)
			}
		}
		score := float64(len(matches)) / float64(c.sizes[sector])
		if score > bestScore {
			best = sector
			bestScore = score
			bestMatches = matches
		}
	}

	result := model.ClassificationResult{
		Timestamp: time.Now().UTC(),
		RawInput:  clean,
	}

	if bestScore == 0 {
		result.Sector = model.SectorUnknown
		result.Confidence = 0.0
		result.Reasoning = "No sector keywords matched; manual classification may be required."
		return result
	}

	confidence := bestScore * confidenceScale
	if confidence > 1.0 {
		confidence = 1.0
	}

	cited := bestMatches
	if len(cited) > reasoningKeywordLimit {
		cited = cited[:reasoningKeywordLimit]
	}

	result.Sector = best
	result.Confidence = confidence
	result.MatchedKeywords = bestMatches
	result.Reasoning = fmt.Sprintf("%d keyword(s) matched for sector %s: %s.",
		len(bestMatches), best, strings.Join(cited, ", "))
	return result
}
