package intent

import (
	"cmp"
	"slices"
	"strings"

	"opsroute/internal/core/fuzzy"
	"opsroute/internal/core/normalize"
	"opsroute/internal/core/params"
	"opsroute/internal/platform/logger"
)

// Aggregation intent dropped when a specific aggregation matched
const GenericAggregation = "aggregation_query"

// Scoring weights
const (
	wordWeight          = 1
	phraseWordWeight    = 3
	exactPhraseBonus    = 5
	discriminatorWeight = 4
)

// Drop reasons reported by Explain
const (
	DroppedTier      = "tier"
	DroppedExclusion = "exclusion"
)

// Candidate is one scored intent for a single question
type Candidate struct {
	Intent     string   `json:"intent"`
	Tier       int      `json:"tier"`
	Score      int      `json:"score"`
	Matched    int      `json:"matched"`
	MatchedLen int      `json:"matched_len"`
	Keywords   []string `json:"keywords"`
	Confidence float64  `json:"confidence"`
	Dropped    string   `json:"dropped,omitempty"`
}

// Result is the winning intent
type Result struct {
	Intent     string     `json:"intent"`
	Tier       int        `json:"tier"`
	Confidence float64    `json:"confidence"`
	Params     params.Bag `json:"params"`
	Keywords   []string   `json:"keywords"`
	Score      int        `json:"score"`
}

// Classifier is safe for concurrent use; it only reads the catalog
type Classifier struct {
	cat *Catalog
}

// NewClassifier wraps a compiled catalog
func NewClassifier(cat *Catalog) *Classifier { return &Classifier{cat: cat} }

// Catalog returns the compiled catalog
func (c *Classifier) Catalog() *Catalog { return c.cat }

// Compare orders candidates: higher score, lower tier, more keywords, longer keywords, then name
func Compare(a, b Candidate) int {
	if d := cmp.Compare(b.Score, a.Score); d != 0 {
		return d
	}
	if d := cmp.Compare(a.Tier, b.Tier); d != 0 {
		return d
	}
	if d := cmp.Compare(b.Matched, a.Matched); d != 0 {
		return d
	}
	if d := cmp.Compare(b.MatchedLen, a.MatchedLen); d != 0 {
		return d
	}
	return strings.Compare(a.Intent, b.Intent)
}

// Classify picks the winning intent; false means nothing in the catalog matched
func (c *Classifier) Classify(question string, bag params.Bag) (Result, bool) {
	ranked := c.rank(question, bag)
	if len(ranked) == 0 || ranked[0].Dropped != "" {
		return Result{Params: bag}, false
	}
	w := ranked[0]
	logger.Named("intent").Debug().
		Str("intent", w.Intent).
		Int("score", w.Score).
		Float64("confidence", w.Confidence).
		Int("candidates", len(ranked)).
		Msg("classified")
	return Result{
		Intent:     w.Intent,
		Tier:       w.Tier,
		Confidence: w.Confidence,
		Params:     bag,
		Keywords:   w.Keywords,
		Score:      w.Score,
	}, true
}

// Explain returns every candidate that matched: survivors ranked first, then dropped ones ranked
func (c *Classifier) Explain(question string, bag params.Bag) []Candidate {
	return c.rank(question, bag)
}

func (c *Classifier) rank(question string, bag params.Bag) []Candidate {
	tokens := normalize.Words(strings.ToLower(question))

	var all []Candidate
	for _, d := range c.cat.defs {
		if cand, ok := score(d, question, tokens, bag); ok {
			all = append(all, cand)
		}
	}

	specific, upper := false, false
	for _, cand := range all {
		if c.cat.IsSpecificAggregation(cand.Intent) {
			specific = true
		}
		if cand.Tier < 3 {
			upper = true
		}
	}
	for i := range all {
		switch {
		case upper && all[i].Tier == 3:
			all[i].Dropped = DroppedTier
		case specific && all[i].Intent == GenericAggregation:
			all[i].Dropped = DroppedExclusion
		}
	}

	slices.SortFunc(all, func(a, b Candidate) int {
		if ad, bd := a.Dropped != "", b.Dropped != ""; ad != bd {
			if ad {
				return 1
			}
			return -1
		}
		return Compare(a, b)
	})
	return all
}

// score applies keyword weights, then parameter signals when at least one keyword matched
func score(d Definition, question string, tokens []string, bag params.Bag) (Candidate, bool) {
	cand := Candidate{Intent: d.Name, Tier: d.Tier}
	for _, k := range d.Keywords {
		s, ok := k.match(question, tokens)
		if !ok {
			continue
		}
		cand.Score += s
		cand.Matched++
		cand.MatchedLen += len(k.Text)
		cand.Keywords = append(cand.Keywords, k.Text)
	}
	if cand.Matched == 0 {
		return Candidate{}, false
	}
	for _, s := range d.Signals {
		if bag.Count(s.Param) >= s.Min {
			cand.Score += s.Score
		}
	}
	cand.Confidence = Confidence(cand.Score, d.Tier)
	return cand, true
}

// Confidence normalizes a score for its tier and clamps to [0,1]
func Confidence(score, tier int) float64 {
	div := Divisor(tier)
	if div == 0 || score <= 0 {
		return 0
	}
	return min(float64(score)/div, 1)
}

// match scores one keyword; multi-word keywords need every word, in any order
func (k Keyword) match(question string, tokens []string) (int, bool) {
	for i, re := range k.words {
		if !re.MatchString(question) && !fuzzy.ContainsWord(tokens, k.Words[i]) {
			return 0, false
		}
	}
	s := wordWeight
	if len(k.Words) > 1 && !k.Generic {
		s = len(k.Words) * phraseWordWeight
		if k.phrase.MatchString(question) {
			s += exactPhraseBonus
		}
	}
	if k.Discriminator {
		s += discriminatorWeight
	}
	return s, true
}
