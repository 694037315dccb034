// Package intent scores operator questions against the embedded intent catalog
package intent

import (
	_ "embed"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"opsroute/internal/core/params"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embedded []byte

// Tier divisors turn a raw score into a confidence
var tierDivisor = map[int]float64{1: 18, 2: 20, 3: 25}

type rawKeyword struct {
	Text          string `yaml:"text"`
	Discriminator bool   `yaml:"discriminator"`
}

type rawSignal struct {
	Param string `yaml:"param"`
	Min   int    `yaml:"min"`
	Score int    `yaml:"score"`
}

type rawIntent struct {
	Name     string       `yaml:"name"`
	Tier     int          `yaml:"tier"`
	Keywords []rawKeyword `yaml:"keywords"`
	Signals  []rawSignal  `yaml:"signals"`
}

type rawCatalog struct {
	Version      int      `yaml:"version"`
	GenericWords []string `yaml:"generic_words"`
	Aggregation  struct {
		Specific []string `yaml:"specific"`
	} `yaml:"aggregation"`
	Intents []rawIntent `yaml:"intents"`
}

// Keyword is a compiled catalog keyword
type Keyword struct {
	Text          string
	Discriminator bool
	Words         []string
	Generic       bool // every word is a generic filler word

	words  []*regexp.Regexp
	phrase *regexp.Regexp
}

// Signal adds Score when the bag holds at least Min values of Param
type Signal struct {
	Param string
	Min   int
	Score int
}

// Definition is one compiled intent
type Definition struct {
	Name     string
	Tier     int
	Keywords []Keyword
	Signals  []Signal
}

// Catalog is the immutable compiled intent set
type Catalog struct {
	defs     []Definition
	byName   map[string]int
	specific map[string]struct{}
}

// Load compiles the embedded catalog
func Load() (*Catalog, error) { return Parse(embedded) }

// MustLoad is Load for process startup
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse compiles a catalog document; every regex is built here, once
func Parse(doc []byte) (*Catalog, error) {
	var rc rawCatalog
	if err := yaml.Unmarshal(doc, &rc); err != nil {
		return nil, fmt.Errorf("intent: parse catalog: %w", err)
	}
	if rc.Version != 1 {
		return nil, fmt.Errorf("intent: unsupported catalog version %d (want 1)", rc.Version)
	}

	generic := make(map[string]bool, len(rc.GenericWords))
	for _, w := range rc.GenericWords {
		generic[strings.ToLower(strings.TrimSpace(w))] = true
	}

	c := &Catalog{byName: make(map[string]int, len(rc.Intents)), specific: map[string]struct{}{}}
	for _, ri := range rc.Intents {
		name := strings.TrimSpace(ri.Name)
		if name == "" {
			return nil, fmt.Errorf("intent: unnamed intent")
		}
		if _, dup := c.byName[name]; dup {
			return nil, fmt.Errorf("intent: duplicate intent %q", name)
		}
		if _, ok := tierDivisor[ri.Tier]; !ok {
			return nil, fmt.Errorf("intent: %s: tier %d not in 1..3", name, ri.Tier)
		}
		if len(ri.Keywords) == 0 {
			return nil, fmt.Errorf("intent: %s: no keywords", name)
		}

		d := Definition{Name: name, Tier: ri.Tier}
		for _, rk := range ri.Keywords {
			k, err := compileKeyword(rk, generic)
			if err != nil {
				return nil, fmt.Errorf("intent: %s: %w", name, err)
			}
			d.Keywords = append(d.Keywords, k)
		}
		for _, rs := range ri.Signals {
			if !params.Known(rs.Param) {
				return nil, fmt.Errorf("intent: %s: unknown signal param %q", name, rs.Param)
			}
			d.Signals = append(d.Signals, Signal{Param: rs.Param, Min: max(rs.Min, 1), Score: rs.Score})
		}
		c.byName[name] = len(c.defs)
		c.defs = append(c.defs, d)
	}

	for _, s := range rc.Aggregation.Specific {
		if _, ok := c.byName[s]; !ok {
			return nil, fmt.Errorf("intent: aggregation.specific names unknown intent %q", s)
		}
		c.specific[s] = struct{}{}
	}
	return c, nil
}

func compileKeyword(rk rawKeyword, generic map[string]bool) (Keyword, error) {
	text := strings.ToLower(strings.Join(strings.Fields(rk.Text), " "))
	if text == "" {
		return Keyword{}, fmt.Errorf("empty keyword")
	}
	k := Keyword{Text: text, Discriminator: rk.Discriminator, Words: strings.Fields(text), Generic: true}
	quoted := make([]string, len(k.Words))
	for i, w := range k.Words {
		if !generic[w] {
			k.Generic = false
		}
		quoted[i] = regexp.QuoteMeta(w)
		re, err := regexp.Compile(`(?i)\b` + quoted[i] + `\b`)
		if err != nil {
			return Keyword{}, fmt.Errorf("keyword %q: %w", text, err)
		}
		k.words = append(k.words, re)
	}
	if len(k.Words) > 1 {
		re, err := regexp.Compile(`(?i)\b` + strings.Join(quoted, `\s+`) + `\b`)
		if err != nil {
			return Keyword{}, fmt.Errorf("keyword %q: %w", text, err)
		}
		k.phrase = re
	}
	return k, nil
}

// Intents returns the definitions in catalog order
func (c *Catalog) Intents() []Definition { return slices.Clone(c.defs) }

// Lookup finds a definition by name
func (c *Catalog) Lookup(name string) (Definition, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Definition{}, false
	}
	return c.defs[i], true
}

// IsSpecificAggregation reports whether name is listed under aggregation.specific
func (c *Catalog) IsSpecificAggregation(name string) bool {
	_, ok := c.specific[name]
	return ok
}

// SpecificAggregations lists aggregation.specific in catalog order
func (c *Catalog) SpecificAggregations() []string {
	var out []string
	for _, d := range c.defs {
		if c.IsSpecificAggregation(d.Name) {
			out = append(out, d.Name)
		}
	}
	return out
}

// Divisor is the confidence normalizer for a tier
func Divisor(tier int) float64 { return tierDivisor[tier] }
