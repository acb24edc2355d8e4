// Package lexicon holds the static classification data: sector trigger
// keywords, procedure triage rules, price tables and coordinator message
// templates. A Lexicon is loaded once at startup and is read-only afterwards;
// components receive it by injection rather than reaching for globals.
package lexicon

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/antigravity-ventures/thaiturk/internal/model"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Lexicon load errors.
var (
	ErrEmptyLexicon    = errors.New("lexicon has no sector keywords")
	ErrUnknownSector   = errors.New("lexicon references unknown sector")
	ErrNoProcedures    = errors.New("lexicon has no procedure rules")
	ErrMissingFallback = errors.New("lexicon is missing the en coordinator template")
)

// ProcedureRule maps a trigger substring to a procedure category.
type ProcedureRule struct {
	Keyword  string `yaml:"keyword"`
	Category string `yaml:"category"`
}

// RegionLocale describes one advertising region for campaign planning.
type RegionLocale struct {
	Language  string   `yaml:"language"`
	Currency  string   `yaml:"currency"`
	Platforms []string `yaml:"platforms"`
}

type fileFormat struct {
	Sectors               map[string][]string     `yaml:"sectors"`
	Prices                map[string]float64      `yaml:"prices"`
	CoordinatorMessages   map[string]string       `yaml:"coordinator_messages"`
	Regions               map[string]RegionLocale `yaml:"regions"`
	Procedures            []ProcedureRule         `yaml:"procedures"`
	FallbackPriceUSD      float64                 `yaml:"fallback_price_usd"`
	DefaultCommissionRate float64                 `yaml:"default_commission_rate"`
}

// Lexicon is the immutable classification dataset.
type Lexicon struct {
	sectors               map[model.Sector][]string
	prices                map[string]float64
	messages              map[string]string
	regions               map[string]RegionLocale
	procedures            []ProcedureRule
	fallbackPriceUSD      float64
	defaultCommissionRate float64
}

// Default parses the embedded lexicon shipped with the binary.
func Default() (*Lexicon, error) {
	return parse(defaultsYAML)
}

// Load reads a lexicon from an operator-supplied YAML file.
func Load(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file: %w", err)
	}
	lex, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("lexicon file %s: %w", path, err)
	}
	return lex, nil
}

func parse(data []byte) (*Lexicon, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon: %w", err)
	}

	if len(f.Sectors) == 0 {
		return nil, ErrEmptyLexicon
	}
	sectors := make(map[model.Sector][]string, len(f.Sectors))
	for name, keywords := range f.Sectors {
		sector := model.Sector(name)
		if !sector.Routable() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSector, name)
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("%w: sector %s", ErrEmptyLexicon, name)
		}
		sectors[sector] = keywords
	}

	if len(f.Procedures) == 0 {
		return nil, ErrNoProcedures
	}
	for i, rule := range f.Procedures {
		if strings.TrimSpace(rule.Keyword) == "" || strings.TrimSpace(rule.Category) == "" {
			return nil, fmt.Errorf("procedure rule %d: keyword and category are required", i)
		}
	}

	if _, ok := f.CoordinatorMessages["en"]; !ok {
		return nil, ErrMissingFallback
	}

	if f.FallbackPriceUSD <= 0 {
		f.FallbackPriceUSD = 3000
	}
	if f.DefaultCommissionRate <= 0 {
		f.DefaultCommissionRate = 0.22
	}

	return &Lexicon{
		sectors:               sectors,
		procedures:            f.Procedures,
		prices:                f.Prices,
		messages:              f.CoordinatorMessages,
		regions:               f.Regions,
		fallbackPriceUSD:      f.FallbackPriceUSD,
		defaultCommissionRate: f.DefaultCommissionRate,
	}, nil
}

// Keywords returns the trigger terms for a sector in declaration order.
// Callers must not mutate the returned slice.
func (l *Lexicon) Keywords(sector model.Sector) []string {
	return l.sectors[sector]
}

// ProcedureRules returns the ordered procedure triage rules.
func (l *Lexicon) ProcedureRules() []ProcedureRule {
	return l.procedures
}

// BasePriceUSD returns the catalog price for a procedure category, falling
// back to the configured default for unknown categories.
func (l *Lexicon) BasePriceUSD(category string) float64 {
	if price, ok := l.prices[category]; ok {
		return price
	}
	return l.fallbackPriceUSD
}

// DefaultCommissionRate is the rate applied when no hospital matched.
func (l *Lexicon) DefaultCommissionRate() float64 {
	return l.defaultCommissionRate
}

// CoordinatorMessage renders the patient-facing template for the language,
// falling back to English for unsupported languages.
func (l *Lexicon) CoordinatorMessage(lang, patientID, hospital string, costUSD float64) string {
	template, ok := l.messages[lang]
	if !ok {
		template = l.messages["en"]
	}
	r := strings.NewReplacer(
		"{patient_id}", patientID,
		"{hospital}", hospital,
		"{cost}", fmt.Sprintf("%.0f", costUSD),
	)
	return r.Replace(template)
}

// Region returns the locale profile for an advertising region.
func (l *Lexicon) Region(name string) (RegionLocale, bool) {
	locale, ok := l.regions[name]
	return locale, ok
}

// RegionNames returns the configured advertising regions, sorted.
func (l *Lexicon) RegionNames() []string {
	names := make([]string, 0, len(l.regions))
	for name := range l.regions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
