package ticker

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed data/companies.yaml
var defaultCompaniesYAML []byte

//go:embed data/generated.yaml
var defaultGeneratedYAML []byte

type dictionaryFile struct {
	Companies map[string]string `yaml:"companies"`
	Aliases   map[string]string `yaml:"aliases"`
	StopWords []string          `yaml:"stop_words"`
	Blacklist []string          `yaml:"blacklist"`
}

// Dictionary holds the merged company-name and alias maps used for
// resolution, plus the normalization stopwords and the candidate blacklist.
// Built once at startup; read-only afterwards.
type Dictionary struct {
	companies map[string]string
	aliases   map[string]string
	stopWords map[string]struct{}
	blacklist map[string]struct{}
	universe  map[string]struct{}
}

// LoadDictionary builds a Dictionary from the curated seed and the generated
// dataset under dir. An empty dir loads the embedded defaults. The curated
// seed wins over the generated dataset on key collisions.
func LoadDictionary(dir string) (*Dictionary, error) {
	curated, generated := defaultCompaniesYAML, defaultGeneratedYAML

	if dir != "" {
		var err error
		curated, err = os.ReadFile(dir + "/companies.yaml")
		if err != nil {
			return nil, fmt.Errorf("failed to read companies.yaml: %w", err)
		}
		generated, err = os.ReadFile(dir + "/generated.yaml")
		if err != nil {
			return nil, fmt.Errorf("failed to read generated.yaml: %w", err)
		}
	}

	var seed, gen dictionaryFile
	if err := yaml.Unmarshal(curated, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse companies.yaml: %w", err)
	}
	if err := yaml.Unmarshal(generated, &gen); err != nil {
		return nil, fmt.Errorf("failed to parse generated.yaml: %w", err)
	}

	d := &Dictionary{
		companies: make(map[string]string, len(seed.Companies)+len(gen.Companies)),
		aliases:   make(map[string]string, len(seed.Aliases)),
		stopWords: make(map[string]struct{}, len(seed.StopWords)),
		blacklist: make(map[string]struct{}, len(seed.Blacklist)),
		universe:  make(map[string]struct{}),
	}

	for name, sym := range gen.Companies {
		d.companies[strings.ToLower(name)] = strings.ToUpper(sym)
	}
	// Seed entries overwrite generated ones.
	for name, sym := range seed.Companies {
		d.companies[strings.ToLower(name)] = strings.ToUpper(sym)
	}
	for alias, sym := range seed.Aliases {
		d.aliases[strings.ToLower(alias)] = strings.ToUpper(sym)
	}
	for _, w := range seed.StopWords {
		d.stopWords[strings.ToLower(w)] = struct{}{}
	}
	for _, w := range seed.Blacklist {
		d.blacklist[strings.ToLower(w)] = struct{}{}
	}

	for _, sym := range d.companies {
		d.universe[sym] = struct{}{}
	}
	for _, sym := range d.aliases {
		d.universe[sym] = struct{}{}
	}

	return d, nil
}

// LookupCompany returns the ticker for a normalized company phrase.
func (d *Dictionary) LookupCompany(phrase string) (string, bool) {
	sym, ok := d.companies[phrase]
	return sym, ok
}

// LookupAlias returns the ticker for a lowercase alias.
func (d *Dictionary) LookupAlias(alias string) (string, bool) {
	sym, ok := d.aliases[alias]
	return sym, ok
}

// Blacklisted reports whether a candidate token is a known false positive.
func (d *Dictionary) Blacklisted(token string) bool {
	_, ok := d.blacklist[strings.ToLower(token)]
	return ok
}

// Tickers returns the set of all known ticker symbols (company values plus
// alias values). The returned map is a copy.
func (d *Dictionary) Tickers() map[string]struct{} {
	out := make(map[string]struct{}, len(d.universe))
	for sym := range d.universe {
		out[sym] = struct{}{}
	}
	return out
}

// Normalize lowercases text, replaces punctuation with spaces, and drops
// corporate-suffix stopwords and single-character tokens.
func (d *Dictionary) Normalize(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	words := strings.Fields(b.String())
	kept := words[:0]
	for _, w := range words {
		if len(w) <= 1 {
			continue
		}
		if _, stop := d.stopWords[w]; stop {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// NormalizeTokens is Normalize split into tokens, for window scanning.
func (d *Dictionary) NormalizeTokens(text string) []string {
	n := d.Normalize(text)
	if n == "" {
		return nil
	}
	return strings.Fields(n)
}
