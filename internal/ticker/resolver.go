package ticker

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// Mention patterns, in confidence order. Explicit formats like "NASDAQ: AAPL"
// or "(AAPL)" beat bare ALL-CAPS tokens.
var (
	exchangePattern  = regexp.MustCompile(`\b(?:NASDAQ|NYSE|AMEX|OTC):\s*([A-Z]{1,5}(?:[.-][A-Z]{1,2})?)\b`)
	parenPattern     = regexp.MustCompile(`\(([A-Z]{1,5}(?:[.-][A-Z]{1,2})?)\)`)
	dollarPattern    = regexp.MustCompile(`\$([A-Z]{1,5}(?:[.-][A-Z]{1,2})?)\b`)
	delimiterPattern = regexp.MustCompile(`[A-Za-z0-9.&)]\s+[-–—]\s+([A-Z]{1,5}(?:[.-][A-Z]{1,2})?)\b`)
	allCapsPattern   = regexp.MustCompile(`\b([A-Z]{2,5}(?:[.-][A-Z]{1,2})?)\b`)
)

// Window sizes scanned for company-name matches. Longest first so
// "taiwan semiconductor" wins over "taiwan".
const maxWindowTokens = 6

// Resolver extracts a validated ticker symbol from free text. It never
// guesses: every candidate is checked against the known-ticker universe, and
// "no ticker" is a normal outcome, not an error.
type Resolver struct {
	dict     *Dictionary
	universe *Universe
	log      *logrus.Logger
}

// NewResolver builds a Resolver over the given dictionary and universe.
func NewResolver(dict *Dictionary, universe *Universe, log *logrus.Logger) *Resolver {
	return &Resolver{dict: dict, universe: universe, log: log}
}

// Resolve extracts a ticker from title+summary using layered strategies, first
// confirmed match wins. Returns "" when no strategy yields a valid candidate.
func (r *Resolver) Resolve(title, summary string) string {
	text := strings.TrimSpace(title + " " + summary)
	if text == "" {
		return ""
	}

	// Explicit mention formats, highest confidence first.
	for _, pattern := range []*regexp.Regexp{exchangePattern, parenPattern, dollarPattern, delimiterPattern} {
		if sym := r.firstValidMatch(pattern, text); sym != "" {
			return sym
		}
	}

	// Company-name / alias match over normalized token windows.
	if sym := r.matchCompanyName(text); sym != "" {
		return sym
	}

	// Bare ALL-CAPS token scan, last resort.
	return r.firstValidMatch(allCapsPattern, text)
}

func (r *Resolver) firstValidMatch(pattern *regexp.Regexp, text string) string {
	for _, m := range pattern.FindAllStringSubmatch(text, -1) {
		if sym := r.validateCandidate(m[1]); sym != "" {
			return sym
		}
	}
	return ""
}

// validateCandidate normalizes a raw candidate and accepts it only if it is
// not blacklisted and is a member of the known-ticker universe.
func (r *Resolver) validateCandidate(candidate string) string {
	sym := strings.ToUpper(strings.TrimSpace(candidate))
	if sym == "" {
		return ""
	}
	if r.dict.Blacklisted(sym) {
		return ""
	}
	if !r.universe.Contains(sym) {
		return ""
	}
	return sym
}

// matchCompanyName scans sliding windows of 1..maxWindowTokens normalized
// tokens against the merged company dictionary and the alias map. The longest
// matching window wins. Whole-phrase matches bypass the blacklist: they
// matched a specific company name, not a generic token.
func (r *Resolver) matchCompanyName(text string) string {
	tokens := r.dict.NormalizeTokens(text)
	if len(tokens) == 0 {
		return ""
	}

	for size := maxWindowTokens; size >= 1; size-- {
		if size > len(tokens) {
			continue
		}
		for start := 0; start+size <= len(tokens); start++ {
			phrase := strings.Join(tokens[start:start+size], " ")
			if sym, ok := r.dict.LookupCompany(phrase); ok {
				return sym
			}
			if sym, ok := r.dict.LookupAlias(phrase); ok {
				return sym
			}
		}
	}
	return ""
}
