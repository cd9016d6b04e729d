package scoring

import (
	"regexp"
	"strings"
)

const maxReasonIndicators = 3

// Loose ticker shapes: $XXXX, (XXXX), XXXX: — enough to keep an article even
// when no indicator term appears.
var tickerShapePattern = regexp.MustCompile(`\$[A-Z]{1,5}\b|\([A-Z]{1,5}\)|\b[A-Z]{2,5}:`)

// Relevant reports whether an article looks stock-market related, with a
// human-readable reason either way. Run before ticker resolution so clearly
// off-topic articles never reach the rest of the pipeline.
func (s *Scorer) Relevant(title, summary string) (bool, string) {
	text := strings.ToLower(title + " " + summary)

	var found []string
	for _, indicator := range s.indicators {
		if containsWord(text, indicator) {
			found = append(found, indicator)
			if len(found) == maxReasonIndicators {
				break
			}
		}
	}
	if len(found) > 0 {
		return true, "stock market indicators: " + strings.Join(found, ", ")
	}

	if tickerShapePattern.MatchString(title + " " + summary) {
		return true, "contains ticker symbol"
	}

	var excluded []string
	for _, term := range s.exclusions {
		if strings.Contains(text, term) {
			excluded = append(excluded, term)
			if len(excluded) == 2 {
				break
			}
		}
	}
	if len(excluded) > 0 {
		return false, "not stock-related: " + strings.Join(excluded, ", ")
	}

	return false, "no stock market indicators found"
}

// containsWord does a word-boundary match so "eps" does not fire inside
// "recipes".
func containsWord(text, phrase string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], phrase)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(phrase)
		beforeOK := start == 0 || !isWordChar(text[start-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
