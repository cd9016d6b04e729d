package scoring

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/keywords.yaml
var defaultKeywordsYAML []byte

// NoKeywordHit is the reason reported when nothing in the table matched.
const NoKeywordHit = "no-keyword-hit"

const maxReasonPhrases = 8

type keywordFile struct {
	Keywords    map[string]int `yaml:"keywords"`
	SourceBonus map[string]int `yaml:"source_bonus"`
	Indicators  []string       `yaml:"relevance_indicators"`
	Exclusions  []string       `yaml:"relevance_exclusions"`
}

type weightedPhrase struct {
	phrase string
	weight int
}

// Scorer computes a bounded 0-100 impact score for an article from source
// reputation and keyword hits. Deterministic and side-effect free.
type Scorer struct {
	phrases     []weightedPhrase
	sourceBonus map[string]int
	indicators  []string
	exclusions  []string
}

// NewScorer loads the keyword table from path, or the embedded defaults when
// path is empty.
func NewScorer(path string) (*Scorer, error) {
	raw := defaultKeywordsYAML
	if path != "" {
		var err error
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read keyword table: %w", err)
		}
	}

	var kf keywordFile
	if err := yaml.Unmarshal(raw, &kf); err != nil {
		return nil, fmt.Errorf("failed to parse keyword table: %w", err)
	}
	if len(kf.Keywords) == 0 {
		return nil, fmt.Errorf("keyword table is empty")
	}

	s := &Scorer{
		phrases:     make([]weightedPhrase, 0, len(kf.Keywords)),
		sourceBonus: make(map[string]int, len(kf.SourceBonus)),
		indicators:  kf.Indicators,
		exclusions:  kf.Exclusions,
	}
	for phrase, weight := range kf.Keywords {
		s.phrases = append(s.phrases, weightedPhrase{phrase: strings.ToLower(phrase), weight: weight})
	}
	// Heaviest phrases first so the reason string leads with what mattered;
	// alphabetical within a weight keeps the output stable.
	sort.Slice(s.phrases, func(i, j int) bool {
		if s.phrases[i].weight != s.phrases[j].weight {
			return s.phrases[i].weight > s.phrases[j].weight
		}
		return s.phrases[i].phrase < s.phrases[j].phrase
	})
	for source, bonus := range kf.SourceBonus {
		s.sourceBonus[source] = bonus
	}
	return s, nil
}

// Score returns the impact score in [0,100] and a reason string listing the
// matched phrases (heaviest first, at most eight) or NoKeywordHit.
func (s *Scorer) Score(source, title, summary string) (int, string) {
	text := strings.ToLower(title + " " + summary)

	score := s.sourceBonus[source]
	var hits []string
	for _, p := range s.phrases {
		if strings.Contains(text, p.phrase) {
			score += p.weight
			hits = append(hits, p.phrase)
		}
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	if len(hits) == 0 {
		return score, NoKeywordHit
	}
	if len(hits) > maxReasonPhrases {
		hits = hits[:maxReasonPhrases]
	}
	return score, strings.Join(hits, ", ")
}
