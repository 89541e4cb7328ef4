package search

import (
	"sort"
	"strings"
	"unicode"
)

// Match scores per hit class. Exact name beats keyword beats synonym beats
// plain substring, and scores accumulate across query tokens.
const (
	scoreName      = 100
	scoreKeyword   = 40
	scoreSynonym   = 25
	scoreSubstring = 10
)

// Result is one scored catalog hit.
type Result struct {
	Category Category `json:"category"`
	Score    int      `json:"score"`
}

// Matcher matches free-text queries against the category catalog.
type Matcher struct {
	catalog  []Category
	synonyms map[string][]string

	// Per catalog index: tokens of the name, tokens of single-word keywords,
	// tokens appearing inside multi-word keywords, and the normalized
	// multi-word keywords themselves. Multi-word keywords only score as whole
	// phrases at keyword rank; their individual words never do, so a keyword
	// like "move out" cannot claim every query containing "out".
	nameTokens    []map[string]struct{}
	keywordTokens []map[string]struct{}
	phraseTokens  []map[string]struct{}
	phrases       [][]string
}

// NewMatcher builds a matcher over catalog with the given synonym table.
func NewMatcher(catalog []Category, synonyms map[string][]string) *Matcher {
	m := &Matcher{
		catalog:       catalog,
		synonyms:      synonyms,
		nameTokens:    make([]map[string]struct{}, len(catalog)),
		keywordTokens: make([]map[string]struct{}, len(catalog)),
		phraseTokens:  make([]map[string]struct{}, len(catalog)),
		phrases:       make([][]string, len(catalog)),
	}
	for i, c := range catalog {
		m.nameTokens[i] = tokenSet(Tokenize(c.Name))
		kw := make(map[string]struct{})
		pt := make(map[string]struct{})
		for _, k := range c.Keywords {
			toks := Tokenize(k)
			if len(toks) <= 1 {
				for _, tok := range toks {
					kw[tok] = struct{}{}
				}
				continue
			}
			m.phrases[i] = append(m.phrases[i], strings.Join(toks, " "))
			for _, tok := range toks {
				pt[tok] = struct{}{}
			}
		}
		m.keywordTokens[i] = kw
		m.phraseTokens[i] = pt
	}
	return m
}

// NewDefaultMatcher builds a matcher over the built-in catalog and synonyms.
func NewDefaultMatcher() *Matcher {
	return NewMatcher(DefaultCatalog(), DefaultSynonyms())
}

// Match returns categories relevant to query ordered by score, ties broken
// by name. An empty or unmatchable query returns no results. limit <= 0
// means no limit.
func (m *Matcher) Match(query string, limit int) []Result {
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return nil
	}

	scores := make([]int, len(m.catalog))
	for _, tok := range tokens {
		m.scoreToken(tok, scores)
	}
	m.scorePhrases(tokens, scores)

	var results []Result
	for i, s := range scores {
		if s > 0 {
			results = append(results, Result{Category: m.catalog[i], Score: s})
		}
	}
	sort.Slice(results, func(a, b int) bool {
		if results[a].Score != results[b].Score {
			return results[a].Score > results[b].Score
		}
		return results[a].Category.Name < results[b].Category.Name
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// scoreToken adds tok's contribution to every category score. Synonym
// expansions count at synonym rank no matter what they resolve to.
func (m *Matcher) scoreToken(tok string, scores []int) {
	for i := range m.catalog {
		scores[i] += m.tokenScore(i, tok, false)
	}
	for _, expanded := range m.synonyms[tok] {
		for i := range m.catalog {
			if m.tokenScore(i, expanded, true) > 0 {
				scores[i] += scoreSynonym
			}
		}
	}
}

// scorePhrases awards keyword rank for every multi-word keyword that appears
// whole, on token boundaries, inside the query.
func (m *Matcher) scorePhrases(tokens []string, scores []int) {
	joined := " " + strings.Join(tokens, " ") + " "
	for i := range m.catalog {
		for _, phrase := range m.phrases[i] {
			if strings.Contains(joined, " "+phrase+" ") {
				scores[i] += scoreKeyword
			}
		}
	}
}

// tokenScore rates one token against one category. When viaSynonym is set
// the caller only needs hit/no-hit; the returned rank is ignored.
func (m *Matcher) tokenScore(idx int, tok string, viaSynonym bool) int {
	if _, ok := m.nameTokens[idx][tok]; ok {
		return scoreName
	}
	if _, ok := m.keywordTokens[idx][tok]; ok {
		return scoreKeyword
	}
	if viaSynonym {
		// Synonym expansions may resolve to a word of a phrase keyword,
		// e.g. "aircon" expanding to "air" and "conditioning".
		if _, ok := m.phraseTokens[idx][tok]; ok {
			return scoreSynonym
		}
		return 0
	}
	// Substring fallback catches partial terms like "plumb".
	if len(tok) >= 3 {
		for existing := range m.keywordTokens[idx] {
			if strings.Contains(existing, tok) {
				return scoreSubstring
			}
		}
		for existing := range m.phraseTokens[idx] {
			if strings.Contains(existing, tok) {
				return scoreSubstring
			}
		}
		for existing := range m.nameTokens[idx] {
			if strings.Contains(existing, tok) {
				return scoreSubstring
			}
		}
	}
	return 0
}

// Tokenize lowercases the input and splits it on any non-alphanumeric rune.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}
