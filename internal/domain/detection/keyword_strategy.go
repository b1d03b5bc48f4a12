package detection

import (
	"context"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// contextMultiplier is the score bonus per matched context term
const contextMultiplier = 0.5

// KeywordStrategy detects brand and lure words used together with phishing context.
//
// A bare brand mention is not penalized: a rule only fires when its word and at
// least one of its context terms appear in the domain or URL.
type KeywordStrategy struct {
	rules   []KeywordRule
	terms   []string // automaton vocabulary, index-aligned with matcher hits
	matcher *ahocorasick.Matcher
}

// NewKeywordStrategy builds the Aho-Corasick automaton over every rule word and context term
func NewKeywordStrategy(registry *Registry) *KeywordStrategy {
	seen := make(map[string]struct{})
	terms := make([]string, 0)
	add := func(term string) {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			return
		}
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}
	for _, rule := range registry.KeywordRules {
		add(rule.Word)
		for _, ctxTerm := range rule.ContextTerms {
			add(ctxTerm)
		}
	}

	s := &KeywordStrategy{rules: registry.KeywordRules, terms: terms}
	if len(terms) > 0 {
		s.matcher = ahocorasick.NewStringMatcher(terms)
	}
	return s
}

// Name returns the strategy name
func (s *KeywordStrategy) Name() string {
	return "Phishing Keywords"
}

// Extract records keyword matches for the target
func (s *KeywordStrategy) Extract(ctx context.Context, target Target, signals *Signals) {
	signals.Keywords = s.Match(target.Domain, target.URL)
}

// Match scores every rule whose word appears alongside at least one context term.
// Score per rule is base_weight * (1 + context_hits * 0.5); the total is not capped here.
func (s *KeywordStrategy) Match(domainName, rawURL string) KeywordResult {
	result := KeywordResult{Matches: make([]KeywordMatch, 0)}
	if s.matcher == nil {
		return result
	}

	// Single pass over domain and URL; the space keeps terms from spanning both
	text := strings.ToLower(domainName + " " + rawURL)
	found := make(map[string]bool)
	for _, idx := range s.matcher.MatchThreadSafe([]byte(text)) {
		if idx < len(s.terms) {
			found[s.terms[idx]] = true
		}
	}

	for _, rule := range s.rules {
		if !found[strings.ToLower(rule.Word)] {
			continue
		}
		contextHits := 0
		for _, ctxTerm := range rule.ContextTerms {
			if found[strings.ToLower(ctxTerm)] {
				contextHits++
			}
		}
		if contextHits == 0 {
			continue
		}

		score := rule.BaseWeight * (1 + float64(contextHits)*contextMultiplier)
		result.Score += score
		result.Matches = append(result.Matches, KeywordMatch{
			Word:        rule.Word,
			ContextHits: contextHits,
			Score:       score,
		})
	}

	return result
}
