package detection

import (
	"context"
	"strings"

	"golang.org/x/net/idna"
)

// homographWeight is added once per distinct look-alike character
const homographWeight = 15

// HomographStrategy detects characters from other scripts that imitate Latin letters
type HomographStrategy struct{}

// NewHomographStrategy creates a new homograph detection strategy
func NewHomographStrategy() *HomographStrategy {
	return &HomographStrategy{}
}

// Name returns the strategy name
func (s *HomographStrategy) Name() string {
	return "Homograph Characters"
}

// Extract records homograph characters of the target domain
func (s *HomographStrategy) Extract(ctx context.Context, target Target, signals *Signals) {
	signals.Homograph = s.Detect(target.Domain)
}

// Detect scans the domain for Cyrillic, Greek and accented Latin letters.
// Hosts in punycode form are decoded first so "xn--pple-43d.com" is seen as "аpple.com".
// The score counts distinct characters only; repeats add nothing.
func (s *HomographStrategy) Detect(domainName string) HomographResult {
	if strings.Contains(domainName, "xn--") {
		if decoded, err := idna.Punycode.ToUnicode(domainName); err == nil {
			domainName = decoded
		}
	}

	seen := make(map[rune]struct{})
	characters := make([]string, 0)
	for _, r := range strings.ToLower(domainName) {
		if !isHomographRune(r) {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		characters = append(characters, string(r))
	}

	if len(characters) == 0 {
		return HomographResult{Characters: characters}
	}
	return HomographResult{
		Detected:   true,
		Score:      homographWeight * len(characters),
		Characters: characters,
	}
}

// isHomographRune reports whether r is a lowercase Cyrillic (а-я, ё),
// Greek (α-ω, without final sigma) or accented Latin (à-ÿ, without ÷) letter
func isHomographRune(r rune) bool {
	switch {
	case r >= 'а' && r <= 'я', r == 'ё':
		return true
	case r >= 'α' && r <= 'ω' && r != 'ς':
		return true
	case r >= 'à' && r <= 'ÿ' && r != '÷':
		return true
	default:
		return false
	}
}
