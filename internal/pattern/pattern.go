// Package pattern provides regex-driven scanners for high-confidence sensitive
// substrings: email addresses, phone-like digit runs, and social network links.
package pattern

import (
	"regexp"
	"strings"
)

// Rule pairs a scanning regex with an optional validator applied to each match.
type Rule struct {
	Name     string
	Pattern  *regexp.Regexp
	Validate func(match string) bool
}

var (
	emailRe  = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phoneRe  = regexp.MustCompile(`[+\d().\-\s]{9,}`)
	urlRe    = regexp.MustCompile(`https?://\S+`)
	socialRe = regexp.MustCompile(`\b(?:facebook\.com|fb\.com|instagram\.com|ig\.me|t\.me|telegram\.me|vk\.com|x\.com|twitter\.com|linkedin\.com|ok\.ru|youtube\.com|github\.com)/`)
)

// Extractor pulls sensitive substrings out of text using its rule set.
type Extractor struct {
	rules []Rule
}

// NewExtractor creates an extractor with the default rules.
func NewExtractor() *Extractor {
	return &Extractor{
		rules: []Rule{
			{
				Name:    "email",
				Pattern: emailRe,
			},
			{
				Name:    "phone",
				Pattern: phoneRe,
				Validate: func(match string) bool {
					n := countDigits(match)
					return n >= 9 && n <= 15
				},
			},
			{
				Name:    "social_url",
				Pattern: urlRe,
				Validate: func(match string) bool {
					return socialRe.MatchString(strings.ToLower(match))
				},
			},
		},
	}
}

// Extract runs every rule over text and returns the deduplicated union of
// matched literals. Overlapping matches from different rules are retained as
// separate candidates unless their text is identical.
func (e *Extractor) Extract(text string) []string {
	seen := make(map[string]struct{})
	var results []string

	for _, rule := range e.rules {
		for _, match := range rule.Pattern.FindAllString(text, -1) {
			if rule.Validate != nil && !rule.Validate(match) {
				continue
			}
			if _, ok := seen[match]; ok {
				continue
			}
			seen[match] = struct{}{}
			results = append(results, match)
		}
	}

	return results
}

// RuleCount returns the number of registered rules.
func (e *Extractor) RuleCount() int {
	return len(e.rules)
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
