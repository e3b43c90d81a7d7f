// Package classify assigns a semantic category to a text fragment and derives
// the human-readable placeholder label used when the fragment is masked.
package classify

import (
	"regexp"
	"strings"
)

// Category is the semantic category of a sensitive value.
type Category string

// Supported categories, from most to least specific.
const (
	CategoryEmail   Category = "email"
	CategoryPhone   Category = "phone"
	CategorySocial  Category = "social"
	CategoryCompany Category = "company"
	CategoryProduct Category = "product"
	CategoryPerson  Category = "person"
	CategoryGeneric Category = "generic"
)

var (
	emailRe = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	phoneRe = regexp.MustCompile(`^[+\d().\-\s]+$`)

	// Known social network domains, matched only when followed by a path.
	socialRe = regexp.MustCompile(`\b(?:facebook\.com|fb\.com|instagram\.com|ig\.me|t\.me|telegram\.me|vk\.com|x\.com|twitter\.com|linkedin\.com|ok\.ru|youtube\.com|github\.com)/`)
)

var (
	companyKeywords = []string{"llc", "inc", "ooo", "ооо", "company", "компания"}
	productKeywords = []string{"product", "продукт", "model", "модель"}
	personKeywords  = []string{"mr ", "ms ", "mrs ", "д-р", "г-н", "г-жа"}
)

// Classify determines the category of value. Checks run in precedence order;
// the first match wins.
func Classify(value string) Category {
	v := strings.TrimSpace(value)
	lower := strings.ToLower(v)

	if emailRe.MatchString(v) {
		return CategoryEmail
	}
	if n := countDigits(v); n >= 9 && n <= 15 && phoneRe.MatchString(v) {
		return CategoryPhone
	}
	if socialRe.MatchString(lower) {
		return CategorySocial
	}
	if containsAny(lower, companyKeywords) {
		return CategoryCompany
	}
	if containsAny(lower, productKeywords) {
		return CategoryProduct
	}
	if containsAny(lower, personKeywords) {
		return CategoryPerson
	}
	return CategoryGeneric
}

// DerivePlaceholder maps the value's category to its fixed placeholder label.
// Person and generic intentionally share the same label.
func DerivePlaceholder(value string) string {
	switch Classify(value) {
	case CategoryEmail:
		return "Email"
	case CategoryPhone:
		return "Phone number"
	case CategorySocial:
		return "Account"
	case CategoryCompany:
		return "Company 1"
	case CategoryProduct:
		return "Product A"
	default:
		return "PersonX"
	}
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

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
