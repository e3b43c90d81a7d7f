// Package block defines the masked block wire form and its tokenizer.
//
// A masked block is an in-text token of the form {ID=<id>, TXT='<label>'}
// referencing a catalog entry. On input the id may be bare or quoted and the
// label may use single or double quotes; output is always canonical with a
// bare id and single-quoted label. A secondary legacy form {UPPER_SNAKE} is
// recognized for demasking only.
package block

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind distinguishes already-masked spans from plain text.
type Kind int

const (
	// KindPlain marks text that is still eligible for masking.
	KindPlain Kind = iota
	// KindBlock marks a masked block that must never be rewritten.
	KindBlock
)

// Segment is one span of a segmented text.
type Segment struct {
	Kind Kind
	// Text is the raw span content. For KindBlock it is the full block token
	// exactly as it appeared in the input.
	Text string
	// ID and Placeholder are set only for KindBlock.
	ID          string
	Placeholder string
}

var legacyRe = regexp.MustCompile(`\{([A-Z_][A-Z0-9_]*)\}`)

// Format renders the canonical wire form of a block.
func Format(id, placeholder string) string {
	return fmt.Sprintf("{ID=%s, TXT='%s'}", id, placeholder)
}

// Split segments text into an ordered sequence of block and plain spans,
// scanning left to right with non-overlapping block matches. Joining the
// segment texts reproduces the input exactly.
func Split(text string) []Segment {
	var segments []Segment
	start := 0

	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		id, placeholder, n, ok := parse(text[i:])
		if !ok {
			continue
		}
		if i > start {
			segments = append(segments, Segment{Kind: KindPlain, Text: text[start:i]})
		}
		segments = append(segments, Segment{
			Kind:        KindBlock,
			Text:        text[i : i+n],
			ID:          id,
			Placeholder: placeholder,
		})
		i += n - 1
		start = i + 1
	}

	if start < len(text) {
		segments = append(segments, Segment{Kind: KindPlain, Text: text[start:]})
	}
	return segments
}

// Join concatenates segments back into text in order.
func Join(segments []Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		b.WriteString(seg.Text)
	}
	return b.String()
}

// ReplaceAll rewrites every block in text with the value returned by resolve.
// Blocks that resolve returns false for are left verbatim.
func ReplaceAll(text string, resolve func(id, placeholder string) (string, bool)) string {
	segments := Split(text)
	var b strings.Builder
	for _, seg := range segments {
		if seg.Kind == KindBlock {
			if replacement, ok := resolve(seg.ID, seg.Placeholder); ok {
				b.WriteString(replacement)
				continue
			}
		}
		b.WriteString(seg.Text)
	}
	return b.String()
}

// ReplaceLegacy rewrites every legacy {UPPER_SNAKE} token with the value
// returned by resolve. Unresolved tokens are left verbatim.
func ReplaceLegacy(text string, resolve func(token string) (string, bool)) string {
	return legacyRe.ReplaceAllStringFunc(text, func(match string) string {
		token := match[1 : len(match)-1]
		if replacement, ok := resolve(token); ok {
			return replacement
		}
		return match
	})
}

// parse attempts to read one block token at the start of s (which begins with
// '{'). It returns the decoded id and placeholder and the token length.
func parse(s string) (id, placeholder string, n int, ok bool) {
	i := 1 // past '{'
	i = skipSpaces(s, i)
	if !hasLiteral(s, i, "ID") {
		return "", "", 0, false
	}
	i = skipSpaces(s, i+2)
	if i >= len(s) || s[i] != '=' {
		return "", "", 0, false
	}
	i = skipSpaces(s, i+1)

	id, i, ok = parseValue(s, i)
	if !ok {
		return "", "", 0, false
	}

	i = skipSpaces(s, i)
	if i >= len(s) || s[i] != ',' {
		return "", "", 0, false
	}
	i = skipSpaces(s, i+1)
	if !hasLiteral(s, i, "TXT") {
		return "", "", 0, false
	}
	i = skipSpaces(s, i+3)
	if i >= len(s) || s[i] != '=' {
		return "", "", 0, false
	}
	i = skipSpaces(s, i+1)

	// The placeholder must always be quoted.
	if i >= len(s) || (s[i] != '\'' && s[i] != '"') {
		return "", "", 0, false
	}
	placeholder, i, ok = parseQuoted(s, i)
	if !ok {
		return "", "", 0, false
	}

	i = skipSpaces(s, i)
	if i >= len(s) || s[i] != '}' {
		return "", "", 0, false
	}
	return id, placeholder, i + 1, true
}

// parseValue reads a quoted or bare value. A bare value runs up to the next
// ',' or '}' and is trimmed of surrounding whitespace.
func parseValue(s string, i int) (string, int, bool) {
	if i < len(s) && (s[i] == '\'' || s[i] == '"') {
		return parseQuoted(s, i)
	}
	start := i
	for i < len(s) && s[i] != ',' && s[i] != '}' && s[i] != '{' {
		i++
	}
	value := strings.TrimSpace(s[start:i])
	if value == "" {
		return "", i, false
	}
	return value, i, true
}

func parseQuoted(s string, i int) (string, int, bool) {
	quote := s[i]
	i++
	start := i
	for i < len(s) && s[i] != quote {
		// A block never spans lines or nests.
		if s[i] == '{' || s[i] == '}' || s[i] == '\n' {
			return "", i, false
		}
		i++
	}
	if i >= len(s) {
		return "", i, false
	}
	return s[start:i], i + 1, true
}

func skipSpaces(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

func hasLiteral(s string, i int, lit string) bool {
	return i+len(lit) <= len(s) && s[i:i+len(lit)] == lit
}
