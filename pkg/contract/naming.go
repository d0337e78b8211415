package contract

import (
	"regexp"
	"strings"
	"unicode"
)

// Case is a naming convention.
type Case int

// Known naming conventions.
const (
	UnknownCase Case = iota
	CamelCase
	SnakeCase
	PascalCase
)

// String implements fmt.Stringer.
func (c Case) String() string {
	switch c {
	case CamelCase:
		return "camelCase"
	case SnakeCase:
		return "snake_case"
	case PascalCase:
		return "PascalCase"
	}
	return "UNKNOWN"
}

var (
	camelRe  = regexp.MustCompile(`^[a-z][a-z0-9]*([A-Z][a-z0-9]+)+$`)
	snakeRe  = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)+$`)
	pascalRe = regexp.MustCompile(`^[A-Z][a-z0-9]+([A-Z][a-z0-9]+)*$`)
)

// DetectCase reports the naming convention of s.
// Single lowercase words match none of them.
func DetectCase(s string) Case {
	switch {
	case camelRe.MatchString(s):
		return CamelCase
	case snakeRe.MatchString(s):
		return SnakeCase
	case pascalRe.MatchString(s):
		return PascalCase
	}
	return UnknownCase
}

// IsIdentifier checks s is a letter or underscore followed by letters,
// digits and underscores. Encoding.Validate keeps these out of the
// delimiters, so an identifier never carries one.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for n, r := range s {
		switch {
		case r == '_' || (r < unicode.MaxASCII && unicode.IsLetter(r)):
		case n > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// ToSnake converts camelCase and PascalCase to snake_case.
func ToSnake(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for n, r := range runes {
		if n > 0 && unicode.IsUpper(r) {
			if prev := runes[n-1]; unicode.IsLower(prev) || unicode.IsDigit(prev) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// ToPascal converts a name in any supported convention to PascalCase.
func ToPascal(s string) string {
	var b strings.Builder
	for _, word := range strings.Split(ToSnake(s), "_") {
		if word == "" {
			continue
		}
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	return b.String()
}

// ToCamel converts a name in any supported convention to camelCase.
func ToCamel(s string) string {
	p := []rune(ToPascal(s))
	if len(p) > 0 {
		p[0] = unicode.ToLower(p[0])
	}
	return string(p)
}
