// Package golang turns a resolved protocol definition into Go source: one
// file per domain in a single output package, plus the analyses the emitter
// depends on (string reachability, deprecation cascading, identifier
// canonicalization).
package golang

import (
	"strings"
	"unicode"

	"github.com/probelab/cdp/cdpgen/definition"
)

// QualifiedName identifies a generated named type: the canonical domain name
// plus the canonical item name (a type definition or a method).
type QualifiedName struct {
	Domain string
	Name   string
}

func (q QualifiedName) String() string {
	return q.Domain + "." + q.Name
}

// ResolveReference canonicalizes a reference target relative to the domain
// it appears in. "Domain.Name" targets resolve across domains; bare names
// resolve in the current domain.
func ResolveReference(currentDomain, target string) QualifiedName {
	domain, name := definition.SplitReference(currentDomain, target)
	return QualifiedName{Domain: TypeName(domain), Name: TypeName(name)}
}

// TypeName converts a schema-native name to the exported PascalCase form
// used for generated type identifiers. A leading "-" (seen in enum values
// like "-0" and "-Infinity") reads as "Negative".
func TypeName(s string) string {
	words := splitWords(sanitize(s))
	var b strings.Builder
	for _, w := range words {
		b.WriteString(capitalize(w))
	}
	return b.String()
}

// MemberName converts a schema-native name to lowerCamel form, applying the
// two reserved-word substitutions the protocol needs: a member literally
// named "type" becomes "ty" and "override" becomes "overridden".
func MemberName(s string) string {
	words := splitWords(sanitize(s))
	var b strings.Builder
	for i, w := range words {
		if i == 0 {
			b.WriteString(strings.ToLower(w))
			continue
		}
		b.WriteString(capitalize(w))
	}
	switch name := b.String(); name {
	case "type":
		return "ty"
	case "override":
		return "overridden"
	default:
		return name
	}
}

// FieldName is the exported form used for generated struct fields. The wire
// name goes in the json tag, so reserved-word substitutions do not apply.
func FieldName(s string) string {
	return TypeName(s)
}

// FileName maps a domain name to its output file.
func FileName(domain string) string {
	return strings.ToLower(TypeName(domain)) + ".go"
}

func sanitize(s string) string {
	if strings.HasPrefix(s, "-") {
		return "Negative" + s[1:]
	}
	return s
}

// splitWords breaks an identifier into words at non-alphanumeric characters,
// lower-to-upper transitions, and the end of an acronym run ("DOMDebugger"
// splits as "DOM", "Debugger").
func splitWords(s string) []string {
	runes := []rune(s)
	var words []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = nil
		}
	}

	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if len(current) > 0 {
			prev := current[len(current)-1]
			switch {
			case unicode.IsUpper(r) && !unicode.IsUpper(prev):
				flush()
			case unicode.IsUpper(r) && unicode.IsUpper(prev) &&
				i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				flush()
			}
		}
		current = append(current, r)
	}
	flush()
	return words
}

func capitalize(w string) string {
	if w == "" {
		return ""
	}
	runes := []rune(w)
	runes[0] = unicode.ToUpper(runes[0])
	for i := 1; i < len(runes); i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}
