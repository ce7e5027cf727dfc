// Package definition is the in-memory model of the DevTools protocol schema:
// Definition → Domain → {TypeDef, Method} → Field/Item → Type. It is pure
// data, independent of code generation; the cdpgen/golang package consumes it.
package definition

import (
	"fmt"
	"strings"
)

// Definition is the root artifact parsed from the schema source.
type Definition struct {
	Version Version
	Domains []Domain
}

// Version identifies the protocol revision. Both halves of the protocol must
// report the same version. The components are strings on the wire, not
// numbers.
type Version struct {
	Major string
	Minor string
}

func (v Version) String() string {
	return fmt.Sprintf("%s.%s", v.Major, v.Minor)
}

// Domain is a named partition of the protocol grouping related commands,
// events, and type definitions. Its name becomes part of every generated
// identifier.
type Domain struct {
	Name         string
	Description  string
	Experimental bool
	Deprecated   bool
	Dependencies []string
	TypeDefs     []TypeDef
	Commands     []Method
	Events       []Method
}

// TypeDef is a domain-scoped named type.
type TypeDef struct {
	Name         string
	Description  string
	Experimental bool
	Deprecated   bool
	Type         Type
}

// Method is a command or event, distinguished by which domain list it lives
// in. Its identity is "Domain.name", the wire-level method string. Returns
// is only populated for commands.
type Method struct {
	Name         string
	Description  string
	Experimental bool
	Deprecated   bool
	Handlers     []string
	Parameters   []Field
	Returns      []Field
	Redirect     string
}

// QualifiedName returns the wire-level method string.
func (m *Method) QualifiedName(domain string) string {
	return domain + "." + m.Name
}

// Field is one member of an object type or of a method's parameter/return
// list. Declaration order is preserved.
type Field struct {
	Name         string
	Description  string
	Experimental bool
	Deprecated   bool
	Optional     bool
	Type         Type
}

// Item describes the element type of an array.
type Item struct {
	Description string
	Type        Type
}

// TypeKind identifies the concrete alternative of the Type sum.
type TypeKind int

const (
	KindReference TypeKind = iota
	KindBoolean
	KindInteger
	KindNumber
	KindString
	KindEnum
	KindArray
	KindObject
	KindAny
)

func (k TypeKind) String() string {
	switch k {
	case KindReference:
		return "Reference"
	case KindBoolean:
		return "Boolean"
	case KindInteger:
		return "Integer"
	case KindNumber:
		return "Number"
	case KindString:
		return "String"
	case KindEnum:
		return "Enum"
	case KindArray:
		return "Array"
	case KindObject:
		return "Object"
	case KindAny:
		return "Any"
	default:
		return "Unknown"
	}
}

// Type is the closed, recursive sum of schema type shapes. Only types in
// this package implement it.
type Type interface {
	Kind() TypeKind
	sealed()
}

// Reference is a named edge to a TypeDef, resolved after parsing. Target is
// either a bare name (same domain) or "Domain.Name".
type Reference struct {
	Target string
}

// Boolean is the schema's bool primitive.
type Boolean struct{}

// Integer is the schema's 32-bit signed integer primitive.
type Integer struct{}

// Number is the schema's 64-bit float primitive.
type Number struct{}

// String is the schema's string primitive.
type String struct{}

// Enum is a closed set of wire strings. Value order is preserved.
type Enum struct {
	Values []string
}

// Array is a sequence of Item. MinItems/MaxItems are nil when undeclared;
// equal declared bounds denote a fixed-size sequence.
type Array struct {
	Item     *Item
	MinItems *uint64
	MaxItems *uint64
}

// Object is an ordered list of fields. An empty Object denotes the canonical
// empty parameter object, not a fresh record.
type Object struct {
	Fields []Field
}

// Any is an untyped JSON value.
type Any struct{}

func (Reference) Kind() TypeKind { return KindReference }
func (Boolean) Kind() TypeKind   { return KindBoolean }
func (Integer) Kind() TypeKind   { return KindInteger }
func (Number) Kind() TypeKind    { return KindNumber }
func (String) Kind() TypeKind    { return KindString }
func (Enum) Kind() TypeKind      { return KindEnum }
func (Array) Kind() TypeKind     { return KindArray }
func (Object) Kind() TypeKind    { return KindObject }
func (Any) Kind() TypeKind       { return KindAny }

func (Reference) sealed() {}
func (Boolean) sealed()   {}
func (Integer) sealed()   {}
func (Number) sealed()    {}
func (String) sealed()    {}
func (Enum) sealed()      {}
func (Array) sealed()     {}
func (Object) sealed()    {}
func (Any) sealed()       {}

// SplitReference resolves a reference target against the referencing domain.
// A target of the form "Domain.Name" (both halves alphanumeric) is a
// cross-domain reference; anything else names a type in the current domain.
func SplitReference(currentDomain, target string) (domain, name string) {
	dot := strings.IndexByte(target, '.')
	if dot > 0 && dot < len(target)-1 &&
		isAlnum(target[:dot]) && isAlnum(target[dot+1:]) {
		return target[:dot], target[dot+1:]
	}
	return currentDomain, target
}

func isAlnum(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9') {
			return false
		}
	}
	return len(s) > 0
}
