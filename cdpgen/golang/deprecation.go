package golang

import (
	"regexp"
	"strings"
)

var (
	deprecationWarningRe = regexp.MustCompile(`(?i)deprecat`)
	deprecationPrefixRe  = regexp.MustCompile(`^Deprecated, `)
)

// Deprecation is the effective deprecation status of a schema node: not
// deprecated, deprecated with no usable explanation, or deprecated with a
// warning extracted from a description (its own or an ancestor's).
type Deprecation struct {
	deprecated bool
	warning    string
	ownWarning bool
}

// NewDeprecation derives a node's own status from its flag and description.
// A description counts as an explanation when it mentions deprecation and is
// not merely the literal "Deprecated."; a redundant leading "Deprecated, "
// is stripped. An extracted explanation blocks inheritance from ancestors.
func NewDeprecation(deprecated bool, description string) Deprecation {
	if !deprecated {
		return Deprecation{}
	}
	if description == "Deprecated." || !deprecationWarningRe.MatchString(description) {
		return Deprecation{deprecated: true}
	}
	return Deprecation{
		deprecated: true,
		warning:    deprecationPrefixRe.ReplaceAllString(description, ""),
		ownWarning: true,
	}
}

// WithParent cascades an ancestor's status down the tree
// (domain → type/method → field). A node that is not itself deprecated stays
// not deprecated; a node with its own extracted warning keeps it.
func (d Deprecation) WithParent(parent Deprecation) Deprecation {
	if !d.deprecated || d.ownWarning || !parent.deprecated {
		return d
	}
	d.warning = parent.warning
	return d
}

// Deprecated reports whether the node is deprecated at all.
func (d Deprecation) Deprecated() bool { return d.deprecated }

// Warning returns the explanation text, or "" when none was extracted.
func (d Deprecation) Warning() string { return d.warning }

// ConsumesDescription reports whether the node's own description was used as
// the warning text and should not be repeated as ordinary documentation.
func (d Deprecation) ConsumesDescription() bool { return d.ownWarning }

// DocParagraph renders the status as a Go "Deprecated:" doc comment
// paragraph, or "" when the node is not deprecated.
func (d Deprecation) DocParagraph() string {
	if !d.deprecated {
		return ""
	}
	warning := d.warning
	if warning == "" {
		warning = "no longer supported."
	}
	if !strings.HasSuffix(warning, ".") {
		warning += "."
	}
	return "Deprecated: " + warning
}
