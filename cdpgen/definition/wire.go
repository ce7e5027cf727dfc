package definition

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is shared across all loads. Struct tag parsing is cached inside
// the validator, so a single instance is the cheap option.
var validate = validator.New()

// Parse decodes one schema document. Decoding is strict: an unknown key
// anywhere in the document is an error, as is an array type without an
// "items" descriptor or a type descriptor carrying neither "type" nor
// "$ref".
func Parse(data []byte) (*Definition, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var doc definitionDoc
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("definition: %w", err)
	}
	if err := validate.Struct(&doc); err != nil {
		return nil, fmt.Errorf("definition: invalid schema document: %w", err)
	}
	return doc.toDefinition()
}

// Load parses the two halves of the protocol (conventionally the "browser"
// and "js" documents) and merges them, browser domains first. Loading fails
// unless both halves report an identical version.
func Load(browser, js []byte) (*Definition, error) {
	b, err := Parse(browser)
	if err != nil {
		return nil, fmt.Errorf("browser schema: %w", err)
	}
	j, err := Parse(js)
	if err != nil {
		return nil, fmt.Errorf("js schema: %w", err)
	}
	if b.Version != j.Version {
		return nil, fmt.Errorf("definition: version mismatch: browser %s, js %s", b.Version, j.Version)
	}
	merged := &Definition{
		Version: b.Version,
		Domains: make([]Domain, 0, len(b.Domains)+len(j.Domains)),
	}
	merged.Domains = append(merged.Domains, b.Domains...)
	merged.Domains = append(merged.Domains, j.Domains...)
	return merged, nil
}

// The doc structs below mirror the wire layout of the schema JSON. They are
// decode-only; conversion into the exported model happens in the to* methods
// so that shape errors (array without items, descriptor without type or
// $ref) surface with the offending node's name.

type definitionDoc struct {
	Version versionDoc  `json:"version" validate:"required"`
	Domains []domainDoc `json:"domains" validate:"dive"`
}

type versionDoc struct {
	Major string `json:"major" validate:"required"`
	Minor string `json:"minor" validate:"required"`
}

type domainDoc struct {
	Name         string       `json:"domain" validate:"required"`
	Description  string       `json:"description,omitempty"`
	Experimental bool         `json:"experimental,omitempty"`
	Deprecated   bool         `json:"deprecated,omitempty"`
	Dependencies []string     `json:"dependencies,omitempty"`
	TypeDefs     []typeDefDoc `json:"types,omitempty" validate:"dive"`
	Commands     []methodDoc  `json:"commands,omitempty" validate:"dive"`
	Events       []methodDoc  `json:"events,omitempty" validate:"dive"`
}

type typeDefDoc struct {
	Name         string `json:"id" validate:"required"`
	Description  string `json:"description,omitempty"`
	Experimental bool   `json:"experimental,omitempty"`
	Deprecated   bool   `json:"deprecated,omitempty"`
	typeDoc
}

type methodDoc struct {
	Name         string     `json:"name" validate:"required"`
	Description  string     `json:"description,omitempty"`
	Experimental bool       `json:"experimental,omitempty"`
	Deprecated   bool       `json:"deprecated,omitempty"`
	Handlers     []string   `json:"handlers,omitempty"`
	Parameters   []fieldDoc `json:"parameters,omitempty" validate:"dive"`
	Returns      []fieldDoc `json:"returns,omitempty" validate:"dive"`
	Redirect     string     `json:"redirect,omitempty"`
}

type fieldDoc struct {
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description,omitempty"`
	Experimental bool   `json:"experimental,omitempty"`
	Deprecated   bool   `json:"deprecated,omitempty"`
	Optional     bool   `json:"optional,omitempty"`
	typeDoc
}

type itemDoc struct {
	Description string `json:"description,omitempty"`
	typeDoc
}

// typeDoc is the flattened type descriptor embedded in typedefs, fields, and
// array items.
type typeDoc struct {
	Reference  string     `json:"$ref,omitempty"`
	Primitive  string     `json:"type,omitempty"`
	EnumValues []string   `json:"enum,omitempty"`
	Item       *itemDoc   `json:"items,omitempty"`
	MinItems   *uint64    `json:"minItems,omitempty"`
	MaxItems   *uint64    `json:"maxItems,omitempty"`
	Properties []fieldDoc `json:"properties,omitempty"`
}

func (d *definitionDoc) toDefinition() (*Definition, error) {
	def := &Definition{
		Version: Version{Major: d.Version.Major, Minor: d.Version.Minor},
		Domains: make([]Domain, 0, len(d.Domains)),
	}
	for i := range d.Domains {
		domain, err := d.Domains[i].toDomain()
		if err != nil {
			return nil, err
		}
		def.Domains = append(def.Domains, domain)
	}
	return def, nil
}

func (d *domainDoc) toDomain() (Domain, error) {
	domain := Domain{
		Name:         d.Name,
		Description:  d.Description,
		Experimental: d.Experimental,
		Deprecated:   d.Deprecated,
		Dependencies: d.Dependencies,
	}
	for i := range d.TypeDefs {
		td, err := d.TypeDefs[i].toTypeDef()
		if err != nil {
			return Domain{}, fmt.Errorf("domain '%s': %w", d.Name, err)
		}
		domain.TypeDefs = append(domain.TypeDefs, td)
	}
	for i := range d.Commands {
		m, err := d.Commands[i].toMethod()
		if err != nil {
			return Domain{}, fmt.Errorf("domain '%s': %w", d.Name, err)
		}
		domain.Commands = append(domain.Commands, m)
	}
	for i := range d.Events {
		m, err := d.Events[i].toMethod()
		if err != nil {
			return Domain{}, fmt.Errorf("domain '%s': %w", d.Name, err)
		}
		domain.Events = append(domain.Events, m)
	}
	return domain, nil
}

func (d *typeDefDoc) toTypeDef() (TypeDef, error) {
	ty, err := d.typeDoc.toType(d.Name)
	if err != nil {
		return TypeDef{}, err
	}
	return TypeDef{
		Name:         d.Name,
		Description:  d.Description,
		Experimental: d.Experimental,
		Deprecated:   d.Deprecated,
		Type:         ty,
	}, nil
}

func (d *methodDoc) toMethod() (Method, error) {
	m := Method{
		Name:         d.Name,
		Description:  d.Description,
		Experimental: d.Experimental,
		Deprecated:   d.Deprecated,
		Handlers:     d.Handlers,
		Redirect:     d.Redirect,
	}
	for i := range d.Parameters {
		f, err := d.Parameters[i].toField()
		if err != nil {
			return Method{}, fmt.Errorf("method '%s': %w", d.Name, err)
		}
		m.Parameters = append(m.Parameters, f)
	}
	for i := range d.Returns {
		f, err := d.Returns[i].toField()
		if err != nil {
			return Method{}, fmt.Errorf("method '%s': %w", d.Name, err)
		}
		m.Returns = append(m.Returns, f)
	}
	return m, nil
}

func (d *fieldDoc) toField() (Field, error) {
	ty, err := d.typeDoc.toType(d.Name)
	if err != nil {
		return Field{}, err
	}
	return Field{
		Name:         d.Name,
		Description:  d.Description,
		Experimental: d.Experimental,
		Deprecated:   d.Deprecated,
		Optional:     d.Optional,
		Type:         ty,
	}, nil
}

func (d *itemDoc) toItem() (Item, error) {
	ty, err := d.typeDoc.toType("array item")
	if err != nil {
		return Item{}, err
	}
	return Item{Description: d.Description, Type: ty}, nil
}

// toType converts a flattened wire descriptor into the Type sum. name is the
// nearest enclosing name, used only for error messages.
func (d *typeDoc) toType(name string) (Type, error) {
	if d.Reference != "" {
		return Reference{Target: d.Reference}, nil
	}
	switch d.Primitive {
	case "boolean":
		return Boolean{}, nil
	case "integer":
		return Integer{}, nil
	case "number":
		return Number{}, nil
	case "string":
		if d.EnumValues != nil {
			return Enum{Values: d.EnumValues}, nil
		}
		return String{}, nil
	case "array":
		if d.Item == nil {
			return nil, fmt.Errorf("'items' key not found in array type descriptor for '%s'", name)
		}
		item, err := d.Item.toItem()
		if err != nil {
			return nil, err
		}
		return Array{Item: &item, MinItems: d.MinItems, MaxItems: d.MaxItems}, nil
	case "object":
		var fields []Field
		for i := range d.Properties {
			f, err := d.Properties[i].toField()
			if err != nil {
				return nil, err
			}
			fields = append(fields, f)
		}
		return Object{Fields: fields}, nil
	case "any":
		return Any{}, nil
	case "":
		return nil, fmt.Errorf("neither 'type' nor '$ref' keys found in type descriptor for '%s'", name)
	default:
		return nil, fmt.Errorf("unknown type %q in type descriptor for '%s'", d.Primitive, name)
	}
}
