package golang

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/probelab/cdp/cdpgen/definition"
)

// runtimeImport is the package providing the envelope, dispatch, and error
// types the generated bindings lean on.
const runtimeImport = "github.com/probelab/cdp"

// Emitter turns a resolved definition into Go source, one file per domain,
// all in a single output package. Domain-prefixed type names stand in for
// the per-domain modules a language with cyclic imports could use: protocol
// domains reference each other freely, and Go packages must not.
type Emitter struct {
	def     *definition.Definition
	pkg     string
	borrows map[QualifiedName]bool
	// typeDefs indexes every named type definition for reference lookups.
	typeDefs map[QualifiedName]*definition.TypeDef
	// typeDefDomain records the schema domain each typedef belongs to, for
	// resolving references inside aliased types.
	typeDefDomain map[QualifiedName]string
}

// NewEmitter prepares an emitter over a definition that has already passed
// Resolve. pkg is the output package name.
func NewEmitter(def *definition.Definition, pkg string, borrows map[QualifiedName]bool) *Emitter {
	e := &Emitter{
		def:           def,
		pkg:           pkg,
		borrows:       borrows,
		typeDefs:      make(map[QualifiedName]*definition.TypeDef),
		typeDefDomain: make(map[QualifiedName]string),
	}
	for i := range def.Domains {
		domain := &def.Domains[i]
		for j := range domain.TypeDefs {
			td := &domain.TypeDefs[j]
			q := QualifiedName{Domain: TypeName(domain.Name), Name: TypeName(td.Name)}
			e.typeDefs[q] = td
			e.typeDefDomain[q] = domain.Name
		}
	}
	return e
}

// EmitProtocol emits the protocol.go file carrying the schema version.
func (e *Emitter) EmitProtocol() []byte {
	var buf bytes.Buffer
	e.header(&buf)
	fmt.Fprintf(&buf, "// Version is the protocol revision these bindings were generated from.\nconst Version = %q\n", e.def.Version.String())
	return buf.Bytes()
}

// EmitDomain emits the source file for one domain.
func (e *Emitter) EmitDomain(domain *definition.Domain) ([]byte, error) {
	f := &fileState{emitter: e, domain: domain, buf: new(bytes.Buffer)}
	e.header(f.buf)

	domainDep := NewDeprecation(domain.Deprecated, domain.Description)

	for i := range domain.TypeDefs {
		if err := f.emitTypeDef(&domain.TypeDefs[i], domainDep); err != nil {
			return nil, err
		}
	}
	for i := range domain.Commands {
		if err := f.emitMethod(&domain.Commands[i], methodCommand, domainDep); err != nil {
			return nil, err
		}
	}
	for i := range domain.Events {
		if err := f.emitMethod(&domain.Events[i], methodEvent, domainDep); err != nil {
			return nil, err
		}
	}

	f.emitDispatchers()
	return f.buf.Bytes(), nil
}

func (e *Emitter) header(buf *bytes.Buffer) {
	buf.WriteString("// Code generated by cdpgen. DO NOT EDIT.\n\n")
	fmt.Fprintf(buf, "package %s\n\n", e.pkg)
	fmt.Fprintf(buf, "import (\n\t\"encoding/json\"\n\t\"fmt\"\n\t\"strings\"\n\n\t\"%s\"\n)\n\n", runtimeImport)
}

type methodKind int

const (
	methodCommand methodKind = iota
	methodEvent
)

func (k methodKind) String() string {
	if k == methodCommand {
		return "Command"
	}
	return "Event"
}

// fileState accumulates the declarations of one domain file. Inline enums
// and objects hoist to named declarations appended after the declaration
// that introduced them, in discovery order.
type fileState struct {
	emitter *Emitter
	domain  *definition.Domain
	buf     *bytes.Buffer
}

func (f *fileState) domainPrefix() string {
	return TypeName(f.domain.Name)
}

// emitTypeDef emits the declaration(s) for one named type definition.
func (f *fileState) emitTypeDef(td *definition.TypeDef, domainDep Deprecation) error {
	goName := f.domainPrefix() + TypeName(td.Name)
	dep := NewDeprecation(td.Deprecated, td.Description).WithParent(domainDep)
	exp := f.domain.Experimental || td.Experimental

	switch t := td.Type.(type) {
	case definition.Enum:
		f.emitEnum(goName, t.Values, docInfo{description: td.Description, experimental: exp, dep: dep})
		return nil
	case definition.Object:
		if len(t.Fields) == 0 {
			f.comment(docInfo{description: td.Description, experimental: exp, dep: dep}, goName)
			fmt.Fprintf(f.buf, "type %s = cdp.Empty\n\n", goName)
			return nil
		}
		return f.emitStruct(goName, TypeName(td.Name), t.Fields,
			docInfo{description: td.Description, experimental: exp, dep: dep}, dep)
	default:
		expr, _, err := f.typeExpr(goName, TypeName(td.Name), "", td.Type, dep, exp)
		if err != nil {
			return fmt.Errorf("type '%s.%s': %w", f.domain.Name, td.Name, err)
		}
		f.comment(docInfo{description: td.Description, experimental: exp, dep: dep}, goName)
		fmt.Fprintf(f.buf, "type %s = %s\n\n", goName, expr)
		return nil
	}
}

// emitMethod emits the command or event structs for one method: the
// parameter struct with its name method, and for commands the response
// struct plus the request/response cross-link.
func (f *fileState) emitMethod(m *definition.Method, kind methodKind, domainDep Deprecation) error {
	qualified := m.QualifiedName(f.domain.Name)
	base := f.domainPrefix() + TypeName(m.Name)
	reqName := base + kind.String()
	dep := NewDeprecation(m.Deprecated, m.Description).WithParent(domainDep)
	exp := f.domain.Experimental || m.Experimental

	doc := docInfo{
		description:  m.Description,
		experimental: exp,
		dep:          dep,
		note:         fmt.Sprintf("%s %q.", kind, qualified),
	}
	if err := f.emitMethodStruct(reqName, TypeName(m.Name), m.Parameters, doc, dep, exp); err != nil {
		return fmt.Errorf("method '%s': %w", qualified, err)
	}
	fmt.Fprintf(f.buf, "// %sName returns %q.\nfunc (%s) %sName() string { return %q }\n\n",
		kind, qualified, reqName, kind, qualified)

	if kind != methodCommand {
		return nil
	}

	respName := base + "Response"
	respDoc := docInfo{
		experimental: exp,
		dep:          dep,
		note:         fmt.Sprintf("Result of command %q.", qualified),
	}
	if err := f.emitMethodStruct(respName, TypeName(m.Name), m.Returns, respDoc, dep, exp); err != nil {
		return fmt.Errorf("method '%s' returns: %w", qualified, err)
	}
	fmt.Fprintf(f.buf, "// CommandName returns %q.\nfunc (%s) CommandName() string { return %q }\n\n",
		qualified, respName, qualified)
	fmt.Fprintf(f.buf, "// Reply returns the response type paired with %s.\nfunc (%s) Reply() *%s { return new(%s) }\n\n",
		reqName, reqName, respName, respName)
	return nil
}

func (f *fileState) emitMethodStruct(goName, bareName string, fields []definition.Field, doc docInfo, dep Deprecation, exp bool) error {
	if len(fields) == 0 {
		f.comment(doc, goName)
		fmt.Fprintf(f.buf, "type %s struct{}\n\n", goName)
		return nil
	}
	return f.emitStruct(goName, bareName, fields, doc, dep)
}

// emitStruct emits one named struct, its hoisted inline declarations, and a
// Detach method when the struct can reference decoded string memory.
func (f *fileState) emitStruct(goName, bareName string, fields []definition.Field, doc docInfo, parentDep Deprecation) error {
	type member struct {
		field   *definition.Field
		goField string
		expr    string
		pointer bool
	}

	members := make([]member, 0, len(fields))
	hoisted := new(bytes.Buffer)
	borrows := false

	// Hoisted declarations must follow this struct, so build the fields
	// against a scratch buffer first.
	saved := f.buf
	f.buf = hoisted
	for i := range fields {
		field := &fields[i]
		expr, fieldBorrows, err := f.typeExpr(goName, bareName, field.Name, field.Type, parentDep, doc.experimental)
		if err != nil {
			f.buf = saved
			return fmt.Errorf("field '%s': %w", field.Name, err)
		}
		borrows = borrows || fieldBorrows
		members = append(members, member{
			field:   field,
			goField: FieldName(field.Name),
			expr:    expr,
			pointer: field.Optional && needsPointer(expr),
		})
	}
	hoisted = f.buf
	f.buf = saved

	f.comment(doc, goName)
	fmt.Fprintf(f.buf, "type %s struct {\n", goName)
	for _, m := range members {
		fieldDep := NewDeprecation(m.field.Deprecated, m.field.Description).WithParent(parentDep)
		f.fieldComment(m.field.Description, m.field.Experimental, fieldDep)
		expr := m.expr
		tag := m.field.Name
		if m.field.Optional {
			tag += ",omitempty"
			if m.pointer {
				expr = "*" + expr
			}
		}
		fmt.Fprintf(f.buf, "\t%s %s `json:%q`\n", m.goField, expr, tag)
	}
	f.buf.WriteString("}\n\n")

	if borrows {
		fmt.Fprintf(f.buf, "// Detach returns a copy of v that shares no string memory with the\n// message buffer it was decoded from.\nfunc (v %s) Detach() %s {\n", goName, goName)
		for _, m := range members {
			f.detachStmts("\t", "v."+m.goField, f.domain.Name, bareName, m.field.Type, m.field.Optional && m.pointer)
		}
		f.buf.WriteString("\treturn v\n}\n\n")
	}

	f.buf.Write(hoisted.Bytes())
	return nil
}

// typeExpr returns the Go type expression for a schema type, hoisting inline
// enums and objects into named declarations. parentGo names the hoisted
// children; bareName is the enclosing declaration's unprefixed name, used to
// detect direct self-references. The second result reports whether values of
// the type can alias decoded string memory.
func (f *fileState) typeExpr(parentGo, bareName, fieldName string, ty definition.Type, dep Deprecation, exp bool) (string, bool, error) {
	switch t := ty.(type) {
	case definition.Boolean:
		return "bool", false, nil
	case definition.Integer:
		return "int32", false, nil
	case definition.Number:
		return "float64", false, nil
	case definition.String:
		return "string", true, nil
	case definition.Any:
		return "json.RawMessage", false, nil
	case definition.Reference:
		target := ResolveReference(f.domain.Name, t.Target)
		goName := target.Domain + target.Name
		borrows := f.emitter.borrows[target]
		if TypeName(t.Target) == bareName {
			// An unindirected self-reference has no finite size.
			return "*" + goName, borrows, nil
		}
		return goName, borrows, nil
	case definition.Enum:
		goName := hoistedName(parentGo, fieldName)
		f.emitEnum(goName, t.Values, docInfo{experimental: exp, dep: dep, note: usageNote(parentGo, fieldName)})
		return goName, false, nil
	case definition.Array:
		itemExpr, borrows, err := f.typeExpr(parentGo, bareName, fieldName, t.Item.Type, dep, exp)
		if err != nil {
			return "", false, err
		}
		if t.MinItems != nil && t.MaxItems != nil && *t.MinItems == *t.MaxItems {
			return "[" + strconv.FormatUint(*t.MaxItems, 10) + "]" + itemExpr, borrows, nil
		}
		return "[]" + itemExpr, borrows, nil
	case definition.Object:
		if len(t.Fields) == 0 {
			return "cdp.Empty", false, nil
		}
		goName := hoistedName(parentGo, fieldName)
		bare := hoistedName(bareName, fieldName)
		doc := docInfo{experimental: exp, dep: dep, note: usageNote(parentGo, fieldName)}
		if err := f.emitStruct(goName, bare, t.Fields, doc, dep); err != nil {
			return "", false, err
		}
		return goName, f.typeBorrows(f.domain.Name, bareName, ty), nil
	default:
		return "", false, fmt.Errorf("unsupported type kind %s", ty.Kind())
	}
}

func hoistedName(parent, fieldName string) string {
	if fieldName == "" {
		return parent
	}
	return parent + TypeName(fieldName)
}

func usageNote(parentGo, fieldName string) string {
	if fieldName == "" {
		return ""
	}
	return fmt.Sprintf("Used in the %q field of %s.", fieldName, parentGo)
}

// needsPointer reports whether an optional field of the given Go type needs
// a pointer to distinguish absent from zero. Slices and raw messages already
// have a nil state; self-references are pointers to begin with.
func needsPointer(expr string) bool {
	return !strings.HasPrefix(expr, "[]") && !strings.HasPrefix(expr, "*") && expr != "json.RawMessage"
}

// emitEnum emits a closed string-keyed enumeration: an int-backed type, one
// constant per value, the two reflection tables, the parser with its
// structured error, the exact-inverse formatter, and the JSON round trip.
func (f *fileState) emitEnum(goName string, values []string, doc docInfo) {
	constNames := make([]string, len(values))
	for i, v := range values {
		constNames[i] = goName + TypeName(v)
	}

	f.comment(doc, goName)
	fmt.Fprintf(f.buf, "type %s int\n\n", goName)

	f.buf.WriteString("const (\n")
	for i, name := range constNames {
		if i == 0 {
			fmt.Fprintf(f.buf, "\t// %s is represented as %q.\n\t%s %s = iota\n", name, values[i], name, goName)
			continue
		}
		fmt.Fprintf(f.buf, "\t// %s is represented as %q.\n\t%s\n", name, values[i], name)
	}
	f.buf.WriteString(")\n\n")

	fmt.Fprintf(f.buf, "// %sValues lists every %s in declaration order.\nvar %sValues = []%s{%s}\n\n",
		goName, goName, goName, goName, strings.Join(constNames, ", "))

	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = strconv.Quote(v)
	}
	fmt.Fprintf(f.buf, "// %sStrings lists the wire strings, index-aligned with %sValues.\nvar %sStrings = []string{%s}\n\n",
		goName, goName, goName, strings.Join(quoted, ", "))

	fmt.Fprintf(f.buf, "// Parse%s maps a wire string to its %s.\nfunc Parse%s(s string) (%s, error) {\n\tswitch s {\n", goName, goName, goName, goName)
	for i, name := range constNames {
		fmt.Fprintf(f.buf, "\tcase %q:\n\t\treturn %s, nil\n", values[i], name)
	}
	fmt.Fprintf(f.buf, "\t}\n\treturn 0, &cdp.ParseEnumError{Expected: %sStrings, Actual: s}\n}\n\n", goName)

	fmt.Fprintf(f.buf, "// String returns the wire representation of v.\nfunc (v %s) String() string {\n\tswitch v {\n", goName)
	for i, name := range constNames {
		fmt.Fprintf(f.buf, "\tcase %s:\n\t\treturn %q\n", name, values[i])
	}
	fmt.Fprintf(f.buf, "\t}\n\treturn fmt.Sprintf(\"%s(%%d)\", int(v))\n}\n\n", goName)

	fmt.Fprintf(f.buf, "func (v %s) MarshalJSON() ([]byte, error) {\n\treturn json.Marshal(v.String())\n}\n\n", goName)

	fmt.Fprintf(f.buf, "func (v *%s) UnmarshalJSON(data []byte) error {\n\tvar s string\n\tif err := json.Unmarshal(data, &s); err != nil {\n\t\treturn err\n\t}\n\tparsed, err := Parse%s(s)\n\tif err != nil {\n\t\treturn err\n\t}\n\t*v = parsed\n\treturn nil\n}\n\n", goName, goName)
}

// detachStmts writes the statements that deep-copy every string reachable
// through expr. optionalPtr marks fields wrapped in an extra pointer for
// optionality.
func (f *fileState) detachStmts(indent, expr, domain, bareName string, ty definition.Type, optionalPtr bool) {
	if !f.typeBorrows(domain, bareName, ty) {
		return
	}
	if optionalPtr {
		fmt.Fprintf(f.buf, "%sif %s != nil {\n", indent, expr)
		f.detachPointee(indent+"\t", expr, domain, bareName, ty)
		fmt.Fprintf(f.buf, "%s}\n", indent)
		return
	}
	f.detachValue(indent, expr, domain, bareName, ty)
}

// detachPointee handles *T fields: strings and structs go through a
// temporary so the shared pointee is never mutated; arrays index through the
// pointer directly.
func (f *fileState) detachPointee(indent, expr, domain, bareName string, ty definition.Type) {
	resolvedDomain, resolved := f.resolveAlias(domain, ty)
	switch resolved.(type) {
	case definition.String:
		fmt.Fprintf(f.buf, "%sdetached := strings.Clone(*%s)\n%s%s = &detached\n", indent, expr, indent, expr)
	case definition.Array:
		f.detachValue(indent, expr, resolvedDomain, bareName, resolved)
	case definition.Object, definition.Reference:
		// Inline object or a reference resolving to a borrowing struct.
		fmt.Fprintf(f.buf, "%sdetached := %s.Detach()\n%s%s = &detached\n", indent, expr, indent, expr)
	}
}

func (f *fileState) detachValue(indent, expr, domain, bareName string, ty definition.Type) {
	resolvedDomain, resolved := f.resolveAlias(domain, ty)
	switch t := resolved.(type) {
	case definition.String:
		fmt.Fprintf(f.buf, "%s%s = strings.Clone(%s)\n", indent, expr, expr)
	case definition.Array:
		fmt.Fprintf(f.buf, "%sfor i := range %s {\n", indent, expr)
		f.detachValue(indent+"\t", expr+"[i]", resolvedDomain, bareName, t.Item.Type)
		fmt.Fprintf(f.buf, "%s}\n", indent)
	case definition.Object:
		fmt.Fprintf(f.buf, "%s%s = %s.Detach()\n", indent, expr, expr)
	case definition.Reference:
		if TypeName(t.Target) == bareName {
			// Boxed self-reference.
			fmt.Fprintf(f.buf, "%sif %s != nil {\n", indent, expr)
			f.detachPointee(indent+"\t", expr, resolvedDomain, bareName, resolved)
			fmt.Fprintf(f.buf, "%s}\n", indent)
			return
		}
		fmt.Fprintf(f.buf, "%s%s = %s.Detach()\n", indent, expr, expr)
	}
}

// resolveAlias follows references through aliased type definitions (string,
// array, any) until it reaches a shape the detach statements act on
// directly. References to struct and enum typedefs stay references; the
// returned domain is the one the final type's own references resolve in.
func (f *fileState) resolveAlias(domain string, ty definition.Type) (string, definition.Type) {
	for {
		ref, ok := ty.(definition.Reference)
		if !ok {
			return domain, ty
		}
		target := ResolveReference(domain, ref.Target)
		td, ok := f.emitter.typeDefs[target]
		if !ok {
			return domain, ty
		}
		switch td.Type.Kind() {
		case definition.KindObject, definition.KindEnum:
			return domain, ty
		}
		domain = f.emitter.typeDefDomain[target]
		ty = td.Type
	}
}

// typeBorrows reports whether a type expression can alias decoded string
// memory, consulting the whole-schema reachability set for references.
func (f *fileState) typeBorrows(domain, bareName string, ty definition.Type) bool {
	switch t := ty.(type) {
	case definition.String:
		return true
	case definition.Reference:
		return f.emitter.borrows[ResolveReference(domain, t.Target)]
	case definition.Array:
		return f.typeBorrows(domain, bareName, t.Item.Type)
	case definition.Object:
		for i := range t.Fields {
			if f.typeBorrows(domain, bareName, t.Fields[i].Type) {
				return true
			}
		}
	}
	return false
}

// emitDispatchers wires the domain's methods into the runtime's typed
// dispatch: one dispatcher and decode function for commands, one for events.
func (f *fileState) emitDispatchers() {
	prefix := f.domainPrefix()
	member := MemberName(f.domain.Name)

	if len(f.domain.Commands) > 0 {
		fmt.Fprintf(f.buf, "var %sCommands = cdp.MustDispatcher(\n", member)
		for i := range f.domain.Commands {
			goName := prefix + TypeName(f.domain.Commands[i].Name) + "Command"
			fmt.Fprintf(f.buf, "\tcdp.Cmd(func(c %s) cdp.Command { return c }),\n", goName)
		}
		f.buf.WriteString(")\n\n")
		fmt.Fprintf(f.buf, "// Decode%sCommand decodes a (method, params) pair into one of the %s\n// domain's typed commands. Unknown methods return cdp.ErrUnrecognized.\nfunc Decode%sCommand(method string, params json.RawMessage) (cdp.Command, error) {\n\treturn %sCommands.Dispatch(method, params)\n}\n\n",
			prefix, f.domain.Name, prefix, member)
	}

	if len(f.domain.Events) > 0 {
		fmt.Fprintf(f.buf, "var %sEvents = cdp.MustDispatcher(\n", member)
		for i := range f.domain.Events {
			goName := prefix + TypeName(f.domain.Events[i].Name) + "Event"
			fmt.Fprintf(f.buf, "\tcdp.Evt(func(e %s) cdp.Event { return e }),\n", goName)
		}
		f.buf.WriteString(")\n\n")
		fmt.Fprintf(f.buf, "// Decode%sEvent decodes a (method, params) pair into one of the %s\n// domain's typed events. Unknown methods return cdp.ErrUnrecognized.\nfunc Decode%sEvent(method string, params json.RawMessage) (cdp.Event, error) {\n\treturn %sEvents.Dispatch(method, params)\n}\n\n",
			prefix, f.domain.Name, prefix, member)
	}
}

// docInfo carries what becomes a declaration's doc comment.
type docInfo struct {
	description  string
	experimental bool
	dep          Deprecation
	note         string
}

// comment writes a declaration doc comment: name, experimental marker,
// description (unless consumed as the deprecation warning), usage note, and
// the Deprecated: paragraph.
func (f *fileState) comment(doc docInfo, goName string) {
	first := "// " + goName
	if doc.experimental {
		first += " [Experimental]"
	}
	if doc.description != "" && !doc.dep.ConsumesDescription() {
		first += " - " + collapseLines(doc.description)
	}
	f.buf.WriteString(first + "\n")
	if doc.note != "" {
		fmt.Fprintf(f.buf, "//\n// %s\n", doc.note)
	}
	if para := doc.dep.DocParagraph(); para != "" {
		fmt.Fprintf(f.buf, "//\n// %s\n", para)
	}
}

func (f *fileState) fieldComment(description string, experimental bool, dep Deprecation) {
	if description != "" && !dep.ConsumesDescription() {
		line := collapseLines(description)
		if experimental {
			line = "[Experimental] " + line
		}
		fmt.Fprintf(f.buf, "\t// %s\n", line)
	} else if experimental {
		f.buf.WriteString("\t// [Experimental]\n")
	}
	if para := dep.DocParagraph(); para != "" {
		fmt.Fprintf(f.buf, "\t// %s\n", para)
	}
}

func collapseLines(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
