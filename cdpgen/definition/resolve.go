package definition

import "fmt"

// Resolve verifies that every reference in the definition names a type
// definition that actually exists, resolving bare names in the referencing
// domain and "Domain.Name" targets across domains. A dangling reference is a
// load-time error; nothing downstream of a definition that fails to resolve
// may be generated.
func (d *Definition) Resolve() error {
	table := make(map[string]map[string]bool, len(d.Domains))
	for i := range d.Domains {
		domain := &d.Domains[i]
		names := make(map[string]bool, len(domain.TypeDefs))
		for j := range domain.TypeDefs {
			names[domain.TypeDefs[j].Name] = true
		}
		table[domain.Name] = names
	}

	check := func(currentDomain, target string) error {
		refDomain, refName := SplitReference(currentDomain, target)
		if !table[refDomain][refName] {
			return fmt.Errorf("definition: unresolved type reference '%s' in domain '%s'", target, currentDomain)
		}
		return nil
	}

	for i := range d.Domains {
		domain := &d.Domains[i]
		for j := range domain.TypeDefs {
			if err := resolveType(domain.Name, domain.TypeDefs[j].Type, check); err != nil {
				return err
			}
		}
		for j := range domain.Commands {
			if err := resolveMethod(domain.Name, &domain.Commands[j], check); err != nil {
				return err
			}
		}
		for j := range domain.Events {
			if err := resolveMethod(domain.Name, &domain.Events[j], check); err != nil {
				return err
			}
		}
	}
	return nil
}

func resolveMethod(domain string, m *Method, check func(domain, target string) error) error {
	for i := range m.Parameters {
		if err := resolveType(domain, m.Parameters[i].Type, check); err != nil {
			return err
		}
	}
	for i := range m.Returns {
		if err := resolveType(domain, m.Returns[i].Type, check); err != nil {
			return err
		}
	}
	return nil
}

func resolveType(domain string, ty Type, check func(domain, target string) error) error {
	switch t := ty.(type) {
	case Reference:
		return check(domain, t.Target)
	case Array:
		return resolveType(domain, t.Item.Type, check)
	case Object:
		for i := range t.Fields {
			if err := resolveType(domain, t.Fields[i].Type, check); err != nil {
				return err
			}
		}
	}
	return nil
}
