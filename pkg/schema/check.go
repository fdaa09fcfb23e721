// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package schema

// Validate cross-checks every definition in reg against the others,
// per spec §4.H: sequence item types and mapping property/loose types
// must reference existing definitions, and one-of definitions must
// remain disambiguable. It returns every violation found; a nil/empty
// result means reg is internally consistent.
func Validate(reg *Registry) []error {
	var errs []error
	for _, name := range reg.Names() {
		def, _ := reg.Lookup(name)
		switch def.Kind {
		case KindSequence:
			errs = append(errs, checkSequence(reg, def)...)
		case KindMapping:
			errs = append(errs, checkMapping(reg, def)...)
		case KindOneOf:
			errs = append(errs, checkOneOf(reg, def)...)
		case KindString:
			if def.HasConstant && def.RequireNonEmpty {
				errs = append(errs, NewValidationError(def.Name, def.Position,
					"constant and requireNonEmpty are mutually exclusive"))
			}
		}
	}
	return errs
}

func checkSequence(reg *Registry, def *Definition) []error {
	if def.ItemType == "" {
		return []error{NewValidationError(def.Name, def.Position, "sequence definition must declare itemType")}
	}
	if _, ok := reg.Lookup(def.ItemType); !ok {
		return []error{NewValidationError(def.Name, def.Position, "itemType %q is not a defined type", def.ItemType)}
	}
	return nil
}

func checkMapping(reg *Registry, def *Definition) []error {
	var errs []error
	if len(def.Properties) == 0 && !def.HasLooseKey() {
		errs = append(errs, NewValidationError(def.Name, def.Position,
			"mapping definition must declare at least one of properties or loose"))
	}
	if (def.LooseKeyType == "") != (def.LooseValueType == "") {
		errs = append(errs, NewValidationError(def.Name, def.Position,
			"looseKey and looseValue must be declared together"))
	}
	for _, p := range def.Properties {
		if p.TypeName == "" {
			errs = append(errs, NewValidationError(def.Name, def.Position, "property %q has no type", p.Name))
			continue
		}
		if _, ok := reg.Lookup(p.TypeName); !ok {
			errs = append(errs, NewValidationError(def.Name, def.Position, "property %q has undefined type %q", p.Name, p.TypeName))
		}
	}
	if def.LooseKeyType != "" {
		if _, ok := reg.Lookup(def.LooseKeyType); !ok {
			errs = append(errs, NewValidationError(def.Name, def.Position, "looseKey has undefined type %q", def.LooseKeyType))
		}
	}
	if def.LooseValueType != "" {
		if _, ok := reg.Lookup(def.LooseValueType); !ok {
			errs = append(errs, NewValidationError(def.Name, def.Position, "looseValue has undefined type %q", def.LooseValueType))
		}
	}
	return errs
}

// checkOneOf enforces the full disambiguation constraint set spec §4.H
// requires of a one-of's referenced definitions: no duplicates; at most
// one null/boolean/number/sequence reference; at most one string
// reference without a constant; mapping references must pairwise differ
// by at least one property name; at most one mapping reference may
// declare a loose key; and none may declare a non-empty reader-context
// (reader-context is meaningless once a value could come from any of
// several alternatives).
func checkOneOf(reg *Registry, def *Definition) []error {
	var errs []error
	seen := map[string]bool{}
	var refs []*Definition
	for _, ref := range def.Refs {
		if seen[ref] {
			errs = append(errs, NewValidationError(def.Name, def.Position, "duplicate reference %q", ref))
			continue
		}
		seen[ref] = true
		rd, ok := reg.Lookup(ref)
		if !ok {
			errs = append(errs, NewValidationError(def.Name, def.Position, "reference %q is not a defined type", ref))
			continue
		}
		refs = append(refs, rd)
	}

	counts := map[Kind]int{}
	unconstrainedStrings := 0
	var mappings []*Definition
	looseMappings := 0
	for _, rd := range refs {
		counts[rd.Kind]++
		if rd.Kind == KindString && !rd.HasConstant {
			unconstrainedStrings++
		}
		if rd.Kind == KindMapping {
			mappings = append(mappings, rd)
			if rd.HasLooseKey() {
				looseMappings++
			}
		}
		if len(rd.ReaderContext) > 0 {
			errs = append(errs, NewValidationError(def.Name, def.Position, "member %q declares a reader-context, which a one-of cannot permit", rd.Name))
		}
	}

	for _, k := range []Kind{KindNull, KindBoolean, KindNumber, KindSequence} {
		if counts[k] > 1 {
			errs = append(errs, NewValidationError(def.Name, def.Position, "at most one %s member is allowed", k))
		}
	}
	if unconstrainedStrings > 1 {
		errs = append(errs, NewValidationError(def.Name, def.Position, "at most one string member without a constant is allowed"))
	}
	if looseMappings > 1 {
		errs = append(errs, NewValidationError(def.Name, def.Position, "at most one mapping member may declare a loose key"))
	}

	for i := 0; i < len(mappings); i++ {
		for j := i + 1; j < len(mappings); j++ {
			if samePropertyNames(mappings[i], mappings[j]) {
				errs = append(errs, NewValidationError(def.Name, def.Position,
					"mapping members %q and %q cannot be disambiguated by property name", mappings[i].Name, mappings[j].Name))
			}
		}
	}
	return errs
}

func samePropertyNames(a, b *Definition) bool {
	if len(a.Properties) != len(b.Properties) {
		return false
	}
	names := map[string]bool{}
	for _, p := range a.Properties {
		names[p.Name] = true
	}
	for _, p := range b.Properties {
		if !names[p.Name] {
			return false
		}
	}
	return true
}
