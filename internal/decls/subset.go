package decls

import "fmt"

// FunctionSelector names a function and optionally a subset of its overload
// ids. An empty id list selects the whole function.
type FunctionSelector struct {
	Name        string
	OverloadIDs []string
}

// LibrarySubset restricts the standard library visible to the checker.
// Include and exclude sets are mutually exclusive per category; violating
// that is a fatal environment-construction error.
type LibrarySubset struct {
	Disabled      bool
	DisableMacros bool

	IncludeMacros []string
	ExcludeMacros []string

	IncludeFunctions []*FunctionSelector
	ExcludeFunctions []*FunctionSelector
}

// Validate enforces the mutual-exclusion rules.
func (s *LibrarySubset) Validate() error {
	if s == nil {
		return nil
	}
	if len(s.IncludeMacros) > 0 && len(s.ExcludeMacros) > 0 {
		return fmt.Errorf("invalid library subset: include_macros and exclude_macros are mutually exclusive")
	}
	if len(s.IncludeFunctions) > 0 && len(s.ExcludeFunctions) > 0 {
		return fmt.Errorf("invalid library subset: include_functions and exclude_functions are mutually exclusive")
	}
	return nil
}

// FilterMacros applies the subset to the standard macro list.
func (s *LibrarySubset) FilterMacros(macros []*Macro) []*Macro {
	if s == nil {
		return macros
	}
	if s.Disabled || s.DisableMacros {
		return nil
	}
	if len(s.IncludeMacros) > 0 {
		var out []*Macro
		for _, m := range macros {
			for _, name := range s.IncludeMacros {
				if m.Name == name {
					out = append(out, m)
					break
				}
			}
		}
		return out
	}
	if len(s.ExcludeMacros) > 0 {
		var out []*Macro
		for _, m := range macros {
			excluded := false
			for _, name := range s.ExcludeMacros {
				if m.Name == name {
					excluded = true
					break
				}
			}
			if !excluded {
				out = append(out, m)
			}
		}
		return out
	}
	return macros
}

// FilterFunction applies the subset to one standard function declaration,
// returning the (possibly narrowed) declaration and whether anything of it
// remains visible.
func (s *LibrarySubset) FilterFunction(fn *FunctionDecl) (*FunctionDecl, bool) {
	if s == nil {
		return fn, true
	}
	if s.Disabled {
		return nil, false
	}
	if len(s.IncludeFunctions) > 0 {
		for _, sel := range s.IncludeFunctions {
			if sel.Name == fn.Name {
				return narrowFunction(fn, sel.OverloadIDs, true)
			}
		}
		return nil, false
	}
	if len(s.ExcludeFunctions) > 0 {
		for _, sel := range s.ExcludeFunctions {
			if sel.Name == fn.Name {
				if len(sel.OverloadIDs) == 0 {
					return nil, false
				}
				return narrowFunction(fn, sel.OverloadIDs, false)
			}
		}
	}
	return fn, true
}

func narrowFunction(fn *FunctionDecl, ids []string, keepListed bool) (*FunctionDecl, bool) {
	if len(ids) == 0 {
		return fn, true
	}
	listed := make(map[string]bool, len(ids))
	for _, id := range ids {
		listed[id] = true
	}
	out := &FunctionDecl{Name: fn.Name}
	for _, o := range fn.Overloads {
		if listed[o.ID] == keepListed {
			out.Overloads = append(out.Overloads, o)
		}
	}
	if len(out.Overloads) == 0 {
		return nil, false
	}
	return out, true
}
