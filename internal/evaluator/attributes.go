package evaluator

import (
	"fmt"
	"strconv"
	"strings"
)

// QualifierKind discriminates attribute path steps.
type QualifierKind int

const (
	StringQual QualifierKind = iota
	IntQual
	UintQual
	BoolQual
	WildcardQual
)

// Qualifier is one step of an attribute path: a field name, an index, or a
// wildcard (patterns only).
type Qualifier struct {
	Kind QualifierKind
	Str  string
	Int  int64
	Uint uint64
	Bool bool
}

func StringQualifier(s string) Qualifier { return Qualifier{Kind: StringQual, Str: s} }
func IntQualifier(i int64) Qualifier     { return Qualifier{Kind: IntQual, Int: i} }
func UintQualifier(u uint64) Qualifier   { return Qualifier{Kind: UintQual, Uint: u} }
func BoolQualifier(b bool) Qualifier     { return Qualifier{Kind: BoolQual, Bool: b} }

func (q Qualifier) String() string {
	switch q.Kind {
	case StringQual:
		return q.Str
	case IntQual:
		return strconv.FormatInt(q.Int, 10)
	case UintQual:
		return strconv.FormatUint(q.Uint, 10) + "u"
	case BoolQual:
		return strconv.FormatBool(q.Bool)
	default:
		return "*"
	}
}

// equalsQualifier compares concrete qualifiers; numerically equal int and
// uint indexes match.
func (q Qualifier) equalsQualifier(other Qualifier) bool {
	switch q.Kind {
	case StringQual:
		return other.Kind == StringQual && other.Str == q.Str
	case BoolQual:
		return other.Kind == BoolQual && other.Bool == q.Bool
	case IntQual:
		switch other.Kind {
		case IntQual:
			return other.Int == q.Int
		case UintQual:
			return q.Int >= 0 && uint64(q.Int) == other.Uint
		}
		return false
	case UintQual:
		switch other.Kind {
		case IntQual:
			return other.Int >= 0 && uint64(other.Int) == q.Uint
		case UintQual:
			return other.Uint == q.Uint
		}
		return false
	default:
		return false
	}
}

// QualifierOf derives a qualifier from a runtime value, when the value's
// type supports attribute construction.
func QualifierOf(obj Object) (Qualifier, bool) {
	switch v := obj.(type) {
	case *String:
		return StringQualifier(v.Value), true
	case *Integer:
		return IntQualifier(v.Value), true
	case *UInt:
		return UintQualifier(v.Value), true
	case *Boolean:
		return BoolQualifier(v.Value), true
	default:
		return Qualifier{}, false
	}
}

// Attribute is a concrete qualified path: a root variable plus qualifiers.
type Attribute struct {
	Variable   string
	Qualifiers []Qualifier
}

func NewAttribute(variable string, quals ...Qualifier) *Attribute {
	return &Attribute{Variable: variable, Qualifiers: quals}
}

// Extend derives a new attribute with one more qualifier. The receiver is
// left untouched.
func (a *Attribute) Extend(q Qualifier) *Attribute {
	quals := make([]Qualifier, 0, len(a.Qualifiers)+1)
	quals = append(quals, a.Qualifiers...)
	quals = append(quals, q)
	return &Attribute{Variable: a.Variable, Qualifiers: quals}
}

func (a *Attribute) String() string {
	var sb strings.Builder
	sb.WriteString(a.Variable)
	for _, q := range a.Qualifiers {
		if q.Kind == StringQual {
			sb.WriteByte('.')
			sb.WriteString(q.Str)
		} else {
			fmt.Fprintf(&sb, "[%s]", q.String())
		}
	}
	return sb.String()
}

// AttributePattern is an attribute template; wildcard qualifiers match any
// qualifier at their position.
type AttributePattern struct {
	Variable   string
	Qualifiers []Qualifier
}

// NewAttributePattern starts a pattern at a root variable.
func NewAttributePattern(variable string) *AttributePattern {
	return &AttributePattern{Variable: variable}
}

func (p *AttributePattern) QualString(s string) *AttributePattern {
	p.Qualifiers = append(p.Qualifiers, StringQualifier(s))
	return p
}

func (p *AttributePattern) QualInt(i int64) *AttributePattern {
	p.Qualifiers = append(p.Qualifiers, IntQualifier(i))
	return p
}

func (p *AttributePattern) QualUint(u uint64) *AttributePattern {
	p.Qualifiers = append(p.Qualifiers, UintQualifier(u))
	return p
}

func (p *AttributePattern) QualBool(b bool) *AttributePattern {
	p.Qualifiers = append(p.Qualifiers, BoolQualifier(b))
	return p
}

func (p *AttributePattern) Wildcard() *AttributePattern {
	p.Qualifiers = append(p.Qualifiers, Qualifier{Kind: WildcardQual})
	return p
}

func (p *AttributePattern) String() string {
	a := Attribute{Variable: p.Variable}
	for _, q := range p.Qualifiers {
		if q.Kind == WildcardQual {
			a.Qualifiers = append(a.Qualifiers, StringQualifier("*"))
		} else {
			a.Qualifiers = append(a.Qualifiers, q)
		}
	}
	return a.String()
}

// PrefixMatches reports whether the pattern matches a prefix of the
// attribute: the variables agree and every pattern qualifier matches the
// attribute's qualifier at that position.
func (p *AttributePattern) PrefixMatches(attr *Attribute) bool {
	if p.Variable != attr.Variable || len(p.Qualifiers) > len(attr.Qualifiers) {
		return false
	}
	for i, pq := range p.Qualifiers {
		if pq.Kind == WildcardQual {
			continue
		}
		if !pq.equalsQualifier(attr.Qualifiers[i]) {
			return false
		}
	}
	return true
}

// matchesPatterns probes a pattern set for a prefix match on the attribute.
func matchesPatterns(patterns []*AttributePattern, attr *Attribute) bool {
	for _, p := range patterns {
		if p.PrefixMatches(attr) {
			return true
		}
	}
	return false
}

// PotentialMatch reports whether a longer pattern could still match an
// extension of the attribute: the variables agree and every attribute
// qualifier matches the pattern so far. A qualification failure on such an
// attribute resolves to unknown rather than an error.
func (p *AttributePattern) PotentialMatch(attr *Attribute) bool {
	if p.Variable != attr.Variable || len(p.Qualifiers) <= len(attr.Qualifiers) {
		return false
	}
	for i, aq := range attr.Qualifiers {
		pq := p.Qualifiers[i]
		if pq.Kind == WildcardQual {
			continue
		}
		if !pq.equalsQualifier(aq) {
			return false
		}
	}
	return true
}

func potentiallyMatchesPatterns(patterns []*AttributePattern, attr *Attribute) bool {
	for _, p := range patterns {
		if p.PotentialMatch(attr) {
			return true
		}
	}
	return false
}

// ParseAttributePattern builds a pattern from a dotted path with optional
// `*` wildcard segments, e.g. "request.auth.*".
func ParseAttributePattern(path string) (*AttributePattern, error) {
	segments := strings.Split(path, ".")
	if segments[0] == "" || segments[0] == "*" {
		return nil, fmt.Errorf("attribute pattern must start with a variable name: %q", path)
	}
	p := NewAttributePattern(segments[0])
	for _, seg := range segments[1:] {
		switch {
		case seg == "*":
			p.Wildcard()
		case seg == "":
			return nil, fmt.Errorf("empty segment in attribute pattern: %q", path)
		default:
			if i, err := strconv.ParseInt(seg, 10, 64); err == nil {
				p.QualInt(i)
			} else {
				p.QualString(seg)
			}
		}
	}
	return p, nil
}
