package decls

import (
	"fmt"
	"strings"
)

// Container is the namespace an expression is checked in. An unqualified
// name `x` inside container `a.b.c` resolves by probing `a.b.c.x`, `a.b.x`,
// `a.x`, `x` in order; the alias table is consulted for the first simple
// segment of a name.
type Container struct {
	Name    string
	aliases map[string]string
}

// ContainerOption configures a Container.
type ContainerOption func(*Container) error

// NewContainer builds a container from options.
func NewContainer(opts ...ContainerOption) (*Container, error) {
	c := &Container{}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ContainerName sets the namespace path.
func ContainerName(name string) ContainerOption {
	return func(c *Container) error {
		if name != "" && !validQualifiedName(name) {
			return fmt.Errorf("invalid container name: %q", name)
		}
		c.Name = name
		return nil
	}
}

// Alias maps a short name to a fully-qualified one.
func Alias(alias, qualifiedName string) ContainerOption {
	return func(c *Container) error {
		if strings.Contains(alias, ".") {
			return fmt.Errorf("alias must be a simple name: %q", alias)
		}
		if !strings.Contains(qualifiedName, ".") {
			return fmt.Errorf("aliased name must be qualified: %q", qualifiedName)
		}
		return c.addAlias(alias, qualifiedName)
	}
}

// Abbrevs registers each qualified name under its last segment, eliding the
// prefix: Abbrevs("a.b.c") makes `c` resolve to `a.b.c`.
func Abbrevs(qualifiedNames ...string) ContainerOption {
	return func(c *Container) error {
		for _, qn := range qualifiedNames {
			ind := strings.LastIndex(qn, ".")
			if ind <= 0 || ind >= len(qn)-1 {
				return fmt.Errorf("abbreviation must be a qualified name: %q", qn)
			}
			if err := c.addAlias(qn[ind+1:], qn); err != nil {
				return err
			}
		}
		return nil
	}
}

func (c *Container) addAlias(alias, qualifiedName string) error {
	if c.aliases == nil {
		c.aliases = make(map[string]string)
	}
	if existing, ok := c.aliases[alias]; ok && existing != qualifiedName {
		return fmt.Errorf("alias collides with existing alias: %s -> %s vs %s", alias, existing, qualifiedName)
	}
	c.aliases[alias] = qualifiedName
	return nil
}

// Extend derives a new container with additional options applied.
func (c *Container) Extend(opts ...ContainerOption) (*Container, error) {
	ext := &Container{Name: c.Name}
	if c.aliases != nil {
		ext.aliases = make(map[string]string, len(c.aliases))
		for k, v := range c.aliases {
			ext.aliases[k] = v
		}
	}
	for _, opt := range opts {
		if err := opt(ext); err != nil {
			return nil, err
		}
	}
	return ext, nil
}

// ResolveCandidateNames produces the resolution candidates for a name, most
// qualified first. A leading dot pins the name to the root namespace.
func (c *Container) ResolveCandidateNames(name string) []string {
	if strings.HasPrefix(name, ".") {
		qn := name[1:]
		if alias, ok := c.findAlias(qn); ok {
			return []string{alias}
		}
		return []string{qn}
	}
	if alias, ok := c.findAlias(name); ok {
		return []string{alias}
	}
	if c == nil || c.Name == "" {
		return []string{name}
	}
	nextCont := c.Name
	candidates := []string{nextCont + "." + name}
	for i := strings.LastIndex(nextCont, "."); i >= 0; i = strings.LastIndex(nextCont, ".") {
		nextCont = nextCont[:i]
		candidates = append(candidates, nextCont+"."+name)
	}
	return append(candidates, name)
}

// findAlias rewrites the first segment of a name through the alias table.
func (c *Container) findAlias(name string) (string, bool) {
	if c == nil || c.aliases == nil {
		return "", false
	}
	simple := name
	rest := ""
	if ind := strings.Index(name, "."); ind >= 0 {
		simple = name[:ind]
		rest = name[ind:]
	}
	qn, found := c.aliases[simple]
	if !found {
		return "", false
	}
	return qn + rest, true
}

func validQualifiedName(name string) bool {
	for _, seg := range strings.Split(name, ".") {
		if !validSimpleName(seg) {
			return false
		}
	}
	return true
}

func validSimpleName(name string) bool {
	if name == "" {
		return false
	}
	for i, ch := range name {
		ok := ch == '_' ||
			(ch >= 'a' && ch <= 'z') ||
			(ch >= 'A' && ch <= 'Z') ||
			(i > 0 && ch >= '0' && ch <= '9')
		if !ok {
			return false
		}
	}
	return true
}
