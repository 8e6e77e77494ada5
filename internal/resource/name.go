package resource

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Name errors
var (
	ErrMalformedName = errors.New("malformed resource name")
)

// Wildcard matches any domain, or any further properties when it ends the
// property list.
const Wildcard = "*"

// Property is a single key=value pair of a Name.
type Property struct {
	Key   string
	Value string
}

// Name identifies a managed resource: a domain plus an ordered set of key
// properties. Two names are equal when their canonical forms are equal.
//
// Format: {domain}:{key}={value}[,{key}={value}...][,*]
// Example: runtime:type=Memory
type Name struct {
	domain          string
	props           []Property
	propertyPattern bool
}

// New builds a Name from a domain and properties, validating both.
func New(domain string, props ...Property) (Name, error) {
	n := Name{domain: domain, props: append([]Property(nil), props...)}
	if err := n.validate(); err != nil {
		return Name{}, err
	}
	return n, nil
}

// MustParse is like Parse but panics on error. Intended for constants.
func MustParse(s string) Name {
	n, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return n
}

// Parse parses the string form of a Name or Name pattern.
func Parse(s string) (Name, error) {
	if s == "" {
		return Name{}, fmt.Errorf("%w: empty name", ErrMalformedName)
	}

	idx := strings.Index(s, ":")
	if idx < 0 {
		return Name{}, fmt.Errorf("%w: missing domain separator in %q", ErrMalformedName, s)
	}

	n := Name{domain: s[:idx]}
	list := s[idx+1:]
	if list == "" {
		return Name{}, fmt.Errorf("%w: empty property list in %q", ErrMalformedName, s)
	}

	for _, part := range strings.Split(list, ",") {
		if part == Wildcard {
			if n.propertyPattern {
				return Name{}, fmt.Errorf("%w: repeated wildcard in %q", ErrMalformedName, s)
			}
			n.propertyPattern = true
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return Name{}, fmt.Errorf("%w: property %q lacks '='", ErrMalformedName, part)
		}
		n.props = append(n.props, Property{Key: key, Value: value})
	}

	if err := n.validate(); err != nil {
		return Name{}, err
	}
	return n, nil
}

// Pattern returns the pattern matching every name in domain.
func Pattern(domain string) (Name, error) {
	return Parse(domain + ":" + Wildcard)
}

func (n Name) validate() error {
	if strings.ContainsAny(n.domain, ":,=") {
		return fmt.Errorf("%w: invalid domain %q", ErrMalformedName, n.domain)
	}
	if len(n.props) == 0 && !n.propertyPattern {
		return fmt.Errorf("%w: at least one key property required", ErrMalformedName)
	}

	seen := make(map[string]bool, len(n.props))
	for _, p := range n.props {
		if p.Key == "" || strings.ContainsAny(p.Key, ":,=*?") {
			return fmt.Errorf("%w: invalid key %q", ErrMalformedName, p.Key)
		}
		if p.Value == "" || strings.ContainsAny(p.Value, ":,=*?") {
			return fmt.Errorf("%w: invalid value %q for key %q", ErrMalformedName, p.Value, p.Key)
		}
		if seen[p.Key] {
			return fmt.Errorf("%w: duplicate key %q", ErrMalformedName, p.Key)
		}
		seen[p.Key] = true
	}
	return nil
}

// Domain returns the domain part.
func (n Name) Domain() string {
	return n.domain
}

// Properties returns the key properties in the order they were given.
func (n Name) Properties() []Property {
	return append([]Property(nil), n.props...)
}

// Get returns the value of key.
func (n Name) Get(key string) (string, bool) {
	for _, p := range n.props {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// IsZero reports whether n is the zero Name.
func (n Name) IsZero() bool {
	return n.domain == "" && len(n.props) == 0 && !n.propertyPattern
}

// IsPattern reports whether n contains a domain or property wildcard.
func (n Name) IsPattern() bool {
	return n.propertyPattern || strings.ContainsAny(n.domain, "*?")
}

// KeyPropertyList returns the properties in their given order.
func (n Name) KeyPropertyList() string {
	return joinProperties(n.props, n.propertyPattern)
}

// CanonicalKeyPropertyList returns the properties sorted by key.
func (n Name) CanonicalKeyPropertyList() string {
	sorted := n.Properties()
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })
	return joinProperties(sorted, n.propertyPattern)
}

// String returns the canonical form.
func (n Name) String() string {
	if n.IsZero() {
		return ""
	}
	return n.domain + ":" + n.CanonicalKeyPropertyList()
}

// Equal compares canonical forms.
func (n Name) Equal(other Name) bool {
	return n.String() == other.String()
}

// Matches reports whether target, which must not be a pattern, is selected
// by n. A non-pattern n matches only an equal name.
func (n Name) Matches(target Name) bool {
	if target.IsPattern() {
		return false
	}
	if !matchDomain(n.domain, target.domain) {
		return false
	}
	if !n.propertyPattern && len(n.props) != len(target.props) {
		return false
	}
	for _, p := range n.props {
		v, ok := target.Get(p.Key)
		if !ok || v != p.Value {
			return false
		}
	}
	return true
}

// matchDomain matches a domain against a pattern in which only '*' (any run
// of characters) and '?' (one character) are special. Everything else,
// brackets and backslashes included, matches itself.
func matchDomain(pattern, domain string) bool {
	p, d := []rune(pattern), []rune(domain)
	pi, di := 0, 0
	star, mark := -1, 0
	for di < len(d) {
		switch {
		case pi < len(p) && (p[pi] == '?' || p[pi] == d[di]):
			pi++
			di++
		case pi < len(p) && p[pi] == '*':
			star, mark = pi, di
			pi++
		case star >= 0:
			pi = star + 1
			mark++
			di = mark
		default:
			return false
		}
	}
	for pi < len(p) && p[pi] == '*' {
		pi++
	}
	return pi == len(p)
}

func joinProperties(props []Property, wildcard bool) string {
	parts := make([]string, 0, len(props)+1)
	for _, p := range props {
		parts = append(parts, p.Key+"="+p.Value)
	}
	if wildcard {
		parts = append(parts, Wildcard)
	}
	return strings.Join(parts, ",")
}
