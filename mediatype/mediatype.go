package mediatype

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Param is a single key=value parameter of a media type.
type Param struct {
	Key   string
	Value string
}

// MediaType is an immutable structured content-type descriptor of the form
// type/[tree.]subtype[+suffix][; key=value]*. The zero value is not a valid
// media type; use IsZero to detect it.
type MediaType struct {
	typ     string
	tree    string
	subType string
	suffix  string
	params  []Param
}

// FormatError is returned by Parse when the input is not a well-formed media type.
type FormatError struct {
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("mediatype: malformed media type %q", e.Input)
}

// New returns the media type typ/subType with no tree, suffix or parameters.
// It panics if either component is not a token (letters, digits, '_' and '-').
func New(typ, subType string) MediaType {
	return NewWithParams(typ, subType, "", "", nil)
}

// NewWithParams returns a media type built from all five components. Every
// component is lower-cased. Parameters are stored sorted by key so that
// String is deterministic for a given map.
//
// typ, subType and every parameter key and value must be tokens; tree and
// suffix must be tokens when not empty. NewWithParams panics otherwise, so a
// constructed value always parses back to itself.
func NewWithParams(typ, subType, tree, suffix string, params map[string]string) MediaType {
	m := MediaType{
		typ:     strings.ToLower(typ),
		tree:    strings.ToLower(tree),
		subType: strings.ToLower(subType),
		suffix:  strings.ToLower(suffix),
	}
	checkToken("type", m.typ)
	checkToken("subtype", m.subType)
	if m.tree != "" {
		checkToken("tree", m.tree)
	}
	if m.suffix != "" {
		checkToken("suffix", m.suffix)
	}
	if len(params) > 0 {
		m.params = make([]Param, 0, len(params))
		for k, v := range params {
			p := Param{Key: strings.ToLower(k), Value: strings.ToLower(v)}
			checkToken("parameter key", p.Key)
			checkToken("parameter value", p.Value)
			m.params = append(m.params, p)
		}
		sort.Slice(m.params, func(i, j int) bool { return m.params[i].Key < m.params[j].Key })
	}
	return m
}

func checkToken(component, s string) {
	if !isToken(s) {
		panic(fmt.Sprintf("mediatype: invalid %s %q", component, s))
	}
}

// Type returns the main type, e.g. "text" in text/html.
func (m MediaType) Type() string { return m.typ }

// Tree returns the optional tree, e.g. "vnd" in application/vnd.api+json.
func (m MediaType) Tree() string { return m.tree }

// SubType returns the sub type, e.g. "html" in text/html.
func (m MediaType) SubType() string { return m.subType }

// Suffix returns the optional structured syntax suffix, e.g. "json" in application/vnd.api+json.
func (m MediaType) Suffix() string { return m.suffix }

// Params returns a copy of the parameters.
func (m MediaType) Params() map[string]string {
	out := make(map[string]string, len(m.params))
	for _, p := range m.params {
		out[p.Key] = p.Value
	}
	return out
}

// ParamList returns the parameters in rendering order.
func (m MediaType) ParamList() []Param {
	return append([]Param(nil), m.params...)
}

// Param returns the value of the parameter key (lower-cased before lookup).
func (m MediaType) Param(key string) (string, bool) {
	key = strings.ToLower(key)
	for _, p := range m.params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// IsZero reports whether m is the zero MediaType.
func (m MediaType) IsZero() bool {
	return m.typ == "" && m.subType == ""
}

// String renders the canonical form type/[tree.]subType[+suffix][; key=value]*.
func (m MediaType) String() string {
	var b strings.Builder
	b.WriteString(m.typ)
	b.WriteByte('/')
	if m.tree != "" {
		b.WriteString(m.tree)
		b.WriteByte('.')
	}
	b.WriteString(m.subType)
	if m.suffix != "" {
		b.WriteByte('+')
		b.WriteString(m.suffix)
	}
	for _, p := range m.params {
		b.WriteString("; ")
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}
	return b.String()
}

// Equal reports whether m and o have the same canonical form. Parameter order
// is significant.
func (m MediaType) Equal(o MediaType) bool {
	return m.String() == o.String()
}

// Compare orders media types lexicographically by canonical form.
func (m MediaType) Compare(o MediaType) int {
	return strings.Compare(m.String(), o.String())
}

// IsMoreSpecific reports whether m satisfies every constraint declared by ref:
// equal type and subtype, equal tree and suffix when ref declares them, and every
// parameter of ref present in m with the same value. Parameters of m that ref
// does not mention are allowed; that is what makes m more specific.
//
// For example text/html; charset=utf-8 is more specific than text/html, but not
// the other way around.
func (m MediaType) IsMoreSpecific(ref MediaType) bool {
	if m.typ != ref.typ || m.subType != ref.subType {
		return false
	}
	if ref.tree != "" && m.tree != ref.tree {
		return false
	}
	if ref.suffix != "" && m.suffix != ref.suffix {
		return false
	}
	for _, p := range m.params {
		if v, ok := ref.Param(p.Key); ok && v != p.Value {
			return false
		}
	}
	for _, p := range ref.params {
		if v, ok := m.Param(p.Key); !ok || v != p.Value {
			return false
		}
	}
	return true
}

// MarshalText implements encoding.TextMarshaler.
func (m MediaType) MarshalText() ([]byte, error) {
	if m.IsZero() {
		return []byte{}, nil
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty text yields the zero value.
func (m *MediaType) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*m = MediaType{}
		return nil
	}
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func isToken(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' {
			return false
		}
	}
	return true
}
