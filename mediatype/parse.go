package mediatype

import "strings"

// TryParse parses text in the form main-type/[tree.]sub-type[+suffix][; key=value]*.
// Spaces are removed and the text is lower-cased before parsing. Duplicate
// parameter keys are rejected.
func TryParse(text string) (MediaType, bool) {
	text = strings.ToLower(strings.ReplaceAll(text, " ", ""))

	split := strings.Split(text, "/")
	if len(split) != 2 {
		return MediaType{}, false
	}
	typ := split[0]
	if !isToken(typ) {
		return MediaType{}, false
	}

	var tree, rest string
	split = strings.Split(split[1], ".")
	switch len(split) {
	case 1:
		rest = split[0]
	case 2:
		tree, rest = split[0], split[1]
		if !isToken(tree) {
			return MediaType{}, false
		}
	default:
		return MediaType{}, false
	}

	split = strings.Split(rest, ";")
	var params []Param
	for _, piece := range split[1:] {
		kv := strings.Split(piece, "=")
		if len(kv) != 2 || !isToken(kv[0]) || !isToken(kv[1]) {
			return MediaType{}, false
		}
		for _, p := range params {
			if p.Key == kv[0] {
				return MediaType{}, false
			}
		}
		params = append(params, Param{Key: kv[0], Value: kv[1]})
	}

	var subType, suffix string
	split = strings.Split(split[0], "+")
	switch len(split) {
	case 1:
		subType = split[0]
	case 2:
		subType, suffix = split[0], split[1]
		if !isToken(suffix) {
			return MediaType{}, false
		}
	default:
		return MediaType{}, false
	}
	if !isToken(subType) {
		return MediaType{}, false
	}

	return MediaType{typ: typ, tree: tree, subType: subType, suffix: suffix, params: params}, true
}

// Parse is like TryParse but returns a *FormatError when text is malformed.
func Parse(text string) (MediaType, error) {
	m, ok := TryParse(text)
	if !ok {
		return MediaType{}, &FormatError{Input: text}
	}
	return m, nil
}

// MustParse is like Parse but panics on malformed input. Use it for constants.
func MustParse(text string) MediaType {
	m, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return m
}
