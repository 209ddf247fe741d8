// Package mediatype provides an immutable structured media type value with
// parsing, canonical rendering and a "more specific than" partial order.
//
// A media type has the form
//
//	type/[tree.]subtype[+suffix][; key=value]*
//
// for example application/vnd.api+json; charset=utf-8. Parsing strips spaces
// and lower-cases the input; every component must consist of letters, digits,
// '_' and '-'.
//
// IsMoreSpecific is used by content-gating steps: a response whose Content-Type
// is text/html; charset=utf-8 satisfies a step requiring text/html.
package mediatype
