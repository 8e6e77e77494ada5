// Package resource defines Name, the hierarchical identifier of a managed
// resource.
//
// A Name is a domain plus an ordered list of key properties:
//
//	runtime:type=Memory
//	backendhub:type=BackendHandler,qualifier=edge
//
// The canonical form sorts properties by key and is what equality and
// display use. A Name may also be a pattern: a domain containing '*' or '?'
// glob characters, and/or a trailing "*" property that admits any further
// properties.
//
//	runtime:*            every resource in the runtime domain
//	*:type=Memory,*      any domain, type=Memory, any other properties
//
// Parsing and validation errors wrap ErrMalformedName.
package resource
