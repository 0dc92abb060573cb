// Package registry holds the build definitions and VCS roots of a single
// configuration set.
//
// A Registry is an explicit object owned by the caller rather than ambient
// global state, so independent configuration sets can be processed side by
// side, and tests never share mutable state. Entries are keyed by id and
// remember their insertion order, which is the order the emitters use.
package registry
