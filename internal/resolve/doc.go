// Package resolve validates the named references of registered build
// definitions: dependency targets, attached VCS roots and the VCS roots and
// credentials used by features.
//
// Resolution is a pure validation pass. In-namespace ids must be present in
// the registry. Absolute ids point into projects that cannot be queried
// locally, so only their syntax is checked unless the caller supplies the
// set of external ids known to exist.
package resolve
