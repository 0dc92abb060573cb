// Package emit renders registered build definitions into the descriptor
// document consumed by the CI orchestrator.
//
// All formats share one intermediate document built by NewDocument, which
// is where malformed field content is rejected. Output is stable: the same
// input always produces byte-identical bytes.
package emit
