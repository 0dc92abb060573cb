// Package hcl provides the HCL implementation of config.Loader. It is
// responsible for file discovery, parsing, decoding the block schema and
// translating the decoded blocks into immutable pipeline values.
//
// Labelled blocks (`step`, `requirement`, `feature`) are decoded in two
// passes: the label selects a kind-specific schema which is then applied to
// the block's remaining body. Source order is preserved throughout.
package hcl
