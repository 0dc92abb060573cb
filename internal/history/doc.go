// Package history keeps a SQLite ledger of emitted descriptors.
//
// Each successful emit may record one Entry holding the descriptor digest,
// so later runs can tell whether the output changed for a project and
// format. The ledger never stores descriptor contents or secret values.
package history
