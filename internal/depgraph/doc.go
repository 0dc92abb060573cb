// Package depgraph is a small directed graph of build type ids used to check
// that in-namespace dependencies are acyclic and to compute a stable
// dependency-first ordering.
package depgraph
