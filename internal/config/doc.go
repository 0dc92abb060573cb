// Package config defines the format-agnostic configuration model produced by
// loaders, along with the Loader interface that format-specific
// implementations satisfy.
//
// The `config.Model` is the single input to the registry. Concrete loaders,
// such as the HCL one, live in separate packages.
package config
