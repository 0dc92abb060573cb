// Package pipeline defines the immutable value types that describe a CI
// configuration: build definitions, their steps, agent requirements,
// features, dependencies and the VCS roots they share.
//
// Values are created once during loading through constructors or the
// definition Builder, and are read-only afterwards. Relationships between
// entities are always named references (see package refid), never pointers,
// so a definition never owns the VCS roots or build types it mentions.
//
// The package also defines the error taxonomy shared by the registry, the
// resolver and the emitters.
package pipeline
