// internal/refid/doc.go

/*
Package refid provides structured, validated identifiers for build
configuration entities.

Two forms of reference exist. A local reference names an entity declared in
the same configuration set, e.g. `E2ETests`. An absolute reference names a
build type owned by another project on the CI server and is written
`absolute:Kotlin_KotlinRelease_1920_LibraryReferenceLatestDocs`.

The package also recognises secret placeholders of the form `%name%`. These
are opaque to this tool and substituted by the CI server at run time.
*/
package refid
