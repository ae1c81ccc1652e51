// Package manifest builds IIIF Presentation API v3 documents as an
// explicit plain-data tree (Manifest -> Canvas -> AnnotationPage ->
// Annotation -> Body -> Service) that is assembled once and then
// serialized, rather than mutated through a stateful builder graph.
//
// Every child id is derived deterministically from the asset
// identifier, so rebuilding a manifest for the same asset set is
// reproducible byte for byte.
package manifest
