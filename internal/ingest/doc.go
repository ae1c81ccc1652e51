// Package ingest speaks the media-processing service's ingest API:
// it assembles the request envelope, submits it with a bearer token,
// and polls the resulting job until a terminal state.
package ingest
