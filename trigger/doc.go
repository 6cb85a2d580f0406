// Package trigger decides when a snapshot is taken and what the artifact is called.
//
// Artifact names follow
//
//	flush_<reason>_<YYYY-MM-DD_HH-MM-SS>.ttfr
//
// where spaces in the reason become underscores and the instant is formatted in
// its own location (callers pass UTC). NameFor is the pure naming function; Namer
// wraps it and appends a _N counter when the same name would be issued twice,
// which happens for two triggers with the same reason within one second.
//
// Triggers come from three sources: explicit calls (signals, CLI commands),
// a Detector inspecting each ingested event, and a Watcher that fires when a file
// is dropped into a trigger directory.
package trigger
