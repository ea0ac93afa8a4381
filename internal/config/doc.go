// Package config loads and validates enginewatch configuration.
//
// Two documents are involved:
//
// Settings is the operator-facing configuration: webhook URLs, feed
// URL, poll interval, state database path. It comes from an optional
// YAML file with environment variable overrides (ENGINEWATCH_*).
//
// WatchConfig is the user-facing configuration: a JSON document mapping
// a messaging user ID to the list of engine names that user follows.
// It is parsed as CUE, a strict superset of JSON (so plain JSON and
// commented JSON both load), and unified with an embedded schema before
// use. Validation is all-or-nothing: a document that fails the schema
// produces no config at all, never a partial one.
//
// From a valid WatchConfig the inverse InterestIndex is derived: engine
// name to the set of users following it. The index is immutable; a
// refreshed config produces a new index.
package config
