// Package cache persists the candidate name → film ID mapping between runs.
//
// [Store] owns the on-disk JSON document (".movies.json" by default). A missing file
// loads as an empty mapping; malformed JSON is reported as [shared.ErrMalformedCache].
// Saves go through a temp file in the same directory followed by a rename, so a crash
// mid-write leaves the previous cache in place.
//
// [Map] is the in-memory view mutated by concurrent lookups during a run. Keys are the raw
// candidate strings exactly as the scanner produced them; no normalization is applied.
// Entries are only ever added within a run.
package cache
