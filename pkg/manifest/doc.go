// Package manifest persists wowa's durable state: installed addon records and
// values set with `wowa config`.
//
// Entries are addressed by a key path such as ["addons", "retail", "details"]
// and hold an opaque string value (JSON for addon records). The sqlite-backed
// Store performs a per-key upsert for every write, so concurrent writers of
// distinct keys never clobber each other.
package manifest
