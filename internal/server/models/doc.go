// Package models defines the entities kept in the formvault snapshot.
//
// JSON names follow the snapshot document so existing db.json files decode
// without translation. Timestamps are ISO-8601 UTC strings with millisecond
// precision; they sort lexicographically.
package models
