// Package store provides the key-value containers behind the kvstore module.
//
// Store is an in-memory container of string keys and string values. It is
// partitioned into shards so it is safe for concurrent use, but a single
// goroutine observes plain map semantics: Set overwrites, Get reports
// presence, Delete reports whether it removed anything.
//
// DiskStore offers the same operations persisted to a bbolt file, and both
// containers can be backed up to (and restored from) bbolt snapshot files.
package store
