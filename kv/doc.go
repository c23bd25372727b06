// Package kv exposes the string key-value store to k6 scripts as k6/x/kvstore.
//
// High-level behavior:
//   - The first call to openStore() lazily initializes a single store shared by all VUs.
//   - The store is backed by either the sharded in-memory Store or the bbolt DiskStore.
//     The first successful initialization fixes the backend and its options for the
//     entire test run; later calls with different options are rejected.
//   - Map operations (set, get, delete, contains, len, isEmpty, keys, clear) run
//     synchronously; backup() and restore() return Promises.
package kv
