package store

import (
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// bboltKeyPrefix leads every key written to bbolt. bbolt rejects empty
// keys, so the empty string is stored as the single prefix byte. A shared
// prefix keeps byte order, which keeps Keys sorted.
const bboltKeyPrefix byte = 'k'

// MaxDiskKeyLen is the longest key DiskStore and snapshots can hold.
const MaxDiskKeyLen = bolt.MaxKeySize - 1

// encodeKey returns the bbolt representation of key.
func encodeKey(key string) []byte {
	encoded := make([]byte, 0, len(key)+1)
	encoded = append(encoded, bboltKeyPrefix)

	return append(encoded, key...)
}

// decodeKey strips the prefix from a raw bbolt key. The string conversion
// copies out of the mmap.
func decodeKey(raw []byte) (string, bool) {
	if len(raw) == 0 || raw[0] != bboltKeyPrefix {
		return "", false
	}

	return string(raw[1:]), true
}

// checkDiskKey rejects keys bbolt cannot store.
func checkDiskKey(key string) error {
	if len(key) > MaxDiskKeyLen {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrKeyTooLarge, len(key), MaxDiskKeyLen)
	}

	return nil
}
