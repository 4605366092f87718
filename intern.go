package ubjson

import "github.com/cespare/xxhash/v2"

// keyInterner deduplicates object keys to a single canonical string per
// document, bucketed by xxhash64 of the key. A 64-bit hash collision
// between two distinct keys is handled by an exact string compare before
// reusing a canonical value, so canon never merges two different keys.
type keyInterner struct {
	canon map[uint64][]string
}

func newKeyInterner() *keyInterner {
	return &keyInterner{canon: make(map[uint64][]string)}
}

// intern returns the canonical string equal to key, allocating a new
// canonical entry the first time key (or an xxhash collision of it) is
// seen.
func (ki *keyInterner) intern(key string) string {
	h := xxhash.Sum64String(key)
	bucket := ki.canon[h]
	for _, existing := range bucket {
		if existing == key {
			return existing
		}
	}
	ki.canon[h] = append(bucket, key)
	return key
}
