// Package store provides the string-keyed persistence substrate that session
// data is built on.
//
// The KV interface is deliberately small and synchronous: get, set, remove,
// clear. Callers inject an implementation, which keeps persistence swappable
// and lets tests run against [Mem] instead of the filesystem.
package store

import "errors"

// ErrInvalidKey indicates a key contains characters the substrate cannot
// represent safely.
var ErrInvalidKey = errors.New("invalid store key")

// KV is a synchronous string-keyed key-value store.
//
// Implementations must treat a missing key as (value="", ok=false, err=nil);
// errors are reserved for I/O-level failures.
type KV interface {
	// Get returns the value for key. ok is false if the key is absent.
	Get(key string) (value string, ok bool, err error)

	// Set stores value under key, overwriting any prior value.
	Set(key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error

	// Clear irreversibly deletes every key.
	Clear() error
}

// validKey reports whether key is safe for every KV implementation,
// including filename-per-key stores.
func validKey(key string) bool {
	if key == "" {
		return false
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_' || c == '-' || c == '.':
		default:
			return false
		}
	}
	// Dot-only names would collide with directory entries.
	return key != "." && key != ".."
}
