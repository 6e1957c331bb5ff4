package output

// KeyValueStore is local persistence surviving restarts (client side).
// Get returns ok=false for a missing key.
type KeyValueStore interface {
	Get(key string, dst any) (ok bool, err error)
	Set(key string, value any) error
	Remove(keys ...string) error
}
