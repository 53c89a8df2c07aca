package contract

// KVStore is a synchronous string key-value store. A missing key is not an
// error: Get reports found=false.
type KVStore interface {
	Get(key string) (value string, found bool, err error)
	Set(key, value string) error
	Remove(key string) error
}
