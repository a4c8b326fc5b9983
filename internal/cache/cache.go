package cache

const (
	InMemoryCacheType = "in-memory"
)

// Cache is a small TTL-aware key/value store. The relay uses it to retain
// collaborator profiles across brief reconnects.
type Cache interface {
	Set(key string, value interface{}) error
	Get(key string) (interface{}, error)
	SetWithTTL(key string, value interface{}, ttlSeconds int64) error
}
