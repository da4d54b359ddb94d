package repository

const (
	defaultShardCount = 16
	defaultCapacity   = 1024
)

type config struct {
	shards   int
	capacity int
}

// Option applies a configuration option to the Store.
type Option func(*config)

// WithShardCount sets how many independently locked shards the store uses.
func WithShardCount(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.shards = n
		}
	}
}

// WithCapacity caps the number of entries. Zero or less means unlimited.
func WithCapacity(n int) Option {
	return func(c *config) {
		c.capacity = n
	}
}
