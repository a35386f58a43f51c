package iavl

import "github.com/ethereum/go-ethereum/log"

// Config summarizes the tunable properties of an IAVL tree.
type Config struct {
	// RetainVersions is the number of most recent versions kept when
	// committing. Older versions are pruned automatically. Zero disables
	// automatic pruning.
	RetainVersions int
	// NodeCacheSize is the number of decoded nodes kept in memory.
	NodeCacheSize int
	// Logger receives commit and pruning events.
	Logger log.Logger
}

// DefaultConfig retains all versions and caches up to 2^16 nodes.
var DefaultConfig = Config{
	NodeCacheSize: 1 << 16,
}

func (c Config) withDefaults() Config {
	if c.NodeCacheSize <= 0 {
		c.NodeCacheSize = DefaultConfig.NodeCacheSize
	}
	if c.Logger == nil {
		c.Logger = log.New("tree", "iavl")
	}
	return c
}
