package jmt

import "github.com/ethereum/go-ethereum/log"

// Config summarizes the tunable properties of a Jellyfish trie.
type Config struct {
	// RetainVersions is the number of most recent versions kept when
	// committing. Zero retains all versions.
	RetainVersions int
	// NodeCacheSize is the number of decoded nodes kept in memory.
	NodeCacheSize int
	// Logger receives commit and pruning events.
	Logger log.Logger
}

var DefaultConfig = Config{
	NodeCacheSize: 1 << 16,
}

func (c Config) withDefaults() Config {
	if c.NodeCacheSize <= 0 {
		c.NodeCacheSize = DefaultConfig.NodeCacheSize
	}
	if c.Logger == nil {
		c.Logger = log.New("tree", "jmt")
	}
	return c
}
