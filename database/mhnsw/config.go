package mhnsw

import (
	"math"

	"github.com/ethereum/go-ethereum/log"
)

// Config describes the construction heuristic and resource limits of an
// index. Only the metric is part of the committed state; all other
// parameters affect the shape of the graph but not its verifiability.
type Config struct {
	Metric MetricKind
	// M is the number of neighbours selected per layer on insertion.
	M int
	// M0 is the maximum number of neighbours on layer 0, defaults to 2*M.
	M0 int
	// EfConstruction is the beam width of the neighbour search on insertion.
	EfConstruction int
	// LevelMultiplier scales the random layer assignment, defaults to 1/ln(M).
	LevelMultiplier float64
	// MaxLayer caps the number of layers of the graph.
	MaxLayer int
	// Seed makes the layer assignment reproducible.
	Seed int64

	RetainVersions int
	NodeCacheSize  int
	Logger         log.Logger
}

var DefaultConfig = Config{
	Metric:         Euclidean,
	M:              16,
	EfConstruction: 100,
	MaxLayer:       16,
	NodeCacheSize:  1 << 16,
}

func (c Config) withDefaults() Config {
	if c.Metric == 0 {
		c.Metric = DefaultConfig.Metric
	}
	if c.M <= 1 {
		c.M = DefaultConfig.M
	}
	if c.M0 <= 0 {
		c.M0 = 2 * c.M
	}
	if c.EfConstruction < c.M {
		c.EfConstruction = max(c.M, DefaultConfig.EfConstruction)
	}
	if c.LevelMultiplier <= 0 {
		c.LevelMultiplier = 1 / math.Log(float64(c.M))
	}
	if c.MaxLayer <= 0 || c.MaxLayer > math.MaxUint8 {
		c.MaxLayer = DefaultConfig.MaxLayer
	}
	if c.NodeCacheSize <= 0 {
		c.NodeCacheSize = DefaultConfig.NodeCacheSize
	}
	if c.Logger == nil {
		c.Logger = log.New("index", "mhnsw")
	}
	return c
}
