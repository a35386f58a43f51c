// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package cache

import (
	"github.com/Fantom-foundation/Arbor/go/backend/nodestore"
	"github.com/Fantom-foundation/Arbor/go/common"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// Config describes the properties of a caching node store.
type Config struct {
	// Capacity is the maximum number of encoded nodes retained in memory.
	Capacity int
	// Name distinguishes the metrics of multiple caches on one registry.
	Name string
	// Registerer receives the cache metrics. If nil, no metrics are exported.
	Registerer prometheus.Registerer
}

// DefaultConfig is the cache configuration used if nothing else is specified.
var DefaultConfig = Config{
	Capacity: 1 << 16,
	Name:     "nodes",
}

// Store is a write-through cache in front of another node store. Since
// nodes are content addressed, cached entries never become stale.
type Store struct {
	store   nodestore.NodeStore
	cache   *lru.Cache[common.Hash, []byte]
	metrics metrics
}

type metrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	evictions prometheus.Counter
}

func newMetrics(config Config) (metrics, error) {
	labels := prometheus.Labels{"cache": config.Name}
	res := metrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "arbor",
			Subsystem:   "nodestore",
			Name:        "cache_hits_total",
			Help:        "Number of node loads served from the cache.",
			ConstLabels: labels,
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "arbor",
			Subsystem:   "nodestore",
			Name:        "cache_misses_total",
			Help:        "Number of node loads forwarded to the underlying store.",
			ConstLabels: labels,
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "arbor",
			Subsystem:   "nodestore",
			Name:        "cache_evictions_total",
			Help:        "Number of nodes evicted from the cache.",
			ConstLabels: labels,
		}),
	}
	if config.Registerer == nil {
		return res, nil
	}
	for _, collector := range []prometheus.Collector{res.hits, res.misses, res.evictions} {
		if err := config.Registerer.Register(collector); err != nil {
			return metrics{}, err
		}
	}
	return res, nil
}

// New creates a caching wrapper around the given store.
func New(store nodestore.NodeStore, config Config) (*Store, error) {
	if config.Capacity <= 0 {
		config.Capacity = DefaultConfig.Capacity
	}
	metrics, err := newMetrics(config)
	if err != nil {
		return nil, err
	}
	cache, err := lru.New[common.Hash, []byte](config.Capacity)
	if err != nil {
		return nil, err
	}
	return &Store{store: store, cache: cache, metrics: metrics}, nil
}

func (s *Store) Load(hash common.Hash) ([]byte, bool, error) {
	if data, found := s.cache.Get(hash); found {
		s.metrics.hits.Inc()
		return data, true, nil
	}
	s.metrics.misses.Inc()
	data, found, err := s.store.Load(hash)
	if err != nil || !found {
		return nil, found, err
	}
	s.add(hash, data)
	return data, true, nil
}

func (s *Store) Save(hash common.Hash, data []byte) error {
	if err := s.store.Save(hash, data); err != nil {
		return err
	}
	s.add(hash, data)
	return nil
}

func (s *Store) SaveBatch(entries []nodestore.Entry) error {
	if err := nodestore.SaveAll(s.store, entries); err != nil {
		return err
	}
	for _, entry := range entries {
		s.add(entry.Hash, entry.Data)
	}
	return nil
}

// add caches a node. Only capacity evictions are counted, explicit removals
// are not.
func (s *Store) add(hash common.Hash, data []byte) {
	if s.cache.Add(hash, data) {
		s.metrics.evictions.Inc()
	}
}

// Delete removes the node from the cache and the underlying store. It fails
// with an error if the underlying store does not support deletions.
func (s *Store) Delete(hash common.Hash) error {
	s.cache.Remove(hash)
	deleter, ok := s.store.(nodestore.Deleter)
	if !ok {
		return errNoDeletes
	}
	return deleter.Delete(hash)
}

// CanDelete reports whether the wrapped store supports deletions.
func (s *Store) CanDelete() bool {
	return nodestore.CanDelete(s.store)
}

// Len returns the number of cached nodes.
func (s *Store) Len() int {
	return s.cache.Len()
}

const errNoDeletes = common.ConstError("underlying node store does not support deletions")
