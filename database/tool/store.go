package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Fantom-foundation/Arbor/go/backend/nodestore"
	"github.com/Fantom-foundation/Arbor/go/backend/nodestore/cache"
	"github.com/Fantom-foundation/Arbor/go/backend/nodestore/ldb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
)

var storeCacheFlag = cli.IntFlag{
	Name:  "store-cache",
	Usage: "number of encoded nodes cached in front of LevelDB, 0 disables the cache",
	Value: 0,
}

// tempStore is a LevelDB node store in a temporary directory, optionally
// fronted by a node cache reporting to its own metrics registry.
type tempStore struct {
	nodes    nodestore.NodeStore
	dir      string
	db       *ldb.Store
	registry *prometheus.Registry
}

func openTempStore(context *cli.Context, name string, table ldb.TableSpace) (*tempStore, error) {
	tmpDir := context.String(tmpDirFlag.Name)
	if len(tmpDir) == 0 {
		tmpDir = os.TempDir()
	}
	dir := filepath.Join(tmpDir, fmt.Sprintf("arbor-%s-%d", name, time.Now().UnixNano()))
	log.Info("Using temporary directory", "dir", dir)

	db, err := ldb.Open(dir, table, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open node store: %w", err)
	}
	res := &tempStore{nodes: db, dir: dir, db: db}
	if capacity := context.Int(storeCacheFlag.Name); capacity > 0 {
		res.registry = prometheus.NewRegistry()
		cached, err := cache.New(db, cache.Config{Capacity: capacity, Name: name, Registerer: res.registry})
		if err != nil {
			return nil, errors.Join(err, db.Close(), os.RemoveAll(dir))
		}
		res.nodes = cached
	}
	return res, nil
}

// reportMetrics logs the counters collected by the node cache, if any.
func (s *tempStore) reportMetrics() error {
	if s.registry == nil {
		return nil
	}
	families, err := s.registry.Gather()
	if err != nil {
		return err
	}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			log.Info("Node cache", "metric", family.GetName(), "value", metric.GetCounter().GetValue())
		}
	}
	return nil
}

func (s *tempStore) Close() error {
	return errors.Join(s.db.Close(), os.RemoveAll(s.dir))
}
