package main

import (
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"time"

	"github.com/Fantom-foundation/Arbor/go/backend/nodestore/ldb"
	"github.com/Fantom-foundation/Arbor/go/common/interrupt"
	"github.com/Fantom-foundation/Arbor/go/database/mhnsw"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

var AnnCmd = cli.Command{
	Action: addPerformanceDiagnoses(ann),
	Name:   "ann",
	Usage:  "builds a vector index of random vectors and verifies the traversal proofs of random queries",
	Flags: []cli.Flag{
		&metricFlag,
		&dimFlag,
		&numVectorsFlag,
		&numQueriesFlag,
		&neighborsFlag,
		&storeCacheFlag,
		&tmpDirFlag,
		&seedFlag,
	},
}

var (
	metricFlag = cli.StringFlag{
		Name:  "metric",
		Usage: "the distance metric, euclidean or cosine",
		Value: mhnsw.Euclidean.String(),
	}
	dimFlag = cli.IntFlag{
		Name:  "dim",
		Usage: "number of components of each vector",
		Value: 16,
	}
	numVectorsFlag = cli.IntFlag{
		Name:  "n",
		Usage: "number of indexed vectors",
		Value: 1000,
	}
	numQueriesFlag = cli.IntFlag{
		Name:  "queries",
		Usage: "number of random queries",
		Value: 100,
	}
	neighborsFlag = cli.IntFlag{
		Name:  "k",
		Usage: "number of results per query",
		Value: 10,
	}
)

func ann(context *cli.Context) error {
	metric, err := mhnsw.GetMetricByName(context.String(metricFlag.Name))
	if err != nil {
		return err
	}
	store, err := openTempStore(context, "ann", ldb.GraphNodeSpace)
	if err != nil {
		return err
	}
	defer store.Close()

	seed := context.Int64(seedFlag.Name)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	config := mhnsw.DefaultConfig
	config.Metric = metric.Kind()
	config.Seed = seed
	index, err := mhnsw.NewIndex(store.nodes, config)
	if err != nil {
		return err
	}

	dim := max(context.Int(dimFlag.Name), 1)
	n := max(context.Int(numVectorsFlag.Name), 1)
	k := context.Int(neighborsFlag.Name)
	log.Info("Building index", "metric", metric.Kind(), "dim", dim, "vectors", n, "seed", seed)
	rand := rand.New(rand.NewSource(seed))
	ctx := interrupt.Register(context.Context)

	start := time.Now()
	vectors := make([]mhnsw.Vector, n)
	for i := range vectors {
		if i%1000 == 0 && interrupt.IsCancelled(ctx) {
			return interrupt.ErrCanceled
		}
		vectors[i] = randomVector(rand, dim)
		if _, err := index.Insert(vectors[i]); err != nil {
			return err
		}
	}
	root, err := index.Commit(1)
	if err != nil {
		return err
	}
	log.Info("Index committed", "root", root, "elapsed", time.Since(start).Round(time.Millisecond))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.NumCPU())
	start = time.Now()
	found, traced := 0, 0
	numQueries := context.Int(numQueriesFlag.Name)
	for i := 0; i < numQueries; i++ {
		if interrupt.IsCancelled(groupCtx) {
			break
		}
		query := randomVector(rand, dim)
		results, proof, err := index.SearchAt(1, query, k)
		if err != nil {
			return err
		}
		traced += len(proof.Trace)
		found += overlap(results, exactNeighbors(metric, vectors, query, k))
		i := i
		group.Go(func() error {
			if err := mhnsw.Verify(root, proof, query, k); err != nil {
				return fmt.Errorf("traversal proof of query %d rejected: %w", i, err)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	if interrupt.IsCancelled(ctx) {
		return interrupt.ErrCanceled
	}

	recall := 0.0
	if wanted := numQueries * min(k, n); wanted > 0 {
		recall = float64(found) / float64(wanted)
	}
	log.Info("Queries verified",
		"queries", numQueries,
		"recall", fmt.Sprintf("%.3f", recall),
		"avgTrace", fmt.Sprintf("%.1f", float64(traced)/float64(max(numQueries, 1))),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return store.reportMetrics()
}

func randomVector(rand *rand.Rand, dim int) mhnsw.Vector {
	res := make(mhnsw.Vector, dim)
	for i := range res {
		res[i] = rand.Float32()*2 - 1
	}
	return res
}

// exactNeighbors determines the k closest vectors by a linear scan.
func exactNeighbors(metric mhnsw.DistanceMetric, vectors []mhnsw.Vector, query mhnsw.Vector, k int) []mhnsw.NodeId {
	ids := make([]mhnsw.NodeId, len(vectors))
	distances := make([]float64, len(vectors))
	for i, v := range vectors {
		ids[i] = mhnsw.NodeId(i)
		distances[i] = metric.Distance(query, v)
	}
	sort.SliceStable(ids, func(a, b int) bool {
		return distances[ids[a]] < distances[ids[b]]
	})
	return ids[:min(k, len(ids))]
}

func overlap(results []mhnsw.Result, exact []mhnsw.NodeId) int {
	wanted := map[mhnsw.NodeId]struct{}{}
	for _, id := range exact {
		wanted[id] = struct{}{}
	}
	count := 0
	for _, r := range results {
		if _, found := wanted[r.ID]; found {
			count++
		}
	}
	return count
}
