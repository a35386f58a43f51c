package main

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"github.com/Fantom-foundation/Arbor/go/backend/nodestore/ldb"
	"github.com/Fantom-foundation/Arbor/go/common/interrupt"
	"github.com/Fantom-foundation/Arbor/go/database"
	"github.com/Fantom-foundation/Arbor/go/database/commit"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

var StressCmd = cli.Command{
	Action: addPerformanceDiagnoses(stress),
	Name:   "stress",
	Usage:  "runs random updates against a tree and verifies proofs of all retained versions",
	Flags: []cli.Flag{
		&variantFlag,
		&numBlocksFlag,
		&updatesPerBlockFlag,
		&retainFlag,
		&samplesFlag,
		&reportIntervalFlag,
		&storeCacheFlag,
		&tmpDirFlag,
		&seedFlag,
	},
}

var (
	variantFlag = cli.StringFlag{
		Name:  "variant",
		Usage: "the tree variant to test, iavl or jmt",
		Value: string(database.IavlVariant),
	}
	numBlocksFlag = cli.IntFlag{
		Name:  "blocks",
		Usage: "number of blocks to commit",
		Value: 100,
	}
	updatesPerBlockFlag = cli.IntFlag{
		Name:  "updates",
		Usage: "number of inserts and deletes per block",
		Value: 100,
	}
	retainFlag = cli.IntFlag{
		Name:  "retain",
		Usage: "number of versions to retain, 0 retains all versions",
		Value: 10,
	}
	samplesFlag = cli.IntFlag{
		Name:  "samples",
		Usage: "number of keys proven per retained version",
		Value: 32,
	}
	reportIntervalFlag = cli.IntFlag{
		Name:  "report-interval",
		Usage: "number of blocks between progress reports",
		Value: 10,
	}
)

func stress(context *cli.Context) error {
	variant, err := database.GetVariantByName(context.String(variantFlag.Name))
	if err != nil {
		return err
	}
	table := ldb.IavlNodeSpace
	if variant == database.JellyfishVariant {
		table = ldb.JellyfishNodeSpace
	}
	store, err := openTempStore(context, "stress", table)
	if err != nil {
		return err
	}
	defer store.Close()

	tree, err := database.OpenTree(variant, store.nodes, database.TreeConfig{
		RetainVersions: context.Int(retainFlag.Name),
		Logger:         log.New("variant", variant),
	})
	if err != nil {
		return err
	}

	seed := context.Int64(seedFlag.Name)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Info("Starting stress test", "variant", variant, "seed", seed)
	rand := rand.New(rand.NewSource(seed))
	ctx := interrupt.Register(context.Context)

	numBlocks := max(context.Int(numBlocksFlag.Name), 1)
	updates := context.Int(updatesPerBlockFlag.Name)
	reportInterval := max(context.Int(reportIntervalFlag.Name), 1)
	state := map[int]int{}
	nextKey := 0
	start := time.Now()
	for i := 1; i <= numBlocks; i++ {
		if interrupt.IsCancelled(ctx) {
			return interrupt.ErrCanceled
		}
		for j := 0; j < updates; j++ {
			// 60% inserts of new keys, 30% updates, 10% deletes
			switch c := rand.Float32(); {
			case c < 0.6 || len(state) == 0:
				state[nextKey] = i
				if err := tree.Insert(intToKey(nextKey), intToValue(i)); err != nil {
					return err
				}
				nextKey++
			case c < 0.9:
				key := rand.Intn(nextKey)
				state[key] = i
				if err := tree.Insert(intToKey(key), intToValue(i)); err != nil {
					return err
				}
			default:
				key := rand.Intn(nextKey)
				delete(state, key)
				if err := tree.Delete(intToKey(key)); err != nil {
					return err
				}
			}
		}
		root, err := tree.Commit(uint64(i))
		if err != nil {
			return fmt.Errorf("failed to commit block %d: %w", i, err)
		}
		if i%reportInterval == 0 {
			log.Info("Committed block", "block", i, "root", root, "keys", len(state), "elapsed", time.Since(start).Round(time.Millisecond))
		}
	}

	for key, block := range state {
		value, found, err := tree.Get(intToKey(key))
		if err != nil {
			return err
		}
		if !found || !bytes.Equal(value, intToValue(block)) {
			return fmt.Errorf("unexpected value of key %d, wanted %x, got %x", key, intToValue(block), value)
		}
	}

	verified, err := verifyVersions(ctx, tree, nextKey, context.Int(samplesFlag.Name), rand)
	if err != nil {
		return err
	}
	log.Info("Stress test completed", "blocks", numBlocks, "keys", len(state), "proofs", verified, "elapsed", time.Since(start).Round(time.Millisecond))
	return store.reportMetrics()
}

// verifyVersions creates proofs for sampled keys in all retained versions
// and checks them in parallel.
func verifyVersions(ctx context.Context, tree commit.VersionedTree, numKeys, samples int, rand *rand.Rand) (int, error) {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.NumCPU())
	verified := 0
	for _, version := range tree.Versions(0, ^uint64(0)) {
		for i := 0; i < samples && numKeys > 0; i++ {
			if interrupt.IsCancelled(groupCtx) {
				if err := group.Wait(); err != nil {
					return verified, err
				}
				return verified, interrupt.ErrCanceled
			}
			key := intToKey(rand.Intn(numKeys))
			value, _, err := tree.GetAt(version.Height, key)
			if err != nil {
				return verified, err
			}
			proof, err := tree.CreateProofAt(version.Height, key)
			if err != nil {
				return verified, err
			}
			root, height := version.Root, version.Height
			group.Go(func() error {
				if err := tree.VerifyProof(root, proof, key, value); err != nil {
					return fmt.Errorf("proof of key %x at height %d rejected: %w", key, height, err)
				}
				return nil
			})
			verified++
		}
	}
	return verified, group.Wait()
}

func intToKey(i int) []byte {
	return []byte{byte(i >> 24), byte(i >> 16), byte(i >> 8), byte(i)}
}

func intToValue(i int) []byte {
	return []byte(fmt.Sprintf("block-%d", i))
}
