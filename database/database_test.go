package database_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Fantom-foundation/Arbor/go/backend/nodestore"
	"github.com/Fantom-foundation/Arbor/go/backend/nodestore/cache"
	"github.com/Fantom-foundation/Arbor/go/backend/nodestore/ldb"
	"github.com/Fantom-foundation/Arbor/go/backend/nodestore/memory"
	"github.com/Fantom-foundation/Arbor/go/database"
	"github.com/Fantom-foundation/Arbor/go/database/commit"
	"github.com/Fantom-foundation/Arbor/go/database/iavl"
	"github.com/Fantom-foundation/Arbor/go/database/jmt"
)

func TestVariants_AreResolvedByName(t *testing.T) {
	for _, name := range []string{"iavl", "jmt"} {
		variant, err := database.GetVariantByName(name)
		if err != nil {
			t.Fatalf("failed to resolve %s: %v", name, err)
		}
		if string(variant) != name {
			t.Errorf("unexpected variant, wanted %s, got %s", name, variant)
		}
	}
	if _, err := database.GetVariantByName("mpt"); !errors.Is(err, database.UnsupportedConfiguration) {
		t.Errorf("expected unsupported configuration, got %v", err)
	}
	if _, err := database.OpenTree("mpt", memory.New(), database.TreeConfig{}); !errors.Is(err, database.UnsupportedConfiguration) {
		t.Errorf("expected unsupported configuration, got %v", err)
	}
	if want, got := []database.Variant{database.IavlVariant, database.JellyfishVariant}, database.GetAllVariants(); fmt.Sprint(want) != fmt.Sprint(got) {
		t.Errorf("unexpected variants, wanted %v, got %v", want, got)
	}
}

func TestVariants_ProduceTheirConcreteTrees(t *testing.T) {
	tree, err := database.OpenTree(database.IavlVariant, memory.New(), database.TreeConfig{})
	if err != nil {
		t.Fatalf("failed to open tree: %v", err)
	}
	if _, ok := tree.AsAny().(*iavl.Tree); !ok {
		t.Errorf("unexpected tree type %T", tree.AsAny())
	}
	tree, err = database.OpenTree(database.JellyfishVariant, memory.New(), database.TreeConfig{})
	if err != nil {
		t.Fatalf("failed to open tree: %v", err)
	}
	if _, ok := tree.AsAny().(*jmt.Tree); !ok {
		t.Errorf("unexpected tree type %T", tree.AsAny())
	}
}

type storeFactory func(t *testing.T, variant database.Variant) nodestore.NodeStore

var storeFactories = map[string]storeFactory{
	"memory": func(t *testing.T, _ database.Variant) nodestore.NodeStore {
		return memory.New()
	},
	"ldb": func(t *testing.T, variant database.Variant) nodestore.NodeStore {
		table := ldb.IavlNodeSpace
		if variant == database.JellyfishVariant {
			table = ldb.JellyfishNodeSpace
		}
		store, err := ldb.Open(t.TempDir(), table, nil)
		if err != nil {
			t.Fatalf("failed to open store: %v", err)
		}
		t.Cleanup(func() {
			if err := store.Close(); err != nil {
				t.Errorf("failed to close store: %v", err)
			}
		})
		return store
	},
	"cached": func(t *testing.T, _ database.Variant) nodestore.NodeStore {
		store, err := cache.New(memory.New(), cache.Config{Capacity: 16})
		if err != nil {
			t.Fatalf("failed to create cache: %v", err)
		}
		return store
	},
}

func forEachSetup(t *testing.T, test func(t *testing.T, tree commit.VersionedTree)) {
	for _, variant := range database.GetAllVariants() {
		for name, factory := range storeFactories {
			variant, factory := variant, factory
			t.Run(fmt.Sprintf("%s/%s", variant, name), func(t *testing.T) {
				tree, err := database.OpenTree(variant, factory(t, variant), database.TreeConfig{NodeCacheSize: 8})
				if err != nil {
					t.Fatalf("failed to open tree: %v", err)
				}
				test(t, tree)
			})
		}
	}
}

func key(i int) []byte {
	return []byte(fmt.Sprintf("key-%03d", i))
}

func value(i, version int) []byte {
	return []byte(fmt.Sprintf("value-%d-%d", i, version))
}

func TestTrees_ProofsMatchContent(t *testing.T) {
	forEachSetup(t, func(t *testing.T, tree commit.VersionedTree) {
		for i := 0; i < 50; i += 2 {
			if err := tree.Insert(key(i), value(i, 0)); err != nil {
				t.Fatalf("failed to insert: %v", err)
			}
		}
		root, err := tree.RootCommitment()
		if err != nil {
			t.Fatalf("failed to get root: %v", err)
		}
		for i := 0; i < 50; i++ {
			proof, err := tree.CreateProof(key(i))
			if err != nil {
				t.Fatalf("failed to create proof: %v", err)
			}
			var want []byte
			if i%2 == 0 {
				want = value(i, 0)
			}
			if err := tree.VerifyProof(root, proof, key(i), want); err != nil {
				t.Errorf("valid proof for key %d rejected: %v", i, err)
			}
			if err := tree.VerifyProof(root, proof, key(i), value(i, 1)); err == nil {
				t.Errorf("proof for key %d accepted with wrong value", i)
			}
		}
	})
}

func TestTrees_EqualContentHasEqualRoots(t *testing.T) {
	forEachSetup(t, func(t *testing.T, tree commit.VersionedTree) {
		empty, err := tree.RootCommitment()
		if err != nil {
			t.Fatalf("failed to get root: %v", err)
		}
		for i := 0; i < 20; i++ {
			if err := tree.Insert(key(i), value(i, 0)); err != nil {
				t.Fatalf("failed to insert: %v", err)
			}
		}
		for i := 0; i < 20; i++ {
			if err := tree.Delete(key(i)); err != nil {
				t.Fatalf("failed to delete: %v", err)
			}
		}
		root, err := tree.RootCommitment()
		if err != nil {
			t.Fatalf("failed to get root: %v", err)
		}
		if root != empty {
			t.Errorf("emptied tree has root %v, expected %v", root, empty)
		}
	})
}

func TestTrees_CommittedVersionsAreRetained(t *testing.T) {
	forEachSetup(t, func(t *testing.T, tree commit.VersionedTree) {
		roots := map[uint64][]byte{}
		for version := 1; version <= 5; version++ {
			for i := 0; i < 10; i++ {
				if err := tree.Insert(key(i), value(i, version)); err != nil {
					t.Fatalf("failed to insert: %v", err)
				}
			}
			if _, err := tree.Commit(uint64(version * 10)); err != nil {
				t.Fatalf("failed to commit: %v", err)
			}
			roots[uint64(version*10)] = value(3, version)
		}
		if err := tree.Prune(30); err != nil {
			t.Fatalf("failed to prune: %v", err)
		}
		for height, want := range roots {
			got, found, err := tree.GetAt(height, key(3))
			if height < 30 {
				if !errors.Is(err, commit.ErrUnknownVersion) {
					t.Errorf("expected pruned version %d to be unknown, got %v", height, err)
				}
				continue
			}
			if err != nil || !found || string(got) != string(want) {
				t.Errorf("unexpected value at height %d: %s, %t, %v", height, got, found, err)
			}
			root, err := tree.RootAt(height)
			if err != nil {
				t.Fatalf("failed to get root: %v", err)
			}
			proof, err := tree.CreateProofAt(height, key(3))
			if err != nil {
				t.Fatalf("failed to create proof: %v", err)
			}
			if err := tree.VerifyProof(root, proof, key(3), want); err != nil {
				t.Errorf("historic proof rejected: %v", err)
			}
		}
		if got := len(tree.Versions(0, 100)); got != 3 {
			t.Errorf("unexpected number of versions, wanted 3, got %d", got)
		}
	})
}
