package jmt

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/Fantom-foundation/Arbor/go/backend/nodestore"
	"github.com/Fantom-foundation/Arbor/go/backend/nodestore/memory"
	"github.com/Fantom-foundation/Arbor/go/common"
	"github.com/Fantom-foundation/Arbor/go/database/commit"
	"go.uber.org/mock/gomock"
)

func newTestTree(t *testing.T) (*Tree, *memory.Store) {
	t.Helper()
	store := memory.New()
	tree, err := NewTree(store, Config{})
	if err != nil {
		t.Fatalf("failed to create tree: %v", err)
	}
	return tree, store
}

func key(i int) []byte {
	return []byte(fmt.Sprintf("key-%d", i))
}

func value(i int) []byte {
	return []byte(fmt.Sprintf("value-%d", i))
}

// checkShape verifies that every leaf sits at the shallowest depth at which
// its path is unique and returns the number of leaves below the node.
func checkShape(t *testing.T, tree *Tree, hash common.Hash, prefix []byte) int {
	t.Helper()
	n, err := tree.getNode(hash)
	if err != nil {
		t.Fatalf("failed to load node: %v", err)
	}
	switch n := n.(type) {
	case *leafNode:
		path := n.path()
		for i, nibble := range prefix {
			if path.GetNibble(i) != nibble {
				t.Errorf("leaf at wrong position")
			}
		}
		return 1
	case *internalNode:
		leaves := 0
		for i, child := range n.children {
			if child != (common.Hash{}) {
				leaves += checkShape(t, tree, child, append(bytes.Clone(prefix), byte(i)))
			}
		}
		if leaves < 2 {
			t.Errorf("internal node with %d leaves below it", leaves)
		}
		return leaves
	}
	t.Fatalf("unexpected node type %T", n)
	return 0
}

func TestTree_EmptyTree(t *testing.T) {
	tree, _ := newTestTree(t)
	if root, _ := tree.RootCommitment(); root != Placeholder {
		t.Errorf("unexpected root of empty trie: %v", root)
	}
	if _, found, err := tree.Get([]byte("a")); found || err != nil {
		t.Errorf("empty trie should not contain anything: %t, %v", found, err)
	}
	proof, err := tree.CreateProof([]byte("a"))
	if err != nil {
		t.Fatalf("failed to create proof: %v", err)
	}
	if err := tree.VerifyProof(Placeholder, proof, []byte("a"), nil); err != nil {
		t.Errorf("absence in empty trie should verify: %v", err)
	}
	if err := tree.VerifyProof(common.Hash{1}, proof, []byte("a"), nil); !errors.Is(err, commit.ErrRootMismatch) {
		t.Errorf("expected root mismatch, got %v", err)
	}
}

func TestTree_InsertGetDelete(t *testing.T) {
	tree, _ := newTestTree(t)
	r := rand.New(rand.NewSource(3))
	reference := map[string][]byte{}
	for i := 0; i < 3000; i++ {
		k := key(r.Intn(400))
		if r.Intn(3) == 0 {
			if err := tree.Delete(k); err != nil {
				t.Fatalf("failed to delete: %v", err)
			}
			delete(reference, string(k))
		} else {
			if err := tree.Insert(k, value(i)); err != nil {
				t.Fatalf("failed to insert: %v", err)
			}
			reference[string(k)] = value(i)
		}
	}
	if tree.root != Placeholder {
		if got := checkShape(t, tree, tree.root, nil); got != len(reference) {
			t.Errorf("unexpected number of leaves: got %d, want %d", got, len(reference))
		}
	}
	for i := 0; i < 400; i++ {
		got, found, err := tree.Get(key(i))
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		want, exists := reference[string(key(i))]
		if found != exists || !bytes.Equal(got, want) {
			t.Errorf("unexpected value for %s: got %s/%t, want %s/%t", key(i), got, found, want, exists)
		}
	}
}

func TestTree_RootIsIndependentOfInsertionOrder(t *testing.T) {
	a, _ := newTestTree(t)
	b, _ := newTestTree(t)
	c, _ := newTestTree(t)
	order := rand.New(rand.NewSource(5)).Perm(200)
	for i := 0; i < 200; i++ {
		if err := a.Insert(key(i), value(i)); err != nil {
			t.Fatalf("failed to insert: %v", err)
		}
		if err := b.Insert(key(order[i]), value(order[i])); err != nil {
			t.Fatalf("failed to insert: %v", err)
		}
	}
	// c contains additional keys which are removed again.
	for i := 0; i < 300; i++ {
		if err := c.Insert(key(i), value(i)); err != nil {
			t.Fatalf("failed to insert: %v", err)
		}
	}
	for i := 200; i < 300; i++ {
		if err := c.Delete(key(i)); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
	}
	ra, _ := a.RootCommitment()
	rb, _ := b.RootCommitment()
	rc, _ := c.RootCommitment()
	if ra != rb || ra != rc {
		t.Errorf("roots differ for identical content: %v, %v, %v", ra, rb, rc)
	}

	for i := 0; i < 200; i++ {
		if err := c.Delete(key(i)); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
	}
	if root, _ := c.RootCommitment(); root != Placeholder {
		t.Errorf("trie should be empty after deleting all keys: %v", root)
	}
}

func TestTree_RoundTripCommitment(t *testing.T) {
	tree, _ := newTestTree(t)
	for i := 0; i < 300; i += 2 {
		if err := tree.Insert(key(i), value(i)); err != nil {
			t.Fatalf("failed to insert: %v", err)
		}
	}
	root, _ := tree.RootCommitment()
	for i := 0; i < 300; i++ {
		proof, err := tree.CreateProof(key(i))
		if err != nil {
			t.Fatalf("failed to create proof: %v", err)
		}
		if i%2 == 0 {
			if err := tree.VerifyProof(root, proof, key(i), value(i)); err != nil {
				t.Errorf("membership proof of %s failed: %v", key(i), err)
			}
			if err := tree.VerifyProof(root, proof, key(i), value(i+1)); !errors.Is(err, commit.ErrRootMismatch) {
				t.Errorf("membership proof with wrong value should fail, got %v", err)
			}
			if err := tree.VerifyProof(root, proof, key(i), nil); err == nil {
				t.Errorf("membership proof accepted as absence proof of %s", key(i))
			}
		} else {
			if err := tree.VerifyProof(root, proof, key(i), nil); err != nil {
				t.Errorf("absence proof of %s failed: %v", key(i), err)
			}
			if err := tree.VerifyProof(root, proof, key(i), value(i)); err == nil {
				t.Errorf("absence proof accepted as membership proof of %s", key(i))
			}
		}
	}
}

func TestTree_SingleLeafTrie(t *testing.T) {
	tree, _ := newTestTree(t)
	if err := tree.Insert([]byte("only"), []byte("1")); err != nil {
		t.Fatalf("failed to insert: %v", err)
	}
	root, _ := tree.RootCommitment()
	for _, test := range []struct {
		key, value []byte
	}{{[]byte("only"), []byte("1")}, {[]byte("other"), nil}} {
		proof, err := tree.CreateProof(test.key)
		if err != nil {
			t.Fatalf("failed to create proof: %v", err)
		}
		if steps := len(proof.(*Proof).Steps); steps != 0 {
			t.Errorf("unexpected number of steps: %d", steps)
		}
		if err := tree.VerifyProof(root, proof, test.key, test.value); err != nil {
			t.Errorf("proof for %s failed: %v", test.key, err)
		}
	}
}

func TestTree_TamperedProofsAreRejected(t *testing.T) {
	tree, _ := newTestTree(t)
	for i := 0; i < 500; i++ {
		if err := tree.Insert(key(i), value(i)); err != nil {
			t.Fatalf("failed to insert: %v", err)
		}
	}
	root, _ := tree.RootCommitment()
	create := func(k []byte) *Proof {
		p, err := tree.CreateProof(k)
		if err != nil {
			t.Fatalf("failed to create proof: %v", err)
		}
		return p.(*Proof)
	}

	tests := map[string]struct {
		modify func(*Proof)
		want   error
	}{
		"sibling": {func(p *Proof) {
			p.Steps[0].Siblings[0][3] ^= 1
		}, commit.ErrRootMismatch},
		"bitmap": {func(p *Proof) {
			p.Steps[0].Bitmap ^= 1 << (common.Sha3(key(7))[0] >> 4)
		}, commit.ErrProofMalformed},
		"missing sibling": {func(p *Proof) {
			p.Steps[0].Siblings = p.Steps[0].Siblings[1:]
		}, commit.ErrProofMalformed},
		"missing leaf": {func(p *Proof) {
			p.Leaf = nil
		}, commit.ErrProofMalformed},
		"dropped step": {func(p *Proof) {
			p.Steps = p.Steps[1:]
		}, nil},
		"other key": {func(p *Proof) {
			p.Key = []byte("other")
		}, commit.ErrProofMalformed},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			proof := create(key(7))
			if err := Verify(root, proof, key(7), value(7)); err != nil {
				t.Fatalf("unmodified proof should verify: %v", err)
			}
			test.modify(proof)
			err := Verify(root, proof, key(7), value(7))
			if err == nil || (test.want != nil && !errors.Is(err, test.want)) {
				t.Errorf("expected %v, got %v", test.want, err)
			}
		})
	}
}

func TestTree_AbsenceCannotBeClaimedForPresentKey(t *testing.T) {
	tree, _ := newTestTree(t)
	for i := 0; i < 50; i++ {
		if err := tree.Insert(key(i), value(i)); err != nil {
			t.Fatalf("failed to insert: %v", err)
		}
	}
	root, _ := tree.RootCommitment()
	p, err := tree.CreateProof(key(3))
	if err != nil {
		t.Fatalf("failed to create proof: %v", err)
	}
	if err := Verify(root, p.(*Proof), key(3), nil); !errors.Is(err, commit.ErrProofMalformed) {
		t.Errorf("absence of present key must not verify, got %v", err)
	}

	// An absence proof for one key cannot be reused for another one.
	p, err = tree.CreateProof(key(1000))
	if err != nil {
		t.Fatalf("failed to create proof: %v", err)
	}
	proof := p.(*Proof)
	proof.Key = key(3)
	if err := Verify(root, proof, key(3), nil); err == nil {
		t.Errorf("absence proof of other key must not verify")
	}
}

func TestTree_ProofsSurviveEncoding(t *testing.T) {
	tree, _ := newTestTree(t)
	for i := 0; i < 100; i++ {
		if err := tree.Insert(key(i), value(i)); err != nil {
			t.Fatalf("failed to insert: %v", err)
		}
	}
	root, _ := tree.RootCommitment()
	for _, test := range []struct{ key, value []byte }{
		{key(5), value(5)},
		{key(500), nil},
	} {
		proof, err := tree.CreateProof(test.key)
		if err != nil {
			t.Fatalf("failed to create proof: %v", err)
		}
		data, err := proof.Encode()
		if err != nil {
			t.Fatalf("failed to encode: %v", err)
		}
		restored, err := DecodeProof(data)
		if err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if err := Verify(root, restored, test.key, test.value); err != nil {
			t.Errorf("decoded proof failed: %v", err)
		}
	}
	if _, err := DecodeProof([]byte{byte(commit.IavlProof), 0xC0}); !errors.Is(err, commit.ErrProofMalformed) {
		t.Errorf("proof of other kind should be rejected, got %v", err)
	}
}

func TestTree_VersionsArePreserved(t *testing.T) {
	tree, _ := newTestTree(t)
	if err := tree.Insert([]byte("a"), []byte("1")); err != nil {
		t.Fatalf("failed to insert: %v", err)
	}
	r1, err := tree.Commit(1)
	if err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
	if err := tree.Insert([]byte("a"), []byte("2")); err != nil {
		t.Fatalf("failed to insert: %v", err)
	}
	if err := tree.Insert([]byte("b"), []byte("3")); err != nil {
		t.Fatalf("failed to insert: %v", err)
	}
	r2, err := tree.Commit(2)
	if err != nil {
		t.Fatalf("failed to commit: %v", err)
	}

	if got, found, err := tree.GetAt(1, []byte("a")); err != nil || !found || string(got) != "1" {
		t.Errorf("unexpected value in version 1: %s, %t, %v", got, found, err)
	}
	if got, found, err := tree.GetAt(2, []byte("a")); err != nil || !found || string(got) != "2" {
		t.Errorf("unexpected value in version 2: %s, %t, %v", got, found, err)
	}
	proof, err := tree.CreateProofAt(1, []byte("b"))
	if err != nil {
		t.Fatalf("failed to create proof: %v", err)
	}
	if err := tree.VerifyProof(r1, proof, []byte("b"), nil); err != nil {
		t.Errorf("b should be absent in version 1: %v", err)
	}
	if err := tree.VerifyProof(r2, proof, []byte("b"), nil); !errors.Is(err, commit.ErrRootMismatch) {
		t.Errorf("absence proof should not verify against version 2, got %v", err)
	}
	if _, _, err := tree.GetAt(3, []byte("a")); !errors.Is(err, commit.ErrUnknownVersion) {
		t.Errorf("expected unknown version, got %v", err)
	}
}

func TestTree_PruningSweepsReleasedNodes(t *testing.T) {
	store := memory.New()
	tree, err := NewTree(store, Config{RetainVersions: 1})
	if err != nil {
		t.Fatalf("failed to create tree: %v", err)
	}
	for i := 0; i < 100; i++ {
		if err := tree.Insert(key(i), value(i)); err != nil {
			t.Fatalf("failed to insert: %v", err)
		}
	}
	r1, _ := tree.Commit(1)
	for i := 0; i < 50; i++ {
		if err := tree.Delete(key(i)); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
	}
	r2, _ := tree.Commit(2)

	if _, found, _ := store.Load(r1); found {
		t.Errorf("root of pruned version still stored")
	}
	live := 0
	stack := []common.Hash{r2}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n, err := tree.getNode(cur)
		if err != nil {
			t.Fatalf("node of retained version missing: %v", err)
		}
		live++
		stack = append(stack, childrenOf(n)...)
	}
	if store.Len() != live {
		t.Errorf("unexpected number of stored nodes: got %d, want %d", store.Len(), live)
	}
}

func TestTree_StorageFailuresAreReported(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := nodestore.NewMockNodeStore(ctrl)
	injected := errors.New("injected")
	store.EXPECT().Load(gomock.Any()).Return(nil, false, injected)

	tree, err := NewTree(store, Config{})
	if err != nil {
		t.Fatalf("failed to create tree: %v", err)
	}
	if _, _, err := tree.get(common.Hash{1}, []byte("a")); !errors.Is(err, commit.ErrStorageFailure) || !errors.Is(err, injected) {
		t.Errorf("expected storage failure, got %v", err)
	}
}

// fullDepthProof builds a membership proof whose path spans every nibble of
// the key hash, together with the root it folds to.
func fullDepthProof(k, v []byte, steps int) (*Proof, common.Hash) {
	keyHash := common.Sha3(k)
	path := NibblePathOf(keyHash)
	proof := &Proof{
		Key:   k,
		Steps: make([]Step, steps),
		Leaf:  &LeafRecord{KeyHash: keyHash, ValueHash: common.Sha3(v)},
	}
	cur := hashLeaf(keyHash, common.Sha3(v))
	for i := steps - 1; i >= 0; i-- {
		nibble := path.GetNibble(i % MaxNibbles)
		other := (nibble + 1) % 16
		sibling := common.Hash{byte(i + 1)}
		proof.Steps[i] = Step{
			Bitmap:   1<<nibble | 1<<other,
			Siblings: []common.Hash{sibling},
		}
		if nibble < other {
			cur = hashInternal(proof.Steps[i].Bitmap, []common.Hash{cur, sibling})
		} else {
			cur = hashInternal(proof.Steps[i].Bitmap, []common.Hash{sibling, cur})
		}
	}
	return proof, cur
}

func TestVerify_AcceptsProofsSpanningTheFullKeyHash(t *testing.T) {
	proof, root := fullDepthProof(key(1), value(1), MaxNibbles)
	if err := Verify(root, proof, key(1), value(1)); err != nil {
		t.Errorf("proof of maximal depth should verify: %v", err)
	}
}

func TestVerify_RejectsProofsLongerThanTheKeyHash(t *testing.T) {
	proof, root := fullDepthProof(key(1), value(1), MaxNibbles+1)
	if err := Verify(root, proof, key(1), value(1)); !errors.Is(err, commit.ErrProofMalformed) {
		t.Errorf("expected %v, got %v", commit.ErrProofMalformed, err)
	}
}
