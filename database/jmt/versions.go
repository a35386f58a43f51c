package jmt

import (
	"fmt"

	"github.com/Fantom-foundation/Arbor/go/backend/nodestore"
	"github.com/Fantom-foundation/Arbor/go/common"
	"github.com/Fantom-foundation/Arbor/go/database/commit"
)

func childrenOf(n node) []common.Hash {
	if internal, ok := n.(*internalNode); ok {
		return nonEmpty(&internal.children)
	}
	return nil
}

// Commit persists all pending nodes reachable from the working root and
// records the root as the version of the given height.
func (t *Tree) Commit(height uint64) (common.Hash, error) {
	if latest, found := t.indices.Latest(); found && height <= latest.Height {
		return common.Hash{}, fmt.Errorf("cannot commit height %d, latest committed height is %d", height, latest.Height)
	}

	var entries []nodestore.Entry
	var written []node
	seen := map[common.Hash]struct{}{}
	stack := []common.Hash{t.root}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n, found := t.pending[cur]
		if _, done := seen[cur]; !found || done {
			continue
		}
		seen[cur] = struct{}{}
		data, err := n.encode()
		if err != nil {
			return common.Hash{}, err
		}
		entries = append(entries, nodestore.Entry{Hash: cur, Data: data})
		written = append(written, n)
		stack = append(stack, childrenOf(n)...)
	}
	if err := nodestore.SaveAll(t.store, entries); err != nil {
		return common.Hash{}, fmt.Errorf("%w: failed to write %d nodes; %w", commit.ErrStorageFailure, len(entries), err)
	}

	var rootNode node
	if t.root != Placeholder {
		n, err := t.getNode(t.root)
		if err != nil {
			return common.Hash{}, err
		}
		rootNode = n
	}
	if err := t.indices.Record(height, t.root, rootNode); err != nil {
		return common.Hash{}, err
	}
	for _, n := range written {
		t.cache.Add(n.getHash(), n)
	}
	t.pending = map[common.Hash]node{}
	t.log.Debug("Committed version", "height", height, "root", t.root, "nodes", len(entries))

	if retain := t.config.RetainVersions; retain > 0 && t.indices.Len() > retain {
		versions := t.indices.Range(0, height)
		if err := t.Prune(versions[len(versions)-retain].Height); err != nil {
			return t.root, err
		}
	}
	return t.root, nil
}

func (t *Tree) RootAt(height uint64) (common.Hash, error) {
	root, found := t.indices.RootAt(height)
	if !found {
		return common.Hash{}, fmt.Errorf("%w: no version at height %d", commit.ErrUnknownVersion, height)
	}
	return root, nil
}

func (t *Tree) GetAt(height uint64, key []byte) ([]byte, bool, error) {
	root, err := t.RootAt(height)
	if err != nil {
		return nil, false, err
	}
	return t.get(root, key)
}

func (t *Tree) Versions(from, to uint64) []commit.Version {
	return t.indices.Range(from, to)
}

// Prune releases all versions below the given height and sweeps nodes no
// longer reachable from a retained version or the working state.
func (t *Tree) Prune(height uint64) error {
	released := t.indices.ReleaseBefore(height)
	if len(released) == 0 || !nodestore.CanDelete(t.store) {
		return nil
	}
	deleter := t.store.(nodestore.Deleter)

	graph := commit.Graph[common.Hash]{
		ID: func(hash common.Hash) common.Hash { return hash },
		Children: func(hash common.Hash) ([]common.Hash, error) {
			n, err := t.getNode(hash)
			if err != nil {
				return nil, err
			}
			return childrenOf(n), nil
		},
		Delete: func(hash common.Hash) error {
			t.cache.Remove(hash)
			if err := deleter.Delete(hash); err != nil {
				return fmt.Errorf("%w: failed to delete node %v; %w", commit.ErrStorageFailure, hash, err)
			}
			return nil
		},
	}
	retained := append(t.indices.RetainedRoots(), t.root)
	deleted, err := commit.CollectGarbage(graph, withoutPlaceholder(released), withoutPlaceholder(retained))
	if err != nil {
		return err
	}
	t.log.Info("Pruned versions", "below", height, "released", len(released), "deleted", deleted)
	return nil
}

func withoutPlaceholder(roots []common.Hash) []common.Hash {
	res := make([]common.Hash, 0, len(roots))
	for _, root := range roots {
		if root != Placeholder {
			res = append(res, root)
		}
	}
	return res
}
