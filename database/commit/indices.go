package commit

import (
	"fmt"
	"sort"

	"github.com/Fantom-foundation/Arbor/go/common"
	"golang.org/x/exp/maps"
)

// Version is a committed (height, root) pair.
type Version struct {
	Height uint64
	Root   common.Hash
}

// Indices is the in-memory bookkeeping of a versioned tree: an ordered
// height to root index, a reference count per root and an optional decoded
// root node per root. A root listed in the height index always has a
// reference count of at least one.
type Indices[N any] struct {
	versions  []Version // sorted by height, strictly increasing
	refCounts map[common.Hash]int
	roots     map[common.Hash]N
}

func NewIndices[N any]() *Indices[N] {
	return &Indices[N]{
		refCounts: map[common.Hash]int{},
		roots:     map[common.Hash]N{},
	}
}

// Record registers root as the version of the given height. Committing a
// root that is already known increments its reference count.
func (i *Indices[N]) Record(height uint64, root common.Hash, node N) error {
	if last, found := i.Latest(); found && height <= last.Height {
		return fmt.Errorf("height %d is not above latest committed height %d", height, last.Height)
	}
	i.versions = append(i.versions, Version{Height: height, Root: root})
	if i.refCounts[root] == 0 {
		i.roots[root] = node
	}
	i.refCounts[root]++
	return nil
}

func (i *Indices[N]) find(height uint64) (int, bool) {
	pos := sort.Search(len(i.versions), func(j int) bool {
		return i.versions[j].Height >= height
	})
	return pos, pos < len(i.versions) && i.versions[pos].Height == height
}

// RootAt returns the root committed at exactly the given height.
func (i *Indices[N]) RootAt(height uint64) (common.Hash, bool) {
	pos, found := i.find(height)
	if !found {
		return common.Hash{}, false
	}
	return i.versions[pos].Root, true
}

// Latest returns the most recently recorded version.
func (i *Indices[N]) Latest() (Version, bool) {
	if len(i.versions) == 0 {
		return Version{}, false
	}
	return i.versions[len(i.versions)-1], true
}

// Range lists all retained versions with a height within [from, to].
func (i *Indices[N]) Range(from, to uint64) []Version {
	if from > to {
		return nil
	}
	start, _ := i.find(from)
	res := []Version{}
	for _, v := range i.versions[start:] {
		if v.Height > to {
			break
		}
		res = append(res, v)
	}
	return res
}

// Len returns the number of retained versions.
func (i *Indices[N]) Len() int {
	return len(i.versions)
}

func (i *Indices[N]) RefCount(root common.Hash) int {
	return i.refCounts[root]
}

// RootNode returns the node registered for the given root, if any.
func (i *Indices[N]) RootNode(root common.Hash) (N, bool) {
	node, found := i.roots[root]
	return node, found
}

// DecrementRefCount drops one reference to the given root. Once no
// reference is left, the root is removed from the root table and true is
// returned. This is the only way roots are ever removed.
func (i *Indices[N]) DecrementRefCount(root common.Hash) bool {
	count, found := i.refCounts[root]
	if !found {
		return false
	}
	if count > 1 {
		i.refCounts[root] = count - 1
		return false
	}
	delete(i.refCounts, root)
	delete(i.roots, root)
	return true
}

// Release removes the version of the given height. It returns the root
// of the version if its last reference was dropped.
func (i *Indices[N]) Release(height uint64) (common.Hash, bool) {
	pos, found := i.find(height)
	if !found {
		return common.Hash{}, false
	}
	root := i.versions[pos].Root
	i.versions = append(i.versions[:pos], i.versions[pos+1:]...)
	return root, i.DecrementRefCount(root)
}

// ReleaseBefore removes all versions below the given height and returns
// the roots that are no longer referenced.
func (i *Indices[N]) ReleaseBefore(height uint64) []common.Hash {
	end, _ := i.find(height)
	released := []common.Hash{}
	for _, v := range i.versions[:end] {
		if i.DecrementRefCount(v.Root) {
			released = append(released, v.Root)
		}
	}
	i.versions = append(i.versions[:0], i.versions[end:]...)
	return released
}

// RetainedRoots lists all roots still referenced by some version.
func (i *Indices[N]) RetainedRoots() []common.Hash {
	roots := maps.Keys(i.refCounts)
	sort.Slice(roots, func(a, b int) bool {
		return roots[a].Compare(roots[b]) < 0
	})
	return roots
}
