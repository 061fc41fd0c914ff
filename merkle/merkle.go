// Package merkle compares two key-value snapshots for divergence without
// transferring every key. Each side folds its snapshot into a binary hash
// tree; comparing roots tells you if the sides match at all, and walking
// down from a mismatched root isolates exactly which keys differ. This is
// the digest structure the anti-entropy pass in the stabilizer package
// pulls repairs from.
package merkle

import (
	"crypto/sha256"
	"sort"
	"strconv"

	"github.com/pixperk/dynamokv/store"
)

type digest [sha256.Size]byte

// node is one slot in the tree: a leaf carries a key and the digest of its
// entry; an internal node carries the combined digest of its two children.
type node struct {
	sum         digest
	left, right *node
	key         string
}

func (n *node) isLeaf() bool {
	return n.left == nil && n.right == nil
}

// Tree is a built hash tree ready for comparison via Diverged.
type Tree struct {
	root *node
}

// BuildFromStore folds a store snapshot into a Tree. Leaves are ordered by
// key so that two snapshots with the same contents always fold into the
// same tree shape regardless of map iteration order; the leaf count is
// padded to the next power of two with empty placeholder nodes so the fold
// is a clean binary reduction at every level.
func BuildFromStore(snapshot map[string]store.Entry) *Tree {
	if len(snapshot) == 0 {
		return &Tree{}
	}

	keys := make([]string, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	leaves := make([]*node, len(keys))
	for i, k := range keys {
		leaves[i] = &node{sum: entryDigest(k, snapshot[k]), key: k}
	}
	for !isPowerOfTwo(len(leaves)) {
		leaves = append(leaves, &node{})
	}

	return &Tree{root: fold(leaves)}
}

// entryDigest covers key, value, and write timestamp, so a same-value
// rewrite still produces a different digest and is picked up as a
// divergence worth repairing.
func entryDigest(key string, e store.Entry) digest {
	return sha256.Sum256([]byte(key + "\x00" + e.Value + "\x00" + strconv.FormatInt(e.Timestamp, 10)))
}

func isPowerOfTwo(n int) bool {
	return n&(n-1) == 0
}

// fold reduces a layer of nodes pairwise until one root remains.
func fold(layer []*node) *node {
	for len(layer) > 1 {
		next := make([]*node, 0, len(layer)/2)
		for i := 0; i < len(layer); i += 2 {
			next = append(next, &node{
				left:  layer[i],
				right: layer[i+1],
				sum:   combine(layer[i].sum, layer[i+1].sum),
			})
		}
		layer = next
	}
	if len(layer) == 0 {
		return nil
	}
	return layer[0]
}

func combine(a, b digest) digest {
	var buf [2 * sha256.Size]byte
	copy(buf[:sha256.Size], a[:])
	copy(buf[sha256.Size:], b[:])
	return sha256.Sum256(buf[:])
}

// Diverged compares two trees and returns every key whose leaf digest
// differs, is present on only one side, or falls under a placeholder pad
// on one side and real data on the other. A nil Tree (or one built from an
// empty snapshot) is treated as fully empty.
func Diverged(a, b *Tree) []string {
	return diff(root(a), root(b))
}

func root(t *Tree) *node {
	if t == nil {
		return nil
	}
	return t.root
}

func diff(a, b *node) []string {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		return leafKeys(b)
	case b == nil:
		return leafKeys(a)
	case a.sum == b.sum:
		return nil
	case a.isLeaf() || b.isLeaf():
		// a leaf facing a different leaf or a deeper subtree: every real key
		// on either side is reported, each once.
		out := leafKeys(a)
		seen := make(map[string]bool, len(out))
		for _, k := range out {
			seen[k] = true
		}
		for _, k := range leafKeys(b) {
			if !seen[k] {
				out = append(out, k)
			}
		}
		return out
	default:
		out := diff(a.left, b.left)
		return append(out, diff(a.right, b.right)...)
	}
}

// leafKeys collects every real (non-placeholder) key under a subtree.
func leafKeys(n *node) []string {
	if n == nil {
		return nil
	}
	if n.isLeaf() {
		if n.key != "" {
			return []string{n.key}
		}
		return nil
	}
	out := leafKeys(n.left)
	return append(out, leafKeys(n.right)...)
}
