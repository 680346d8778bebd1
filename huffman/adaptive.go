package huffman

import (
	"fmt"

	"github.com/pkg/errors"
)

// MaxFreq is the frequency mass at which a Tree halves its counts and rebuilds.
const MaxFreq = 0x8000

// unused marks a symbol slot with no leaf yet.
const unused = -1

// node is one arena slot. Parent links are positional: they belong to the slot, not to
// the subtree currently stored in it.
type node struct {
	freq   uint32
	parent int
	child  int // Left (bit 0) child slot for internal nodes, symbol for leaves; the right child is child+1.
	leaf   bool
}

// Tree is an adaptive Huffman code whose shape follows the frequencies of the symbols
// coded so far. Encoder and decoder trees stay identical as long as both see the same
// symbol sequence, so the tree is never transmitted.
//
// Nodes live in an arena of 2N-1 slots with the root fixed at the last slot. Slot order
// is frequency order (non-decreasing) and siblings share an even/odd slot pair; the
// parity of a slot is the bit that selects it.
type Tree struct {
	nodes    []node
	leaf     []int // Per symbol: leaf slot, or unused.
	root     int
	lo       int // Lowest populated slot.
	leaves   int
	growable bool
	updates  uint32 // Rescale counter of growable trees.
	rebuilds int
}

// Snapshot is an opaque deep copy of a Tree's state.
type Snapshot struct {
	nodes    []node
	leaf     []int
	lo       int
	leaves   int
	updates  uint32
	rebuilds int
}

// NewTree returns a tree over alphabetSize symbols with symbols 0..initialLeafCount-1
// materialized at frequency 1. When initialLeafCount < alphabetSize the remaining
// symbols are unused until AddLeaf. It panics on sizes outside 1 <= initial <= size.
func NewTree(alphabetSize, initialLeafCount int) *Tree {
	if alphabetSize < 1 || initialLeafCount < 1 || initialLeafCount > alphabetSize {
		panic(fmt.Sprintf("huffman: invalid tree size %d/%d", initialLeafCount, alphabetSize))
	}

	t := &Tree{
		nodes:    make([]node, 2*alphabetSize-1),
		leaf:     make([]int, alphabetSize),
		root:     2*alphabetSize - 2,
		leaves:   initialLeafCount,
		growable: initialLeafCount < alphabetSize,
	}
	t.lo = t.root + 1 - (2*initialLeafCount - 1)

	for s := range t.leaf {
		t.leaf[s] = unused
	}
	for s := 0; s < initialLeafCount; s++ {
		t.nodes[t.lo+s] = node{freq: 1, child: s, leaf: true}
		t.leaf[s] = t.lo + s
	}

	i := t.lo
	for j := t.lo + initialLeafCount; j <= t.root; j++ {
		t.nodes[j] = node{freq: t.nodes[i].freq + t.nodes[i+1].freq, child: i}
		t.nodes[i].parent = j
		t.nodes[i+1].parent = j
		i += 2
	}

	return t
}

// Size returns the alphabet size.
func (t *Tree) Size() int { return len(t.leaf) }

// Leaves returns the number of materialized symbols.
func (t *Tree) Leaves() int { return t.leaves }

// Rebuilds returns how many times the tree rescaled its frequencies.
func (t *Tree) Rebuilds() int { return t.rebuilds }

// Has reports whether symbol has a leaf.
func (t *Tree) Has(symbol int) bool {
	return symbol >= 0 && symbol < len(t.leaf) && t.leaf[symbol] != unused
}

// Freq returns the current frequency of symbol, 0 when it has no leaf.
func (t *Tree) Freq(symbol int) uint32 {
	if !t.Has(symbol) {
		return 0
	}

	return t.nodes[t.leaf[symbol]].freq
}

// Encode writes the code of symbol, root bit first, then updates the tree.
func (t *Tree) Encode(w BitWriter, symbol int) error {
	if !t.Has(symbol) {
		return errors.Wrapf(ErrUnusedSymbol, "symbol %d", symbol)
	}

	var code uint64
	var n uint
	for c := t.leaf[symbol]; c != t.root; c = t.nodes[c].parent {
		code |= uint64(c&1) << n
		n++
	}

	// The rescale limit keeps paths far below 64 edges.
	if n > 32 {
		if err := w.WriteBits(n-32, uint32(code>>32)); err != nil {
			return err
		}
		n = 32
	}
	if n > 0 {
		if err := w.WriteBits(n, uint32(code)); err != nil { // #nosec G115 -- low 32 bits
			return err
		}
	}

	t.Update(symbol)

	return nil
}

// Decode reads one symbol bit by bit from the root, then updates the tree.
// Bit source errors are returned unchanged.
func (t *Tree) Decode(r BitReader) (int, error) {
	c := t.root
	for !t.nodes[c].leaf {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}

		c = t.nodes[c].child
		if bit {
			c++
		}
	}

	symbol := t.nodes[c].child
	t.Update(symbol)

	return symbol, nil
}

// Update counts one occurrence of symbol. Walking up to the root, every node whose new
// frequency exceeds a higher slot is exchanged with the highest slot of lower frequency,
// which keeps slot order equal to frequency order.
//
// A leaf sitting at the root is never counted: its frequency stays as it is until
// AddLeaf splits it.
func (t *Tree) Update(symbol int) {
	if !t.Has(symbol) {
		panic(fmt.Sprintf("huffman: update of unused symbol %d", symbol))
	}
	if t.mass() >= MaxFreq {
		t.rebuild()
	}

	c := t.leaf[symbol]
	if c == t.root {
		t.updates++

		return
	}

	for {
		k := t.nodes[c].freq + 1
		t.nodes[c].freq = k

		l := c
		for l < t.root && t.nodes[l+1].freq < k {
			l++
		}
		if l != c {
			t.exchange(c, l)
			c = l
		}

		if c == t.root {
			break
		}
		c = t.nodes[c].parent
	}

	t.updates++
}

// mass is the counter compared against MaxFreq. Fixed trees use the root frequency;
// growable trees count updates from zero like the LHA position tree.
func (t *Tree) mass() uint32 {
	if t.growable {
		return t.updates
	}

	return t.nodes[t.root].freq
}

// exchange swaps the subtrees stored in slots a and b.
func (t *Tree) exchange(a, b int) {
	na, nb := t.nodes[a], t.nodes[b]
	t.nodes[a].freq, t.nodes[a].child, t.nodes[a].leaf = nb.freq, nb.child, nb.leaf
	t.nodes[b].freq, t.nodes[b].child, t.nodes[b].leaf = na.freq, na.child, na.leaf
	t.link(a)
	t.link(b)
}

// link points the children (or the symbol) of slot i back at i.
func (t *Tree) link(i int) {
	n := t.nodes[i]
	if n.leaf {
		t.leaf[n.child] = i

		return
	}

	t.nodes[n.child].parent = i
	t.nodes[n.child+1].parent = i
}

// rebuild halves all leaf frequencies (rounding up) and rebuilds the internal nodes
// in frequency order. Leaves keep their relative slot order.
func (t *Tree) rebuild() {
	j := t.lo
	for i := t.lo; i <= t.root; i++ {
		if n := t.nodes[i]; n.leaf {
			t.nodes[j] = node{freq: (n.freq + 1) / 2, child: n.child, leaf: true}
			j++
		}
	}

	for i, j := t.lo, t.lo+t.leaves; j <= t.root; i, j = i+2, j+1 {
		f := t.nodes[i].freq + t.nodes[i+1].freq

		k := j - 1
		for f < t.nodes[k].freq {
			k--
		}
		k++

		copy(t.nodes[k+1:j+1], t.nodes[k:j])
		t.nodes[k] = node{freq: f, child: i}
	}

	for i := t.lo; i <= t.root; i++ {
		t.link(i)
	}

	if t.growable {
		t.updates = t.nodes[t.root].freq
	}
	t.rebuilds++
}

// AddLeaf materializes symbol. The lowest-frequency leaf becomes an internal node whose
// children are the new leaf (bit 0, frequency 0) and the former leaf (bit 1); the new
// symbol is then counted once.
func (t *Tree) AddLeaf(symbol int) error {
	if symbol < 0 || symbol >= len(t.leaf) {
		return errors.Wrapf(ErrSymbolRange, "symbol %d of %d", symbol, len(t.leaf))
	}
	if t.leaf[symbol] != unused {
		return errors.Wrapf(ErrLeafExists, "symbol %d", symbol)
	}

	m := t.lo
	old := t.nodes[m]
	t.nodes[m-1] = node{freq: old.freq, parent: m, child: old.child, leaf: true}
	t.nodes[m-2] = node{freq: 0, parent: m, child: symbol, leaf: true}
	t.nodes[m].child = m - 2
	t.nodes[m].leaf = false

	t.leaf[old.child] = m - 1
	t.leaf[symbol] = m - 2
	t.lo = m - 2
	t.leaves++

	t.Update(symbol)

	return nil
}

// Snapshot returns a deep copy of the tree state.
func (t *Tree) Snapshot() *Snapshot {
	return &Snapshot{
		nodes:    append([]node(nil), t.nodes...),
		leaf:     append([]int(nil), t.leaf...),
		lo:       t.lo,
		leaves:   t.leaves,
		updates:  t.updates,
		rebuilds: t.rebuilds,
	}
}

// Restore returns the tree to a state taken by Snapshot on a tree of the same alphabet.
func (t *Tree) Restore(s *Snapshot) {
	if len(s.nodes) != len(t.nodes) {
		panic("huffman: snapshot of a different alphabet")
	}

	copy(t.nodes, s.nodes)
	copy(t.leaf, s.leaf)
	t.lo, t.leaves, t.updates, t.rebuilds = s.lo, s.leaves, s.updates, s.rebuilds
}
