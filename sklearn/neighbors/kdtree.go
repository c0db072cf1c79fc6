package neighbors

import (
	"sort"
)

// neighbor is a training row and its distance to the query.
type neighbor struct {
	idx  int
	dist float64
}

// less orders by distance, then by training index so every search
// strategy returns the same neighbours.
func (n neighbor) less(o neighbor) bool {
	if n.dist != o.dist {
		return n.dist < o.dist
	}
	return n.idx < o.idx
}

// kBest keeps the k smallest neighbours seen so far, sorted.
type kBest struct {
	k     int
	items []neighbor
}

func (b *kBest) push(n neighbor) {
	if len(b.items) == b.k && !n.less(b.items[len(b.items)-1]) {
		return
	}
	pos := sort.Search(len(b.items), func(i int) bool { return n.less(b.items[i]) })
	if len(b.items) < b.k {
		b.items = append(b.items, neighbor{})
	}
	copy(b.items[pos+1:], b.items[pos:len(b.items)-1])
	b.items[pos] = n
}

func (b *kBest) full() bool { return len(b.items) == b.k }

func (b *kBest) worst() float64 { return b.items[len(b.items)-1].dist }

// kdNode is a node of a k-d tree over row indices. Leaves hold at most
// leafSize rows.
type kdNode struct {
	idx         []int
	axis        int
	split       float64
	left, right *kdNode
}

func buildKD(X [][]float64, idx []int, leafSize, depth int) *kdNode {
	if len(idx) <= leafSize {
		return &kdNode{idx: idx}
	}
	axis := depth % len(X[0])
	sort.Slice(idx, func(a, b int) bool {
		va, vb := X[idx[a]][axis], X[idx[b]][axis]
		if va != vb {
			return va < vb
		}
		return idx[a] < idx[b]
	})
	mid := len(idx) / 2
	// 子ノード構築で idx が並べ替えられるので先に読む
	split := X[idx[mid]][axis]
	return &kdNode{
		axis:  axis,
		split: split,
		left:  buildKD(X, idx[:mid], leafSize, depth+1),
		right: buildKD(X, idx[mid:], leafSize, depth+1),
	}
}

func (n *kdNode) search(X [][]float64, q []float64, dist DistanceFunc, best *kBest) {
	if n.left == nil {
		for _, i := range n.idx {
			best.push(neighbor{idx: i, dist: dist(q, X[i])})
		}
		return
	}
	diff := q[n.axis] - n.split
	near, far := n.left, n.right
	if diff >= 0 {
		near, far = n.right, n.left
	}
	near.search(X, q, dist, best)
	// 等距離の近傍も取りこぼさないよう <= で判定
	if !best.full() || abs(diff) <= best.worst() {
		far.search(X, q, dist, best)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
