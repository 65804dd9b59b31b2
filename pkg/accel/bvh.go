package accel

import "github.com/df07/go-analytic-raytracer/pkg/core"

// primRef is one engine item: a single primitive of a registered set
type primRef struct {
	box   core.AABB
	geom  core.GeomID
	item  int
	prims Primitives
}

// bvhNode represents a node in the Bounding Volume Hierarchy
type bvhNode struct {
	box   core.AABB
	left  *bvhNode
	right *bvhNode
	items []primRef // leaf items (nil for internal nodes)
}

// bvh is an immutable hierarchy; a rebuild produces a new one
type bvh struct {
	root  *bvhNode
	count int
}

// Leaf threshold: if we have this many or fewer items, store them in a leaf node
const leafThreshold = 8

func newBVH(refs []primRef) *bvh {
	if len(refs) == 0 {
		return &bvh{}
	}
	return &bvh{root: buildBVH(refs), count: len(refs)}
}

// buildBVH recursively builds the tree using midpoint splits on the longest
// axis. The input order is preserved within each partition, so the same input
// always produces the same tree.
func buildBVH(refs []primRef) *bvhNode {
	box := refs[0].box
	for i := 1; i < len(refs); i++ {
		box = box.Union(refs[i].box)
	}

	if len(refs) <= leafThreshold {
		return &bvhNode{box: box, items: refs}
	}

	axis, splitPos, ok := findSplit(refs)
	if !ok {
		return &bvhNode{box: box, items: refs}
	}

	left, right := partition(refs, axis, splitPos)
	if len(left) == 0 || len(right) == 0 {
		return &bvhNode{box: box, items: refs}
	}

	return &bvhNode{
		box:   box,
		left:  buildBVH(left),
		right: buildBVH(right),
	}
}

// findSplit picks the longest axis of the item centers and its midpoint
func findSplit(refs []primRef) (axis int, splitPos float32, ok bool) {
	centers := core.EmptyAABB()
	for _, r := range refs {
		centers = centers.Extend(r.box.Center())
	}

	axis = centers.LongestAxis()
	lo, hi := centers.Min[axis], centers.Max[axis]
	if hi <= lo {
		return 0, 0, false
	}
	return axis, (lo + hi) * 0.5, true
}

func partition(refs []primRef, axis int, splitPos float32) ([]primRef, []primRef) {
	var left, right []primRef
	for _, r := range refs {
		if r.box.Center()[axis] < splitPos {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	return left, right
}

// intersect finds the closest hit, narrowing hit.T as items report hits
func (b *bvh) intersect(ray core.Ray, hit *core.HitRecord) {
	if b.root == nil {
		return
	}
	b.root.intersect(ray, hit)
}

func (n *bvhNode) intersect(ray core.Ray, hit *core.HitRecord) {
	if !n.box.Hit(ray, ray.TNear, hit.T) {
		return
	}

	if n.items != nil {
		for _, r := range n.items {
			if r.geom == ray.Skip.Geom && r.item == ray.Skip.Prim {
				continue
			}
			r.prims.Intersect(ray, r.item, hit)
		}
		return
	}

	n.left.intersect(ray, hit)
	n.right.intersect(ray, hit)
}

// occluded reports whether any item hits within the ray interval
func (b *bvh) occluded(ray core.Ray) bool {
	if b.root == nil {
		return false
	}
	return b.root.occluded(ray)
}

func (n *bvhNode) occluded(ray core.Ray) bool {
	if !n.box.Hit(ray, ray.TNear, ray.TFar) {
		return false
	}

	if n.items != nil {
		for _, r := range n.items {
			if r.geom == ray.Skip.Geom && r.item == ray.Skip.Prim {
				continue
			}
			hit := core.NewHitRecord(ray)
			r.prims.Intersect(ray, r.item, &hit)
			if hit.Hit() {
				return true
			}
		}
		return false
	}

	return n.left.occluded(ray) || n.right.occluded(ray)
}

// bvhStats contains statistics about the BVH structure
type bvhStats struct {
	totalNodes int
	leafNodes  int
	maxDepth   int
	avgDepth   float64
	totalItems int
}

func (b *bvh) stats() bvhStats {
	var stats bvhStats
	if b.root == nil {
		return stats
	}

	b.root.collectStats(0, &stats)
	if stats.leafNodes > 0 {
		stats.avgDepth /= float64(stats.leafNodes)
	}
	return stats
}

func (n *bvhNode) collectStats(depth int, stats *bvhStats) {
	stats.totalNodes++
	stats.maxDepth = max(stats.maxDepth, depth)

	if n.items != nil {
		stats.leafNodes++
		stats.totalItems += len(n.items)
		stats.avgDepth += float64(depth)
		return
	}

	n.left.collectStats(depth+1, stats)
	n.right.collectStats(depth+1, stats)
}
