package shape

import (
	pmath "povcore/math"
	"povcore/ray"
	"povcore/stats"
	"povcore/thread"
)

// CompoundOp selects the boolean set semantics a Compound evaluates.
type CompoundOp int

const (
	OpUnion CompoundOp = iota
	OpIntersection
	OpMerge
)

// Compound is a CSG node: union, intersection (difference is modelled as
// intersection with inverted children) or merge, composed over Children.
type Compound struct {
	base
	Op       CompoundOp
	Children []Object
}

func NewUnion(children ...Object) *Compound {
	return &Compound{Op: OpUnion, Children: children}
}

func NewIntersection(children ...Object) *Compound {
	return &Compound{Op: OpIntersection, Children: children}
}

func NewMerge(children ...Object) *Compound {
	return &Compound{Op: OpMerge, Children: children}
}

// NewDifference returns an intersection of base minus every subtracted
// object, each marked inverted — POV-Ray's own representation of
// "difference" (spec §4.2).
func NewDifference(baseObj Object, subtracted ...Object) *Compound {
	children := make([]Object, 0, len(subtracted)+1)
	children = append(children, baseObj)
	for _, s := range subtracted {
		s.SetFlags(s.GetFlags() | FlagInverted)
		children = append(children, s)
	}
	return &Compound{Op: OpIntersection, Children: children}
}

func (c *Compound) AllIntersections(r ray.Ray, stk *IStack, th *thread.State) bool {
	if !rayHitsBound(c.bound, r, th) {
		return false
	}
	if th != nil {
		th.Stats.Inc(stats.CSGIntersectionTests)
	}
	switch c.Op {
	case OpIntersection:
		return c.allIntersectionsIntersection(r, stk, th)
	case OpMerge:
		return c.allIntersectionsMerge(r, stk, th)
	default:
		return c.allIntersectionsUnion(r, stk, th)
	}
}

// allIntersectionsUnion pushes every child's intersections, filtered only
// by this union's own clip list. No sibling interaction.
func (c *Compound) allIntersectionsUnion(r ray.Ray, stk *IStack, th *thread.State) bool {
	mark := stk.Len()
	scratch := AcquireIStack()
	defer ReleaseIStack(scratch)

	for _, child := range c.Children {
		childMark := scratch.Len()
		child.AllIntersections(r, scratch, th)
		hits := append([]Intersection(nil), scratch.Slice(childMark)...)
		scratch.Truncate(childMark)

		for _, h := range hits {
			if passesClips(c.clips, h.Point, th) {
				stk.Push(withParent(h, c))
			}
		}
	}
	return stk.Len() > mark
}

// allIntersectionsIntersection requires that every child hit be inside
// every *other* child, skipping siblings that are pure light-source
// proxies with no geometry (spec §4.2).
func (c *Compound) allIntersectionsIntersection(r ray.Ray, stk *IStack, th *thread.State) bool {
	mark := stk.Len()
	scratch := AcquireIStack()
	defer ReleaseIStack(scratch)

	for i, child := range c.Children {
		childMark := scratch.Len()
		child.AllIntersections(r, scratch, th)
		hits := append([]Intersection(nil), scratch.Slice(childMark)...)
		scratch.Truncate(childMark)

		for _, h := range hits {
			admitted := true
			for j, sibling := range c.Children {
				if j == i || sibling.IsLightSourceProxy() {
					continue
				}
				if !sibling.Inside(h.Point, th) {
					admitted = false
					break
				}
			}
			if admitted && passesClips(c.clips, h.Point, th) {
				stk.Push(withParent(h, c))
			}
		}
	}
	return stk.Len() > mark
}

// allIntersectionsMerge is union semantics plus suppression of internal
// surfaces: a hit on child A is discarded when any sibling B's inside
// test at that point is true.
func (c *Compound) allIntersectionsMerge(r ray.Ray, stk *IStack, th *thread.State) bool {
	mark := stk.Len()
	scratch := AcquireIStack()
	defer ReleaseIStack(scratch)

	for i, child := range c.Children {
		childMark := scratch.Len()
		child.AllIntersections(r, scratch, th)
		hits := append([]Intersection(nil), scratch.Slice(childMark)...)
		scratch.Truncate(childMark)

		for _, h := range hits {
			suppressed := false
			for j, sibling := range c.Children {
				if j == i {
					continue
				}
				if sibling.Inside(h.Point, th) {
					suppressed = true
					break
				}
			}
			if !suppressed && passesClips(c.clips, h.Point, th) {
				stk.Push(withParent(h, c))
			}
		}
	}
	return stk.Len() > mark
}

func withParent(h Intersection, parent Object) Intersection {
	h.Parent = parent
	return h
}

func (c *Compound) Inside(p pmath.Vec3, th *thread.State) bool {
	var inside bool
	switch c.Op {
	case OpIntersection:
		inside = true
		for _, child := range c.Children {
			if !child.Inside(p, th) {
				inside = false
				break
			}
		}
	default: // union, merge: inside any child
		inside = false
		for _, child := range c.Children {
			if child.Inside(p, th) {
				inside = true
				break
			}
		}
	}
	if c.flags.Has(FlagInverted) {
		return !inside
	}
	return inside
}

// Normal delegates to whichever child object actually produced the hit,
// since CSG itself has no surface of its own.
func (c *Compound) Normal(hit Intersection, th *thread.State) pmath.Vec3 {
	if hit.Object != nil && hit.Object != Object(c) {
		return hit.Object.Normal(hit, th)
	}
	return pmath.Vec3Up
}

// BoundingBox: union/merge is the union of child bboxes; intersection
// starts at infinity and is intersected with each non-inverted child's
// bbox (testable property 3: adding a child cannot increase volume).
func (c *Compound) BoundingBox() AABB {
	switch c.Op {
	case OpIntersection:
		box := InfiniteAABB()
		for _, child := range c.Children {
			if child.GetFlags().Has(FlagInverted) {
				continue
			}
			box = box.Intersect(child.BoundingBox())
		}
		return box
	default:
		box := EmptyAABB()
		for _, child := range c.Children {
			box = box.Union(child.BoundingBox())
		}
		return box
	}
}

// Invert implements De Morgan inversion duality: invert(union) becomes an
// intersection of inverted children; invert(intersection) becomes a merge
// of inverted children. The receiver is consumed; the new root is
// returned (spec §4.2).
func (c *Compound) Invert() *Compound {
	for _, child := range c.Children {
		child.SetFlags(child.GetFlags() ^ FlagInverted)
	}
	switch c.Op {
	case OpUnion:
		c.Op = OpIntersection
	case OpIntersection:
		c.Op = OpMerge
	case OpMerge:
		c.Op = OpIntersection
	}
	return c
}

// DetermineTextures walks the children that contain world-space point p
// and collects their textures, weighted equally; a difference-style
// intersection (any inverted child present) uses only the first
// non-inverted child's texture, matching spec §4.2.
func (c *Compound) DetermineTextures(p pmath.Vec3, th *thread.State) []*Texture {
	hasInverted := false
	for _, child := range c.Children {
		if child.GetFlags().Has(FlagInverted) {
			hasInverted = true
			break
		}
	}

	var textures []*Texture
	for _, child := range c.Children {
		if child.GetFlags().Has(FlagInverted) {
			continue
		}
		if !child.Inside(p, th) {
			continue
		}
		if t := textureOf(child, p, th); t != nil {
			textures = append(textures, t)
			if hasInverted {
				return textures
			}
		}
	}
	return textures
}

func textureOf(o Object, p pmath.Vec3, th *thread.State) *Texture {
	if t := o.Texture(); t != nil {
		return t
	}
	if compound, ok := o.(*Compound); ok {
		nested := compound.DetermineTextures(p, th)
		if len(nested) > 0 {
			return nested[0]
		}
	}
	return nil
}

var _ Object = (*Compound)(nil)
