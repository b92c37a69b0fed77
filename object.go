package orrery

// Object is anything that can live in a World. Embed GameObject in a struct
// to satisfy it:
//
//	type Ball struct {
//		orrery.GameObject
//		Radius float64
//	}
type Object interface {
	Base() *GameObject
}

// Updater is implemented by objects that simulate. Update runs once per
// fixed step, parents before children, in declared child order. Returning an
// error aborts the step and stops the Loop.
type Updater interface {
	Update(t *Time) error
}

// Drawer is implemented by objects that render through a Camera.
type Drawer interface {
	Draw(cam Camera, t *Time)
}

// DebugDrawer is implemented by objects with a debug overlay. It is only
// invoked while the Loop's debug flag is set.
type DebugDrawer interface {
	DebugDraw(cam Camera, t *Time)
}

// Transformer supplies a local transform that cameras compose onto the
// current view between SaveState and RestoreState, so it applies to the
// object's whole subtree.
type Transformer interface {
	LocalTransform(t *Time) Affine
}

// ChildSorter reorders children just before the draw pass expands them
// (depth sorting, for instance). children is a scratch copy owned by the
// World and may be sorted in place.
type ChildSorter interface {
	SortChildren(w *World, children []ID)
}

// GameObject holds the scene-graph state shared by every object.
type GameObject struct {
	// Name is informational and shows up in logs.
	Name string

	// ClassTags are registered when the object is added and are never
	// removed by RemoveTags.
	ClassTags []string

	// Children declares nested objects to add together with this one. The
	// World flattens them into the graph at commit and clears the slice.
	Children []Object

	// AvoidUpdatingChildren stops the update traversal from descending.
	AvoidUpdatingChildren bool
	// AvoidDrawingChildren stops the draw traversal from descending.
	AvoidDrawingChildren bool

	id       ID
	live     bool
	parent   ID
	children []ID
	tags     []string

	pendingAdd    bool
	pendingRemove bool
	pendingMove   bool
}

// Base returns the embedded GameObject.
func (g *GameObject) Base() *GameObject { return g }

// ID returns the object's ID. Only meaningful while Live reports true.
func (g *GameObject) ID() ID { return g.id }

// Live reports whether the object is currently linked into a World.
func (g *GameObject) Live() bool { return g.live }

// Parent returns the parent's ID. The root reports itself.
func (g *GameObject) Parent() ID { return g.parent }

// ChildIDs returns the child list in draw/update order. The returned slice
// MUST NOT be mutated by the caller.
func (g *GameObject) ChildIDs() []ID { return g.children }

// NumChildren returns the number of linked children.
func (g *GameObject) NumChildren() int { return len(g.children) }

// Tags returns the dynamic tags. The returned slice MUST NOT be mutated.
func (g *GameObject) Tags() []string { return g.tags }

// HasTag reports whether tag is among the class tags or dynamic tags.
func (g *GameObject) HasTag(tag string) bool {
	return containsTag(g.ClassTags, tag) || containsTag(g.tags, tag)
}

// Pending reports whether any structural operation is queued for this object.
func (g *GameObject) Pending() bool {
	return g.pendingAdd || g.pendingRemove || g.pendingMove
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// removeChildID unlinks id from the child list, preserving order.
func (g *GameObject) removeChildID(id ID) {
	for i, c := range g.children {
		if c == id {
			copy(g.children[i:], g.children[i+1:])
			g.children = g.children[:len(g.children)-1]
			return
		}
	}
}
