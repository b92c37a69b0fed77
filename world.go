package orrery

import (
	"math"

	"go.uber.org/zap"
)

type addOp struct {
	obj       Object
	parentID  ID
	parentObj Object // set when the parent had no ID at call time
	handle    *Handle
}

type removeOp struct {
	id     ID
	obj    Object
	handle *Handle
}

type moveOp struct {
	id     ID
	obj    Object
	parent ID
	handle *Handle
}

// World owns the scene graph: the ID→object map, the tag registry, and the
// deferred add/remove/move queues. Structural changes are only applied by
// Commit; traversals never observe a half-applied batch.
//
// A World is not safe for concurrent use. Everything runs on the simulation
// goroutine that drives the Loop.
type World struct {
	root    *GameObject
	objects map[ID]Object
	tags    *TagRegistry

	nextID ID
	maxID  ID

	adds    []*addOp
	removes []*removeOp
	moves   []*moveOp

	log   *zap.Logger
	debug bool

	sortBuf []ID
}

// NewWorld creates a World with a pre-linked root object. A nil logger
// disables logging.
func NewWorld(log *zap.Logger) *World {
	if log == nil {
		log = zap.NewNop()
	}
	root := &GameObject{Name: "root", id: RootID, live: true}
	w := &World{
		root:    root,
		objects: make(map[ID]Object, 256),
		tags:    NewTagRegistry(),
		nextID:  1,
		maxID:   math.MaxUint32,
		log:     log,
	}
	w.objects[RootID] = root
	return w
}

// Root returns the root object.
func (w *World) Root() *GameObject { return w.root }

// Tags returns the tag registry. It is kept in sync by the World; mutate tags
// through AddTags and RemoveTags.
func (w *World) Tags() *TagRegistry { return w.tags }

// Logger returns the World's logger.
func (w *World) Logger() *zap.Logger { return w.log }

// Len returns the number of live objects, root included.
func (w *World) Len() int { return len(w.objects) }

// Get returns the live object with the given ID.
func (w *World) Get(id ID) (Object, bool) {
	obj, ok := w.objects[id]
	return obj, ok
}

// Children returns the child IDs of a live object.
func (w *World) Children(id ID) []ID {
	obj, ok := w.objects[id]
	if !ok {
		return nil
	}
	return obj.Base().children
}

// Parent returns the parent ID of a live object. The root has no parent.
func (w *World) Parent(id ID) (ID, bool) {
	obj, ok := w.objects[id]
	if !ok || id == RootID {
		return 0, false
	}
	return obj.Base().parent, true
}

// PendingOps returns the number of queued structural operations.
func (w *World) PendingOps() int {
	return len(w.adds) + len(w.removes) + len(w.moves)
}

// SetDebugMode enables tree depth and child count warnings at commit.
func (w *World) SetDebugMode(enabled bool) { w.debug = enabled }

// --- Queries ---

// Filter returns the live objects holding any of the given tags.
func (w *World) Filter(tags ...string) []Object {
	return w.FilterBy(Filter{Op: FilterInclusive, Tags: tags})
}

// FilterBy resolves f against the tag registry and returns the objects.
func (w *World) FilterBy(f Filter) []Object {
	ids := w.tags.Resolve(f)
	if len(ids) == 0 {
		return nil
	}
	out := make([]Object, 0, len(ids))
	for _, id := range ids {
		if obj, ok := w.objects[id]; ok {
			out = append(out, obj)
		}
	}
	return out
}

// AddTags attaches dynamic tags to obj. Tags already present are skipped.
// Tags on an object that is not yet live are registered when it is added.
func (w *World) AddTags(obj Object, tags ...string) {
	b := obj.Base()
	for _, tag := range tags {
		if containsTag(b.tags, tag) {
			continue
		}
		b.tags = append(b.tags, tag)
		if b.live {
			w.tags.Add(tag, b.id)
		}
	}
}

// RemoveTags detaches dynamic tags from obj. Class tags stay registered.
func (w *World) RemoveTags(obj Object, tags ...string) {
	b := obj.Base()
	for _, tag := range tags {
		idx := -1
		for i, t := range b.tags {
			if t == tag {
				idx = i
				break
			}
		}
		if idx < 0 {
			continue
		}
		copy(b.tags[idx:], b.tags[idx+1:])
		b.tags = b.tags[:len(b.tags)-1]
		if b.live && !containsTag(b.ClassTags, tag) {
			w.tags.Remove(tag, b.id)
		}
	}
}

// --- Traversal ---

// Traverse walks the subtree rooted at from depth-first, visiting a node
// before its children and children in declared order. fn returns whether to
// descend into the node's children. The walk is iterative, so tree depth is
// bounded only by memory.
func (w *World) Traverse(from ID, fn func(id ID, obj Object) bool) {
	if _, ok := w.objects[from]; !ok {
		return
	}
	stack := make([]ID, 1, 64)
	stack[0] = from
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		obj, ok := w.objects[id]
		if !ok {
			continue
		}
		if !fn(id, obj) {
			continue
		}
		children := obj.Base().children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

// Update runs one fixed step over the whole graph. The first error aborts
// the traversal and is returned.
func (w *World) Update(t *Time) error {
	var err error
	w.Traverse(RootID, func(id ID, obj Object) bool {
		if err != nil {
			return false
		}
		if u, ok := obj.(Updater); ok {
			if err = u.Update(t); err != nil {
				w.log.Error("update failed",
					zap.Uint32("id", uint32(id)),
					zap.String("name", obj.Base().Name),
					zap.Error(err))
				return false
			}
		}
		return !obj.Base().AvoidUpdatingChildren
	})
	return err
}

// --- Structural operations ---

// Add queues obj for addition under the root.
func (w *World) Add(obj Object) (*Handle, error) {
	return w.AddTo(obj, RootID)
}

// AddTo queues obj for addition under the live object parent. obj's nested
// Children are added with it.
func (w *World) AddTo(obj Object, parent ID) (*Handle, error) {
	if err := w.checkAddable(obj); err != nil {
		return nil, err
	}
	if _, ok := w.objects[parent]; !ok {
		return nil, ErrParentMissing
	}
	return w.enqueueAdd(&addOp{obj: obj, parentID: parent}), nil
}

// AddToObject queues obj for addition under parent, which may itself still
// be waiting for its own add. The parent is resolved at commit; if it is not
// live by then the add is rejected with ErrParentMissing.
func (w *World) AddToObject(obj Object, parent Object) (*Handle, error) {
	if parent == nil {
		return w.Add(obj)
	}
	if err := w.checkAddable(obj); err != nil {
		return nil, err
	}
	pb := parent.Base()
	if pb == obj.Base() {
		return nil, ErrCycle
	}
	if pb.live {
		return w.enqueueAdd(&addOp{obj: obj, parentID: pb.id}), nil
	}
	return w.enqueueAdd(&addOp{obj: obj, parentObj: parent}), nil
}

func (w *World) checkAddable(obj Object) error {
	if obj == nil {
		panic("orrery: cannot add nil object")
	}
	b := obj.Base()
	if b == w.root {
		return ErrRoot
	}
	if b.live || b.pendingAdd {
		return ErrAlreadyAdded
	}
	return nil
}

func (w *World) enqueueAdd(op *addOp) *Handle {
	op.handle = newHandle(HandleAdd, op.obj)
	op.obj.Base().pendingAdd = true
	w.adds = append(w.adds, op)
	return op.handle
}

// Remove queues the object and its whole subtree for removal. Removing an
// object that already has a pending removal returns the existing handle.
func (w *World) Remove(id ID) (*Handle, error) {
	if id == RootID {
		return nil, ErrRoot
	}
	obj, ok := w.objects[id]
	if !ok {
		return nil, ErrNotAdded
	}
	b := obj.Base()
	if b.pendingRemove {
		for _, op := range w.removes {
			if op.obj == obj {
				return op.handle, nil
			}
		}
	}
	if b.pendingMove {
		return nil, ErrPendingMove
	}
	op := &removeOp{id: id, obj: obj, handle: newHandle(HandleRemove, obj)}
	b.pendingRemove = true
	w.removes = append(w.removes, op)
	return op.handle, nil
}

// RemoveObject queues obj for removal by reference.
func (w *World) RemoveObject(obj Object) (*Handle, error) {
	b := obj.Base()
	if b == w.root {
		return nil, ErrRoot
	}
	if !b.live {
		return nil, ErrNotAdded
	}
	return w.Remove(b.id)
}

// Move queues a reparent of id under parent, keeping its ID and subtree.
func (w *World) Move(id, parent ID) (*Handle, error) {
	if id == RootID {
		return nil, ErrRoot
	}
	obj, ok := w.objects[id]
	if !ok {
		return nil, ErrNotAdded
	}
	b := obj.Base()
	if b.pendingRemove {
		return nil, ErrPendingRemoval
	}
	if b.pendingMove {
		return nil, ErrPendingMove
	}
	if _, ok := w.objects[parent]; !ok {
		return nil, ErrParentMissing
	}
	if w.isAncestorOrSelf(id, parent) {
		return nil, ErrCycle
	}
	op := &moveOp{id: id, obj: obj, parent: parent, handle: newHandle(HandleMove, obj)}
	b.pendingMove = true
	w.moves = append(w.moves, op)
	return op.handle, nil
}

// isAncestorOrSelf reports whether candidate is node or one of its ancestors.
func (w *World) isAncestorOrSelf(candidate, node ID) bool {
	for id := node; ; {
		if id == candidate {
			return true
		}
		if id == RootID {
			return false
		}
		obj, ok := w.objects[id]
		if !ok {
			return false
		}
		id = obj.Base().parent
	}
}

// --- Commit ---

// Commit applies the queued operations: removals, then moves, then
// additions. Operations queued by handle callbacks during Commit wait for the
// next Commit.
func (w *World) Commit() {
	if len(w.adds) == 0 && len(w.removes) == 0 && len(w.moves) == 0 {
		return
	}
	removes, moves, adds := w.removes, w.moves, w.adds
	w.removes, w.moves, w.adds = nil, nil, nil

	for _, op := range removes {
		w.commitRemove(op)
	}
	for _, op := range moves {
		w.commitMove(op)
	}
	w.commitAdds(adds)
}

// Discard rejects every queued operation with err and clears the queues.
func (w *World) Discard(err error) {
	removes, moves, adds := w.removes, w.moves, w.adds
	w.removes, w.moves, w.adds = nil, nil, nil
	for _, op := range removes {
		op.obj.Base().pendingRemove = false
		op.handle.resolve(op.id, err)
	}
	for _, op := range moves {
		op.obj.Base().pendingMove = false
		op.handle.resolve(op.id, err)
	}
	for _, op := range adds {
		op.obj.Base().pendingAdd = false
		op.handle.resolve(0, err)
	}
}

func (w *World) commitRemove(op *removeOp) {
	b := op.obj.Base()
	b.pendingRemove = false
	if !b.live || w.objects[op.id] != op.obj {
		// Already gone with an ancestor earlier in this batch.
		op.handle.resolve(op.id, nil)
		return
	}
	w.removeSubtree(op.obj)
	op.handle.resolve(op.id, nil)
}

func (w *World) commitMove(op *moveOp) {
	b := op.obj.Base()
	b.pendingMove = false

	if !b.live {
		// An ancestor was removed first: re-add under the new parent.
		if _, ok := w.objects[op.parent]; !ok {
			w.log.Debug("move dropped, object and target both gone",
				zap.String("name", b.Name))
			op.handle.resolve(0, ErrParentMissing)
			return
		}
		w.log.Debug("move degraded to add", zap.String("name", b.Name))
		w.attach(op.obj, op.parent)
		op.handle.resolve(b.id, nil)
		return
	}
	newParent, ok := w.objects[op.parent]
	if !ok {
		w.log.Debug("move degraded to removal", zap.String("name", b.Name))
		w.removeSubtree(op.obj)
		op.handle.resolve(op.id, ErrParentMissing)
		return
	}
	if w.isAncestorOrSelf(b.id, op.parent) {
		op.handle.resolve(b.id, ErrCycle)
		return
	}
	if old, ok := w.objects[b.parent]; ok {
		old.Base().removeChildID(b.id)
	}
	np := newParent.Base()
	np.children = append(np.children, b.id)
	b.parent = op.parent
	if w.debug {
		w.debugCheckTreeDepth(b)
		w.debugCheckChildCount(np)
	}
	op.handle.resolve(b.id, nil)
}

func (w *World) commitAdds(pending []*addOp) {
	for len(pending) > 0 {
		progressed := false
		var waiting []*addOp
		for _, op := range pending {
			parent, ready, missing := w.resolveAddParent(op)
			switch {
			case ready:
				w.attach(op.obj, parent)
				op.handle.resolve(op.obj.Base().id, nil)
				progressed = true
			case missing:
				w.rejectAdd(op, ErrParentMissing)
				progressed = true
			default:
				waiting = append(waiting, op)
			}
		}
		if !progressed {
			for _, op := range waiting {
				w.rejectAdd(op, ErrParentMissing)
			}
			return
		}
		pending = waiting
	}
}

// resolveAddParent reports the parent ID when it is live, or whether the add
// must wait for a parent queued in the same batch, or is missing for good.
func (w *World) resolveAddParent(op *addOp) (parent ID, ready, missing bool) {
	if op.parentObj == nil {
		if _, ok := w.objects[op.parentID]; ok {
			return op.parentID, true, false
		}
		return 0, false, true
	}
	pb := op.parentObj.Base()
	if pb.live {
		return pb.id, true, false
	}
	return 0, false, false
}

func (w *World) rejectAdd(op *addOp, err error) {
	op.obj.Base().pendingAdd = false
	w.log.Debug("add rejected",
		zap.String("name", op.obj.Base().Name),
		zap.Error(err))
	op.handle.resolve(0, err)
}

// attach links obj and its nested Children under parent, assigning IDs
// depth-first and registering tags. The nested slices are cleared.
func (w *World) attach(obj Object, parent ID) {
	type frame struct {
		obj    Object
		parent ID
	}
	stack := []frame{{obj, parent}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		b := f.obj.Base()
		b.pendingAdd = false
		if b.live {
			w.log.Warn("nested child already live, skipped", zap.String("name", b.Name))
			continue
		}
		p, ok := w.objects[f.parent]
		if !ok {
			continue
		}
		id := w.allocID()
		b.id = id
		b.live = true
		b.parent = f.parent
		b.children = b.children[:0]
		w.objects[id] = f.obj
		pb := p.Base()
		pb.children = append(pb.children, id)
		w.registerTags(b)
		if w.debug {
			w.debugCheckTreeDepth(b)
			w.debugCheckChildCount(pb)
		}

		nested := b.Children
		b.Children = nil
		for i := len(nested) - 1; i >= 0; i-- {
			if nested[i] == nil {
				continue
			}
			stack = append(stack, frame{nested[i], id})
		}
	}
}

// removeSubtree unlinks obj and every descendant, children before parents.
// Removed descendants are folded back into their parent's nested Children so
// the subtree can be added again intact. Descendants with a pending move are
// left out of the fold, since their move re-adds them, and so are descendants
// with their own pending removal.
func (w *World) removeSubtree(obj Object) {
	var order []Object
	w.Traverse(obj.Base().id, func(_ ID, o Object) bool {
		order = append(order, o)
		return true
	})
	for _, o := range order {
		b := o.Base()
		if len(b.children) == 0 {
			continue
		}
		nested := make([]Object, 0, len(b.children))
		for _, cid := range b.children {
			child, ok := w.objects[cid]
			if !ok || child.Base().pendingMove || child.Base().pendingRemove {
				continue
			}
			nested = append(nested, child)
		}
		b.Children = append(nested, b.Children...)
	}
	for i := len(order) - 1; i >= 0; i-- {
		b := order[i].Base()
		w.unregisterTags(b)
		if p, ok := w.objects[b.parent]; ok {
			p.Base().removeChildID(b.id)
		}
		delete(w.objects, b.id)
		b.live = false
		b.parent = RootID
		b.children = nil
	}
}

func (w *World) allocID() ID {
	for tries := uint64(0); tries <= uint64(w.maxID); tries++ {
		id := w.nextID
		if w.nextID >= w.maxID {
			w.nextID = 1
		} else {
			w.nextID++
		}
		if _, used := w.objects[id]; !used {
			return id
		}
	}
	panic("orrery: object ID space exhausted")
}

func (w *World) registerTags(b *GameObject) {
	for _, tag := range b.ClassTags {
		w.tags.Add(tag, b.id)
	}
	for _, tag := range b.tags {
		w.tags.Add(tag, b.id)
	}
}

func (w *World) unregisterTags(b *GameObject) {
	for _, tag := range b.ClassTags {
		w.tags.Remove(tag, b.id)
	}
	for _, tag := range b.tags {
		w.tags.Remove(tag, b.id)
	}
}
