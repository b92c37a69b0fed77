package orrery

import "go.uber.org/zap"

type drawEntry struct {
	id      ID
	restore bool
}

// Draw renders the graph through every enabled camera, then lets
// double-buffered cameras present. It returns the number of cameras drawn.
func (w *World) Draw(t *Time, debug bool) int {
	objs := w.Filter(CameraTag)
	cams := make([]Camera, 0, len(objs))
	for _, obj := range objs {
		cam, ok := obj.(Camera)
		if !ok {
			w.log.Warn("object tagged camera does not implement Camera",
				zap.String("name", obj.Base().Name))
			continue
		}
		if d, ok := cam.(Disabler); ok && d.IsDisabled() {
			continue
		}
		cams = append(cams, cam)
	}

	for _, cam := range cams {
		cam.Clear()
		cam.CalculateView(t)
		w.drawWith(cam, t, debug)
	}
	for _, cam := range cams {
		if p, ok := cam.(Presenter); ok {
			p.Present()
		}
	}
	return len(cams)
}

// drawWith walks the graph for one camera. A restore marker is pushed below
// each drawing node's children so RestoreState runs after the whole subtree.
func (w *World) drawWith(cam Camera, t *Time, debug bool) {
	stack := make([]drawEntry, 1, 64)
	stack[0] = drawEntry{id: RootID}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if e.restore {
			cam.RestoreState()
			continue
		}
		obj, ok := w.objects[e.id]
		if !ok {
			continue
		}

		_, draws := obj.(Drawer)
		_, transforms := obj.(Transformer)
		dd, debugDraws := obj.(DebugDrawer)
		debugDraws = debugDraws && debug && dd != nil
		if draws || transforms || debugDraws {
			cam.SaveState()
			stack = append(stack, drawEntry{restore: true})
			if draws || transforms {
				cam.DrawObject(obj, t)
			}
			if debugDraws {
				cam.DebugDrawObject(obj, t)
			}
		}

		b := obj.Base()
		if b.AvoidDrawingChildren || len(b.children) == 0 {
			continue
		}
		children := b.children
		if s, ok := obj.(ChildSorter); ok {
			w.sortBuf = append(w.sortBuf[:0], children...)
			s.SortChildren(w, w.sortBuf)
			children = w.sortBuf
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, drawEntry{id: children[i]})
		}
	}
}
