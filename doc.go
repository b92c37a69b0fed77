// Package orrery is a small scene-graph game engine core: a tag registry, a
// World holding a tree of objects with deferred structural changes, and a
// fixed-step Loop that updates the tree and draws it once per frame through
// every camera.
//
// Rendering and physics live in subpackages. ebitencam draws into an
// Ebitengine window, termcam draws into a tcell terminal, collision provides
// the quadtree broad phase and the continuous circle/box narrow phase, and
// physics supplies ready-made bodies (balls, walls, gravity).
//
// # Quick start
//
//	w := orrery.NewWorld(log)
//	host := ebitencam.NewHost(ebitencam.RunConfig{Title: "demo", Width: 640, Height: 480})
//	loop := orrery.NewLoop(w, host, orrery.DefaultConfig().Loop, log)
//
//	w.Add(ebitencam.New("camera", orrery.Rect{Width: 640, Height: 480}))
//	w.Add(physics.NewBall("ball", orrery.Vec2{X: 320, Y: 100}, 10, 1, orrery.Color{R: 1, A: 1}))
//	w.Add(collision.NewSystem(w, orrery.DefaultConfig().Collision, log))
//	w.Commit()
//
//	ebitencam.Run(loop, host)
//
// # Objects
//
// Every object embeds [GameObject] and implements [Object]. Behavior is
// opted into by implementing small interfaces: [Updater] runs once per fixed
// step, [Drawer] and [DebugDrawer] run once per frame per camera,
// [Transformer] contributes a local transform to its subtree, and
// [ChildSorter] reorders children for drawing.
//
// Objects declared with nested Children are attached in one commit, parents
// before children. Class tags (ClassTags) are registered with the World's
// [TagRegistry] on commit and can be queried with [World.Filter].
//
// # Deferred changes
//
// [World.Add], [World.Remove] and [World.Move] never change the tree
// directly. They queue an operation and return a [Handle] that resolves when
// [World.Commit] applies the queue: removals first, then moves, then adds.
// The Loop commits after every fixed step, so objects added during an update
// see their first Update on the next step.
//
// # Timing
//
// The Loop converts wall time into fixed steps of [LoopConfig.MinUpdateTime].
// Leftover time is passed to drawers as [Time.Interpolation]. A
// [FrameScheduler] drives the Loop: [StepHost] for deterministic tests,
// [TickerHost] for headless and terminal runs, and ebitencam's Host for a
// window.
package orrery
