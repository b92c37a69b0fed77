package termcam

import "github.com/gdamore/tcell/v2"

// Keys is an orrery.InputController over tcell events. Events arrive on a
// channel, usually fed by a goroutine blocked in Screen.PollEvent, and are
// drained without blocking at the start of each frame.
type Keys struct {
	events   <-chan tcell.Event
	keys     map[tcell.Key][]func()
	runes    map[rune][]func()
	OnResize func(cols, rows int)
}

// NewKeys creates a controller reading events.
func NewKeys(events <-chan tcell.Event) *Keys {
	return &Keys{
		events: events,
		keys:   make(map[tcell.Key][]func()),
		runes:  make(map[rune][]func()),
	}
}

// Poll starts a goroutine forwarding screen events to a buffered channel
// and returns it. The goroutine ends when the screen is finalized.
func Poll(screen tcell.Screen) <-chan tcell.Event {
	ch := make(chan tcell.Event, 100)
	go func() {
		defer close(ch)
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			ch <- ev
		}
	}()
	return ch
}

// BindKey runs fn on every press of a special key.
func (k *Keys) BindKey(key tcell.Key, fn func()) {
	k.keys[key] = append(k.keys[key], fn)
}

// BindRune runs fn on every press of a printable key.
func (k *Keys) BindRune(r rune, fn func()) {
	k.runes[r] = append(k.runes[r], fn)
}

// Update implements orrery.InputController.
func (k *Keys) Update() {
	for {
		select {
		case ev, ok := <-k.events:
			if !ok {
				return
			}
			k.handle(ev)
		default:
			return
		}
	}
}

func (k *Keys) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyRune {
			for _, fn := range k.runes[ev.Rune()] {
				fn()
			}
			return
		}
		for _, fn := range k.keys[ev.Key()] {
			fn()
		}
	case *tcell.EventResize:
		if k.OnResize != nil {
			k.OnResize(ev.Size())
		}
	}
}
