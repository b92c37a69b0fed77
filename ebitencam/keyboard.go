package ebitencam

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type binding struct {
	key ebiten.Key
	fn  func()
}

// Keyboard is an orrery.InputController that runs bound commands when their
// key goes down. Commands fire in bind order.
type Keyboard struct {
	bindings    []binding
	justPressed func(ebiten.Key) bool
}

// NewKeyboard creates a Keyboard with no bindings.
func NewKeyboard() *Keyboard {
	return &Keyboard{justPressed: inpututil.IsKeyJustPressed}
}

// Bind runs fn on every press of key. A key may carry several commands.
func (k *Keyboard) Bind(key ebiten.Key, fn func()) {
	k.bindings = append(k.bindings, binding{key: key, fn: fn})
}

// Update implements orrery.InputController.
func (k *Keyboard) Update() {
	for _, b := range k.bindings {
		if k.justPressed(b.key) {
			b.fn()
		}
	}
}
