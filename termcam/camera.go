// Package termcam renders an orrery World into a terminal with tcell. Shapes
// are rasterized into a cell grid that is flushed to the screen on Present.
package termcam

import (
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/phanxgames/orrery"
)

// DefaultCellAspect is the height of a terminal cell relative to its width.
const DefaultCellAspect = 2.0

const (
	fillRune   = '█'
	dotRune    = '●'
	strokeRune = '·'
	lineRune   = '*'
)

// Cell is one character of the back buffer.
type Cell struct {
	Rune  rune
	Style tcell.Style
}

// Camera draws into a cell grid and writes it to its screen on Present.
// World units map to cell widths at zoom 1; rows are CellAspect units tall.
type Camera struct {
	orrery.GameObject
	orrery.View

	Background tcell.Color
	Disabled   bool
	CellAspect float64

	screen     tcell.Screen
	col, row   int
	cols, rows int
	cells      []Cell
}

// New creates a camera covering cols x rows cells of screen starting at
// (col, row).
func New(name string, screen tcell.Screen, col, row, cols, rows int) *Camera {
	c := &Camera{
		Background: tcell.ColorBlack,
		CellAspect: DefaultCellAspect,
		screen:     screen,
		col:        col,
		row:        row,
	}
	c.Name = name
	c.ClassTags = []string{orrery.CameraTag}
	c.View = orrery.NewView(orrery.Rect{})
	c.Resize(cols, rows)
	return c
}

// Resize changes the grid size, keeping the camera position.
func (c *Camera) Resize(cols, rows int) {
	c.cols, c.rows = max(cols, 0), max(rows, 0)
	c.cells = make([]Cell, c.cols*c.rows)
	c.Viewport = orrery.Rect{Width: float64(c.cols), Height: float64(c.rows) * c.aspect()}
}

func (c *Camera) aspect() float64 {
	if c.CellAspect <= 0 {
		return DefaultCellAspect
	}
	return c.CellAspect
}

// Size returns the grid size in cells.
func (c *Camera) Size() (cols, rows int) { return c.cols, c.rows }

// Cell returns the back buffer cell at (x, y).
func (c *Camera) Cell(x, y int) (Cell, bool) {
	if x < 0 || y < 0 || x >= c.cols || y >= c.rows {
		return Cell{}, false
	}
	return c.cells[y*c.cols+x], true
}

// IsDisabled implements orrery.Disabler.
func (c *Camera) IsDisabled() bool { return c.Disabled }

// Clear implements orrery.Camera.
func (c *Camera) Clear() {
	blank := Cell{Rune: ' ', Style: tcell.StyleDefault.Background(c.Background)}
	for i := range c.cells {
		c.cells[i] = blank
	}
}

// DrawObject implements orrery.Camera.
func (c *Camera) DrawObject(obj orrery.Object, t *orrery.Time) {
	c.Compose(obj, t)
	if d, ok := obj.(orrery.Drawer); ok {
		d.Draw(c, t)
	}
}

// DebugDrawObject implements orrery.Camera.
func (c *Camera) DebugDrawObject(obj orrery.Object, t *orrery.Time) {
	if d, ok := obj.(orrery.DebugDrawer); ok {
		d.DebugDraw(c, t)
	}
}

// Present implements orrery.Presenter.
func (c *Camera) Present() {
	if c.screen == nil {
		return
	}
	for y := 0; y < c.rows; y++ {
		for x := 0; x < c.cols; x++ {
			cell := c.cells[y*c.cols+x]
			c.screen.SetContent(c.col+x, c.row+y, cell.Rune, nil, cell.Style)
		}
	}
	c.screen.Show()
}

// toScreen maps p from the current object space to viewport units, where a
// cell is 1 wide and CellAspect tall.
func (c *Camera) toScreen(p orrery.Vec2) orrery.Vec2 {
	return c.Current().Apply(p)
}

func (c *Camera) cellOf(s orrery.Vec2) (int, int) {
	return int(math.Floor(s.X)), int(math.Floor(s.Y / c.aspect()))
}

func (c *Camera) cellCenter(x, y int) orrery.Vec2 {
	return orrery.Vec2{X: float64(x) + 0.5, Y: (float64(y) + 0.5) * c.aspect()}
}

func (c *Camera) set(x, y int, r rune, col orrery.Color) {
	if x < 0 || y < 0 || x >= c.cols || y >= c.rows {
		return
	}
	c.cells[y*c.cols+x] = Cell{Rune: r, Style: tcell.StyleDefault.Foreground(tcellColor(col)).Background(c.Background)}
}

func tcellColor(col orrery.Color) tcell.Color {
	rgba := col.RGBA()
	return tcell.NewRGBColor(int32(rgba.R), int32(rgba.G), int32(rgba.B))
}

// cellRange returns the cells whose centers may lie within r of s.
func (c *Camera) cellRange(s orrery.Vec2, r float64) (x0, y0, x1, y1 int) {
	x0, y0 = c.cellOf(orrery.Vec2{X: s.X - r, Y: s.Y - r})
	x1, y1 = c.cellOf(orrery.Vec2{X: s.X + r, Y: s.Y + r})
	return max(x0, 0), max(y0, 0), min(x1, c.cols-1), min(y1, c.rows-1)
}

// FillCircle implements orrery.Canvas. A circle smaller than a cell still
// marks the cell under its center.
func (c *Camera) FillCircle(center orrery.Vec2, radius float64, col orrery.Color) {
	s := c.toScreen(center)
	r := radius * c.Current().ScaleFactor()
	x0, y0, x1, y1 := c.cellRange(s, r)
	hit := false
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if c.cellCenter(x, y).Sub(s).LenSq() <= r*r {
				c.set(x, y, fillRune, col)
				hit = true
			}
		}
	}
	if !hit {
		x, y := c.cellOf(s)
		c.set(x, y, dotRune, col)
	}
}

// StrokeCircle implements orrery.Canvas.
func (c *Camera) StrokeCircle(center orrery.Vec2, radius, width float64, col orrery.Color) {
	s := c.toScreen(center)
	r := radius * c.Current().ScaleFactor()
	band := math.Max(width, c.aspect()) / 2
	x0, y0, x1, y1 := c.cellRange(s, r+band)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if math.Abs(c.cellCenter(x, y).Sub(s).Len()-r) <= band {
				c.set(x, y, strokeRune, col)
			}
		}
	}
}

// FillRect implements orrery.Canvas. Under a rotated view the rectangle's
// screen-space bounding box is filled.
func (c *Camera) FillRect(r orrery.Rect, col orrery.Color) {
	a := c.toScreen(r.Min())
	b := c.toScreen(r.Max())
	x0, y0 := c.cellOf(orrery.Vec2{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)})
	x1, y1 := c.cellOf(orrery.Vec2{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)})
	for y := max(y0, 0); y <= min(y1, c.rows-1); y++ {
		for x := max(x0, 0); x <= min(x1, c.cols-1); x++ {
			c.set(x, y, fillRune, col)
		}
	}
}

// StrokeRect implements orrery.Canvas.
func (c *Camera) StrokeRect(r orrery.Rect, width float64, col orrery.Color) {
	corners := [4]orrery.Vec2{
		r.Min(),
		{X: r.X + r.Width, Y: r.Y},
		r.Max(),
		{X: r.X, Y: r.Y + r.Height},
	}
	for i := range corners {
		c.Line(corners[i], corners[(i+1)%len(corners)], width, col)
	}
}

// Line implements orrery.Canvas with a DDA walk over cells.
func (c *Camera) Line(from, to orrery.Vec2, _ float64, col orrery.Color) {
	ax, ay := c.cellOf(c.toScreen(from))
	bx, by := c.cellOf(c.toScreen(to))
	dx, dy := bx-ax, by-ay
	steps := max(abs(dx), abs(dy))
	if steps == 0 {
		c.set(ax, ay, lineRune, col)
		return
	}
	for i := 0; i <= steps; i++ {
		f := float64(i) / float64(steps)
		x := ax + int(math.Round(f*float64(dx)))
		y := ay + int(math.Round(f*float64(dy)))
		c.set(x, y, lineRune, col)
	}
}

// Text implements orrery.Canvas.
func (c *Camera) Text(pos orrery.Vec2, s string) {
	x, y := c.cellOf(c.toScreen(pos))
	for _, r := range s {
		c.set(x, y, r, orrery.ColorWhite)
		x++
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
