package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/mosaic/internal/gallery"
)

// CellSize is how many layout units one terminal cell covers. Cells are about twice as tall as they
// are wide, so H defaults to 2*W and tiles keep their aspect on screen.
type CellSize struct {
	W float64
	H float64
}

// DefaultCellSize maps a 200-unit tile to 20 columns.
func DefaultCellSize() CellSize { return CellSize{W: 10, H: 20} }

func (c CellSize) valid() bool { return c.W > 0 && c.H > 0 }

type cellClass uint8

const (
	classEmpty cellClass = iota
	classTile
	classTabStop
	classFocused
)

// canvas is a rows x cols character grid with one style class per cell.
type canvas struct {
	cols, rows int
	runes      [][]rune
	class      [][]cellClass
}

func newCanvas(cols, rows int) *canvas {
	c := &canvas{cols: max(cols, 0), rows: max(rows, 0)}
	c.runes = make([][]rune, c.rows)
	c.class = make([][]cellClass, c.rows)
	for r := range c.runes {
		c.runes[r] = []rune(strings.Repeat(" ", c.cols))
		c.class[r] = make([]cellClass, c.cols)
	}
	return c
}

func (c *canvas) set(col, row int, ch rune, cls cellClass) {
	if row < 0 || row >= c.rows || col < 0 || col >= c.cols {
		return
	}
	c.runes[row][col] = ch
	c.class[row][col] = cls
}

func (c *canvas) text(col, row, maxLen int, s string, cls cellClass) {
	for i, ch := range []rune(s) {
		if i >= maxLen {
			return
		}
		c.set(col+i, row, ch, cls)
	}
}

// cellRect is a tile rectangle in cell coordinates, inclusive on both ends.
type cellRect struct {
	col0, row0, col1, row1 int
}

// toCells projects a layout rectangle onto the canvas for the given scroll offset. Edges round to the
// nearest cell; every tile keeps at least one cell in each direction.
func toCells(r gallery.Rect, scroll float64, cell CellSize) cellRect {
	col0 := int(math.Round(r.X / cell.W))
	col1 := int(math.Round(r.Right()/cell.W)) - 1
	row0 := int(math.Round((r.Y - scroll) / cell.H))
	row1 := int(math.Round((r.Bottom()-scroll)/cell.H)) - 1
	return cellRect{col0: col0, row0: row0, col1: max(col1, col0), row1: max(row1, row0)}
}

func classOf(t gallery.Tile) cellClass {
	switch {
	case t.Focused:
		return classFocused
	case t.TabStop:
		return classTabStop
	default:
		return classTile
	}
}

// draw paints tiles onto the canvas. Tiles are framed with box-drawing characters and labelled with
// their item id and intrinsic size when there is room.
func (c *canvas) draw(tiles []gallery.Tile, scroll float64, cell CellSize) {
	for _, t := range tiles {
		cr := toCells(t.Rect, scroll, cell)
		cls := classOf(t)
		drawBox(c, cr, cls)

		inner := cr.col1 - cr.col0 - 1
		if inner <= 0 || cr.row1-cr.row0 < 2 {
			continue
		}
		c.text(cr.col0+1, cr.row0+1, inner, fmt.Sprintf("#%d", t.Item.ID), cls)
		if cr.row1-cr.row0 >= 3 && t.Item.Width > 0 && t.Item.Height > 0 {
			c.text(cr.col0+1, cr.row0+2, inner, fmt.Sprintf("%.0f×%.0f", t.Item.Width, t.Item.Height), cls)
		}
	}
}

func drawBox(c *canvas, r cellRect, cls cellClass) {
	h, v, tl, tr, bl, br := '─', '│', '┌', '┐', '└', '┘'
	if cls == classFocused {
		h, v, tl, tr, bl, br = '━', '┃', '┏', '┓', '┗', '┛'
	}

	if r.col0 == r.col1 || r.row0 == r.row1 {
		for row := r.row0; row <= r.row1; row++ {
			for col := r.col0; col <= r.col1; col++ {
				c.set(col, row, '▪', cls)
			}
		}
		return
	}

	for col := r.col0 + 1; col < r.col1; col++ {
		c.set(col, r.row0, h, cls)
		c.set(col, r.row1, h, cls)
	}
	for row := r.row0 + 1; row < r.row1; row++ {
		c.set(r.col0, row, v, cls)
		c.set(r.col1, row, v, cls)
	}
	c.set(r.col0, r.row0, tl, cls)
	c.set(r.col1, r.row0, tr, cls)
	c.set(r.col0, r.row1, bl, cls)
	c.set(r.col1, r.row1, br, cls)
}

// lines returns the canvas without styling.
func (c *canvas) lines() []string {
	out := make([]string, c.rows)
	for r := range c.runes {
		out[r] = string(c.runes[r])
	}
	return out
}

// render returns the canvas with each run of same-class cells styled.
func (c *canvas) render(p *Palette) string {
	var b strings.Builder
	for r := range c.runes {
		if r > 0 {
			b.WriteByte('\n')
		}
		start := 0
		for col := 1; col <= c.cols; col++ {
			if col < c.cols && c.class[r][col] == c.class[r][start] {
				continue
			}
			b.WriteString(p.cell(c.class[r][start]).Render(string(c.runes[r][start:col])))
			start = col
		}
	}
	return b.String()
}

func (p *Palette) cell(cls cellClass) lipgloss.Style {
	switch cls {
	case classFocused:
		return p.focused
	case classTabStop:
		return p.tabStop
	case classTile:
		return p.tile
	default:
		return lipgloss.NewStyle()
	}
}
